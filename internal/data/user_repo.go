package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/versetype/versetype-api/internal/core"
	"github.com/versetype/versetype-api/internal/data/pgxutil"
	domainauth "github.com/versetype/versetype-api/internal/domain/auth"
)

const userColumns = `id, kind, name, username, email, recovery_code, created_at`

// UserRepo provides database operations for users.
type UserRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewUserRepo creates a new UserRepo with real time provider.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

var _ core.UserRepository = (*UserRepo)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domainauth.User, error) {
	var (
		u        domainauth.User
		kind     string
		username sql.NullString
		email    sql.NullString
		recovery sql.NullString
	)
	if err := row.Scan(&u.ID, &kind, &u.Name, &username, &email, &recovery, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Kind = domainauth.UserKind(kind)
	u.Username = pgxutil.StringPtr(username)
	u.Email = pgxutil.StringPtr(email)
	u.RecoveryCode = pgxutil.StringPtr(recovery)
	return &u, nil
}

// Create inserts a new user with a generated id.
func (r *UserRepo) Create(ctx context.Context, params core.CreateUserParams) (*domainauth.User, error) {
	if !params.Kind.Valid() {
		return nil, fmt.Errorf("invalid user kind: %q", params.Kind)
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, errors.New("user name is required")
	}

	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO users (id, kind, name, username, email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		uuid.NewString(),
		string(params.Kind),
		name,
		pgxutil.NullString(params.Username),
		pgxutil.NullString(params.Email),
		r.timeProvider.Now().UTC(),
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, dbError("create user", err)
	}
	return u, nil
}

// GetByID retrieves a user by id. Malformed ids are reported as not found.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*domainauth.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrUserNotFound
	}
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, dbError("get user by id", err)
	}
	return u, nil
}

// UpdateName sets the display name of a user.
func (r *UserRepo) UpdateName(ctx context.Context, id, name string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrUserNotFound
	}
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		return dbError("update user name", err)
	}
	return requireOneRow(res, ErrUserNotFound)
}

// SetRecoveryCode stores the user's recovery code, replacing any previous one.
// A collision with another user's code returns ErrRecoveryCodeTaken.
func (r *UserRepo) SetRecoveryCode(ctx context.Context, id, code string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrUserNotFound
	}
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET recovery_code = $2 WHERE id = $1`, id, code)
	if pgxutil.IsUniqueViolation(err, "users_recovery_code_key") {
		return ErrRecoveryCodeTaken
	}
	if err != nil {
		return dbError("set recovery code", err)
	}
	return requireOneRow(res, ErrUserNotFound)
}

// FindByRecoveryCode retrieves the user owning code.
func (r *UserRepo) FindByRecoveryCode(ctx context.Context, code string) (*domainauth.User, error) {
	if code == "" {
		return nil, ErrUserNotFound
	}
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE recovery_code = $1`, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, dbError("find user by recovery code", err)
	}
	return u, nil
}

// FindByName returns every user whose display name equals name exactly, oldest first.
func (r *UserRepo) FindByName(ctx context.Context, name string) ([]*domainauth.User, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE name = $1 ORDER BY created_at, id`, name)
	if err != nil {
		return nil, dbError("find users by name", err)
	}
	defer rows.Close()

	var out []*domainauth.User
	for rows.Next() {
		u, scanErr := scanUser(rows)
		if scanErr != nil {
			return nil, dbError("scan user", scanErr)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("iterate users", err)
	}
	return out, nil
}

func requireOneRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
