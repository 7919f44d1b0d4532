package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/versetype/versetype-api/internal/core"
	"github.com/versetype/versetype-api/internal/data/pgxutil"
	domainauth "github.com/versetype/versetype-api/internal/domain/auth"
)

// Advisory lock namespace for sweeper operations.
// Two-arg pg_try_advisory_xact_lock(major, minor); major 2000 is reserved for login-code maintenance.
const (
	advisoryLockSweeperMajor      int32 = 2000
	advisoryLockSweeperLoginCodes int32 = 1
)

const (
	loginCodeColumns        = `code, user_id, created_at, expires_at`
	loginCodesPKey          = "login_codes_pkey"
	loginCodesUserIDKey     = "login_codes_user_id_key"
	maxReplaceAttempts      = 2
	defaultSweeperBatchSize = 1000
)

// LoginCodeRepo provides database operations for login codes.
// Callers pass the clock explicitly so expiry checks follow the service clock.
type LoginCodeRepo struct {
	DB *sql.DB
}

// NewLoginCodeRepo creates a new LoginCodeRepo.
func NewLoginCodeRepo(db *sql.DB) *LoginCodeRepo {
	return &LoginCodeRepo{DB: db}
}

var (
	_ core.LoginCodeRepository = (*LoginCodeRepo)(nil)
	_ core.SweeperRepository   = (*LoginCodeRepo)(nil)
)

func scanLoginCode(row rowScanner) (*domainauth.LoginCode, error) {
	var c domainauth.LoginCode
	if err := row.Scan(&c.Code, &c.UserID, &c.CreatedAt, &c.ExpiresAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Replace deletes every code owned by code.UserID and inserts code in one transaction.
// ErrLoginCodeCollision is returned when the code string is already held by another user.
func (r *LoginCodeRepo) Replace(ctx context.Context, code domainauth.LoginCode) error {
	if code.UserID == "" {
		return ErrUserIDRequired
	}

	var err error
	for attempt := 0; attempt < maxReplaceAttempts; attempt++ {
		err = pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{
			Fn: func(tx *sql.Tx) error {
				if _, delErr := tx.ExecContext(ctx, `DELETE FROM login_codes WHERE user_id = $1`, code.UserID); delErr != nil {
					return fmt.Errorf("delete previous login codes: %w", delErr)
				}
				if _, insErr := tx.ExecContext(ctx, `
					INSERT INTO login_codes (code, user_id, created_at, expires_at)
					VALUES ($1, $2, $3, $4)`,
					code.Code, code.UserID, code.CreatedAt.UTC(), code.ExpiresAt.UTC(),
				); insErr != nil {
					return fmt.Errorf("insert login code: %w", insErr)
				}
				return nil
			},
		})
		switch {
		case err == nil:
			return nil
		case pgxutil.IsUniqueViolation(err, loginCodesPKey):
			return ErrLoginCodeCollision
		case pgxutil.IsUniqueViolation(err, loginCodesUserIDKey):
			// A concurrent Replace for the same user committed first; run again so ours wins.
			continue
		default:
			return dbError("replace login code", err)
		}
	}
	return dbError("replace login code", err)
}

// FindActiveByUser returns the user's code when it has not expired at now.
func (r *LoginCodeRepo) FindActiveByUser(ctx context.Context, userID string, now time.Time) (*domainauth.LoginCode, error) {
	c, err := scanLoginCode(r.DB.QueryRowContext(ctx,
		`SELECT `+loginCodeColumns+` FROM login_codes WHERE user_id = $1 AND expires_at > $2`,
		userID, now.UTC()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLoginCodeNotFound
	}
	if err != nil {
		return nil, dbError("find active login code", err)
	}
	return c, nil
}

// Consume deletes the code and returns it. Concurrent callers race on the DELETE;
// exactly one receives the row and the rest see ErrLoginCodeNotFound.
func (r *LoginCodeRepo) Consume(ctx context.Context, code string) (*domainauth.LoginCode, error) {
	c, err := scanLoginCode(r.DB.QueryRowContext(ctx,
		`DELETE FROM login_codes WHERE code = $1 RETURNING `+loginCodeColumns, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLoginCodeNotFound
	}
	if err != nil {
		return nil, dbError("consume login code", err)
	}
	return c, nil
}

// DeleteExpiredLoginCodes removes up to batchSize codes whose expiry is before now.
// Uses an advisory lock so only one sweeper instance deletes at a time; a busy lock deletes nothing.
func (r *LoginCodeRepo) DeleteExpiredLoginCodes(ctx context.Context, now time.Time, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = defaultSweeperBatchSize
	}

	var rowsAffected int64
	err := pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			locked, err := pgxutil.TryXactLock(ctx, tx, advisoryLockSweeperMajor, advisoryLockSweeperLoginCodes)
			if err != nil {
				return err
			}
			if !locked {
				return nil
			}

			res, err := tx.ExecContext(ctx, `
				DELETE FROM login_codes
				WHERE code IN (
					SELECT code FROM login_codes
					WHERE expires_at < $1
					ORDER BY expires_at
					LIMIT $2
				)`, now.UTC(), batchSize)
			if err != nil {
				return dbError("delete expired login codes", err)
			}
			ra, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected: %w", err)
			}
			rowsAffected = ra
			return nil
		},
	})
	if err != nil {
		return 0, dbError("sweep login codes", err)
	}
	return rowsAffected, nil
}
