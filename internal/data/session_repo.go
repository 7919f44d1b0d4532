package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/versetype/versetype-api/internal/core"
	"github.com/versetype/versetype-api/internal/data/pgxutil"
	domainauth "github.com/versetype/versetype-api/internal/domain/auth"
)

// SessionRepo provides database operations for sessions.
type SessionRepo struct {
	DB *sql.DB
}

// NewSessionRepo creates a new SessionRepo.
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{DB: db}
}

var _ core.SessionRepository = (*SessionRepo)(nil)

func scanSession(row rowScanner) (*domainauth.Session, error) {
	var (
		s      domainauth.Session
		userID sql.NullString
	)
	if err := row.Scan(&s.Token, &userID, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.UserID = pgxutil.StringPtr(userID)
	return &s, nil
}

// FindByToken retrieves a session by its token.
func (r *SessionRepo) FindByToken(ctx context.Context, token string) (*domainauth.Session, error) {
	s, err := scanSession(r.DB.QueryRowContext(ctx,
		`SELECT session_token, user_id, created_at FROM sessions WHERE session_token = $1`, token))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, dbError("find session", err)
	}
	return s, nil
}

// Upsert creates the session or relinks an existing one in a single statement.
func (r *SessionRepo) Upsert(ctx context.Context, params core.UpsertSessionParams) (*domainauth.Session, error) {
	if params.Token == "" {
		return nil, errors.New("session token is required")
	}
	s, err := scanSession(r.DB.QueryRowContext(ctx, `
		INSERT INTO sessions (session_token, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_token) DO UPDATE
		SET user_id = EXCLUDED.user_id,
			created_at = CASE WHEN $4 THEN EXCLUDED.created_at ELSE sessions.created_at END
		RETURNING session_token, user_id, created_at`,
		params.Token,
		pgxutil.NullString(params.UserID),
		params.Now.UTC(),
		params.ResetCreatedAt,
	))
	if err != nil {
		return nil, dbError("upsert session", err)
	}
	return s, nil
}

// ListByUser returns every session currently linked to userID, oldest first.
func (r *SessionRepo) ListByUser(ctx context.Context, userID string) ([]*domainauth.Session, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT session_token, user_id, created_at FROM sessions WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, dbError("list sessions", err)
	}
	defer rows.Close()

	var out []*domainauth.Session
	for rows.Next() {
		s, scanErr := scanSession(rows)
		if scanErr != nil {
			return nil, dbError("scan session", scanErr)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("iterate sessions", err)
	}
	return out, nil
}
