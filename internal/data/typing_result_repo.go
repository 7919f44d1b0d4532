package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/versetype/versetype-api/internal/core"
	"github.com/versetype/versetype-api/internal/domain/model"
)

const typingResultColumns = `id, user_id, verse_id, translation, reference, wpm, accuracy, created_at`

// TypingResultRepo provides database operations for typing history.
type TypingResultRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewTypingResultRepo creates a new TypingResultRepo with real time provider.
func NewTypingResultRepo(db *sql.DB) *TypingResultRepo {
	return &TypingResultRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

var _ core.TypingResultRepository = (*TypingResultRepo)(nil)

func scanTypingResult(row rowScanner) (*model.TypingResult, error) {
	var t model.TypingResult
	if err := row.Scan(
		&t.ID, &t.UserID, &t.VerseID, &t.Translation, &t.Reference, &t.WPM, &t.Accuracy, &t.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create stores a result. ID and CreatedAt are assigned here.
func (r *TypingResultRepo) Create(ctx context.Context, result *model.TypingResult) (*model.TypingResult, error) {
	if result == nil {
		return nil, errors.New("typing result is required")
	}
	if result.UserID == "" {
		return nil, ErrUserIDRequired
	}

	out, err := scanTypingResult(r.DB.QueryRowContext(ctx, `
		INSERT INTO typing_results (id, user_id, verse_id, translation, reference, wpm, accuracy, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+typingResultColumns,
		uuid.NewString(),
		result.UserID,
		result.VerseID,
		result.Translation,
		result.Reference,
		result.WPM,
		result.Accuracy,
		r.timeProvider.Now().UTC(),
	))
	if err != nil {
		return nil, dbError("create typing result", err)
	}
	return out, nil
}

// ListRecentByUser returns up to limit results for userID, newest first.
func (r *TypingResultRepo) ListRecentByUser(ctx context.Context, userID string, limit int) ([]*model.TypingResult, error) {
	if limit <= 0 {
		limit = model.TypingHistoryLimit
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+typingResultColumns+`
		FROM typing_results
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, dbError("list typing results", err)
	}
	defer rows.Close()

	out := make([]*model.TypingResult, 0, limit)
	for rows.Next() {
		t, scanErr := scanTypingResult(rows)
		if scanErr != nil {
			return nil, dbError("scan typing result", scanErr)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("iterate typing results", err)
	}
	return out, nil
}
