package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/versetype/versetype-api/internal/core"
	"github.com/versetype/versetype-api/internal/domain/model"
)

// PresentationRepo stores presentation slide state in Postgres.
type PresentationRepo struct {
	DB *sql.DB
}

// NewPresentationRepo creates a new PresentationRepo.
func NewPresentationRepo(db *sql.DB) *PresentationRepo {
	return &PresentationRepo{DB: db}
}

var _ core.PresentationRepository = (*PresentationRepo)(nil)

func scanPresentation(row rowScanner) (*model.PresentationState, error) {
	var s model.PresentationState
	if err := row.Scan(&s.Key, &s.CurrentSlide, &s.LastUpdated); err != nil {
		return nil, err
	}
	s.Exists = true
	return &s, nil
}

// Get returns the stored state for key or ErrPresentationNotFound.
func (r *PresentationRepo) Get(ctx context.Context, key string) (*model.PresentationState, error) {
	s, err := scanPresentation(r.DB.QueryRowContext(ctx,
		`SELECT key, current_slide, last_updated FROM presentation_state WHERE key = $1`, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPresentationNotFound
	}
	if err != nil {
		return nil, dbError("get presentation", err)
	}
	return s, nil
}

// SetIfNewer upserts the slide unless the stored last_updated is later than params.At.
// Ties go to the incoming write. When the write loses, the current stored state is returned with applied=false.
func (r *PresentationRepo) SetIfNewer(
	ctx context.Context,
	params core.SetIfNewerParams,
) (*model.PresentationState, bool, error) {
	s, err := scanPresentation(r.DB.QueryRowContext(ctx, `
		INSERT INTO presentation_state (key, current_slide, last_updated)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET current_slide = EXCLUDED.current_slide,
			last_updated = EXCLUDED.last_updated
		WHERE presentation_state.last_updated <= EXCLUDED.last_updated
		RETURNING key, current_slide, last_updated`,
		params.Key, params.Slide, params.At.UTC(),
	))
	if err == nil {
		return s, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, dbError("set presentation slide", err)
	}

	// Conflict with a newer row: nothing was returned.
	current, getErr := r.Get(ctx, params.Key)
	if getErr != nil {
		return nil, false, getErr
	}
	return current, false, nil
}
