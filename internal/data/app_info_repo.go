package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/versetype/versetype-api/internal/core"
)

// AppInfoRepo stores the single app_info row.
type AppInfoRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewAppInfoRepo creates a new AppInfoRepo with real time provider.
func NewAppInfoRepo(db *sql.DB) *AppInfoRepo {
	return &AppInfoRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

var _ core.AppInfoRepository = (*AppInfoRepo)(nil)

// LatestVersion returns the published version, or "" when none has been published.
func (r *AppInfoRepo) LatestVersion(ctx context.Context) (string, error) {
	var v string
	err := r.DB.QueryRowContext(ctx, `SELECT latest_version FROM app_info WHERE id = 1`).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", dbError("get latest version", err)
	}
	return v, nil
}

// SetLatestVersion publishes version.
func (r *AppInfoRepo) SetLatestVersion(ctx context.Context, version string) error {
	if _, err := r.DB.ExecContext(ctx, `
		INSERT INTO app_info (id, latest_version, updated_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE
		SET latest_version = EXCLUDED.latest_version,
			updated_at = EXCLUDED.updated_at`,
		version, r.timeProvider.Now().UTC(),
	); err != nil {
		return dbError("set latest version", err)
	}
	return nil
}
