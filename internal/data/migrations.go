package data

import (
	"context"
	"database/sql"

	"github.com/versetype/versetype-api/internal/migrate"
)

// RunMigrations executes database migrations to set up the required schema by delegating to the migrate package.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate.Run(ctx, db)
}

// MigrationStatus lists every embedded migration and whether it has been applied.
func MigrationStatus(ctx context.Context, db *sql.DB) ([]migrate.Status, error) {
	return migrate.Pending(ctx, db)
}
