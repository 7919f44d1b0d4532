package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// lockKey serializes concurrent migrators (several API replicas booting at once).
const lockKey int64 = 0x76657273 // "vers"

// Status reports whether one embedded migration has been applied.
type Status struct {
	Version   string
	Applied   bool
	AppliedAt *time.Time
}

// Run applies all SQL migrations embedded in this package. It is safe to call multiple times.
func Run(ctx context.Context, db *sql.DB) error {
	logger := slog.Default().With("component", "migrations")

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire conn: %w", err)
	}
	defer conn.Close()

	if _, err = conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, lockKey); err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}
	defer func() {
		// Use a fresh context so the lock is released even when ctx is canceled.
		if _, unlockErr := conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockKey); unlockErr != nil {
			logger.WarnContext(ctx, "failed to release migration lock", "error", unlockErr)
		}
	}()

	if err = ensureTable(ctx, conn); err != nil {
		return err
	}

	files, err := migrationFiles()
	if err != nil {
		return err
	}

	applied := 0
	for _, f := range files {
		ok, applyErr := applyMigration(ctx, conn, f, logger)
		if applyErr != nil {
			return applyErr
		}
		if ok {
			applied++
		}
	}
	logger.InfoContext(ctx, "migrations complete", "applied", applied, "total", len(files))
	return nil
}

// Pending returns the status of every embedded migration in version order.
func Pending(ctx context.Context, db *sql.DB) ([]Status, error) {
	files, err := migrationFiles()
	if err != nil {
		return nil, err
	}

	appliedAt := make(map[string]time.Time, len(files))
	rows, err := db.QueryContext(ctx, `SELECT version, applied_at FROM schema_migrations`)
	if err != nil && !isUndefinedTable(err) {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var (
				v  string
				at time.Time
			)
			if scanErr := rows.Scan(&v, &at); scanErr != nil {
				return nil, fmt.Errorf("scan applied migration: %w", scanErr)
			}
			appliedAt[v] = at
		}
		if rowsErr := rows.Err(); rowsErr != nil {
			return nil, fmt.Errorf("iterate applied migrations: %w", rowsErr)
		}
	}

	out := make([]Status, 0, len(files))
	for _, f := range files {
		st := Status{Version: version(f)}
		if at, ok := appliedAt[st.Version]; ok {
			st.Applied = true
			st.AppliedAt = &at
		}
		out = append(out, st)
	}
	return out, nil
}

func ensureTable(ctx context.Context, conn *sql.Conn) error {
	if _, err := conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}
	return nil
}

func migrationFiles() ([]string, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func version(file string) string { return strings.TrimSuffix(file, ".sql") }

// isUndefinedTable reports a missing schema_migrations table on a fresh database.
func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable
}

func applyMigration(ctx context.Context, conn *sql.Conn, file string, logger *slog.Logger) (bool, error) {
	v := version(file)

	var exists bool
	if err := conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, v,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check migration %s: %w", file, err)
	}
	if exists {
		return false, nil
	}

	sqlBytes, err := migrationsFS.ReadFile("migrations/" + file)
	if err != nil {
		return false, fmt.Errorf("read migration %s: %w", file, err)
	}

	logger.InfoContext(ctx, "applying migration", "version", v)

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			logger.ErrorContext(ctx, "failed to rollback transaction", "err", rollbackErr, "migration_file", file)
		}
	}()

	if _, err = tx.ExecContext(ctx, string(sqlBytes)); err != nil {
		return false, fmt.Errorf("exec migration %s: %w", file, err)
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, v); err != nil {
		return false, fmt.Errorf("record migration %s: %w", file, err)
	}
	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit migration %s: %w", file, err)
	}
	return true, nil
}
