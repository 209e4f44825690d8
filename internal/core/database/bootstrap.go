package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/markdave123-py/weddingkb/internal/core"
)

//go:embed scripts/initdb.sql
var bootstrapFS embed.FS

// schemaVersion is the version row written by scripts/initdb.sql.
const schemaVersion = 1

const bootstrapTimeout = 3 * time.Minute

// EnsureBootstrapped applies scripts/initdb.sql unless weddingkb_meta already records
// schemaVersion. The script is idempotent, so a half-applied schema is simply rerun.
func EnsureBootstrapped(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
	defer cancel()

	current, err := schemaCurrent(ctx, db)
	if err != nil {
		return fmt.Errorf("%w: schema check: %v", core.ErrPersistence, err)
	}
	if current {
		logger.Debug("database: schema up to date", "version", schemaVersion)
		return nil
	}

	logger.Info("database: applying schema", "version", schemaVersion)
	start := time.Now()
	if err := applySchema(ctx, db); err != nil {
		return fmt.Errorf("%w: bootstrap schema v%d: %v", core.ErrPersistence, schemaVersion, err)
	}
	logger.Info("database: schema applied", "version", schemaVersion, "took", time.Since(start))
	return nil
}

// schemaCurrent reports whether the meta table exists and holds the expected version.
func schemaCurrent(ctx context.Context, db *sql.DB) (bool, error) {
	var hasMeta bool
	err := db.QueryRowContext(ctx, `
		SELECT EXISTS (
		  SELECT 1 FROM information_schema.tables
		  WHERE table_name = 'weddingkb_meta'
		)`).Scan(&hasMeta)
	if err != nil || !hasMeta {
		return false, err
	}

	var hasVersion bool
	err = db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM weddingkb_meta WHERE version = $1)`, schemaVersion).Scan(&hasVersion)
	return hasVersion, err
}

func applySchema(ctx context.Context, db *sql.DB) error {
	script, err := bootstrapFS.ReadFile("scripts/initdb.sql")
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, string(script)); err != nil {
		return err
	}
	return tx.Commit()
}
