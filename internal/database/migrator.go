package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	tern "github.com/jackc/tern/v2/migrate"
)

// Both dialects ship inside the binary.
//
//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// Migrate brings the schema up to date.
//
// Postgres uses jackc/tern with the version tracked in schema_version.
// SQLite runs the idempotent scripts under migrations/sqlite in name order.
// Any failure wraps ErrStorageUnavailable.
func (db *Database) Migrate(ctx context.Context) error {
	var err error
	switch {
	case db.Pool != nil:
		err = db.migratePostgres(ctx)
	case db.SQL != nil:
		err = db.migrateSQLite(ctx)
	default:
		err = fmt.Errorf("database not initialized")
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return nil
}

func (db *Database) migratePostgres(ctx context.Context) error {
	// tern needs a plain *pgx.Conn; borrow one from the pool for the run.
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection for migrations: %w", err)
	}
	defer conn.Release()

	m, err := tern.NewMigrator(ctx, conn.Conn(), "schema_version")
	if err != nil {
		return fmt.Errorf("constructing database migrator: %w", err)
	}

	subtree, err := fs.Sub(migrations, "migrations/postgres")
	if err != nil {
		return fmt.Errorf("retrieving database migrations subtree: %w", err)
	}

	if err := m.LoadMigrations(subtree); err != nil {
		return fmt.Errorf("loading database migrations: %w", err)
	}

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current database migration version: %w", err)
	}

	if err := m.Migrate(ctx); err != nil {
		return fmt.Errorf("applying database migrations: %w", err)
	}

	if from == int32(len(m.Migrations)) {
		db.log.Info().Msgf("database schema up to date, version %d", len(m.Migrations))
	} else {
		db.log.Info().Msgf("migrated database schema, from %d to %d", from, len(m.Migrations))
	}
	return nil
}

func (db *Database) migrateSQLite(ctx context.Context) error {
	names, err := fs.Glob(migrations, "migrations/sqlite/*.sql")
	if err != nil {
		return fmt.Errorf("listing sqlite migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		script, err := migrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}
		if _, err := db.SQL.ExecContext(ctx, string(script)); err != nil {
			return fmt.Errorf("applying %s: %w", name, err)
		}
	}

	db.log.Info().Int("scripts", len(names)).Msg("sqlite schema ensured")
	return nil
}
