package postgres

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationStatus describes the applied state of one migration.
type MigrationStatus struct {
	Version int
	Name    string
	Applied bool
}

// Migrate applies all pending migrations in version order.
func (db *DB) Migrate(ctx context.Context) error {
	if err := db.ensureMigrationsTable(ctx); err != nil {
		return err
	}

	current, err := db.currentVersion(ctx)
	if err != nil {
		return err
	}

	migrations, err := listMigrations("up")
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		sql, err := migrationsFS.ReadFile(m.path)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", m.path, err)
		}

		if _, err := db.Pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", m.version, err)
		}

		if _, err := db.Pool.Exec(ctx,
			`INSERT INTO schema_migrations (version) VALUES ($1)`, m.version,
		); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}

		db.logger.Info().Int("version", m.version).Str("name", m.name).Msg("applied migration")
	}

	return nil
}

// Rollback reverts the most recently applied migration.
func (db *DB) Rollback(ctx context.Context) error {
	if err := db.ensureMigrationsTable(ctx); err != nil {
		return err
	}

	current, err := db.currentVersion(ctx)
	if err != nil {
		return err
	}
	if current == 0 {
		return fmt.Errorf("no migrations to roll back")
	}

	migrations, err := listMigrations("down")
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version != current {
			continue
		}

		sql, err := migrationsFS.ReadFile(m.path)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", m.path, err)
		}

		if _, err := db.Pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("failed to roll back migration %d: %w", m.version, err)
		}

		if _, err := db.Pool.Exec(ctx,
			`DELETE FROM schema_migrations WHERE version = $1`, m.version,
		); err != nil {
			return fmt.Errorf("failed to unrecord migration %d: %w", m.version, err)
		}

		db.logger.Info().Int("version", m.version).Str("name", m.name).Msg("rolled back migration")
		return nil
	}

	return fmt.Errorf("no down migration found for version %d", current)
}

// Status returns the applied state of every known migration.
func (db *DB) Status(ctx context.Context) ([]MigrationStatus, error) {
	if err := db.ensureMigrationsTable(ctx); err != nil {
		return nil, err
	}

	current, err := db.currentVersion(ctx)
	if err != nil {
		return nil, err
	}

	migrations, err := listMigrations("up")
	if err != nil {
		return nil, err
	}

	statuses := make([]MigrationStatus, 0, len(migrations))
	for _, m := range migrations {
		statuses = append(statuses, MigrationStatus{
			Version: m.version,
			Name:    m.name,
			Applied: m.version <= current,
		})
	}

	return statuses, nil
}

func (db *DB) ensureMigrationsTable(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func (db *DB) currentVersion(ctx context.Context) (int, error) {
	var version int
	err := db.Pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`,
	).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get current migration version: %w", err)
	}
	return version, nil
}

type migrationFile struct {
	version int
	name    string
	path    string
}

// listMigrations returns the embedded migrations of the given direction
// (up or down), sorted by version. Files are named
// NNNNNN_name.<direction>.sql.
func listMigrations(direction string) ([]migrationFile, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	suffix := "." + direction + ".sql"
	var migrations []migrationFile
	for _, entry := range entries {
		filename := entry.Name()
		if !strings.HasSuffix(filename, suffix) {
			continue
		}

		base := strings.TrimSuffix(filename, suffix)
		parts := strings.SplitN(base, "_", 2)
		if len(parts) != 2 {
			continue
		}

		version, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}

		migrations = append(migrations, migrationFile{
			version: version,
			name:    parts[1],
			path:    "migrations/" + filename,
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].version < migrations[j].version
	})

	return migrations, nil
}
