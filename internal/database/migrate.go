package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationsFS embed.FS

// Migration is one versioned schema change.
type Migration struct {
	Version    string
	Statements []string
}

// LoadMigrations returns the embedded migrations for driver in version order.
func LoadMigrations(driver Driver) ([]Migration, error) {
	dir := path.Join("migrations", string(driver))
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("could not read migrations for %s: %w", driver, err)
	}

	var migrations []Migration
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		content, err := fs.ReadFile(migrationsFS, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("could not read migration file %s: %w", name, err)
		}
		migrations = append(migrations, Migration{
			Version:    strings.TrimSuffix(name, ".up.sql"),
			Statements: splitStatements(string(content)),
		})
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

// splitStatements splits a script on semicolons that end a line. Oracle
// rejects both multiple statements per call and a trailing semicolon.
func splitStatements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(strings.ReplaceAll(script, "\r\n", "\n"), ";\n") {
		stmt = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(stmt), ";"))
		if stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// RunMigrations applies every migration not yet recorded in schema_migrations.
func RunMigrations(ctx context.Context, db *sqlx.DB, driver Driver, logger *zap.Logger) error {
	migrations, err := LoadMigrations(driver)
	if err != nil {
		return err
	}
	if err := ensureVersionTable(ctx, db, driver); err != nil {
		return err
	}

	var applied []string
	if err := db.SelectContext(ctx, &applied, "SELECT version FROM schema_migrations"); err != nil {
		return fmt.Errorf("could not read applied migrations: %w", err)
	}
	done := make(map[string]struct{}, len(applied))
	for _, v := range applied {
		done[v] = struct{}{}
	}

	insert := db.Rebind("INSERT INTO schema_migrations (version) VALUES (?)")
	for _, m := range migrations {
		if _, ok := done[m.Version]; ok {
			continue
		}
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("could not begin migration %s: %w", m.Version, err)
		}
		for _, stmt := range m.Statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("could not execute migration %s: %w", m.Version, err)
			}
		}
		if _, err := tx.ExecContext(ctx, insert, m.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("could not record migration %s: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("could not commit migration %s: %w", m.Version, err)
		}
		logger.Info("Executed migration", zap.String("version", m.Version), zap.String("driver", string(driver)))
	}
	return nil
}

func ensureVersionTable(ctx context.Context, db *sqlx.DB, driver Driver) error {
	if driver != DriverOracle {
		_, err := db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_migrations (version VARCHAR(255) PRIMARY KEY)")
		if err != nil {
			return fmt.Errorf("could not create schema_migrations: %w", err)
		}
		return nil
	}

	var count int
	if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM user_tables WHERE table_name = 'SCHEMA_MIGRATIONS'"); err != nil {
		return fmt.Errorf("could not inspect schema_migrations: %w", err)
	}
	if count > 0 {
		return nil
	}
	if _, err := db.ExecContext(ctx, "CREATE TABLE schema_migrations (version VARCHAR2(255) PRIMARY KEY)"); err != nil {
		return fmt.Errorf("could not create schema_migrations: %w", err)
	}
	return nil
}
