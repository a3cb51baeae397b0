package database

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	"github.com/jmoiron/sqlx"
	_ "github.com/sijms/go-ora/v2" // driver: oracle
	_ "modernc.org/sqlite"         // driver: sqlite
)

// Driver names a supported database backend.
type Driver string

const (
	DriverOracle   Driver = "oracle"
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

func init() {
	// go-ora takes :name placeholders
	sqlx.BindDriver("oracle", sqlx.NAMED)
}

// sqlDriverName maps a backend to the database/sql driver registered for it.
func sqlDriverName(driver Driver) (string, error) {
	switch driver {
	case DriverOracle:
		return "oracle", nil
	case DriverPostgres:
		return "pgx", nil
	case DriverSQLite:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("unsupported driver: %s", driver)
	}
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, driver Driver, dsn string) (*sqlx.DB, error) {
	name, err := sqlDriverName(driver)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if driver == DriverSQLite {
		// a single writer avoids SQLITE_BUSY on concurrent imports
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}
	return db, nil
}
