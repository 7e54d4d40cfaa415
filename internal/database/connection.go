package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/example/leitner/internal/config"
)

// DefaultSQLitePath returns ~/.leitner/leitner.db
func DefaultSQLitePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, config.DataDirName, "leitner.db"), nil
}

// Connect establishes a connection to the configured database
func Connect(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := cfg.DSN

	switch cfg.Driver {
	case config.DriverSQLite:
		if dsn == "" {
			path, err := DefaultSQLitePath()
			if err != nil {
				return nil, err
			}
			dsn = path
		}
		if err := ensureDataDir(dsn); err != nil {
			return nil, err
		}
	case config.DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("postgres requires a dsn")
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sqlx.Connect(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// SQLite doesn't support multiple writers; one connection also keeps :memory: a single database
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	log.Printf("Connected to %s database", cfg.Driver)
	return db, nil
}

// Open connects and brings the schema up to date
func Open(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// ensureDataDir creates the directory of a file-backed SQLite database
func ensureDataDir(dsn string) error {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}
