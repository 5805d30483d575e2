package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// DB is the sqlite persistence collaborator. It seeds the in-memory store at
// startup and absorbs writes from the sync worker; it is never read on the
// hot path.
type DB struct {
	db     *sql.DB
	logger *zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return &DB{db: db, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	query := `CREATE TABLE IF NOT EXISTS reservations (
        id INTEGER PRIMARY KEY,
        name TEXT NOT NULL,
        phone TEXT NOT NULL,
        email TEXT,
        date TEXT NOT NULL,
        time TEXT NOT NULL,
        party_size INTEGER NOT NULL,
        table_id TEXT,
        notes TEXT,
        status TEXT NOT NULL DEFAULT 'pending',
        created_at DATETIME NOT NULL
    )`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("create reservations table: %w", err)
	}

	index := `CREATE INDEX IF NOT EXISTS idx_reservations_date ON reservations(date)`
	if _, err := db.Exec(index); err != nil {
		return fmt.Errorf("create date index: %w", err)
	}

	return nil
}

func (d *DB) Close() error {
	return d.db.Close()
}
