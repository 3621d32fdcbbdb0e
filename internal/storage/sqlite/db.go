// Package sqlite stores learners and their submission history in an
// embedded SQLite database.
package sqlite

import (
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/codelite/internal/storage/migrations"
	_ "github.com/mattn/go-sqlite3"
)

const versionTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version    INTEGER PRIMARY KEY,
	applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
)`

// DB is a single-writer SQLite handle
type DB struct {
	*sql.DB
	path string
}

// Open connects to the database file at path in WAL mode with foreign keys on.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}

	// SQLite serializes writers; one connection avoids SQLITE_BUSY between them
	db.SetMaxOpenConns(1)

	return &DB{DB: db, path: path}, nil
}

// Ensure creates the parent directory of path, opens the database and
// brings the learner schema up to date. The handle is closed on failure.
func Ensure(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return db, nil
}

// Path returns the database file location
func (db *DB) Path() string {
	return db.path
}

// Migrate applies the embedded learner schema.
func (db *DB) Migrate() error {
	return db.MigrateFS(migrations.FS, ".")
}

// MigrateFS applies every migration in dir of fsys newer than the
// recorded schema version, each in its own transaction.
func (db *DB) MigrateFS(fsys fs.FS, dir string) error {
	if _, err := db.Exec(versionTable); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	current, err := db.Version()
	if err != nil {
		return err
	}

	pending, err := migrations.Pending(fsys, dir, current)
	if err != nil {
		return err
	}

	for _, m := range pending {
		if err := db.apply(m); err != nil {
			return err
		}
		slog.Info("applied migration", "name", m.Name, "version", m.Version, "driver", "sqlite")
	}

	if len(pending) > 0 {
		slog.Info("migrations complete", "applied", len(pending), "driver", "sqlite")
	}
	return nil
}

func (db *DB) apply(m migrations.Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx for migration %s: %w", m.Name, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.SQL); err != nil {
		return fmt.Errorf("apply migration %s: %w", m.Name, err)
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
		return fmt.Errorf("record migration %s: %w", m.Name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", m.Name, err)
	}
	return nil
}

// Version returns the highest applied migration, 0 on a fresh database.
func (db *DB) Version() (int, error) {
	var version int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version); err != nil {
		return 0, fmt.Errorf("get current version: %w", err)
	}
	return version, nil
}
