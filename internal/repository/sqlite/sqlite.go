// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// The inventory is a single local file (inventory.db by default). SQLite is an
// embedded database: no server to install, the whole table travels with the file,
// and ":memory:" gives every test its own throwaway database.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed and
// cross-compilation becomes painful. modernc.org/sqlite is a pure Go translation
// of the SQLite C code. No C compiler needed, works everywhere Go works.
//
// DATABASE/SQL OVERVIEW:
//   - sql.DB     : a connection pool (NOT a single connection!)
//   - sql.Row    : a single result row
//   - sql.Rows   : multiple result rows (must be closed!)
//
// Every repository method borrows a connection from the pool for exactly one
// statement and gives it back on every exit path, including errors.
package sqlite

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pressly/goose/v3"

	// BLANK IMPORT:
	// The sqlite package's init() registers itself with database/sql as a
	// driver named "sqlite". item.go imports the same package by name to
	// inspect driver error codes.
	_ "modernc.org/sqlite"
)

// migrations holds the goose SQL files compiled into the binary.
// go:embed means the binary never depends on a migrations/ directory at runtime.
//
//go:embed migrations/*.sql
var migrations embed.FS

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn   *sql.DB
	logger *slog.Logger
}

// New opens the SQLite database at dbPath and initializes the schema.
//
// dbPath examples:
//   - "inventory.db"  → file-based database (persistent)
//   - ":memory:"      → in-memory database (great for tests, lost on close)
//
// INITIALIZATION:
// Creating the items table is idempotent and happens exactly once, here, when
// the store is constructed. If it fails, New returns the error; a store whose
// table could not be created is never handed to a caller.
func New(dbPath string, logger *slog.Logger) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// ONE CONNECTION:
	// This is a single-user tool and SQLite allows one writer at a time.
	// A single pooled connection also keeps ":memory:" databases alive and
	// shared: with two connections, each would see its own empty database.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	// Ping forces the first real connection so a bad path or a permissions
	// problem surfaces here instead of on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL (Write-Ahead Logging) mode lets readers keep reading while a write
	// is in progress, e.g. a second copy of the tool opened on the same file.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn, logger: logger}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	logger.Debug("database initialized", slog.String("path", dbPath))
	return db, nil
}

// Close closes the database connection pool.
//
// ALWAYS DEFER CLOSE:
//
//	db, err := sqlite.New("inventory.db", logger)
//	if err != nil { ... }
//	defer db.Close()
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate applies the embedded goose migrations.
//
// The first migration uses CREATE TABLE IF NOT EXISTS, so a database file that
// already has an items table (for example one written by an older version of
// the tool) is adopted as-is; goose only records the version in its own
// goose_db_version table.
func (db *DB) migrate() error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{logger: db.logger})

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.Up(db.conn, "migrations"); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// gooseLogger routes goose output into slog. goose prints to stdout by
// default, which would draw over the terminal UI.
type gooseLogger struct {
	logger *slog.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "goose"))
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "goose"))
	os.Exit(1)
}
