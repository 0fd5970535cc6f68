// Package serverdb is the SQLite backend of the document service.
package serverdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"
)

// DefaultDriver is the pure-Go SQLite driver. cgo builds of cmd/docstore also
// register "sqlite3" (mattn/go-sqlite3).
const DefaultDriver = "sqlite"

// connPragmas are applied to every new database handle. Only the first two
// are required to succeed.
var connPragmas = []struct {
	stmt     string
	required bool
}{
	{"PRAGMA journal_mode=WAL", true},
	{"PRAGMA busy_timeout=5000", true},
	{"PRAGMA synchronous=NORMAL", false},
}

// ServerDB stores document collections in a single SQLite file.
type ServerDB struct {
	conn   *sql.DB
	path   string
	driver string
}

// Open opens (creating if needed) the database at dbPath with DefaultDriver.
func Open(dbPath string) (*ServerDB, error) {
	return OpenWithDriver(DefaultDriver, dbPath)
}

// OpenWithDriver opens dbPath with a registered database/sql driver, creates
// the schema and applies pending migrations.
func OpenWithDriver(driver, dbPath string) (*ServerDB, error) {
	if driver == "" {
		driver = DefaultDriver
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	conn, err := sql.Open(driver, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	// SQLite allows a single writer; one connection also keeps :memory: stable.
	conn.SetMaxOpenConns(1)

	db := &ServerDB{conn: conn, path: dbPath, driver: driver}
	if err := db.init(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *ServerDB) init() error {
	for _, p := range connPragmas {
		if _, err := db.conn.Exec(p.stmt); err != nil {
			if p.required {
				return fmt.Errorf("%s: %w", p.stmt, err)
			}
			slog.Debug("optional pragma failed", "pragma", p.stmt, "err", err)
		}
	}
	if _, err := db.conn.Exec(serverSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := db.RunMigrations(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Driver returns the database/sql driver in use.
func (db *ServerDB) Driver() string {
	return db.driver
}

// Ping checks the database connection is alive.
func (db *ServerDB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close checkpoints the WAL and closes the database.
func (db *ServerDB) Close() error {
	if _, err := db.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		slog.Debug("wal checkpoint", "path", db.path, "err", err)
	}
	return db.conn.Close()
}

// RunMigrations applies migrations newer than the recorded schema version
// and returns how many ran. Each migration commits together with its version
// stamp.
func (db *ServerDB) RunMigrations() (int, error) {
	current := db.SchemaVersion()
	ran := 0
	for _, m := range Migrations {
		if m.Version <= current {
			continue
		}
		if err := db.migrate(m); err != nil {
			return ran, err
		}
		slog.Debug("migrated document db", "version", m.Version, "desc", m.Description)
		ran++
	}
	if current < ServerSchemaVersion {
		if err := setSchemaVersion(db.conn, ServerSchemaVersion); err != nil {
			return ran, err
		}
	}
	return ran, nil
}

func (db *ServerDB) migrate(m Migration) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(m.SQL); err != nil {
		return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
	}
	if err := setSchemaVersion(tx, m.Version); err != nil {
		return fmt.Errorf("stamp version %d: %w", m.Version, err)
	}
	return tx.Commit()
}

// SchemaVersion returns the recorded schema version, or 0 for a new database.
func (db *ServerDB) SchemaVersion() int {
	var raw string
	if err := db.conn.QueryRow(`SELECT value FROM schema_info WHERE key = 'version'`).Scan(&raw); err != nil {
		return 0
	}
	v, _ := strconv.Atoi(raw)
	return v
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func setSchemaVersion(e execer, version int) error {
	_, err := e.Exec(`INSERT OR REPLACE INTO schema_info (key, value) VALUES ('version', ?)`, strconv.Itoa(version))
	return err
}
