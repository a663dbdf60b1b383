// Package catalog is the SQLite-backed transaction catalog and product master.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/kailas-cloud/matsearch/internal/db"
	"github.com/kailas-cloud/matsearch/internal/repository/catalog/migrations"
)

// MemoryPath opens a private in-memory catalog.
const MemoryPath = ":memory:"

// Config holds catalog store settings.
type Config struct {
	Path string `yaml:"path"`
}

// Store is the catalog repository.
type Store struct {
	db   *sql.DB
	path string
}

// New opens the catalog at cfg.Path and applies pending migrations.
func New(cfg Config) (*Store, error) {
	if err := registerFunctions(); err != nil {
		return nil, fmt.Errorf("register sql functions: %w", err)
	}

	dsn := MemoryPath
	if cfg.Path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o750); err != nil {
			return nil, fmt.Errorf("create catalog directory: %w", err)
		}
		dsn = cfg.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if cfg.Path == MemoryPath {
		// every pooled connection would otherwise see its own empty database
		conn.SetMaxOpenConns(1)
	}

	s := &Store{db: conn, path: cfg.Path}
	if err := s.migrate(migrations.FS); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &db.Error{Op: db.OpSQLQuery, Err: err}
	}
	return nil
}

func (s *Store) migrate(fsys fs.FS) error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return &db.Error{Op: db.OpSQLMigrate, Err: err}
	}

	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return &db.Error{Op: db.OpSQLMigrate, Err: err}
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	var files []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil || version <= current {
			continue
		}
		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(body)); err != nil {
			return &db.Error{Op: db.OpSQLMigrate, Err: fmt.Errorf("%s: %w", name, err)}
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return &db.Error{Op: db.OpSQLMigrate, Err: err}
		}
	}
	return nil
}
