// Package sqlite implements storage.Storage on SQLite using the pure Go
// modernc.org/sqlite driver. With the path ":memory:" the whole directory
// lives in process memory and disappears on Close.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"userdir/pkg/storage"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Options configures the SQLite store.
type Options struct {
	// Path is the database file, or MemoryPath.
	Path string
	// BusyTimeoutMillis is how long a writer waits on a locked database file.
	BusyTimeoutMillis int
}

// Store implements storage.Storage for SQLite.
type Store struct {
	DB      *sql.DB
	Builder *goqu.Database
}

var _ storage.Storage = (*Store)(nil)

// Open opens the database described by options and applies the embedded
// migrations.
func Open(ctx context.Context, options Options) (*Store, error) {
	path := strings.TrimSpace(options.Path)
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	inMemory := path == MemoryPath
	dsn := path
	if !inMemory {
		busy := options.BusyTimeoutMillis
		if busy <= 0 {
			busy = 5000
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", filepath.Clean(path), busy)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open sqlite db: %w", err)
	}
	if inMemory {
		// every connection to :memory: is a separate database, so keep exactly one alive
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}

	s := &Store{
		DB:      db,
		Builder: goqu.Dialect("sqlite3").DB(db),
	}
	if err := s.Ping(ctx); err != nil {
		_ = db.Close()

		return nil, err
	}
	if err := storage.Migrate(ctx, db, storage.DialectSQLite); err != nil {
		_ = db.Close()

		return nil, err
	}

	return s, nil
}

// Ping checks the database handle is usable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("could not ping sqlite: %w", err)
	}

	return nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	if err := s.DB.Close(); err != nil {
		return fmt.Errorf("could not close sqlite: %w", err)
	}

	return nil
}
