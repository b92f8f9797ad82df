// Package store persists quick-post items, taxonomy terms and field values in
// a local sqlite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-quickpost/pkg/fields"
	"github.com/goliatone/go-quickpost/pkg/savehook"
	"github.com/goliatone/go-quickpost/pkg/taxonomy"

	_ "modernc.org/sqlite"
)

// Compile-time contract assertions for the capabilities the store provides.
var (
	_ fields.Updater               = (*Store)(nil)
	_ fields.Reader                = (*Store)(nil)
	_ taxonomy.TermSource          = (*Store)(nil)
	_ savehook.ContentTypeResolver = (*Store)(nil)
)

// ErrNotFound is returned when an item does not exist.
var ErrNotFound = errors.New("store: not found")

// Payload data keys the store reads when persisting an item.
const (
	KeyTitle   = "post_title"
	KeyContent = "post_content"
	KeyType    = "post_type"
)

// Post is a persisted content item.
type Post struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Option customises a Store.
type Option func(*Store)

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store is a sqlite-backed item, term and field store.
type Store struct {
	db       *sql.DB
	registry taxonomy.Registry
	logger   *zap.Logger
	now      func() time.Time
}

// Open opens (creating when missing) the database at path and applies the
// schema. registry decides how submitted term values are interpreted.
func Open(ctx context.Context, path string, registry taxonomy.Registry, options ...Option) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store: database path is required")
	}
	// modernc.org/sqlite registers the "sqlite" driver.
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases coherent and serializes
	// writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("store: apply %q: %w", p, err)
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{
		db:       db,
		registry: registry,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SetRegistry swaps the taxonomy registry, used when definitions reload.
func (s *Store) SetRegistry(registry taxonomy.Registry) {
	s.registry = registry
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS posts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type TEXT NOT NULL DEFAULT 'post',
			title TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS terms (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			taxonomy TEXT NOT NULL,
			name TEXT NOT NULL,
			parent INTEGER NOT NULL DEFAULT 0,
			UNIQUE(taxonomy, name, parent)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_terms_taxonomy ON terms(taxonomy, name);`,
		`CREATE TABLE IF NOT EXISTS term_relationships (
			post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			term_id INTEGER NOT NULL REFERENCES terms(id) ON DELETE CASCADE,
			term_order INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY(post_id, term_id)
		);`,
		`CREATE TABLE IF NOT EXISTS fields (
			post_id INTEGER NOT NULL,
			field_key TEXT NOT NULL,
			value_json TEXT NOT NULL,
			PRIMARY KEY(post_id, field_key)
		);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	return nil
}
