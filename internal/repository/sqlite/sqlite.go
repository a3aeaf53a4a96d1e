// Package sqlite implements the repository interfaces on an embedded SQLite
// database via modernc.org/sqlite (pure Go, no CGo).
//
// The schema carries the data-consistency rules of the domain so they hold
// even when application-level pre-checks race:
//
//   - UNIQUE(username), UNIQUE(email) on users
//   - UNIQUE(slug) on categories and genres
//   - UNIQUE(title_id, author_id) on reviews — one review per user per title
//   - ON DELETE CASCADE: title → reviews → comments, user → reviews/comments
//   - ON DELETE SET NULL: title.category_id when the category is deleted
//
// Constraint violations are translated into apperror values in each method,
// so the service layer never sees a raw driver error for a client mistake.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// DB wraps a sql.DB pool and implements every repository interface.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and applies the schema.
// Use ":memory:" for a throwaway instance in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight. Foreign keys are
	// off by default in SQLite and must be switched on per connection —
	// without them none of the CASCADE/SET NULL rules fire.
	//
	// The pool is capped at one connection so the PRAGMAs apply to every
	// statement; with ":memory:" it also keeps all queries on the same
	// database instance.
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id                TEXT PRIMARY KEY,
			username          TEXT NOT NULL UNIQUE,
			email             TEXT NOT NULL UNIQUE,
			first_name        TEXT NOT NULL DEFAULT '',
			last_name         TEXT NOT NULL DEFAULT '',
			bio               TEXT NOT NULL DEFAULT '',
			role              TEXT NOT NULL DEFAULT 'user',
			is_superuser      INTEGER NOT NULL DEFAULT 0,
			confirmation_code TEXT NOT NULL DEFAULT '',
			created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS categories (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS genres (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS titles (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			year        INTEGER,
			description TEXT NOT NULL DEFAULT '',
			category_id TEXT REFERENCES categories(id) ON DELETE SET NULL
		);
		CREATE INDEX IF NOT EXISTS idx_titles_category ON titles(category_id);

		CREATE TABLE IF NOT EXISTS title_genres (
			title_id TEXT NOT NULL REFERENCES titles(id) ON DELETE CASCADE,
			genre_id TEXT NOT NULL REFERENCES genres(id) ON DELETE CASCADE,
			PRIMARY KEY (title_id, genre_id)
		);

		CREATE TABLE IF NOT EXISTS reviews (
			id        TEXT PRIMARY KEY,
			title_id  TEXT NOT NULL REFERENCES titles(id) ON DELETE CASCADE,
			author_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			text      TEXT NOT NULL,
			score     INTEGER NOT NULL CHECK (score BETWEEN 1 AND 10),
			pub_date  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (title_id, author_id)
		);
		CREATE INDEX IF NOT EXISTS idx_reviews_title ON reviews(title_id);

		CREATE TABLE IF NOT EXISTS comments (
			id        TEXT PRIMARY KEY,
			review_id TEXT NOT NULL REFERENCES reviews(id) ON DELETE CASCADE,
			author_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			text      TEXT NOT NULL,
			pub_date  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_comments_review ON comments(review_id);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite unique-constraint error.
//
// modernc.org/sqlite returns its own error type; matching on the message is
// the portable way to detect SQLITE_CONSTRAINT_UNIQUE without importing the
// driver's internals.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// clampList bounds pagination parameters to sane values.
func clampList(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// errIsNoRows is a readability helper: database/sql does not wrap ErrNoRows,
// but errors.Is still matches it directly.
func errIsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
