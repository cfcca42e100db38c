// Package store persists notes in SQLite using the SQLCipher driver.
// Setting a database key encrypts the file at rest; with no key the driver
// behaves as plain SQLite. All access paths filter by owner so a caller can
// never observe another user's rows.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	// SQLite driver with SQLCipher support (requires CGO_ENABLED=1)
	_ "github.com/mutecomm/go-sqlcipher/v4"
)

const (
	// MaxOpenConns keeps the pool small; SQLite is single-writer.
	MaxOpenConns = 4

	// MaxIdleConns is the idle pool size for the shared database.
	MaxIdleConns = 2
)

// NoteRecord is a persisted note row. Timestamps are unix seconds UTC.
type NoteRecord struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	CreatedAt int64
	UpdatedAt int64
}

// DB wraps the shared notes database connection pool.
type DB struct {
	db *sql.DB
}

// Open opens (creating if needed) the notes database at path and applies the
// schema. hexKey, when non-empty, must be 64 hex characters and enables
// SQLCipher encryption. Pass ":memory:" for an in-process test database.
func Open(path, hexKey string) (*DB, error) {
	inMemory := path == ":memory:" || strings.HasPrefix(path, "file::memory:")
	if !inMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite3", buildDSN(path, hexKey))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if inMemory {
		// An in-memory database exists per connection; a second pooled
		// connection would see an empty schema.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(MaxOpenConns)
		sqlDB.SetMaxIdleConns(MaxIdleConns)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := sqlDB.Exec(schema); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{db: sqlDB}, nil
}

func buildDSN(path, hexKey string) string {
	params := url.Values{}
	params.Set("_busy_timeout", "5000")
	if hexKey != "" {
		params.Set("_pragma_key", fmt.Sprintf("x'%s'", hexKey))
		params.Set("_pragma_cipher_page_size", "4096")
	}
	return path + "?" + params.Encode()
}

// OpenInMemory opens a fresh unencrypted in-memory database for tests.
func OpenInMemory() (*DB, error) {
	return Open(":memory:", "")
}

// Close closes the underlying connection pool.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping reports store reachability.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// InsertNote persists a new note row.
func (d *DB) InsertNote(ctx context.Context, rec NoteRecord) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO notes (id, user_id, title, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Title, rec.Content, rec.CreatedAt, rec.UpdatedAt,
	)
	return err
}

// GetNote returns the note matching both id and owner.
// Returns sql.ErrNoRows for absent ids and for rows owned by someone else.
func (d *DB) GetNote(ctx context.Context, id, userID string) (NoteRecord, error) {
	var rec NoteRecord
	err := d.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, content, created_at, updated_at
		 FROM notes WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.Content, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return NoteRecord{}, err
	}
	return rec, nil
}

// ListNotes returns all of the user's notes, most recently updated first.
// Ties are broken by created_at then id so the order is stable.
func (d *DB) ListNotes(ctx context.Context, userID string) ([]NoteRecord, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, user_id, title, content, created_at, updated_at
		 FROM notes WHERE user_id = ?
		 ORDER BY updated_at DESC, created_at DESC, id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []NoteRecord
	for rows.Next() {
		var rec NoteRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.Content, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// UpdateNote replaces title and content of the note matching id and owner,
// refreshing updated_at. Returns false when no owned row matched.
func (d *DB) UpdateNote(ctx context.Context, id, userID, title, content string, updatedAt int64) (bool, error) {
	res, err := d.db.ExecContext(ctx,
		`UPDATE notes SET title = ?, content = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		title, content, updatedAt, id, userID,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// DeleteNote removes the note matching id and owner.
// Returns false when no owned row matched.
func (d *DB) DeleteNote(ctx context.Context, id, userID string) (bool, error) {
	res, err := d.db.ExecContext(ctx,
		`DELETE FROM notes WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
