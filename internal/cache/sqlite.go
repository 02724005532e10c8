// Package cache persists HTTP responses between runs so conditional
// requests (ETag / Last-Modified) can be revalidated instead of refetched.
package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"

	_ "modernc.org/sqlite"
)

// Store is an httpcache.Cache backed by a SQLite file.
// Response dumps are stored zstd-compressed.
type Store struct {
	db     *sql.DB
	enc    *zstd.Encoder
	dec    *zstd.Decoder
	logger zerolog.Logger
}

// Open opens (or creates) the cache database at dbPath.
func Open(dbPath string, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache db: %w", err)
	}
	// One connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate cache db: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &Store{db: db, enc: enc, dec: dec, logger: logger}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS responses (
		key TEXT PRIMARY KEY,
		body BLOB NOT NULL,
		stored_at DATETIME NOT NULL
	);`)
	return err
}

// Get returns the cached response dump for key.
func (s *Store) Get(key string) ([]byte, bool) {
	var compressed []byte
	err := s.db.QueryRow(`SELECT body FROM responses WHERE key = ?`, key).Scan(&compressed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return nil, false
	}

	body, err := s.dec.DecodeAll(compressed, nil)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache entry corrupt, dropping")
		s.Delete(key)
		return nil, false
	}
	return body, true
}

// Set stores a response dump under key, replacing any previous entry.
func (s *Store) Set(key string, body []byte) {
	compressed := s.enc.EncodeAll(body, nil)
	_, err := s.db.Exec(`
		INSERT INTO responses (key, body, stored_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET body = excluded.body, stored_at = excluded.stored_at
	`, key, compressed, time.Now().UTC())
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// Delete removes key from the cache.
func (s *Store) Delete(key string) {
	if _, err := s.db.Exec(`DELETE FROM responses WHERE key = ?`, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache delete failed")
	}
}

// Close releases the codec resources and the database handle.
func (s *Store) Close() error {
	s.enc.Close()
	s.dec.Close()
	return s.db.Close()
}
