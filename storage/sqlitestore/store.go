// Package sqlitestore persists secrets in a local SQLite file.
package sqlitestore

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/potencialize/dashboard/core/auth"
)

const schema = `
CREATE TABLE IF NOT EXISTS secret (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);`

type Store struct {
	db *sqlx.DB
}

var _ auth.SecretStore = (*Store)(nil)

// Open opens (or creates) the secrets file at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, errors.Wrap(err, "creating store directory")
		}
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening sqlite store")
	}
	// a single writer avoids SQLITE_BUSY between goroutines
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating secret table")
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM secret WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", auth.ErrSecretNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "reading secret %q", key)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO secret (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Unix(),
	)
	return errors.Wrapf(err, "storing secret %q", key)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM secret WHERE key = ?`, key)
	if err != nil {
		return errors.Wrapf(err, "deleting secret %q", key)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return auth.ErrSecretNotFound
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }
