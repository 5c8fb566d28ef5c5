package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLite stores values in the kv table of the workspace database.
type SQLite struct {
	DB  *sql.DB
	Now func() time.Time
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{DB: db, Now: time.Now}
}

func (s *SQLite) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var payload string
	err := s.DB.QueryRowContext(ctx, `SELECT value_json FROM kv WHERE key=?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(payload), nil
}

func (s *SQLite) Put(ctx context.Context, key string, value []byte) error {
	now := s.now().UTC().Format(time.RFC3339)
	_, err := s.DB.ExecContext(ctx, `INSERT INTO kv(key,value_json,updated_at) VALUES (?,?,?)
ON CONFLICT(key) DO UPDATE SET value_json=excluded.value_json, updated_at=excluded.updated_at`, key, string(value), now)
	return err
}

func (s *SQLite) Close() error {
	return s.DB.Close()
}
