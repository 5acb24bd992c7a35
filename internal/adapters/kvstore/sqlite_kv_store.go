package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SQLite backed key-value store over the kv_store table.
type SqliteKVStore struct {
	DB *sql.DB
}

func NewSqliteKVStore(db *sql.DB) *SqliteKVStore {
	return &SqliteKVStore{DB: db}
}

func (s *SqliteKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.DB == nil {
		return "", false, errors.New("kv store: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return "", false, errors.New("get kv store: key must not be empty")
	}

	var value string
	err := s.DB.QueryRowContext(ctx, `
	SELECT value
    FROM kv_store
    WHERE key = ?;
	`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get kv store key=%q: %w", key, err)
	}

	return value, true, nil
}

func (s *SqliteKVStore) Set(ctx context.Context, key string, value string) error {
	if s.DB == nil {
		return errors.New("kv store: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return errors.New("insert kv store: key must not be empty")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO kv_store (
        key,
        value,
        updated_at
    )
    VALUES (?, ?, CURRENT_TIMESTAMP);
	`, key, value)
	if err != nil {
		return fmt.Errorf("insert kv store key=%q: %w", key, err)
	}

	return nil
}

func (s *SqliteKVStore) Remove(ctx context.Context, key string) error {
	if s.DB == nil {
		return errors.New("kv store: db is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?;`, key); err != nil {
		return fmt.Errorf("delete kv store key=%q: %w", key, err)
	}

	return nil
}
