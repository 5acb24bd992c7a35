package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"exsighting-location/internal/platform/obs"
	"fmt"
	"strings"
)

// SQLKVStore is a Postgres-backed key-value store over the kv_store table.
type SQLKVStore struct {
	DB *sql.DB
}

func NewSQLKVStore(db *sql.DB) *SQLKVStore {
	return &SQLKVStore{DB: db}
}

func (s *SQLKVStore) Get(ctx context.Context, key string) (_ string, _ bool, err error) {
	defer obs.Time(ctx, "kv.sql.Get")(&err)

	if s.DB == nil {
		return "", false, errors.New("kv store: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return "", false, errors.New("get kv store: key must not be empty")
	}

	var value string
	err = s.DB.QueryRowContext(ctx, `
	SELECT value
    FROM kv_store
    WHERE key = $1;
	`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get kv store key=%q: %w", key, err)
	}

	return value, true, nil
}

func (s *SQLKVStore) Set(ctx context.Context, key string, value string) (err error) {
	defer obs.Time(ctx, "kv.sql.Set")(&err)

	if s.DB == nil {
		return errors.New("kv store: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return errors.New("insert kv store: key must not be empty")
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO kv_store (key, value, updated_at)
    VALUES ($1, $2, now())
	ON CONFLICT (key) DO UPDATE
	SET value = EXCLUDED.value,
		updated_at = EXCLUDED.updated_at;
	`, key, value)
	if err != nil {
		return fmt.Errorf("insert kv store key=%q: %w", key, err)
	}

	return nil
}

func (s *SQLKVStore) Remove(ctx context.Context, key string) (err error) {
	defer obs.Time(ctx, "kv.sql.Remove")(&err)

	if s.DB == nil {
		return errors.New("kv store: db is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM kv_store WHERE key = $1;`, key); err != nil {
		return fmt.Errorf("delete kv store key=%q: %w", key, err)
	}

	return nil
}
