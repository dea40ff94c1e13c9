// Package storage implements the durable session tier: a token survives
// process restarts until it is deleted or its time to live elapses.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// TokenStore keeps session tokens in a SQLite database.
type TokenStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewTokenStore opens (creating if needed) the database at dbPath and runs
// the migrations. A ttl of zero keeps tokens until they are deleted.
func NewTokenStore(dbPath string, ttl time.Duration) (*TokenStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &TokenStore{db: db, ttl: ttl, now: time.Now}, nil
}

func (s *TokenStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *TokenStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *TokenStore) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value     string
		expiresAt sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM session_tokens WHERE key = ?`, key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get token %q: %w", key, err)
	}

	if expiresAt.Valid && s.now().Unix() >= expiresAt.Int64 {
		if err := s.Delete(ctx, key); err != nil {
			slog.WarnContext(ctx, "Failed to drop expired token", "key", key, "error", err)
		}
		return "", false, nil
	}
	return value, true, nil
}

func (s *TokenStore) Set(ctx context.Context, key, value string) error {
	now := s.now()
	var expiresAt sql.NullInt64
	if s.ttl > 0 {
		expiresAt = sql.NullInt64{Int64: now.Add(s.ttl).Unix(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_tokens (key, value, updated_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at,
			expires_at = excluded.expires_at`,
		key, value, now.Unix(), expiresAt)
	if err != nil {
		return fmt.Errorf("set token %q: %w", key, err)
	}
	return nil
}

func (s *TokenStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_tokens WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete token %q: %w", key, err)
	}
	return nil
}

// PurgeExpired deletes every token past its expiry.
func (s *TokenStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM session_tokens WHERE expires_at IS NOT NULL AND expires_at <= ?`, s.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("purge expired tokens: %w", err)
	}
	return res.RowsAffected()
}

// CleanExpired lets the cache janitor sweep the durable tier too.
func (s *TokenStore) CleanExpired() int {
	n, err := s.PurgeExpired(context.Background())
	if err != nil {
		slog.Warn("Durable token sweep failed", "error", err)
		return 0
	}
	return int(n)
}
