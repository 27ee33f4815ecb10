// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yhkim-dev/newsroom-push/internal/notify"
)

// PoolConfig controls the shared Postgres connection pool.
type PoolConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

// NewPool builds a pgx pool from config.
func NewPool(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pool, nil
}

// NewsStore reads and marks rows in the news table.
type NewsStore struct {
	pool querier
}

// NewNewsStore wraps an existing pool.
func NewNewsStore(pool *pgxpool.Pool) *NewsStore {
	return &NewsStore{pool: pool}
}

// NewNewsStoreWithPool constructs a store from any pool-like value
// (primarily for pgxmock in tests).
func NewNewsStoreWithPool(pool querier) (*NewsStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &NewsStore{pool: pool}, nil
}

const unsentSinceQuery = `
SELECT id, title, description, original_link, category, pub_date, notification_sent_at
FROM news
WHERE notification_sent_at IS NULL AND pub_date >= $1
ORDER BY pub_date DESC`

// UnsentSince returns unsent items published at or after the cutoff,
// newest first.
func (s *NewsStore) UnsentSince(ctx context.Context, cutoff time.Time) ([]notify.NewsItem, error) {
	rows, err := s.pool.Query(ctx, unsentSinceQuery, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query unsent news: %w", err)
	}
	defer rows.Close()

	var items []notify.NewsItem
	for rows.Next() {
		var item notify.NewsItem
		var description *string
		if err := rows.Scan(
			&item.ID,
			&item.Title,
			&description,
			&item.OriginalLink,
			&item.Category,
			&item.PubDate,
			&item.NotifiedAt,
		); err != nil {
			return nil, fmt.Errorf("scan news row: %w", err)
		}
		if description != nil {
			item.Description = *description
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate news rows: %w", err)
	}
	return items, nil
}

const markNotifiedQuery = `
UPDATE news
SET notification_sent_at = $2
WHERE id = $1 AND notification_sent_at IS NULL`

// MarkNotified stamps notification_sent_at for one item. The null guard
// in the predicate makes the stamp one-shot even under a racing run.
func (s *NewsStore) MarkNotified(ctx context.Context, newsID int64, at time.Time) error {
	if _, err := s.pool.Exec(ctx, markNotifiedQuery, newsID, at); err != nil {
		return fmt.Errorf("mark news notified: %w", err)
	}
	return nil
}

// Close releases the underlying pool resources.
func (s *NewsStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}
