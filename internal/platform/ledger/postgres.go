package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore backs the ledger with a single key/JSONB table. Per-key
// atomicity comes from Postgres row-level locking on the primary key,
// which matches the state machine's read-modify-write model: concurrent
// transitions on the same medicine serialize at the row, transitions on
// different medicines never contend.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects a pool and ensures the ledger table exists.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS ledger_kv (
			key   TEXT PRIMARY KEY,
			value JSONB NOT NULL
		)`)
	if err != nil {
		return nil, fmt.Errorf("create ledger_kv table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPool opens a pgx connection pool against the given URL.
func NewPool(ctx context.Context, url string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	if minConns > 0 {
		cfg.MinConns = minConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM ledger_kv WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO ledger_kv (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		key, value)
	return err
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM ledger_kv WHERE key = $1`, key)
	return err
}

func (s *PostgresStore) Range(ctx context.Context, start, end string) (Iterator, error) {
	query := `SELECT key, value FROM ledger_kv WHERE key >= $1`
	args := []any{start}
	if end != "" {
		query += ` AND key < $2`
		args = append(args, end)
	}
	query += ` ORDER BY key`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []kvPair
	for rows.Next() {
		var p kvPair
		if err := rows.Scan(&p.key, &p.value); err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return newSliceIterator(pairs), nil
}

func (s *PostgresStore) Query(ctx context.Context, prefix string, selector map[string]any) (Iterator, error) {
	sel, err := json.Marshal(selector)
	if err != nil {
		return nil, fmt.Errorf("encode selector: %w", err)
	}
	rows, err := s.pool.Query(ctx, `
		SELECT key, value FROM ledger_kv
		WHERE key >= $1 AND key < $2 AND value @> $3::jsonb
		ORDER BY key`,
		prefix, PrefixEnd(prefix), sel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []kvPair
	for rows.Next() {
		var p kvPair
		if err := rows.Scan(&p.key, &p.value); err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return newSliceIterator(pairs), nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
