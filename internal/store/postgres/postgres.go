// Package postgres provides a PostgreSQL-backed [store.Store].
//
// Functions live in a single saved_functions table keyed by name. [New] runs
// [Migrate] so the table exists before the first call.
//
//	s, err := postgres.New(ctx, dsn)
//	if err != nil { … }
//	defer s.Close()
//	_ = s.Save(ctx, "total", source)
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MrWong99/parseltongue/internal/store"
)

var (
	_ store.Store  = (*Store)(nil)
	_ store.Pinger = (*Store)(nil)
)

// Store is a PostgreSQL function store. It is safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to dsn, verifies the connection and migrates the schema.
func New(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres store: parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres store: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: ping: %w", err)
	}

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Ping implements [store.Pinger].
func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Close releases the connection pool.
func (s *Store) Close() { s.pool.Close() }

// Save implements [store.Store] with an upsert.
func (s *Store) Save(ctx context.Context, name, source string) error {
	if err := store.ValidateName(name); err != nil {
		return err
	}
	const q = `
		INSERT INTO saved_functions (name, source)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE
		    SET source = EXCLUDED.source, updated_at = now()`
	if _, err := s.pool.Exec(ctx, q, name, source); err != nil {
		return fmt.Errorf("postgres store: save %s: %w", name, err)
	}
	return nil
}

// Load implements [store.Store].
func (s *Store) Load(ctx context.Context, name string) (string, error) {
	if err := store.ValidateName(name); err != nil {
		return "", err
	}
	var source string
	err := s.pool.QueryRow(ctx, `SELECT source FROM saved_functions WHERE name = $1`, name).Scan(&source)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", store.ErrNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("postgres store: load %s: %w", name, err)
	}
	return source, nil
}

// List implements [store.Store].
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT name FROM saved_functions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("postgres store: list: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("postgres store: list: %w", err)
	}
	return names, nil
}

// Delete implements [store.Store].
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := store.ValidateName(name); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM saved_functions WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("postgres store: delete %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, name)
	}
	return nil
}
