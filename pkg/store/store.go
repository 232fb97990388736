// SPDX-License-Identifier: LGPL-3.0-or-later

// Package store provides the external relational status store: one row per
// desktop name, one status column.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Status is one of the four values the external row can take.
type Status string

const (
	StatusPending    Status = "pending"
	StatusRunning    Status = "running"
	StatusTerminated Status = "terminated"
	StatusError      Status = "error"
)

// Store reads and writes the desktop status table.
type Store interface {
	// Get returns the current status for name, and false if no row exists yet.
	Get(ctx context.Context, name string) (Status, bool, error)
	// Set writes status for name, creating the row if it does not exist.
	Set(ctx context.Context, name string, status Status) error
	Close()
}

// PostgresStore implements Store against an external Postgres-compatible
// database reached over a connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// New connects to the store at url (a postgres:// connection string) and
// ensures the backing table exists.
func New(ctx context.Context, url string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to status store: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS cyberdesk_status (
		name   TEXT PRIMARY KEY,
		status TEXT NOT NULL
	);`

	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize status store schema: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, name string) (Status, bool, error) {
	var status string
	err := s.pool.QueryRow(ctx, `SELECT status FROM cyberdesk_status WHERE name = $1`, name).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read status row for %q: %w", name, err)
	}
	return Status(status), true, nil
}

// Set implements Store. The write is a plain upsert, so concurrent writers are
// resolved last-writer-wins; in this operator the Phase Synchronizer is the
// only caller.
func (s *PostgresStore) Set(ctx context.Context, name string, status Status) error {
	const upsert = `
	INSERT INTO cyberdesk_status (name, status) VALUES ($1, $2)
	ON CONFLICT (name) DO UPDATE SET status = EXCLUDED.status`

	if _, err := s.pool.Exec(ctx, upsert, name, string(status)); err != nil {
		return fmt.Errorf("failed to write status row for %q: %w", name, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}
