// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package journal

import (
	"context"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// DefaultRecentLimit caps Recent when no positive limit is given.
const DefaultRecentLimit = 100

// poolIface is the subset of pgxpool.Pool the store uses; pgxmock satisfies it.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	pool poolIface
}

// NewPostgresStore creates a store on an existing pool.
func NewPostgresStore(pool poolIface) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// OpenPostgres connects to dsn and returns a store owning the pool.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.In("journal").Code("DB_CONNECT_FAILED").With("operation", "connect").Wrap(err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Append implements Store.
func (s *PostgresStore) Append(ctx context.Context, e Entry) error {
	if err := e.Kind.Validate(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO task_journal (id, task_id, kind, progress, target, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID.String(), e.TaskID, string(e.Kind), e.Progress, e.Target, e.At)
	if err != nil {
		return oops.In("journal").
			With("operation", "append entry").
			With("task_id", e.TaskID).
			With("kind", string(e.Kind)).
			Wrap(err)
	}
	return nil
}

// Recent implements Store.
func (s *PostgresStore) Recent(ctx context.Context, taskID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	var rows pgx.Rows
	var err error
	if taskID == "" {
		rows, err = s.pool.Query(ctx,
			`SELECT id, task_id, kind, progress, target, recorded_at
			 FROM task_journal ORDER BY id DESC LIMIT $1`, limit)
	} else {
		rows, err = s.pool.Query(ctx,
			`SELECT id, task_id, kind, progress, target, recorded_at
			 FROM task_journal WHERE task_id = $1 ORDER BY id DESC LIMIT $2`, taskID, limit)
	}
	if err != nil {
		return nil, oops.In("journal").With("operation", "query entries").With("task_id", taskID).Wrap(err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var idStr, kind string
		if err := rows.Scan(&idStr, &e.TaskID, &kind, &e.Progress, &e.Target, &e.At); err != nil {
			return nil, oops.In("journal").With("operation", "scan entry row").Wrap(err)
		}
		e.ID, err = ulid.Parse(idStr)
		if err != nil {
			return nil, oops.In("journal").
				Code("CORRUPT_ENTRY_ID").
				With("task_id", e.TaskID).
				With("id", idStr).
				Wrap(err)
		}
		e.Kind = Kind(kind)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.In("journal").With("operation", "iterate entries").Wrap(err)
	}
	slices.Reverse(entries)
	return entries, nil
}
