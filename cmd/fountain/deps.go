// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"

	"github.com/holomush/fountain/internal/journal"
	"github.com/holomush/fountain/internal/observability"
)

// RunDeps contains injectable dependencies for the run command.
// All fields with nil values will use their default implementations.
type RunDeps struct {
	// JournalFactory opens the journal backend named by the config.
	// Default: openJournal
	JournalFactory func(ctx context.Context, backend, databaseURL string) (JournalStore, error)

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer

	// DatabaseURLGetter returns the database URL when the config has none.
	// Default: reads from DATABASE_URL environment variable
	DatabaseURLGetter func() string
}

// MigrateDeps contains injectable dependencies for the migrate command.
type MigrateDeps struct {
	// MigratorFactory creates a migrator for a database URL.
	// Default: journal.NewMigrator
	MigratorFactory func(databaseURL string) (Migrator, error)

	// DatabaseURLGetter returns the database URL.
	// Default: reads from DATABASE_URL environment variable
	DatabaseURLGetter func() string
}

// JournalStore is a journal backend the run command owns.
type JournalStore interface {
	journal.Store
	Close()
}

// Migrator wraps the methods used from journal.Migrator.
type Migrator interface {
	Up() error
	Down() error
	Version() (version uint, dirty bool, err error)
	Force(version int) error
	Close() error
}

// ObservabilityServer interface wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}
