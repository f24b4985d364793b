// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/fountain/internal/journal"
)

// NewMigrateCmd creates the migrate subcommand with up, down, version and
// force actions. With no action it migrates up.
func NewMigrateCmd() *cobra.Command {
	return newMigrateCmd(nil)
}

func newMigrateCmd(deps *MigrateDeps) *cobra.Command {
	if deps == nil {
		deps = &MigrateDeps{}
	}
	if deps.MigratorFactory == nil {
		deps.MigratorFactory = func(databaseURL string) (Migrator, error) {
			return journal.NewMigrator(databaseURL)
		}
	}
	if deps.DatabaseURLGetter == nil {
		deps.DatabaseURLGetter = func() string { return os.Getenv("DATABASE_URL") }
	}

	up := func(cmd *cobra.Command, _ []string) error {
		return withMigrator(cmd, deps, func(m Migrator) error {
			cmd.Println("Running migrations...")
			if err := m.Up(); err != nil {
				return oops.Code("MIGRATION_FAILED").With("operation", "up").Wrap(err)
			}
			cmd.Println("Migrations completed successfully")
			return nil
		})
	}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run journal database migrations",
		Long: `Manage the task journal schema in PostgreSQL. The database URL is read
from the DATABASE_URL environment variable.`,
		RunE: up,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE:  up,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, func(m Migrator) error {
				if err := m.Down(); err != nil {
					return oops.Code("MIGRATION_FAILED").With("operation", "down").Wrap(err)
				}
				cmd.Println("Migrations rolled back")
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the current schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, func(m Migrator) error {
				v, dirty, err := m.Version()
				if err != nil {
					return oops.Code("MIGRATION_FAILED").With("operation", "version").Wrap(err)
				}
				if dirty {
					cmd.Printf("version %d (dirty)\n", v)
					return nil
				}
				cmd.Printf("version %d\n", v)
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "force VERSION",
		Short: "Set the schema version without running migrations",
		Long: `Marks the schema as being at VERSION and clears the dirty flag. Use it
to recover from a failed migration after fixing the database by hand.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseForceVersion(args[0])
			if err != nil {
				return err
			}
			return withMigrator(cmd, deps, func(m Migrator) error {
				if err := m.Force(v); err != nil {
					return oops.Code("MIGRATION_FAILED").With("operation", "force").Wrap(err)
				}
				cmd.Printf("forced version %d\n", v)
				return nil
			})
		},
	})

	return cmd
}

func withMigrator(cmd *cobra.Command, deps *MigrateDeps, fn func(Migrator) error) error {
	databaseURL := deps.DatabaseURLGetter()
	if databaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("DATABASE_URL environment variable is required")
	}

	cmd.Println("Connecting to database...")
	m, err := deps.MigratorFactory(databaseURL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer func() { _ = m.Close() }()

	return fn(m)
}

// parseForceVersion reads a migration version number. Parsing stops at the
// first non-digit.
func parseForceVersion(s string) (int, error) {
	var v int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &v); err != nil {
		return 0, oops.Code("INVALID_VERSION").With("input", s).Wrapf(err, "invalid version %q", s)
	}
	return v, nil
}
