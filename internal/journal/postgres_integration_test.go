// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package journal_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/holomush/fountain/internal/ids"
	"github.com/holomush/fountain/internal/journal"
)

var _ = Describe("PostgresStore", Ordered, func() {
	var (
		ctx       context.Context
		container *postgres.PostgresContainer
		store     *journal.PostgresStore
		migrator  *journal.Migrator
	)

	BeforeAll(func() {
		ctx = context.Background()
		var err error
		container, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("fountain"),
			postgres.WithUsername("fountain"),
			postgres.WithPassword("fountain"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2)),
		)
		Expect(err).NotTo(HaveOccurred())

		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		Expect(err).NotTo(HaveOccurred())

		migrator, err = journal.NewMigrator(dsn)
		Expect(err).NotTo(HaveOccurred())
		Expect(migrator.Up()).To(Succeed())

		store, err = journal.OpenPostgres(ctx, dsn)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterAll(func() {
		if store != nil {
			store.Close()
		}
		if migrator != nil {
			Expect(migrator.Close()).To(Succeed())
		}
		if container != nil {
			Expect(container.Terminate(ctx)).To(Succeed())
		}
	})

	It("reports the latest migration version", func() {
		version, dirty, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(dirty).To(BeFalse())
		Expect(version).To(Equal(uint(2)))
	})

	It("round-trips entries oldest first", func() {
		at := time.Now().UTC().Truncate(time.Microsecond)
		for i, kind := range []journal.Kind{journal.KindStarted, journal.KindProgressed, journal.KindCompleted} {
			Expect(store.Append(ctx, journal.Entry{
				ID:       ids.New(),
				TaskID:   "gems",
				Kind:     kind,
				Progress: i,
				Target:   2,
				At:       at,
			})).To(Succeed())
		}

		got, err := store.Recent(ctx, "gems", 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(2))
		Expect(got[0].Kind).To(Equal(journal.KindProgressed))
		Expect(got[1].Kind).To(Equal(journal.KindCompleted))
		Expect(got[1].At.Equal(at)).To(BeTrue())
	})

	It("rolls back cleanly", func() {
		Expect(migrator.Steps(-1)).To(Succeed())
		version, _, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(Equal(uint(1)))
		Expect(migrator.Up()).To(Succeed())
	})
})
