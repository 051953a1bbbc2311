// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

//go:build integration

package store_test

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mediahub/mediahub/internal/store"
)

var _ = Describe("Migrator", Ordered, func() {
	var (
		ctx       context.Context
		container *postgres.PostgresContainer
		connStr   string
		migrator  *store.Migrator
	)

	BeforeAll(func() {
		ctx = context.Background()
		var err error
		container, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("mediahub_test"),
			postgres.WithUsername("mediahub"),
			postgres.WithPassword("mediahub"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
			),
		)
		Expect(err).NotTo(HaveOccurred())

		connStr, err = container.ConnectionString(ctx, "sslmode=disable")
		Expect(err).NotTo(HaveOccurred())

		migrator, err = store.NewMigrator(connStr)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterAll(func() {
		if migrator != nil {
			_ = migrator.Close()
		}
		if container != nil {
			_ = container.Terminate(ctx)
		}
	})

	It("starts at version 0", func() {
		version, dirty, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(BeZero())
		Expect(dirty).To(BeFalse())
	})

	It("applies every migration", func() {
		Expect(migrator.Up()).To(Succeed())

		applied, pending, err := migrator.Status()
		Expect(err).NotTo(HaveOccurred())
		Expect(pending).To(BeEmpty())
		Expect(applied).To(HaveLen(3))
	})

	It("is idempotent", func() {
		Expect(migrator.Up()).To(Succeed())
	})

	It("enforces case-insensitive identity uniqueness", func() {
		pool, err := store.Connect(ctx, connStr, store.ConnectOptions{})
		Expect(err).NotTo(HaveOccurred())
		defer pool.Close()

		insert := func(pool *pgxpool.Pool, id, email, nick string) error {
			_, err := pool.Exec(ctx, `
				INSERT INTO identities (id, email, nick_name, first_name, last_name, password_hash, role)
				VALUES ($1, $2, $3, 'First', 'Last', 'hash', 'MEMBER')`, id, email, nick)
			return err
		}

		Expect(insert(pool, "01HZZZZZZZZZZZZZZZZZZZZZZ1", "a@x.com", "alice")).To(Succeed())

		err = insert(pool, "01HZZZZZZZZZZZZZZZZZZZZZZ2", "A@X.COM", "other")
		constraint, ok := store.UniqueViolation(err)
		Expect(ok).To(BeTrue())
		Expect(constraint).To(Equal("identities_email_key"))

		err = insert(pool, "01HZZZZZZZZZZZZZZZZZZZZZZ3", "b@x.com", "ALICE")
		constraint, ok = store.UniqueViolation(err)
		Expect(ok).To(BeTrue())
		Expect(constraint).To(Equal("identities_nick_name_key"))
	})

	It("rolls back a failed transaction", func() {
		pool, err := store.Connect(ctx, connStr, store.ConnectOptions{})
		Expect(err).NotTo(HaveOccurred())
		defer pool.Close()

		tx := store.NewTransactor(pool)
		err = tx.InTransaction(ctx, func(ctx context.Context) error {
			_, err := store.Conn(ctx, pool).Exec(ctx, `DELETE FROM identities`)
			Expect(err).NotTo(HaveOccurred())
			return errors.New("force rollback")
		})
		Expect(err).To(HaveOccurred())

		var n int
		Expect(pool.QueryRow(ctx, `SELECT COUNT(*) FROM identities`).Scan(&n)).To(Succeed())
		Expect(n).To(Equal(1))
	})

	It("rolls everything back", func() {
		Expect(migrator.Down()).To(Succeed())
		version, _, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(BeZero())
	})
})
