// Package testdb spins up a shared PostgreSQL testcontainer and hands each
// test a freshly migrated, isolated schema, grounded on the teacher's
// test/util/database.go (same per-package shared container + per-test schema
// strategy, adapted from Ent schema creation to this repo's golang-migrate
// migrations).
package testdb

import (
	"context"
	"crypto/rand"
	stdsql "database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	storemigrations "github.com/codeready-toolchain/contestcore/pkg/store"
)

var (
	sharedConnStr string
	containerOnce sync.Once
	containerErr  error
)

// Pool returns a pgxpool.Pool pointed at a freshly migrated, uniquely named
// schema. The schema (and its connection) is dropped automatically via
// t.Cleanup.
func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()
	connStr := sharedDatabase(t)
	schema := schemaName(t)

	admin, err := stdsql.Open("pgx", connStr)
	require.NoError(t, err)
	_, err = admin.ExecContext(ctx, fmt.Sprintf("CREATE SCHEMA %s", schema))
	require.NoError(t, err)
	require.NoError(t, admin.Close())

	schemaConnStr := withSearchPath(connStr, schema)
	require.NoError(t, applyMigrations(schemaConnStr))

	pool, err := pgxpool.New(ctx, schemaConnStr)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
		drop, err := stdsql.Open("pgx", connStr)
		if err == nil {
			_, _ = drop.ExecContext(context.Background(), fmt.Sprintf("DROP SCHEMA %s CASCADE", schema))
			_ = drop.Close()
		}
	})
	return pool
}

func applyMigrations(connStr string) error {
	db, err := stdsql.Open("pgx", connStr)
	if err != nil {
		return err
	}
	defer db.Close()

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return err
	}
	source, err := iofs.New(storemigrations.MigrationsFS(), "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", source, "contestcore", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return source.Close()
}

func sharedDatabase(t *testing.T) string {
	t.Helper()
	if url := os.Getenv("CI_DATABASE_URL"); url != "" {
		return url
	}
	containerOnce.Do(func() {
		ctx := context.Background()
		c, err := postgres.Run(ctx,
			"postgres:17-alpine",
			postgres.WithDatabase("test"),
			postgres.WithUsername("test"),
			postgres.WithPassword("test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
		if err != nil {
			containerErr = fmt.Errorf("start postgres testcontainer: %w", err)
			return
		}
		connStr, err := c.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			containerErr = fmt.Errorf("connection string: %w", err)
			return
		}
		sharedConnStr = connStr
	})
	require.NoError(t, containerErr)
	return sharedConnStr
}

func schemaName(t *testing.T) string {
	name := strings.ToLower(t.Name())
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, name)
	if len(name) > 40 {
		name = name[:40]
	}
	suffix := make([]byte, 4)
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("test_%s_%s", name, hex.EncodeToString(suffix))
}

func withSearchPath(connStr, schema string) string {
	sep := "?"
	if strings.Contains(connStr, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%ssearch_path=%s", connStr, sep, schema)
}
