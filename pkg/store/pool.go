// Package store is the Core's persistence layer: a pgx connection pool plus
// one repository type per aggregate, applying embedded SQL migrations on
// startup exactly the way the teacher's pkg/database.NewClient does, minus
// the ent dependency — repositories here hand-map rows to pkg/models
// structs with plain SQL.
package store

import (
	"context"
	stdsql "database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver for migrate
)

//go:embed migrations
var migrationsFS embed.FS

// MigrationsFS exposes the embedded migration tree so test helpers (and any
// future CLI migrate subcommand) can run the same migrations against a
// scratch schema without duplicating the SQL files.
func MigrationsFS() embed.FS { return migrationsFS }

// Config holds connection and pool parameters, populated by pkg/config.
type Config struct {
	DSN             string
	MaxOpenConns    int32
	MaxIdleConns    int32
	ConnMaxLifetime time.Duration
}

// Store bundles the pgx pool with one repository per aggregate. Repositories
// are exported fields, not interfaces — callers that need a narrower
// dependency define their own interface against the repository they use,
// the way pkg/agent.SessionStorage does against pkg/storage/postgres.
type Store struct {
	Pool *pgxpool.Pool

	Users         *UserRepo
	Agents        *AgentRepo
	Contests      *ContestRepo
	Texts         *TextRepo
	ContestJudges *ContestJudgeRepo
	Votes         *VoteRepo
	Executions    *ExecutionRepo
	Ledger        *LedgerRepo
}

// Open applies pending migrations, then opens a pgx pool for application
// queries. Migrations run over database/sql (golang-migrate requires it);
// the pool used for everything else is native pgx.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if err := runMigrations(cfg.DSN); err != nil {
		return nil, fmt.Errorf("store: migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("store: parse dsn: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = cfg.MaxOpenConns
	}
	if cfg.MaxIdleConns > 0 {
		poolCfg.MinConns = cfg.MaxIdleConns
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("store: open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	return NewForPool(pool), nil
}

// NewForPool wires every repository against an already-open, already-migrated
// pool. Open uses this after applying migrations; tests use it directly
// against a scratch schema (see test/testdb).
func NewForPool(pool *pgxpool.Pool) *Store {
	return &Store{
		Pool:          pool,
		Users:         &UserRepo{pool: pool},
		Agents:        &AgentRepo{pool: pool},
		Contests:      &ContestRepo{pool: pool},
		Texts:         &TextRepo{pool: pool},
		ContestJudges: &ContestJudgeRepo{pool: pool},
		Votes:         &VoteRepo{pool: pool},
		Executions:    &ExecutionRepo{pool: pool},
		Ledger:        &LedgerRepo{pool: pool},
	}
}

func (s *Store) Close() { s.Pool.Close() }

// runMigrations mirrors pkg/database.runMigrations: embedded SQL files
// applied via golang-migrate over a plain database/sql handle, closed
// immediately after (the pgx pool used by the rest of the Store is separate).
func runMigrations(dsn string) error {
	db, err := stdsql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("postgres driver: %w", err)
	}
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "contestcore", driver)
	if err != nil {
		return fmt.Errorf("migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply: %w", err)
	}
	return sourceDriver.Close()
}
