package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/RomanPilyushin/Privatbank/internal/config"
	"github.com/RomanPilyushin/Privatbank/internal/repo"
)

// Store is the single resolved persistence handle. The backend is decided
// once here, at startup: Postgres when a DSN is configured and reachable,
// the embedded SQLite file otherwise. Nothing retries or re-resolves later.
type Store struct {
	Tasks   repo.TaskRepo
	Backend string

	closeFn func()
}

func (s *Store) Close() {
	if s.closeFn != nil {
		s.closeFn()
	}
}

func Open(ctx context.Context, cfg config.Config) (*Store, error) {
	if cfg.PG.DSN != "" {
		st, err := openPostgres(ctx, cfg.PG)
		if err == nil {
			return st, nil
		}
		log.Printf("postgres unavailable, falling back to sqlite: %v", err)
	}
	return openSQLite(cfg.SQLite)
}

func openPostgres(ctx context.Context, cfg config.PGConfig) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	pcfg.MaxConns = 10
	pcfg.MinConns = 2
	pcfg.MaxConnIdleTime = 5 * time.Minute
	pcfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout.Duration())
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	if err := migratePostgres(cfg.DSN); err != nil {
		pool.Close()
		return nil, err
	}

	return &Store{
		Tasks:   repo.NewPGTaskRepo(pool),
		Backend: "postgres",
		closeFn: pool.Close,
	}, nil
}

func openSQLite(cfg config.SQLiteConfig) (*Store, error) {
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// modernc's driver is not safe for concurrent writes over many conns.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}

	if err := goose.SetDialect("sqlite3"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.Up(db, "./migrations/sqlite"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("goose up: %w", err)
	}

	return &Store{
		Tasks:   repo.NewSQLiteTaskRepo(db),
		Backend: "sqlite",
		closeFn: func() { _ = db.Close() },
	}, nil
}

func migratePostgres(dsn string) error {
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("goose open db: %w", err)
	}
	defer db.Close()

	if err := goose.Up(db, "./migrations/postgres"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
