package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"datacompare/internal/runstore"
)

// Store implements runstore.Store for Postgres over a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

func init() {
	runstore.Register("postgres", New)
}

func New(ctx context.Context, cfg runstore.Config) (runstore.Store, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() { s.pool.Close() }

func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS comparison_runs (
			run_id      TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			source      TEXT NOT NULL,
			target      TEXT NOT NULL,
			passed      BOOLEAN NOT NULL,
			started_at  TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS comparison_run_checks (
			run_id     TEXT NOT NULL REFERENCES comparison_runs(run_id),
			check_name TEXT NOT NULL,
			passed     BOOLEAN NOT NULL,
			PRIMARY KEY (run_id, check_name)
		)`,
	}
	for _, q := range stmts {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("ensure run-history schema: %w", err)
		}
	}
	return nil
}

func (s *Store) SaveRun(ctx context.Context, rec runstore.Record) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO comparison_runs
		 (run_id, name, source, target, passed, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (run_id) DO NOTHING`,
		rec.RunID, rec.Name, rec.Source, rec.Target, rec.Passed,
		rec.StartedAt, rec.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", rec.RunID, err)
	}

	for _, c := range rec.Checks {
		_, err = tx.Exec(ctx,
			`INSERT INTO comparison_run_checks (run_id, check_name, passed)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (run_id, check_name) DO NOTHING`,
			rec.RunID, c.Name, c.Passed,
		)
		if err != nil {
			return fmt.Errorf("insert run check %s/%s: %w", rec.RunID, c.Name, err)
		}
	}
	return tx.Commit(ctx)
}
