package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"datacompare/internal/runstore"
)

// Store implements runstore.Store on SQLite via modernc.org/sqlite.
//
// SQLite has no timestamp type; run times are stored as RFC3339Nano TEXT
// for reliable round trips and easy debugging.
type Store struct {
	db *sql.DB
}

func init() {
	runstore.Register("sqlite", New)
}

func New(ctx context.Context, cfg runstore.Config) (runstore.Store, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = "datacompare_runs.db"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() { _ = s.db.Close() }

func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS comparison_runs (
			run_id      TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			source      TEXT NOT NULL,
			target      TEXT NOT NULL,
			passed      INTEGER NOT NULL,
			started_at  TEXT NOT NULL,
			finished_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS comparison_run_checks (
			run_id     TEXT NOT NULL REFERENCES comparison_runs(run_id),
			check_name TEXT NOT NULL,
			passed     INTEGER NOT NULL,
			PRIMARY KEY (run_id, check_name)
		)`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure run-history schema: %w", err)
		}
	}
	return nil
}

func (s *Store) SaveRun(ctx context.Context, rec runstore.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO comparison_runs
		 (run_id, name, source, target, passed, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Name, rec.Source, rec.Target, boolInt(rec.Passed),
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", rec.RunID, err)
	}

	for _, c := range rec.Checks {
		_, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO comparison_run_checks (run_id, check_name, passed)
			 VALUES (?, ?, ?)`,
			rec.RunID, c.Name, boolInt(c.Passed),
		)
		if err != nil {
			return fmt.Errorf("insert run check %s/%s: %w", rec.RunID, c.Name, err)
		}
	}
	return tx.Commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
