package mssql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/microsoft/go-mssqldb"

	"datacompare/internal/runstore"
)

// Store implements runstore.Store for Microsoft SQL Server using
// database/sql and the "sqlserver" driver.
type Store struct {
	db *sql.DB
}

func init() {
	runstore.Register("mssql", New)
}

func New(ctx context.Context, cfg runstore.Config) (runstore.Store, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
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
		`IF OBJECT_ID('comparison_runs', 'U') IS NULL
		 CREATE TABLE comparison_runs (
			run_id      NVARCHAR(64) PRIMARY KEY,
			name        NVARCHAR(512) NOT NULL,
			source      NVARCHAR(512) NOT NULL,
			target      NVARCHAR(512) NOT NULL,
			passed      BIT NOT NULL,
			started_at  DATETIMEOFFSET NOT NULL,
			finished_at DATETIMEOFFSET NOT NULL
		 )`,
		`IF OBJECT_ID('comparison_run_checks', 'U') IS NULL
		 CREATE TABLE comparison_run_checks (
			run_id     NVARCHAR(64) NOT NULL REFERENCES comparison_runs(run_id),
			check_name NVARCHAR(128) NOT NULL,
			passed     BIT NOT NULL,
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
		`IF NOT EXISTS (SELECT 1 FROM comparison_runs WHERE run_id = @p1)
		 INSERT INTO comparison_runs
		 (run_id, name, source, target, passed, started_at, finished_at)
		 VALUES (@p1, @p2, @p3, @p4, @p5, @p6, @p7)`,
		rec.RunID, rec.Name, rec.Source, rec.Target, rec.Passed,
		rec.StartedAt, rec.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", rec.RunID, err)
	}

	for _, c := range rec.Checks {
		_, err = tx.ExecContext(ctx,
			`IF NOT EXISTS (SELECT 1 FROM comparison_run_checks WHERE run_id = @p1 AND check_name = @p2)
			 INSERT INTO comparison_run_checks (run_id, check_name, passed)
			 VALUES (@p1, @p2, @p3)`,
			rec.RunID, c.Name, c.Passed,
		)
		if err != nil {
			return fmt.Errorf("insert run check %s/%s: %w", rec.RunID, c.Name, err)
		}
	}
	return tx.Commit()
}
