package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"datacompare/internal/runstore"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "runs.db")
	s, err := runstore.Open(context.Background(), runstore.Config{Kind: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(s.Close)
	return s.(*Store)
}

func sampleRecord() runstore.Record {
	started := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	return runstore.Record{
		RunID:      "run-1",
		Name:       "a.csv vs b.csv",
		Source:     "a.csv",
		Target:     "b.csv",
		Passed:     true,
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
		Checks: []runstore.CheckOutcome{
			{Name: "row_count", Passed: true},
			{Name: "duplicates", Passed: false},
		},
	}
}

func TestSaveRunPersistsRunAndChecks(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	if err := s.SaveRun(ctx, sampleRecord()); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	var runs int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comparison_runs`).Scan(&runs); err != nil {
		t.Fatalf("count runs: %v", err)
	}
	if runs != 1 {
		t.Fatalf("runs = %d, want 1", runs)
	}

	var checks int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comparison_run_checks`).Scan(&checks); err != nil {
		t.Fatalf("count checks: %v", err)
	}
	if checks != 2 {
		t.Fatalf("checks = %d, want 2", checks)
	}

	var passed int
	err := s.db.QueryRowContext(ctx,
		`SELECT passed FROM comparison_run_checks WHERE check_name = 'duplicates'`).Scan(&passed)
	if err != nil {
		t.Fatalf("select check: %v", err)
	}
	if passed != 0 {
		t.Fatalf("duplicates passed = %d, want 0", passed)
	}
}

func TestSaveRunIdempotent(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	rec := sampleRecord()
	if err := s.SaveRun(ctx, rec); err != nil {
		t.Fatalf("first SaveRun: %v", err)
	}
	if err := s.SaveRun(ctx, rec); err != nil {
		t.Fatalf("second SaveRun: %v", err)
	}

	var runs int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comparison_runs`).Scan(&runs); err != nil {
		t.Fatalf("count runs: %v", err)
	}
	if runs != 1 {
		t.Fatalf("runs = %d, want 1", runs)
	}
}

func TestOpenUnknownKind(t *testing.T) {
	if _, err := runstore.Open(context.Background(), runstore.Config{Kind: "teradata"}); err == nil {
		t.Fatal("want error for unregistered kind")
	}
}

func TestOpenDefaultsToSqlite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "default.db")
	s, err := runstore.Open(context.Background(), runstore.Config{DSN: dsn})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	if _, ok := s.(*Store); !ok {
		t.Fatalf("default backend = %T, want *sqlite.Store", s)
	}
}
