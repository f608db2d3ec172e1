package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"datacompare/internal/batch"
	"datacompare/internal/metadata"
	"datacompare/internal/metrics"
	"datacompare/internal/metrics/datadog"
	"datacompare/internal/report"
	"datacompare/internal/runstore"

	// register all run-history backends; flags select which to use.
	_ "datacompare/internal/runstore/all"
)

// main is the entry point for metadata-driven batch comparisons: every row
// of the workbook becomes one comparison, and one row's failure never stops
// the rest.
func main() {
	var (
		metadataPath = flag.String("metadata", "", "metadata workbook (.xlsx) describing the comparisons to run")
		reportsDir   = flag.String("reports", "reports", "directory for report artifacts")

		storeKind = flag.String("runstore-kind", "", "run-history backend (sqlite, postgres, mssql); empty disables history")
		storeDSN  = flag.String("runstore-dsn", "", "run-history DSN")

		metricsBackend = flag.String("metrics-backend", "", "metrics backend (datadog, none)")
		verbose        = flag.Bool("v", false, "enable verbose logs")
	)
	flag.Parse()

	log := newLogger(*verbose)
	defer func() { _ = log.Sync() }()

	if *metadataPath == "" {
		fatalf("-metadata is required")
	}

	jobs, err := metadata.Jobs(*metadataPath)
	if err != nil {
		log.Error("metadata not readable", zap.Error(err))
		os.Exit(1)
	}
	if len(jobs) == 0 {
		fmt.Println("no runnable comparisons in metadata")
		return
	}

	ctx := context.Background()

	store := openRunStore(ctx, log, *storeKind, *storeDSN)
	if store != nil {
		defer store.Close()
	}
	closeMetrics := setupMetrics(ctx, log, *metricsBackend, "compare-batch")
	defer closeMetrics()

	specs := make([]batch.Spec, 0, len(jobs))
	for _, j := range jobs {
		specs = append(specs, batch.FromJob(j))
	}

	runner := batch.NewRunner(report.NewWriter(*reportsDir), store, log)
	outcomes := runner.RunAll(ctx, specs)

	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			fmt.Printf("%-40s ERROR  %v\n", o.Spec.Name, o.Err)
		case o.Passed:
			fmt.Printf("%-40s ok     %s\n", o.Spec.Name, o.Summary)
		default:
			fmt.Printf("%-40s FAIL   %s\n", o.Spec.Name, o.Summary)
		}
	}
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		fatalf("init logger: %v", err)
	}
	return log
}

func openRunStore(ctx context.Context, log *zap.Logger, kind, dsn string) runstore.Store {
	if kind == "" && dsn == "" {
		return nil
	}
	store, err := runstore.Open(ctx, runstore.Config{Kind: kind, DSN: dsn})
	if err != nil {
		log.Warn("run history disabled", zap.Error(err))
		return nil
	}
	return store
}

func setupMetrics(ctx context.Context, log *zap.Logger, name, job string) func() {
	if name == "" {
		name = os.Getenv("METRICS_BACKEND")
	}
	switch name {
	case "datadog":
		b, err := datadog.NewBackend(ctx, datadog.Options{
			JobName:    job,
			Tags:       datadog.ParseTagsCSV(os.Getenv("METRICS_TAGS")),
			FlushEvery: 60 * time.Second,
		})
		if err != nil {
			log.Warn("metrics disabled", zap.Error(err))
			return func() {}
		}
		metrics.SetBackend(b)
		return func() {
			if err := b.Close(); err != nil {
				log.Warn("metrics flush failed", zap.Error(err))
			}
		}
	case "", "none":
		return func() {}
	default:
		log.Warn("unknown metrics backend; metrics disabled", zap.String("backend", name))
		return func() {}
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
