package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"datacompare/internal/batch"
	"datacompare/internal/metadata"
	"datacompare/internal/metrics"
	"datacompare/internal/metrics/datadog"
	"datacompare/internal/report"
	"datacompare/internal/runstore"
	"datacompare/internal/source"

	// register all run-history backends; flags select which to use.
	_ "datacompare/internal/runstore/all"
)

// main is the entry point for a single comparison: load both sides, run the
// check set, and write the three report artifacts.
func main() {
	var (
		sourceKind = flag.String("source-kind", source.KindCSV, "source kind (one of: "+strings.Join(source.Kinds(), ", ")+")")
		sourceIn   = flag.String("source", "", "source input (path, query, procedure name or URL, per kind)")
		sourceSep  = flag.String("source-sep", ",", "source field separator for delimited kinds")
		sourceEnc  = flag.String("source-encoding", "", "source character set for delimited kinds (default UTF-8)")

		targetKind = flag.String("target-kind", source.KindCSV, "target kind")
		targetIn   = flag.String("target", "", "target input")
		targetSep  = flag.String("target-sep", ",", "target field separator for delimited kinds")
		targetEnc  = flag.String("target-encoding", "", "target character set for delimited kinds (default UTF-8)")

		mapping = flag.String("mapping", "", "source column rename mapping, old:new[,old:new...]")
		ignore  = flag.String("ignore", "", "columns to exclude on both sides, comma separated")
		autoMap = flag.Bool("auto-map", false, "derive the mapping from column-name similarity when -mapping is empty")

		reportsDir = flag.String("reports", "reports", "directory for report artifacts")

		storeKind = flag.String("runstore-kind", "", "run-history backend (sqlite, postgres, mssql); empty disables history")
		storeDSN  = flag.String("runstore-dsn", "", "run-history DSN")

		metricsBackend = flag.String("metrics-backend", "", "metrics backend (datadog, none)")
		verbose        = flag.Bool("v", false, "enable verbose logs")
	)
	flag.Parse()

	log := newLogger(*verbose)
	defer func() { _ = log.Sync() }()

	if *sourceIn == "" || *targetIn == "" {
		fatalf("both -source and -target are required")
	}

	ctx := context.Background()

	store := openRunStore(ctx, log, *storeKind, *storeDSN)
	if store != nil {
		defer store.Close()
	}
	closeMetrics := setupMetrics(ctx, log, *metricsBackend, "compare")
	defer closeMetrics()

	spec := batch.Spec{
		Name:    *sourceIn + " vs " + *targetIn,
		Source:  source.Config{Kind: *sourceKind, Input: *sourceIn, Separator: firstRune(*sourceSep), Encoding: *sourceEnc},
		Target:  source.Config{Kind: *targetKind, Input: *targetIn, Separator: firstRune(*targetSep), Encoding: *targetEnc},
		Mapping: metadata.ParseColumnMapping(*mapping),
		Ignored: metadata.ParseIgnoredColumns(*ignore),
		AutoMap: *autoMap,
	}

	runner := batch.NewRunner(report.NewWriter(*reportsDir), store, log)
	o := runner.RunOne(ctx, spec)
	if o.Err != nil {
		log.Error("comparison aborted", zap.Error(o.Err))
		os.Exit(1)
	}

	fmt.Printf("summary: %s\n", o.Summary)
	fmt.Printf("diff:    %s\n", o.Diff)
	fmt.Printf("profile: %s\n", o.Profile)

	for _, c := range o.Result.Checks {
		mark := "FAIL"
		if c.Passed {
			mark = "ok"
		}
		fmt.Printf("%-16s %s\n", c.Name, mark)
	}

	if !o.Passed {
		os.Exit(1)
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

// setupMetrics resolves the metrics backend (flag, then METRICS_BACKEND
// env, then disabled) and returns the shutdown func.
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

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return ','
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
