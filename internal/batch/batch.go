// Package batch runs comparisons end to end: load both sides, compare,
// write the report artifacts, and record run history. The metadata-driven
// batch mode and the single-shot CLI both go through the same runner, so
// failure isolation and instrumentation live in one place.
package batch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"datacompare/internal/automap"
	"datacompare/internal/compare"
	"datacompare/internal/metadata"
	"datacompare/internal/metrics"
	"datacompare/internal/report"
	"datacompare/internal/runstore"
	"datacompare/internal/source"
)

// Spec is one comparison to run.
type Spec struct {
	Name    string
	Source  source.Config
	Target  source.Config
	Mapping map[string]string
	Ignored []string

	// AutoMap derives the rename mapping from column-name similarity when
	// no explicit mapping is given.
	AutoMap bool
}

// FromJob converts a metadata job into a runnable spec.
func FromJob(j metadata.Job) Spec {
	return Spec{
		Name:    j.Name(),
		Source:  j.SourceConfig(),
		Target:  j.TargetConfig(),
		Mapping: j.Mapping,
		Ignored: j.Ignored,
	}
}

// Outcome is the result of one spec. Err is set when the run aborted; the
// artifact paths are empty for the reports that were not written.
type Outcome struct {
	Spec   Spec
	RunID  string
	Passed bool
	Err    error

	Result  compare.Result
	Summary string
	Diff    string
	Profile string
}

// Runner executes specs. Store is optional; when nil no history is kept.
type Runner struct {
	Reports *report.Writer
	Store   runstore.Store
	Log     *zap.Logger

	now func() time.Time
}

// NewRunner wires a runner. A nil logger is replaced with a no-op logger.
func NewRunner(reports *report.Writer, store runstore.Store, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{Reports: reports, Store: store, Log: log, now: time.Now}
}

// RunAll executes every spec in order. One spec's failure is logged and
// recorded in its outcome; the remaining specs still run.
func (r *Runner) RunAll(ctx context.Context, specs []Spec) []Outcome {
	outcomes := make([]Outcome, 0, len(specs))
	for _, spec := range specs {
		o := r.RunOne(ctx, spec)
		if o.Err != nil {
			r.Log.Error("comparison failed",
				zap.String("name", spec.Name),
				zap.String("run_id", o.RunID),
				zap.Error(o.Err))
		} else {
			r.Log.Info("comparison finished",
				zap.String("name", spec.Name),
				zap.String("run_id", o.RunID),
				zap.Bool("passed", o.Passed))
		}
		outcomes = append(outcomes, o)
	}
	return outcomes
}

// RunOne executes a single spec end to end.
func (r *Runner) RunOne(ctx context.Context, spec Spec) Outcome {
	o := Outcome{Spec: spec, RunID: uuid.NewString()}
	started := r.now()

	src, err := source.Load(ctx, spec.Source)
	if err != nil {
		o.Err = err
		return o
	}
	tgt, err := source.Load(ctx, spec.Target)
	if err != nil {
		o.Err = err
		return o
	}
	metrics.IncCounter(metrics.RowsLoadedTotal, float64(src.NumRows()), metrics.Labels{"side": "source"})
	metrics.IncCounter(metrics.RowsLoadedTotal, float64(tgt.NumRows()), metrics.Labels{"side": "target"})

	mapping := spec.Mapping
	if spec.AutoMap && len(mapping) == 0 {
		mapping = automap.Map(src.Columns, tgt.Columns)
		r.Log.Info("auto-mapped columns",
			zap.String("name", spec.Name),
			zap.Int("mapped", len(mapping)))
	}

	res, err := compare.Compare(src, tgt, mapping, spec.Ignored)
	if err != nil {
		o.Err = err
		return o
	}
	o.Result = res
	o.Passed = res.AllPassed()
	r.instrument(res, started)

	if o.Summary, err = r.Reports.SummaryHTML(res); err != nil {
		o.Err = err
		return o
	}
	if o.Diff, err = r.Reports.DiffCSV(res); err != nil {
		o.Err = err
		return o
	}
	if o.Profile, err = r.Reports.ProfileHTML(res); err != nil {
		o.Err = err
		return o
	}

	r.saveHistory(ctx, spec, o, started)
	return o
}

func (r *Runner) instrument(res compare.Result, started time.Time) {
	status := "failed"
	if res.AllPassed() {
		status = "passed"
	}
	metrics.IncCounter(metrics.ComparisonsTotal, 1, metrics.Labels{"status": status})
	for _, c := range res.Checks {
		if !c.Passed {
			metrics.IncCounter(metrics.ChecksFailedTotal, 1, metrics.Labels{"check": c.Name})
		}
	}
	metrics.ObserveHistogram(metrics.ComparisonDuration, r.now().Sub(started).Seconds(), nil)
}

// saveHistory is best-effort: a history failure is logged, never fatal.
func (r *Runner) saveHistory(ctx context.Context, spec Spec, o Outcome, started time.Time) {
	if r.Store == nil {
		return
	}

	rec := runstore.Record{
		RunID:      o.RunID,
		Name:       spec.Name,
		Source:     spec.Source.Input,
		Target:     spec.Target.Input,
		Passed:     o.Passed,
		StartedAt:  started,
		FinishedAt: r.now(),
	}
	for _, c := range o.Result.Checks {
		rec.Checks = append(rec.Checks, runstore.CheckOutcome{Name: c.Name, Passed: c.Passed})
	}

	if err := r.Store.SaveRun(ctx, rec); err != nil {
		r.Log.Warn("run history not recorded",
			zap.String("run_id", o.RunID),
			zap.Error(err))
	}
}
