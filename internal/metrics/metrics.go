// Package metrics is the process-metrics seam. Core code records counters
// and histograms against a Backend; the default backend drops everything,
// so instrumented code pays nothing when metrics are not configured.
package metrics

import "sync/atomic"

// Metric names emitted by the comparison pipeline.
const (
	ComparisonsTotal   = "comparisons_total"
	ChecksFailedTotal  = "checks_failed_total"
	RowsLoadedTotal    = "rows_loaded_total"
	ComparisonDuration = "comparison_duration_seconds"
)

// Labels attach dimensions to a metric ("side" -> "source").
type Labels map[string]string

// Backend receives metric observations. Implementations must be safe for
// concurrent use.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)

	// Flush forces buffered observations out. Backends that submit
	// synchronously may no-op.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

// holder keeps atomic.Value happy: stored values must share one concrete
// type even as the backend implementation changes.
type holder struct {
	b Backend
}

var current atomic.Value // holder

func init() {
	current.Store(holder{b: nopBackend{}})
}

// SetBackend installs b as the process backend. Passing nil restores the
// nop backend.
func SetBackend(b Backend) {
	if b == nil {
		b = nopBackend{}
	}
	current.Store(holder{b: b})
}

func backend() Backend {
	return current.Load().(holder).b
}

// IncCounter adds delta to a named counter on the installed backend.
func IncCounter(name string, delta float64, labels Labels) {
	backend().IncCounter(name, delta, labels)
}

// ObserveHistogram records one sample of a named distribution.
func ObserveHistogram(name string, value float64, labels Labels) {
	backend().ObserveHistogram(name, value, labels)
}

// Flush flushes the installed backend.
func Flush() error {
	return backend().Flush()
}
