package metrics

import (
	"sync"
	"testing"
)

type recordingBackend struct {
	mu       sync.Mutex
	counters map[string]float64
	samples  map[string][]float64
	flushes  int
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{
		counters: map[string]float64{},
		samples:  map[string][]float64{},
	}
}

func (r *recordingBackend) IncCounter(name string, delta float64, _ Labels) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[name] += delta
}

func (r *recordingBackend) ObserveHistogram(name string, value float64, _ Labels) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples[name] = append(r.samples[name], value)
}

func (r *recordingBackend) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushes++
	return nil
}

func TestDefaultBackendIsNop(t *testing.T) {
	IncCounter(ComparisonsTotal, 1, nil)
	ObserveHistogram(ComparisonDuration, 1, nil)
	if err := Flush(); err != nil {
		t.Fatalf("nop Flush: %v", err)
	}
}

func TestSetBackendRoutes(t *testing.T) {
	rb := newRecordingBackend()
	SetBackend(rb)
	t.Cleanup(func() { SetBackend(nil) })

	IncCounter(ComparisonsTotal, 1, Labels{"status": "passed"})
	IncCounter(ComparisonsTotal, 1, Labels{"status": "failed"})
	ObserveHistogram(ComparisonDuration, 2.5, nil)
	if err := Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if rb.counters[ComparisonsTotal] != 2 {
		t.Fatalf("counter = %v, want 2", rb.counters[ComparisonsTotal])
	}
	if len(rb.samples[ComparisonDuration]) != 1 {
		t.Fatalf("samples = %v", rb.samples[ComparisonDuration])
	}
	if rb.flushes != 1 {
		t.Fatalf("flushes = %d", rb.flushes)
	}
}

func TestSetBackendNilRestoresNop(t *testing.T) {
	SetBackend(nil)
	IncCounter(ComparisonsTotal, 1, nil)
	if err := Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}
