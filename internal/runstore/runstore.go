// Package runstore persists comparison run history. Each run produces one
// run row plus one row per check outcome, so history is queryable by check.
//
// Backends register themselves under a kind string from an init() function;
// callers pick one through Open. The default backend is sqlite.
package runstore

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultKind is the backend used when Config.Kind is empty.
const DefaultKind = "sqlite"

// Config selects and configures a backend.
//
// Edge cases:
//   - Kind must match a registered backend (or be empty for the default).
//   - DSN validation is backend-specific.
type Config struct {
	Kind string
	DSN  string
}

// CheckOutcome is one persisted check result.
type CheckOutcome struct {
	Name   string
	Passed bool
}

// Record is one comparison run.
type Record struct {
	RunID      string
	Name       string
	Source     string
	Target     string
	Passed     bool
	StartedAt  time.Time
	FinishedAt time.Time
	Checks     []CheckOutcome
}

// Store is the backend-agnostic run-history interface.
//
// IMPORTANT: intentionally minimal; each backend implements these semantics
// in its own idiomatic way (Postgres ON CONFLICT, SQLite OR IGNORE, etc).
type Store interface {
	// Close releases backend resources. Treat as "call once".
	Close()

	// EnsureSchema creates the run-history tables if they do not exist.
	// Safe to call on every open.
	EnsureSchema(ctx context.Context) error

	// SaveRun persists one run and its check outcomes atomically.
	SaveRun(ctx context.Context, rec Record) error
}

// Factory constructs a backend store.
type Factory func(ctx context.Context, cfg Config) (Store, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers a backend factory under a kind. Call from an init()
// function in a backend package.
//
// Panics:
//   - If kind is empty.
//   - If f is nil.
//   - If kind is already registered. Fail fast beats ambiguous selection.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("runstore: Register called with empty kind")
	}
	if f == nil {
		panic("runstore: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("runstore: factory already registered for kind=%q", kind))
	}
	factories[kind] = f
}

// Open constructs a Store for cfg and ensures its schema. An empty Kind
// selects the default backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	kind := cfg.Kind
	if kind == "" {
		kind = DefaultKind
	}

	mu.RLock()
	f, ok := factories[kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("runstore: unsupported kind=%q", kind)
	}

	s, err := f(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}
