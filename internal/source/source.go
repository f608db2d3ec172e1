// Package source loads tabular data from a closed set of source kinds into
// table.Table values.
//
// The kind is a user-facing label ("CSV file", "SQL Server", ...). New
// selects the loader variant once at the boundary; from then on callers hold
// a Loader and never re-dispatch on the label.
//
// Error policy:
//   - Unrecognized kinds and missing inputs load as an empty table.
//   - Every underlying failure is wrapped into a *LoadError carrying the
//     kind label and the cause. Nothing is retried.
package source

import (
	"context"
	"fmt"
	"strings"

	"datacompare/internal/table"
)

// Source kind labels. These are the externally visible names used by the
// CLIs and the metadata spreadsheet.
const (
	KindCSV        = "CSV file"
	KindDat        = "Dat file"
	KindParquet    = "Parquet file"
	KindZip        = "Flat files inside zipped folder"
	KindSQLServer  = "SQL Server"
	KindPostgres   = "Postgres"
	KindStoredProc = "Stored Procs"
	KindAPI        = "API"
)

// Kinds lists every recognized source kind, in menu order.
func Kinds() []string {
	return []string{
		KindCSV, KindDat, KindSQLServer, KindStoredProc,
		KindPostgres, KindAPI, KindParquet, KindZip,
	}
}

// Config describes one side of a comparison.
//
// Input is interpreted per kind: a file path for file-backed kinds, query
// text for the SQL kinds, a procedure name for stored procs, and a URL for
// the API kind. An empty Input always loads an empty table.
type Config struct {
	Kind  string
	Input string

	// Separator applies to delimited kinds (CSV/Dat/zip entries).
	// Zero means ','.
	Separator rune

	// Encoding optionally names the character set of delimited inputs
	// (e.g. "latin-1", "windows-1252"). Empty means UTF-8.
	Encoding string
}

// Loader loads one table. Implementations wrap all failures in *LoadError.
type Loader interface {
	Load(ctx context.Context) (table.Table, error)
}

// New selects the loader for cfg.Kind. Unknown kinds get a loader that
// returns an empty table; New itself never fails.
func New(cfg Config) Loader {
	switch cfg.Kind {
	case KindCSV, KindDat:
		return &delimitedLoader{cfg: cfg}
	case KindParquet:
		return &parquetLoader{cfg: cfg}
	case KindZip:
		return &zipLoader{cfg: cfg}
	case KindSQLServer, KindPostgres:
		return &sqlQueryLoader{cfg: cfg}
	case KindStoredProc:
		return &storedProcLoader{cfg: cfg}
	case KindAPI:
		return &apiLoader{cfg: cfg}
	default:
		return emptyLoader{}
	}
}

// Load is a convenience wrapper: New + Load in one call.
func Load(ctx context.Context, cfg Config) (table.Table, error) {
	return New(cfg).Load(ctx)
}

// LoadError is the single error type loaders surface. It carries the source
// kind label and wraps the underlying cause.
type LoadError struct {
	Kind string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load data from %s: %v", e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func wrapLoad(kind string, err error) error {
	if err == nil {
		return nil
	}
	return &LoadError{Kind: kind, Err: err}
}

type emptyLoader struct{}

func (emptyLoader) Load(context.Context) (table.Table, error) {
	return table.Empty(), nil
}

// envConnectionName derives the environment variable that holds a SQL
// backend's DSN from its kind label: "SQL Server" -> "SQL_SERVER_CONNECTION".
func envConnectionName(kind string) string {
	return strings.ToUpper(strings.ReplaceAll(kind, " ", "_")) + "_CONNECTION"
}

func sepOrDefault(r rune) rune {
	if r == 0 {
		return ','
	}
	return r
}
