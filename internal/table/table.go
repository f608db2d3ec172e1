// Package table defines the in-memory tabular value that flows between the
// loader, the comparator, and the report writers.
//
// Conventions:
//   - A Table has an ordered list of column names and rows of cells.
//   - Cells hold either a string or nil. nil means "null" (missing value).
//     Loaders are responsible for converting backend-native values into this
//     shape; see CellString for the canonicalization rules.
//   - Rows are positional: row[i] belongs to Columns[i]. Loaders must emit
//     rectangular rows (pad with nil, never truncate silently).
package table

import (
	"fmt"
	"sort"
	"strings"
)

// Table is an in-memory tabular value with named columns and ordered rows.
//
// A Table has no identity beyond one comparison run. It is cheap to copy the
// header; rows are shared, so treat a Table as immutable once built and use
// the transforming methods (Rename, Drop, Select) which return new headers
// over fresh row slices.
type Table struct {
	Columns []string
	Rows    [][]any
}

// New builds a Table from a column list and rows. Short rows are padded with
// nil so every row matches the column count; long rows are kept but the extra
// cells are unreachable through column lookups.
func New(columns []string, rows [][]any) Table {
	out := Table{Columns: append([]string(nil), columns...)}
	out.Rows = make([][]any, 0, len(rows))
	for _, r := range rows {
		if len(r) < len(columns) {
			padded := make([]any, len(columns))
			copy(padded, r)
			r = padded
		}
		out.Rows = append(out.Rows, r)
	}
	return out
}

// Empty returns a table with no columns and no rows. Loaders return this for
// unrecognized source kinds and missing inputs.
func Empty() Table { return Table{} }

// NumRows reports the row count.
func (t Table) NumRows() int { return len(t.Rows) }

// IsEmpty reports whether the table has neither columns nor rows.
func (t Table) IsEmpty() bool { return len(t.Columns) == 0 && len(t.Rows) == 0 }

// ColumnIndex returns the position of name in Columns, or -1.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether name is one of the table's columns.
func (t Table) HasColumn(name string) bool { return t.ColumnIndex(name) >= 0 }

// Column returns the cells of the named column in row order. Missing column
// yields nil.
func (t Table) Column(name string) []any {
	ix := t.ColumnIndex(name)
	if ix < 0 {
		return nil
	}
	out := make([]any, 0, len(t.Rows))
	for _, r := range t.Rows {
		if ix < len(r) {
			out = append(out, r[ix])
		} else {
			out = append(out, nil)
		}
	}
	return out
}

// Rename returns a table with columns renamed per mapping (old name -> new
// name). Columns absent from the mapping keep their names. Rows are shared.
func (t Table) Rename(mapping map[string]string) Table {
	if len(mapping) == 0 {
		return t
	}
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		if n, ok := mapping[c]; ok && n != "" {
			cols[i] = n
		} else {
			cols[i] = c
		}
	}
	return Table{Columns: cols, Rows: t.Rows}
}

// Drop returns a table without the named columns. Names not present are
// ignored. Row cells for dropped columns are removed.
func (t Table) Drop(names []string) Table {
	if len(names) == 0 {
		return t
	}
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	keep := make([]int, 0, len(t.Columns))
	cols := make([]string, 0, len(t.Columns))
	for i, c := range t.Columns {
		if _, gone := drop[c]; gone {
			continue
		}
		keep = append(keep, i)
		cols = append(cols, c)
	}
	if len(keep) == len(t.Columns) {
		return t
	}
	return t.project(cols, keep)
}

// Select returns a table restricted to the named columns, in the given order.
// Names not present become all-nil columns so callers can align two tables on
// a shared column list.
func (t Table) Select(names []string) Table {
	keep := make([]int, len(names))
	for i, n := range names {
		keep[i] = t.ColumnIndex(n)
	}
	return t.project(append([]string(nil), names...), keep)
}

func (t Table) project(cols []string, ix []int) Table {
	rows := make([][]any, 0, len(t.Rows))
	for _, r := range t.Rows {
		nr := make([]any, len(ix))
		for j, src := range ix {
			if src >= 0 && src < len(r) {
				nr[j] = r[src]
			}
		}
		rows = append(rows, nr)
	}
	return Table{Columns: cols, Rows: rows}
}

// NullCounts returns the number of nil cells per column, keyed by column name.
// Every column appears in the map, including all-valued ones (count 0); the
// comparator relies on exact structural equality of these maps.
func (t Table) NullCounts() map[string]int {
	out := make(map[string]int, len(t.Columns))
	for _, c := range t.Columns {
		out[c] = 0
	}
	for _, r := range t.Rows {
		for i, c := range t.Columns {
			if i >= len(r) || r[i] == nil {
				out[c]++
			}
		}
	}
	return out
}

// DuplicateCount returns the number of rows that are exact duplicates of an
// earlier row across all columns. A row appearing k times contributes k-1.
func (t Table) DuplicateCount() int {
	seen := make(map[string]struct{}, len(t.Rows))
	dupes := 0
	for _, r := range t.Rows {
		k := RowKey(r, len(t.Columns))
		if _, ok := seen[k]; ok {
			dupes++
			continue
		}
		seen[k] = struct{}{}
	}
	return dupes
}

// CommonColumns returns the sorted intersection of both tables' column sets.
func CommonColumns(a, b Table) []string {
	set := make(map[string]struct{}, len(b.Columns))
	for _, c := range b.Columns {
		set[c] = struct{}{}
	}
	out := make([]string, 0, len(a.Columns))
	for _, c := range a.Columns {
		if _, ok := set[c]; ok {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// rowKeySeparator keeps cell boundaries unambiguous in canonical row keys.
// The null marker cannot collide with a real cell because loaders never emit
// the separator inside a canonicalized null.
const (
	rowKeySeparator = "\u001f"
	nullMarker      = "\u0000null"
)

// RowKey builds a canonical string key for the first width cells of a row.
// nil cells and empty strings produce distinct keys.
func RowKey(row []any, width int) string {
	var b strings.Builder
	for i := 0; i < width; i++ {
		if i > 0 {
			b.WriteString(rowKeySeparator)
		}
		if i >= len(row) || row[i] == nil {
			b.WriteString(nullMarker)
			continue
		}
		b.WriteString(CellString(row[i]))
	}
	return b.String()
}

// CellString converts a cell value to its canonical string form. Loaders that
// cannot guarantee string cells (SQL drivers, parquet readers) route values
// through this before storing them.
func CellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
