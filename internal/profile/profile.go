// Package profile computes per-column summaries of a table: inferred type,
// null and distinct counts, and numeric aggregates. The profiling-comparison
// report renders two of these side by side.
//
// Design constraints:
//   - Profiling is best-effort and must never fail the run.
//   - Distinct counting is bounded in memory per column.
package profile

import (
	"sort"
	"strconv"
	"strings"

	"datacompare/internal/table"
)

// distinctCapPerColumn bounds distinct-value tracking per column. Once the
// cap is reached the backing set is dropped and the column is marked capped.
const distinctCapPerColumn = 10000

// sampleValuesPerColumn is how many example values a column profile keeps.
const sampleValuesPerColumn = 5

// Column types inferred from cell values.
const (
	TypeInteger = "integer"
	TypeFloat   = "float"
	TypeBoolean = "boolean"
	TypeText    = "text"
)

// ColumnProfile summarizes one column.
type ColumnProfile struct {
	Name     string
	Type     string
	Values   int // rows with a meaningful (non-null, non-blank) value
	Nulls    int
	Distinct int
	Capped   bool

	// Numeric aggregates; only meaningful when Numeric is true.
	Numeric bool
	Min     float64
	Max     float64
	Mean    float64

	Samples []string
}

// Profile is the per-table profiling result.
type Profile struct {
	Title   string
	Rows    int
	Columns []ColumnProfile
}

// Build profiles every column of t. It never fails: malformed cells count as
// text, blank cells count as nulls.
func Build(title string, t table.Table) Profile {
	p := Profile{
		Title:   title,
		Rows:    t.NumRows(),
		Columns: make([]ColumnProfile, 0, len(t.Columns)),
	}

	for _, name := range t.Columns {
		p.Columns = append(p.Columns, profileColumn(name, t.Column(name)))
	}
	return p
}

func profileColumn(name string, cells []any) ColumnProfile {
	cp := ColumnProfile{Name: name, Type: InferType(cells)}

	distinct := make(map[string]struct{})
	var sum float64
	numericCount := 0

	for _, c := range cells {
		v := strings.TrimSpace(table.CellString(c))
		if c == nil || v == "" {
			cp.Nulls++
			continue
		}
		cp.Values++

		if !cp.Capped {
			distinct[v] = struct{}{}
			if len(distinct) >= distinctCapPerColumn {
				cp.Capped = true
				cp.Distinct = distinctCapPerColumn
				distinct = nil
			}
		}

		if len(cp.Samples) < sampleValuesPerColumn {
			if !containsString(cp.Samples, v) {
				cp.Samples = append(cp.Samples, v)
			}
		}

		if f, err := strconv.ParseFloat(v, 64); err == nil {
			if numericCount == 0 || f < cp.Min {
				cp.Min = f
			}
			if numericCount == 0 || f > cp.Max {
				cp.Max = f
			}
			sum += f
			numericCount++
		}
	}

	if !cp.Capped {
		cp.Distinct = len(distinct)
	}
	if numericCount > 0 && numericCount == cp.Values {
		cp.Numeric = true
		cp.Mean = sum / float64(numericCount)
	}
	sort.Strings(cp.Samples)
	return cp
}

// InferType infers a coarse type for a column from its cell values.
// Returned labels: "integer", "float", "boolean", "text".
//
// Blank and null cells are skipped; a column with no meaningful values is
// "text". More specific types win: integer > boolean > float > text.
func InferType(cells []any) string {
	var seen bool
	allInt := true
	allFloat := true
	allBool := true

	for _, c := range cells {
		if c == nil {
			continue
		}
		v := strings.TrimSpace(table.CellString(c))
		if v == "" {
			continue
		}
		seen = true

		if allInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				allInt = false
			}
		}
		if allFloat {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				allFloat = false
			}
		}
		if allBool {
			if _, ok := parseBoolLoose(v); !ok {
				allBool = false
			}
		}
		if !allInt && !allFloat && !allBool {
			break
		}
	}

	if !seen {
		return TypeText
	}
	switch {
	case allInt:
		return TypeInteger
	case allBool:
		return TypeBoolean
	case allFloat:
		return TypeFloat
	default:
		return TypeText
	}
}

// IsNumericType reports whether an inference label is numeric.
func IsNumericType(t string) bool { return t == TypeInteger || t == TypeFloat }

func parseBoolLoose(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "yes", "y":
		return true, true
	case "0", "f", "false", "no", "n":
		return false, true
	default:
		return false, false
	}
}

func containsString(ss []string, v string) bool {
	for _, s := range ss {
		if s == v {
			return true
		}
	}
	return false
}
