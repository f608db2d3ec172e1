// Package expect evaluates named data-quality expectations against a table.
//
// An expectation is a single assertion ("row count at least 1", "columns
// match this ordered list", "column values are numeric") that yields a
// pass/fail outcome plus a structured result payload. The comparator builds
// a battery of expectations per side and folds their outcomes into the
// data_quality check.
package expect

import (
	"fmt"
	"strconv"
	"strings"

	"datacompare/internal/profile"
	"datacompare/internal/table"
)

// Expectation type labels, carried into outcomes and reports.
const (
	TypeRowCountAtLeast  = "expect_table_row_count_to_be_at_least"
	TypeColumnsOrdered   = "expect_table_columns_to_match_ordered_list"
	TypeColumnValueTypes = "expect_column_values_to_be_of_type"
)

// Expectation is one assertion against a table. Build them with the
// constructors below; Eval dispatches on Type.
type Expectation struct {
	Type string

	// RowCountAtLeast
	MinRows int

	// ColumnsOrdered
	Columns []string

	// ColumnValueTypes
	Column    string
	ValueType string // profile.TypeInteger/TypeFloat => numeric; anything else => non-numeric
}

// Outcome is the result of evaluating one expectation.
type Outcome struct {
	Type    string         `json:"expectation_type"`
	Success bool           `json:"success"`
	Result  map[string]any `json:"result"`
}

// RowCountAtLeast asserts the table has at least min rows.
func RowCountAtLeast(min int) Expectation {
	return Expectation{Type: TypeRowCountAtLeast, MinRows: min}
}

// ColumnsMatchOrderedList asserts the table's columns equal cols, in order.
func ColumnsMatchOrderedList(cols []string) Expectation {
	return Expectation{Type: TypeColumnsOrdered, Columns: append([]string(nil), cols...)}
}

// ColumnValuesOfType asserts the values of column are consistent with
// valueType: numeric types require every non-null value to parse as a
// number; non-numeric types require that the column is not all-numeric.
func ColumnValuesOfType(column, valueType string) Expectation {
	return Expectation{Type: TypeColumnValueTypes, Column: column, ValueType: valueType}
}

// Evaluate runs every expectation against t and returns outcomes in order.
// Evaluation never fails; unknown expectation types yield a failed outcome
// describing the problem.
func Evaluate(t table.Table, exps []Expectation) []Outcome {
	out := make([]Outcome, 0, len(exps))
	for _, e := range exps {
		out = append(out, Eval(t, e))
	}
	return out
}

// Eval runs a single expectation.
func Eval(t table.Table, e Expectation) Outcome {
	switch e.Type {
	case TypeRowCountAtLeast:
		return evalRowCount(t, e)
	case TypeColumnsOrdered:
		return evalColumnsOrdered(t, e)
	case TypeColumnValueTypes:
		return evalColumnValueTypes(t, e)
	default:
		return Outcome{
			Type:    e.Type,
			Success: false,
			Result:  map[string]any{"error": fmt.Sprintf("unknown expectation type %q", e.Type)},
		}
	}
}

func evalRowCount(t table.Table, e Expectation) Outcome {
	n := t.NumRows()
	return Outcome{
		Type:    e.Type,
		Success: n >= e.MinRows,
		Result: map[string]any{
			"observed_value": n,
			"min_value":      e.MinRows,
		},
	}
}

func evalColumnsOrdered(t table.Table, e Expectation) Outcome {
	ok := len(t.Columns) == len(e.Columns)
	if ok {
		for i := range e.Columns {
			if t.Columns[i] != e.Columns[i] {
				ok = false
				break
			}
		}
	}
	return Outcome{
		Type:    e.Type,
		Success: ok,
		Result: map[string]any{
			"observed_value": append([]string(nil), t.Columns...),
			"expected_value": append([]string(nil), e.Columns...),
		},
	}
}

func evalColumnValueTypes(t table.Table, e Expectation) Outcome {
	cells := t.Column(e.Column)
	res := map[string]any{
		"column":        e.Column,
		"expected_type": e.ValueType,
	}

	if !t.HasColumn(e.Column) {
		res["error"] = "column not found"
		return Outcome{Type: e.Type, Success: false, Result: res}
	}

	values := 0
	numeric := 0
	for _, c := range cells {
		if c == nil {
			continue
		}
		v := strings.TrimSpace(table.CellString(c))
		if v == "" {
			continue
		}
		values++
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			numeric++
		}
	}
	res["element_count"] = values

	if profile.IsNumericType(e.ValueType) {
		// Numeric expectation: every meaningful value must parse as a number.
		res["unexpected_count"] = values - numeric
		return Outcome{Type: e.Type, Success: numeric == values, Result: res}
	}

	// Non-numeric expectation: an all-numeric column is a type mismatch.
	// Vacuously true when the column holds no meaningful values.
	success := values == 0 || numeric < values
	if !success {
		res["unexpected_count"] = numeric
	} else {
		res["unexpected_count"] = 0
	}
	return Outcome{Type: e.Type, Success: success, Result: res}
}

// AllPassed reports whether every outcome succeeded.
func AllPassed(outs []Outcome) bool {
	for _, o := range outs {
		if !o.Success {
			return false
		}
	}
	return true
}
