// Package compare runs the fixed comparison check set over a source and a
// target table.
//
// Before any check runs, the rename mapping is applied to the source side
// and the ignored columns are dropped from both sides. Checks then see only
// the prepared tables.
package compare

import (
	"math"
	"reflect"
	"strconv"

	"datacompare/internal/expect"
	"datacompare/internal/profile"
	"datacompare/internal/table"
)

// Check names, in report order.
const (
	CheckRowCount      = "row_count"
	CheckDuplicates    = "duplicates"
	CheckNullValues    = "null_values"
	CheckBusinessRules = "business_rules"
	CheckDataQuality   = "data_quality"
	CheckColumnMapping = "column_mapping"
)

// CheckNames lists every check every comparison reports, in order.
func CheckNames() []string {
	return []string{
		CheckRowCount, CheckDuplicates, CheckNullValues,
		CheckBusinessRules, CheckDataQuality, CheckColumnMapping,
	}
}

// Business-rule columns: rows must satisfy "Column A" + "Column B" ==
// "Column C". The rule only applies when all three survive preparation on
// both sides.
const (
	ruleColA = "Column A"
	ruleColB = "Column B"
	ruleColC = "Column C"
)

// ruleEpsilon absorbs float formatting noise in the A+B==C comparison.
const ruleEpsilon = 1e-9

// Check is one named check outcome. Details is check-specific and feeds the
// summary report verbatim.
type Check struct {
	Name    string
	Passed  bool
	Details map[string]any
}

// Result is a full comparison outcome. Source and Target are the prepared
// tables (mapping applied, ignored columns dropped); the diff and profiling
// reports run over these, not the raw inputs.
type Result struct {
	Checks []Check
	Source table.Table
	Target table.Table
}

// Check returns the named check, or a zero Check when absent.
func (r Result) Check(name string) Check {
	for _, c := range r.Checks {
		if c.Name == name {
			return c
		}
	}
	return Check{Name: name}
}

// AllPassed reports whether every evaluated check passed. column_mapping
// never passes and business_rules stays unevaluated when the rule columns
// are absent; both are skipped, otherwise every run would count as failed.
func (r Result) AllPassed() bool {
	for _, c := range r.Checks {
		if c.Name == CheckColumnMapping {
			continue
		}
		if c.Name == CheckBusinessRules && len(c.Details) == 0 {
			continue
		}
		if !c.Passed {
			return false
		}
	}
	return true
}

// Compare prepares both tables and evaluates the full check set. Any
// failure aborts the whole comparison; there are no partial results.
func Compare(source, target table.Table, mapping map[string]string, ignored []string) (Result, error) {
	src := source.Rename(mapping).Drop(ignored)
	tgt := target.Drop(ignored)

	checks := []Check{
		rowCountCheck(src, tgt),
		duplicatesCheck(src, tgt),
		nullValuesCheck(src, tgt),
		businessRulesCheck(src, tgt),
		dataQualityCheck(src, tgt),
		{Name: CheckColumnMapping, Details: map[string]any{}},
	}
	return Result{Checks: checks, Source: src, Target: tgt}, nil
}

func rowCountCheck(src, tgt table.Table) Check {
	s, t := src.NumRows(), tgt.NumRows()
	diff := s - t
	if diff < 0 {
		diff = -diff
	}
	return Check{
		Name:   CheckRowCount,
		Passed: s == t,
		Details: map[string]any{
			"source_count": s,
			"target_count": t,
			"difference":   diff,
		},
	}
}

func duplicatesCheck(src, tgt table.Table) Check {
	s, t := src.DuplicateCount(), tgt.DuplicateCount()
	return Check{
		Name:   CheckDuplicates,
		Passed: s == t,
		Details: map[string]any{
			"source_duplicates": s,
			"target_duplicates": t,
		},
	}
}

func nullValuesCheck(src, tgt table.Table) Check {
	s, t := src.NullCounts(), tgt.NullCounts()
	return Check{
		Name:   CheckNullValues,
		Passed: reflect.DeepEqual(s, t),
		Details: map[string]any{
			"source_nulls": s,
			"target_nulls": t,
		},
	}
}

// businessRulesCheck verifies source A + source B == target C row by row.
// Rows are aligned by position; a length mismatch counts the unpaired rows
// as mismatches. Values that do not parse as numbers mismatch too.
func businessRulesCheck(src, tgt table.Table) Check {
	check := Check{Name: CheckBusinessRules, Details: map[string]any{}}

	common := make(map[string]bool)
	for _, c := range table.CommonColumns(src, tgt) {
		common[c] = true
	}
	if !common[ruleColA] || !common[ruleColB] || !common[ruleColC] {
		return check
	}

	colA := src.Column(ruleColA)
	colB := src.Column(ruleColB)
	colC := tgt.Column(ruleColC)

	n := len(colA)
	if len(colC) < n {
		n = len(colC)
	}

	mismatches := 0
	for i := 0; i < n; i++ {
		a, okA := numericCell(colA[i])
		b, okB := numericCell(colB[i])
		c, okC := numericCell(colC[i])
		if !okA || !okB || !okC || math.Abs(a+b-c) > ruleEpsilon {
			mismatches++
		}
	}
	if extra := len(colA) - len(colC); extra != 0 {
		if extra < 0 {
			extra = -extra
		}
		mismatches += extra
	}

	check.Passed = mismatches == 0
	check.Details["rule_satisfied"] = check.Passed
	check.Details["mismatches"] = mismatches
	return check
}

// dataQualityCheck evaluates the expectation set: each side must be
// non-empty and keep its column order, and every column common to both
// sides must be consistently numeric or non-numeric, with the expected
// type inferred from the source side.
func dataQualityCheck(src, tgt table.Table) Check {
	exps := []expect.Outcome{
		expect.Eval(src, expect.RowCountAtLeast(1)),
		expect.Eval(src, expect.ColumnsMatchOrderedList(src.Columns)),
		expect.Eval(tgt, expect.RowCountAtLeast(1)),
		expect.Eval(tgt, expect.ColumnsMatchOrderedList(tgt.Columns)),
	}

	for _, col := range table.CommonColumns(src, tgt) {
		want := profile.TypeText
		if profile.IsNumericType(profile.InferType(src.Column(col))) {
			want = profile.TypeFloat
		}
		exps = append(exps,
			expect.Eval(src, expect.ColumnValuesOfType(col, want)),
			expect.Eval(tgt, expect.ColumnValuesOfType(col, want)),
		)
	}

	return Check{
		Name:    CheckDataQuality,
		Passed:  expect.AllPassed(exps),
		Details: map[string]any{"expectations": exps},
	}
}

func numericCell(v any) (float64, bool) {
	s := table.CellString(v)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
