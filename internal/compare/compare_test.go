package compare

import (
	"reflect"
	"testing"

	"datacompare/internal/table"
)

func sampleTable() table.Table {
	return table.New(
		[]string{"id", "name", "amount"},
		[][]any{
			{"1", "alice", "100"},
			{"2", "bob", "200"},
			{"3", nil, "300"},
		},
	)
}

func mustCompare(t *testing.T, src, tgt table.Table, mapping map[string]string, ignored []string) Result {
	t.Helper()
	res, err := Compare(src, tgt, mapping, ignored)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	return res
}

func TestCompareEqualTables(t *testing.T) {
	t.Parallel()

	full := table.New(
		[]string{"id", "Column A", "Column B", "Column C"},
		[][]any{
			{"1", "1", "2", "3"},
			{"2", "10", "5", "15"},
		},
	)
	res := mustCompare(t, full, full, nil, nil)

	if got := len(res.Checks); got != 6 {
		t.Fatalf("checks = %d, want 6", got)
	}
	var names []string
	for _, c := range res.Checks {
		names = append(names, c.Name)
	}
	if !reflect.DeepEqual(names, CheckNames()) {
		t.Fatalf("check order = %v", names)
	}

	for _, c := range res.Checks {
		want := c.Name != CheckColumnMapping
		if c.Passed != want {
			t.Fatalf("%s passed = %v, want %v (details=%v)", c.Name, c.Passed, want, c.Details)
		}
	}
	if !res.AllPassed() {
		t.Fatal("AllPassed must ignore column_mapping")
	}
}

func TestRowCountDifference(t *testing.T) {
	t.Parallel()

	tgt := sampleTable()
	tgt.Rows = tgt.Rows[:1]
	res := mustCompare(t, sampleTable(), tgt, nil, nil)

	c := res.Check(CheckRowCount)
	if c.Passed {
		t.Fatal("row_count must fail")
	}
	if c.Details["difference"] != 2 {
		t.Fatalf("difference = %v, want 2", c.Details["difference"])
	}
	if c.Details["source_count"] != 3 || c.Details["target_count"] != 1 {
		t.Fatalf("counts = %v", c.Details)
	}
}

func TestDuplicatesSymmetric(t *testing.T) {
	t.Parallel()

	dupe := []any{"1", "alice", "100"}

	src, tgt := sampleTable(), sampleTable()
	src.Rows = append(src.Rows, dupe)
	tgt.Rows = append(tgt.Rows, dupe)
	if c := mustCompare(t, src, tgt, nil, nil).Check(CheckDuplicates); !c.Passed {
		t.Fatalf("matched duplicate counts must pass: %v", c.Details)
	}

	src, tgt = sampleTable(), sampleTable()
	src.Rows = append(src.Rows, dupe)
	c := mustCompare(t, src, tgt, nil, nil).Check(CheckDuplicates)
	if c.Passed {
		t.Fatal("one-sided duplicate must fail")
	}
	if c.Details["source_duplicates"] != 1 || c.Details["target_duplicates"] != 0 {
		t.Fatalf("details = %v", c.Details)
	}
}

func TestNullValuesPerColumn(t *testing.T) {
	t.Parallel()

	// Same total null count (one each) in different columns.
	src := table.New([]string{"a", "b"}, [][]any{{nil, "x"}, {"1", "y"}})
	tgt := table.New([]string{"a", "b"}, [][]any{{"1", nil}, {"1", "y"}})

	c := mustCompare(t, src, tgt, nil, nil).Check(CheckNullValues)
	if c.Passed {
		t.Fatal("per-column null mismatch must fail even when totals agree")
	}
}

func TestBusinessRules(t *testing.T) {
	t.Parallel()

	ruled := func(c string) table.Table {
		return table.New(
			[]string{"Column A", "Column B", "Column C"},
			[][]any{
				{"1", "2", "3"},
				{"10", "5", c},
			},
		)
	}

	if c := mustCompare(t, ruled("15"), ruled("15"), nil, nil).Check(CheckBusinessRules); !c.Passed {
		t.Fatalf("A+B==C must pass: %v", c.Details)
	}

	c := mustCompare(t, ruled("15"), ruled("16"), nil, nil).Check(CheckBusinessRules)
	if c.Passed {
		t.Fatal("A+B!=C must fail")
	}
	if c.Details["mismatches"] != 1 {
		t.Fatalf("mismatches = %v, want 1", c.Details["mismatches"])
	}
}

func TestBusinessRulesNotApplicable(t *testing.T) {
	t.Parallel()

	c := mustCompare(t, sampleTable(), sampleTable(), nil, nil).Check(CheckBusinessRules)
	if c.Passed || len(c.Details) != 0 {
		t.Fatalf("check must stay at default state: passed=%v details=%v", c.Passed, c.Details)
	}
}

func TestBusinessRulesRespectsIgnoredColumns(t *testing.T) {
	t.Parallel()

	tab := table.New(
		[]string{"Column A", "Column B", "Column C"},
		[][]any{{"1", "2", "3"}},
	)
	c := mustCompare(t, tab, tab, nil, []string{"Column C"}).Check(CheckBusinessRules)
	if c.Passed || len(c.Details) != 0 {
		t.Fatal("rule must not run once a rule column is excluded")
	}
}

func TestCompareAppliesMappingAndExclusions(t *testing.T) {
	t.Parallel()

	src := table.New([]string{"full_name", "extra"}, [][]any{{"alice", "x"}})
	tgt := table.New([]string{"name", "extra"}, [][]any{{"alice", "y"}})

	res := mustCompare(t, src, tgt, map[string]string{"full_name": "name"}, []string{"extra"})
	if !reflect.DeepEqual(res.Source.Columns, []string{"name"}) {
		t.Fatalf("prepared source columns = %v", res.Source.Columns)
	}
	if !res.AllPassed() {
		for _, c := range res.Checks {
			if !c.Passed && c.Name != CheckColumnMapping {
				t.Fatalf("%s failed: %v", c.Name, c.Details)
			}
		}
	}
}

func TestDataQualityMixedColumn(t *testing.T) {
	t.Parallel()

	// "amount" is numeric on the source side but not on the target side.
	src := table.New([]string{"amount"}, [][]any{{"1"}, {"2"}})
	tgt := table.New([]string{"amount"}, [][]any{{"1"}, {"oops"}})

	c := mustCompare(t, src, tgt, nil, nil).Check(CheckDataQuality)
	if c.Passed {
		t.Fatal("type drift across sides must fail data_quality")
	}
	if _, ok := c.Details["expectations"]; !ok {
		t.Fatalf("details = %v, want expectations list", c.Details)
	}
}

func TestDataQualityEmptyTableFails(t *testing.T) {
	t.Parallel()

	c := mustCompare(t, table.Empty(), sampleTable(), nil, nil).Check(CheckDataQuality)
	if c.Passed {
		t.Fatal("empty side must fail the row-count expectation")
	}
}

func TestColumnMappingNeverPopulated(t *testing.T) {
	t.Parallel()

	c := mustCompare(t, sampleTable(), sampleTable(), nil, nil).Check(CheckColumnMapping)
	if c.Passed {
		t.Fatal("column_mapping never passes")
	}
	if len(c.Details) != 0 {
		t.Fatalf("details = %v, want empty", c.Details)
	}
}
