package expect

import (
	"testing"

	"datacompare/internal/profile"
	"datacompare/internal/table"
)

func TestRowCountAtLeast(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rows int
		min  int
		want bool
	}{
		{"meets minimum", 3, 1, true},
		{"exact minimum", 1, 1, true},
		{"empty fails", 0, 1, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rows := make([][]any, tt.rows)
			for i := range rows {
				rows[i] = []any{"x"}
			}
			tab := table.New([]string{"c"}, rows)

			o := Eval(tab, RowCountAtLeast(tt.min))
			if o.Success != tt.want {
				t.Fatalf("success = %v, want %v (result=%v)", o.Success, tt.want, o.Result)
			}
			if o.Result["observed_value"] != tt.rows {
				t.Fatalf("observed_value = %v, want %d", o.Result["observed_value"], tt.rows)
			}
		})
	}
}

func TestColumnsMatchOrderedList(t *testing.T) {
	t.Parallel()

	tab := table.New([]string{"a", "b"}, nil)

	if o := Eval(tab, ColumnsMatchOrderedList([]string{"a", "b"})); !o.Success {
		t.Fatalf("expected match, got %v", o.Result)
	}
	if o := Eval(tab, ColumnsMatchOrderedList([]string{"b", "a"})); o.Success {
		t.Fatal("order must matter")
	}
	if o := Eval(tab, ColumnsMatchOrderedList([]string{"a"})); o.Success {
		t.Fatal("length must matter")
	}
}

func TestColumnValuesOfType(t *testing.T) {
	t.Parallel()

	tab := table.New(
		[]string{"num", "txt", "mixed", "blank"},
		[][]any{
			{"1", "alice", "1", nil},
			{"2.5", "bob", "oops", nil},
			{nil, "7", "3", nil},
		},
	)

	tests := []struct {
		name string
		col  string
		vt   string
		want bool
	}{
		{"numeric column numeric expectation", "num", profile.TypeFloat, true},
		{"text column numeric expectation", "txt", profile.TypeInteger, false},
		{"text column text expectation", "txt", profile.TypeText, true},
		{"numeric column text expectation", "num", profile.TypeText, false},
		{"mixed column numeric expectation", "mixed", profile.TypeFloat, false},
		{"mixed column text expectation", "mixed", profile.TypeText, true},
		{"all null column numeric", "blank", profile.TypeInteger, true},
		{"all null column text", "blank", profile.TypeText, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			o := Eval(tab, ColumnValuesOfType(tt.col, tt.vt))
			if o.Success != tt.want {
				t.Fatalf("success = %v, want %v (result=%v)", o.Success, tt.want, o.Result)
			}
		})
	}
}

func TestColumnValuesOfTypeMissingColumn(t *testing.T) {
	t.Parallel()

	tab := table.New([]string{"a"}, nil)
	o := Eval(tab, ColumnValuesOfType("nope", profile.TypeText))
	if o.Success {
		t.Fatal("missing column must fail")
	}
}

func TestEvaluateAndAllPassed(t *testing.T) {
	t.Parallel()

	tab := table.New([]string{"a"}, [][]any{{"1"}})
	outs := Evaluate(tab, []Expectation{
		RowCountAtLeast(1),
		ColumnsMatchOrderedList([]string{"a"}),
	})
	if len(outs) != 2 || !AllPassed(outs) {
		t.Fatalf("outcomes = %+v", outs)
	}

	outs = append(outs, Eval(tab, RowCountAtLeast(5)))
	if AllPassed(outs) {
		t.Fatal("AllPassed must notice a failure")
	}
}
