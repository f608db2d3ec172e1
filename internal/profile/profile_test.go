package profile

import (
	"fmt"
	"testing"

	"datacompare/internal/table"
)

func TestInferType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		cells []any
		want  string
	}{
		{"integers", []any{"1", "2", "3"}, TypeInteger},
		{"floats", []any{"1.5", "2", "3.25"}, TypeFloat},
		{"booleans", []any{"true", "false", "yes"}, TypeBoolean},
		{"zero one is integer", []any{"0", "1"}, TypeInteger},
		{"text", []any{"a", "b"}, TypeText},
		{"mixed", []any{"1", "a"}, TypeText},
		{"nulls ignored", []any{nil, "2", nil}, TypeInteger},
		{"all null is text", []any{nil, nil}, TypeText},
		{"blank ignored", []any{"", "3"}, TypeInteger},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := InferType(tt.cells); got != tt.want {
				t.Fatalf("InferType = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildNumericAggregates(t *testing.T) {
	t.Parallel()

	tab := table.New(
		[]string{"salary", "name"},
		[][]any{
			{"100", "alice"},
			{"300", "bob"},
			{nil, "carol"},
		},
	)
	p := Build("source", tab)

	if p.Rows != 3 || len(p.Columns) != 2 {
		t.Fatalf("profile shape rows=%d cols=%d", p.Rows, len(p.Columns))
	}

	sal := p.Columns[0]
	if sal.Name != "salary" || !sal.Numeric {
		t.Fatalf("salary profile = %+v", sal)
	}
	if sal.Min != 100 || sal.Max != 300 || sal.Mean != 200 {
		t.Fatalf("salary aggregates min=%v max=%v mean=%v", sal.Min, sal.Max, sal.Mean)
	}
	if sal.Nulls != 1 || sal.Values != 2 || sal.Distinct != 2 {
		t.Fatalf("salary counts = %+v", sal)
	}

	name := p.Columns[1]
	if name.Numeric {
		t.Fatalf("name column should not be numeric: %+v", name)
	}
	if name.Type != TypeText {
		t.Fatalf("name type = %q", name.Type)
	}
}

func TestDistinctCapping(t *testing.T) {
	t.Parallel()

	rows := make([][]any, 0, distinctCapPerColumn+100)
	for i := 0; i < distinctCapPerColumn+100; i++ {
		rows = append(rows, []any{fmt.Sprintf("v%d", i)})
	}
	p := Build("big", table.New([]string{"c"}, rows))

	c := p.Columns[0]
	if !c.Capped {
		t.Fatal("expected distinct counting to cap")
	}
	if c.Distinct != distinctCapPerColumn {
		t.Fatalf("Distinct = %d, want %d", c.Distinct, distinctCapPerColumn)
	}
}
