package table

import (
	"reflect"
	"testing"
)

func sample() Table {
	return New(
		[]string{"id", "name", "salary"},
		[][]any{
			{"1", "alice", "100"},
			{"2", "bob", nil},
			{"3", nil, "300"},
		},
	)
}

func TestRename(t *testing.T) {
	t.Parallel()

	got := sample().Rename(map[string]string{"name": "full_name", "missing": "x"})
	want := []string{"id", "full_name", "salary"}
	if !reflect.DeepEqual(got.Columns, want) {
		t.Fatalf("Rename columns = %v, want %v", got.Columns, want)
	}
	// Rows are shared, not copied.
	if got.NumRows() != 3 {
		t.Fatalf("Rename rows = %d, want 3", got.NumRows())
	}
}

func TestDrop(t *testing.T) {
	t.Parallel()

	got := sample().Drop([]string{"salary", "not_there"})
	if !reflect.DeepEqual(got.Columns, []string{"id", "name"}) {
		t.Fatalf("Drop columns = %v", got.Columns)
	}
	for i, r := range got.Rows {
		if len(r) != 2 {
			t.Fatalf("row %d width = %d, want 2", i, len(r))
		}
	}
}

func TestSelectAlignsMissingColumns(t *testing.T) {
	t.Parallel()

	got := sample().Select([]string{"name", "bonus"})
	if !reflect.DeepEqual(got.Columns, []string{"name", "bonus"}) {
		t.Fatalf("Select columns = %v", got.Columns)
	}
	if got.Rows[0][1] != nil {
		t.Fatalf("missing column cell = %v, want nil", got.Rows[0][1])
	}
	if got.Rows[0][0] != "alice" {
		t.Fatalf("selected cell = %v, want alice", got.Rows[0][0])
	}
}

func TestNullCounts(t *testing.T) {
	t.Parallel()

	got := sample().NullCounts()
	want := map[string]int{"id": 0, "name": 1, "salary": 1}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NullCounts = %v, want %v", got, want)
	}
}

func TestDuplicateCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rows [][]any
		want int
	}{
		{"no duplicates", [][]any{{"a", "b"}, {"a", "c"}}, 0},
		{"one duplicate", [][]any{{"a", "b"}, {"a", "b"}}, 1},
		{"triple counts twice", [][]any{{"a", "b"}, {"a", "b"}, {"a", "b"}}, 2},
		{"nil and empty differ", [][]any{{"a", nil}, {"a", ""}}, 0},
		{"nil matches nil", [][]any{{"a", nil}, {"a", nil}}, 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tab := New([]string{"x", "y"}, tt.rows)
			if got := tab.DuplicateCount(); got != tt.want {
				t.Fatalf("DuplicateCount = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCommonColumnsSorted(t *testing.T) {
	t.Parallel()

	a := New([]string{"c", "a", "b"}, nil)
	b := New([]string{"b", "c", "z"}, nil)
	got := CommonColumns(a, b)
	if !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Fatalf("CommonColumns = %v", got)
	}
}

func TestRowKeyDistinguishesBoundaries(t *testing.T) {
	t.Parallel()

	a := RowKey([]any{"ab", "c"}, 2)
	b := RowKey([]any{"a", "bc"}, 2)
	if a == b {
		t.Fatalf("RowKey collided: %q", a)
	}
	if RowKey([]any{nil}, 1) == RowKey([]any{""}, 1) {
		t.Fatal("RowKey: nil and empty string must differ")
	}
}

func TestNewPadsShortRows(t *testing.T) {
	t.Parallel()

	tab := New([]string{"a", "b", "c"}, [][]any{{"1"}})
	if len(tab.Rows[0]) != 3 {
		t.Fatalf("row width = %d, want 3", len(tab.Rows[0]))
	}
	if tab.Rows[0][2] != nil {
		t.Fatalf("padded cell = %v, want nil", tab.Rows[0][2])
	}
}
