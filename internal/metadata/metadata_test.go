package metadata

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	p := filepath.Join(t.TempDir(), "metadata.xlsx")
	if err := f.SaveAs(p); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return p
}

var header = []any{
	"ComparisonType", "Filename1", "Filename2",
	"Separator1", "Separator2", "ColumnMapping", "IgnoredColumns", "SkipFile",
}

func TestJobs(t *testing.T) {
	t.Parallel()

	p := writeWorkbook(t, [][]any{
		header,
		{"Feed To Feed", "a.csv", "b.csv", ",", "|", "full_name:name", "id,ts", ""},
		{"Feed To Feed", "skip1.csv", "skip2.csv", "", "", "", "", "#not today"},
		{"Feed To DB", "c.csv", "d.csv", "", "", "", "", ""},
		{"Feed To Feed", "e.csv", "f.csv", "", "", "", "", ""},
	})

	jobs, err := Jobs(p)
	if err != nil {
		t.Fatalf("Jobs: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("jobs = %d, want 2 (%+v)", len(jobs), jobs)
	}

	j := jobs[0]
	if j.SourceFile != "a.csv" || j.TargetFile != "b.csv" {
		t.Fatalf("files = %s, %s", j.SourceFile, j.TargetFile)
	}
	if j.SourceSeparator != ',' || j.TargetSeparator != '|' {
		t.Fatalf("separators = %q, %q", j.SourceSeparator, j.TargetSeparator)
	}
	if !reflect.DeepEqual(j.Mapping, map[string]string{"full_name": "name"}) {
		t.Fatalf("mapping = %v", j.Mapping)
	}
	if !reflect.DeepEqual(j.Ignored, []string{"id", "ts"}) {
		t.Fatalf("ignored = %v", j.Ignored)
	}

	if jobs[1].SourceSeparator != ',' {
		t.Fatalf("blank separator must default to comma, got %q", jobs[1].SourceSeparator)
	}
	if jobs[1].Name() != "e.csv vs f.csv" {
		t.Fatalf("name = %q", jobs[1].Name())
	}
}

func TestJobsMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Jobs(filepath.Join(t.TempDir(), "nope.xlsx")); err == nil {
		t.Fatal("want error for missing workbook")
	}
}

func TestParseColumnMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want map[string]string
	}{
		{"empty", "", map[string]string{}},
		{"single pair", "a:b", map[string]string{"a": "b"}},
		{"two pairs with spaces", " a : b , c:d", map[string]string{"a": "b", "c": "d"}},
		{"missing colon drops everything", "a:b,cd", map[string]string{}},
		{"double colon drops everything", "a:b:c", map[string]string{}},
		{"blank side drops everything", "a:,c:d", map[string]string{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ParseColumnMapping(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ParseColumnMapping(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseIgnoredColumns(t *testing.T) {
	t.Parallel()

	if got := ParseIgnoredColumns(""); got != nil {
		t.Fatalf("empty input = %v, want nil", got)
	}
	if got := ParseIgnoredColumns(" id , ts ,,name"); !reflect.DeepEqual(got, []string{"id", "ts", "name"}) {
		t.Fatalf("got %v", got)
	}
}
