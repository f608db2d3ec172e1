// Package metadata reads batch comparison jobs from an xlsx workbook.
//
// The first sheet holds one job per row under a header row. Recognized
// headers: ComparisonType, Filename1, Filename2, Separator1, Separator2,
// ColumnMapping, IgnoredColumns, SkipFile. Unknown headers are ignored.
package metadata

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"datacompare/internal/source"
)

// comparisonFeedToFeed is the only comparison type the driver handles.
// Rows carrying any other type are skipped.
const comparisonFeedToFeed = "Feed To Feed"

// Job is one comparison drawn from a metadata row. Both sides are
// delimited feeds.
type Job struct {
	ComparisonType  string
	SourceFile      string
	TargetFile      string
	SourceSeparator rune
	TargetSeparator rune
	Mapping         map[string]string
	Ignored         []string
}

// SourceConfig returns the loader configuration for the job's source side.
func (j Job) SourceConfig() source.Config {
	return source.Config{Kind: source.KindCSV, Input: j.SourceFile, Separator: j.SourceSeparator}
}

// TargetConfig returns the loader configuration for the job's target side.
func (j Job) TargetConfig() source.Config {
	return source.Config{Kind: source.KindCSV, Input: j.TargetFile, Separator: j.TargetSeparator}
}

// Name identifies the job in logs and summaries.
func (j Job) Name() string {
	return j.SourceFile + " vs " + j.TargetFile
}

// Jobs reads the workbook at path and returns the runnable jobs, in row
// order. Rows whose SkipFile cell starts with "#" are skipped, as are rows
// whose ComparisonType is not "Feed To Feed".
func Jobs(path string) ([]Job, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open metadata workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read metadata sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	col := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		col[strings.TrimSpace(h)] = i
	}
	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var jobs []Job
	for _, row := range rows[1:] {
		if strings.HasPrefix(cell(row, "SkipFile"), "#") {
			continue
		}
		if cell(row, "ComparisonType") != comparisonFeedToFeed {
			continue
		}
		jobs = append(jobs, Job{
			ComparisonType:  comparisonFeedToFeed,
			SourceFile:      cell(row, "Filename1"),
			TargetFile:      cell(row, "Filename2"),
			SourceSeparator: separatorRune(cell(row, "Separator1")),
			TargetSeparator: separatorRune(cell(row, "Separator2")),
			Mapping:         ParseColumnMapping(cell(row, "ColumnMapping")),
			Ignored:         ParseIgnoredColumns(cell(row, "IgnoredColumns")),
		})
	}
	return jobs, nil
}

// ParseColumnMapping parses "old:new,old:new" into a rename mapping. Any
// malformed pair invalidates the whole mapping: the result is empty and no
// error is reported.
func ParseColumnMapping(s string) map[string]string {
	out := make(map[string]string)
	if strings.TrimSpace(s) == "" {
		return out
	}
	for _, pair := range strings.Split(s, ",") {
		parts := strings.Split(pair, ":")
		if len(parts) != 2 {
			return map[string]string{}
		}
		from, to := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if from == "" || to == "" {
			return map[string]string{}
		}
		out[from] = to
	}
	return out
}

// ParseIgnoredColumns parses a comma-separated column list. Blank input
// yields nil; blank entries are dropped.
func ParseIgnoredColumns(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func separatorRune(s string) rune {
	for _, r := range s {
		return r
	}
	return ','
}
