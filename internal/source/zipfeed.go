package source

import (
	"archive/zip"
	"context"
	"path"
	"sort"
	"strings"

	"datacompare/internal/table"
)

// zipLoader reads every flat file inside a zip archive and concatenates the
// results into one table. Entries are parsed with the same delimited rules
// as standalone CSV/Dat files and visited in name order, so the stacked row
// order is deterministic.
type zipLoader struct {
	cfg Config
}

func (l *zipLoader) Load(ctx context.Context) (table.Table, error) {
	if strings.TrimSpace(l.cfg.Input) == "" {
		return table.Empty(), nil
	}

	zr, err := zip.OpenReader(l.cfg.Input)
	if err != nil {
		return table.Empty(), wrapLoad(l.cfg.Kind, err)
	}
	defer zr.Close()

	var files []*zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !isFlatFile(f.Name) {
			continue
		}
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	out := table.Empty()
	for _, f := range files {
		t, err := l.loadEntry(ctx, f)
		if err != nil {
			return table.Empty(), wrapLoad(l.cfg.Kind, err)
		}
		out = stack(out, t)
	}
	return out, nil
}

func (l *zipLoader) loadEntry(ctx context.Context, f *zip.File) (table.Table, error) {
	rc, err := f.Open()
	if err != nil {
		return table.Empty(), err
	}
	defer rc.Close()
	return parseDelimited(ctx, rc, sepOrDefault(l.cfg.Separator), l.cfg.Encoding)
}

// isFlatFile reports whether a zip entry name looks like delimited text.
func isFlatFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".csv", ".txt", ".dat":
		return true
	}
	return false
}

// stack appends b's rows under a's, aligning columns by name. The combined
// column set is a's columns followed by b's extras; rows from either side
// carry nil for columns the other side introduced.
func stack(a, b table.Table) table.Table {
	if a.IsEmpty() && len(a.Columns) == 0 {
		return b
	}
	if b.IsEmpty() && len(b.Columns) == 0 {
		return a
	}

	columns := append([]string(nil), a.Columns...)
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		seen[c] = true
	}
	for _, c := range b.Columns {
		if !seen[c] {
			seen[c] = true
			columns = append(columns, c)
		}
	}

	rows := make([][]any, 0, a.NumRows()+b.NumRows())
	rows = append(rows, realign(a, columns)...)
	rows = append(rows, realign(b, columns)...)
	return table.New(columns, rows)
}

func realign(t table.Table, columns []string) [][]any {
	idx := make([]int, len(columns))
	for i, c := range columns {
		idx[i] = t.ColumnIndex(c)
	}
	out := make([][]any, t.NumRows())
	for r, row := range t.Rows {
		aligned := make([]any, len(columns))
		for i, j := range idx {
			if j >= 0 {
				aligned[i] = row[j]
			}
		}
		out[r] = aligned
	}
	return out
}
