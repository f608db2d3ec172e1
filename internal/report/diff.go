package report

import (
	"encoding/csv"
	"os"

	"datacompare/internal/compare"
	"datacompare/internal/table"
)

// DiffCSV writes the row-level difference report and returns its path.
//
// Both tables are projected onto their common columns. A row lands in the
// report iff its common-column tuple occurs exactly once across the two
// tables combined, so rows duplicated within one side or present on both
// sides are excluded. Source rows come first, then target rows, each tagged
// with a `_source` marker and the run `_timestamp`.
func (w *Writer) DiffCSV(res compare.Result) (string, error) {
	path, err := w.path("diff_report", "csv")
	if err != nil {
		return "", wrapReport("difference", err)
	}

	common := table.CommonColumns(res.Source, res.Target)
	src := res.Source.Select(common)
	tgt := res.Target.Select(common)

	counts := make(map[string]int, src.NumRows()+tgt.NumRows())
	for _, row := range src.Rows {
		counts[table.RowKey(row, len(common))]++
	}
	for _, row := range tgt.Rows {
		counts[table.RowKey(row, len(common))]++
	}

	f, err := os.Create(path)
	if err != nil {
		return "", wrapReport("difference", err)
	}
	cw := csv.NewWriter(f)

	header := append(append([]string(nil), common...), "_source", "_timestamp")
	writeErr := cw.Write(header)

	stamp := w.now().Format(timestampLayout)
	emit := func(t table.Table, side string) {
		for _, row := range t.Rows {
			if writeErr != nil {
				return
			}
			if counts[table.RowKey(row, len(common))] != 1 {
				continue
			}
			rec := make([]string, 0, len(common)+2)
			for _, cell := range row {
				rec = append(rec, table.CellString(cell))
			}
			rec = append(rec, side, stamp)
			writeErr = cw.Write(rec)
		}
	}
	emit(src, "source")
	emit(tgt, "target")

	if writeErr == nil {
		cw.Flush()
		writeErr = cw.Error()
	}
	if err := f.Close(); writeErr == nil {
		writeErr = err
	}
	if writeErr != nil {
		return "", wrapReport("difference", writeErr)
	}
	return path, nil
}
