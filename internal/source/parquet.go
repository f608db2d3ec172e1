package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"

	"datacompare/internal/table"
)

// parquetLoader reads a parquet file column by column and rebuilds rows.
// All values are carried as strings; nulls stay nil.
type parquetLoader struct {
	cfg Config
}

func (l *parquetLoader) Load(ctx context.Context) (table.Table, error) {
	if strings.TrimSpace(l.cfg.Input) == "" {
		return table.Empty(), nil
	}

	fr, err := local.NewLocalFileReader(l.cfg.Input)
	if err != nil {
		return table.Empty(), wrapLoad(l.cfg.Kind, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetColumnReader(fr, 1)
	if err != nil {
		return table.Empty(), wrapLoad(l.cfg.Kind, err)
	}
	defer pr.ReadStop()

	numRows := int(pr.GetNumRows())
	paths := pr.SchemaHandler.ValueColumns

	columns := make([]string, 0, len(paths))
	cells := make([][]any, 0, len(paths))
	for _, p := range paths {
		select {
		case <-ctx.Done():
			return table.Empty(), wrapLoad(l.cfg.Kind, ctx.Err())
		default:
		}

		values, _, _, err := pr.ReadColumnByPath(p, int64(numRows))
		if err != nil {
			return table.Empty(), wrapLoad(l.cfg.Kind, fmt.Errorf("read column %s: %w", p, err))
		}

		col := make([]any, numRows)
		for i := 0; i < numRows && i < len(values); i++ {
			col[i] = parquetCell(values[i])
		}
		columns = append(columns, columnExName(pr, p))
		cells = append(cells, col)
	}

	rows := make([][]any, numRows)
	for r := range rows {
		row := make([]any, len(columns))
		for c := range columns {
			row[c] = cells[c][r]
		}
		rows[r] = row
	}
	return table.New(columns, rows), nil
}

// columnExName resolves a schema path to the column's external (original)
// name, falling back to the path's leaf segment.
func columnExName(pr *reader.ParquetReader, path string) string {
	if idx, ok := pr.SchemaHandler.MapIndex[path]; ok {
		if int(idx) < len(pr.SchemaHandler.Infos) {
			if ex := pr.SchemaHandler.Infos[idx].ExName; ex != "" {
				return ex
			}
		}
	}
	segs := strings.Split(path, "\x01")
	return segs[len(segs)-1]
}

func parquetCell(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}
