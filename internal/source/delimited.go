package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"datacompare/internal/table"
)

// spoolThreshold is the input size above which delimited content is spooled
// to a temporary file and parsed chunk-wise instead of being held in memory.
const spoolThreshold = 3 << 30 // 3 GiB

// spoolChunkSize is the buffered-read size used on the out-of-core path.
const spoolChunkSize = 1 << 20

// delimitedLoader parses separator-delimited text files ("CSV file",
// "Dat file"). The first record is the header. Empty cells become nil.
type delimitedLoader struct {
	cfg Config
}

func (l *delimitedLoader) Load(ctx context.Context) (table.Table, error) {
	if strings.TrimSpace(l.cfg.Input) == "" {
		return table.Empty(), nil
	}

	f, err := os.Open(l.cfg.Input)
	if err != nil {
		return table.Empty(), wrapLoad(l.cfg.Kind, err)
	}
	defer f.Close()

	r, cleanup, err := materialize(f, spoolThreshold)
	if err != nil {
		return table.Empty(), wrapLoad(l.cfg.Kind, err)
	}
	defer cleanup()

	t, err := parseDelimited(ctx, r, sepOrDefault(l.cfg.Separator), l.cfg.Encoding)
	if err != nil {
		return table.Empty(), wrapLoad(l.cfg.Kind, err)
	}
	return t, nil
}

// materialize buffers src for parsing. Inputs at or below threshold are
// held in memory; larger inputs are copied to a temporary file and read back
// with a chunked reader. cleanup removes the temporary file and must always
// be called.
func materialize(src io.Reader, threshold int64) (io.Reader, func(), error) {
	noop := func() {}

	var buf bytes.Buffer
	_, err := io.CopyN(&buf, src, threshold+1)
	if err == io.EOF {
		return &buf, noop, nil
	}
	if err != nil {
		return nil, noop, err
	}

	// A nil error means CopyN read the full threshold+1 bytes, so more data
	// may remain; spool the buffered prefix plus the rest to disk.
	tmp, err := os.CreateTemp("", "datacompare-spool-*.tmp")
	if err != nil {
		return nil, noop, err
	}
	cleanup := func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}

	if _, err := io.Copy(tmp, io.MultiReader(&buf, src)); err != nil {
		cleanup()
		return nil, noop, err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return nil, noop, err
	}
	return bufio.NewReaderSize(tmp, spoolChunkSize), cleanup, nil
}

// parseDelimited reads delimited text into a table.
//
// Parsing rules (matching the streaming CSV conventions used elsewhere in
// this codebase):
//   - First record is the header; a UTF-8 BOM on the first header cell is
//     stripped, and header/values have edge whitespace trimmed.
//   - Variable field counts are tolerated: short rows pad with nil, long
//     rows are truncated to the header width.
//   - Empty cells become nil.
func parseDelimited(ctx context.Context, r io.Reader, sep rune, encoding string) (table.Table, error) {
	dr, err := decodeReader(r, encoding)
	if err != nil {
		return table.Empty(), err
	}

	cr := csv.NewReader(dr)
	cr.Comma = sep
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	hdr, err := cr.Read()
	if err == io.EOF {
		return table.Empty(), nil
	}
	if err != nil {
		return table.Empty(), fmt.Errorf("read header: %w", err)
	}

	columns := make([]string, len(hdr))
	for i, h := range hdr {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		columns[i] = h
	}

	var rows [][]any
	for {
		select {
		case <-ctx.Done():
			return table.Empty(), ctx.Err()
		default:
		}

		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return table.Empty(), fmt.Errorf("read record: %w", err)
		}

		row := make([]any, len(columns))
		for i := range columns {
			if i >= len(rec) {
				continue
			}
			v := strings.TrimSpace(rec[i])
			if v == "" {
				continue
			}
			row[i] = v
		}
		rows = append(rows, row)
	}

	return table.New(columns, rows), nil
}

// decodeReader wraps r with a charset decoder when encoding names a
// non-UTF-8 character set.
func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "latin-1", "latin1", "iso-8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}
