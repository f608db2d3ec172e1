package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"datacompare/internal/table"
)

const apiRequestTimeout = 60 * time.Second

// apiLoader fetches cfg.Input with an HTTP GET and normalizes the JSON
// response into a table.
//
// Accepted response shapes:
//   - a JSON array of objects
//   - a JSON object whose first array-valued field holds the records
//     (a single flat object becomes a one-row table)
//   - newline-delimited JSON objects
//
// Nested objects flatten into dot-joined column names ("address.city").
// Columns are the sorted union of keys across all records.
type apiLoader struct {
	cfg Config
}

func (l *apiLoader) Load(ctx context.Context) (table.Table, error) {
	url := strings.TrimSpace(l.cfg.Input)
	if url == "" {
		return table.Empty(), nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, apiRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return table.Empty(), wrapLoad(l.cfg.Kind, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return table.Empty(), wrapLoad(l.cfg.Kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return table.Empty(), wrapLoad(l.cfg.Kind, fmt.Errorf("unexpected status %s", resp.Status))
	}

	records, err := decodeRecords(resp.Body)
	if err != nil {
		return table.Empty(), wrapLoad(l.cfg.Kind, err)
	}
	return recordsToTable(records), nil
}

// decodeRecords reads a stream of JSON values and extracts flat records.
// Numbers are kept in their literal form so values like account IDs survive
// unchanged.
func decodeRecords(r io.Reader) ([]map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var records []map[string]any
	for {
		var v any
		if err := dec.Decode(&v); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		records = append(records, extractRecords(v)...)
	}
	return records, nil
}

func extractRecords(v any) []map[string]any {
	switch x := v.(type) {
	case []any:
		var out []map[string]any
		for _, item := range x {
			if m, ok := item.(map[string]any); ok {
				out = append(out, flatten("", m))
			}
		}
		return out
	case map[string]any:
		// An envelope: the first array-valued field (in sorted key order)
		// holds the records. Otherwise the object itself is one record.
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if arr, ok := x[k].([]any); ok {
				return extractRecords(arr)
			}
		}
		return []map[string]any{flatten("", x)}
	default:
		return nil
	}
}

func flatten(prefix string, m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			for nk, nv := range flatten(key, nested) {
				out[nk] = nv
			}
			continue
		}
		out[key] = jsonCell(v)
	}
	return out
}

func jsonCell(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return fmt.Sprint(x)
	default:
		// Arrays of scalars and other leftovers render as compact JSON.
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

func recordsToTable(records []map[string]any) table.Table {
	if len(records) == 0 {
		return table.Empty()
	}

	seen := make(map[string]bool)
	var columns []string
	for _, rec := range records {
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}
	sort.Strings(columns)

	rows := make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(columns))
		for j, c := range columns {
			row[j] = rec[c]
		}
		rows[i] = row
	}
	return table.New(columns, rows)
}
