// Package report writes the three comparison artifacts: an HTML summary of
// the check results, a CSV of row-level differences, and an HTML profiling
// comparison. Artifacts land in one reports directory, created on demand,
// named with a run timestamp.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	stampLayout     = "20060102_150405"
	timestampLayout = "2006-01-02 15:04:05"
)

// Writer writes report artifacts into Dir.
type Writer struct {
	Dir string

	now func() time.Time
}

// NewWriter returns a Writer targeting dir.
func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir, now: time.Now}
}

// path builds the artifact path for the current timestamp and ensures the
// reports directory exists.
func (w *Writer) path(prefix, ext string) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s_%s.%s", prefix, w.now().Format(stampLayout), ext)
	return filepath.Join(w.Dir, name), nil
}

func wrapReport(artifact string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("generate %s report: %w", artifact, err)
}
