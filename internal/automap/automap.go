// Package automap suggests a source→target column mapping from column name
// similarity. For every source column it scores every target column with a
// case-insensitive sequence-alignment ratio and keeps the best match when it
// clears a fixed threshold.
package automap

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// minRatio is the acceptance threshold. A best match at or below this ratio
// produces no mapping for that source column.
const minRatio = 0.6

// Ratio returns the sequence-alignment similarity of a and b in [0, 1],
// case-insensitive. 1 means identical (ignoring case), 0 means no common
// subsequence.
func Ratio(a, b string) float64 {
	as := splitChars(strings.ToLower(a))
	bs := splitChars(strings.ToLower(b))
	return difflib.NewMatcher(as, bs).Ratio()
}

// Map proposes a rename mapping from source column names to target column
// names. Each source column maps to the target column with the highest
// Ratio, accepted only when the ratio exceeds the threshold. Ties keep the
// target column encountered first in targetCols order.
func Map(sourceCols, targetCols []string) map[string]string {
	out := make(map[string]string)
	for _, src := range sourceCols {
		best := ""
		bestRatio := 0.0
		for _, tgt := range targetCols {
			if r := Ratio(src, tgt); r > bestRatio {
				best = tgt
				bestRatio = r
			}
		}
		if best != "" && bestRatio > minRatio {
			out[src] = best
		}
	}
	return out
}

func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
