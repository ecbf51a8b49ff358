package notes

import (
	"math"
	"strings"
)

// coverageTarget is the item count that corresponds to 100% coverage.
const coverageTarget = 15

// Counts holds the raw size of a notes block.
type Counts struct {
	Words int `json:"words"`
	Chars int `json:"chars"`
}

// Stats summarizes a Result. Sentinel entries are not counted.
type Stats struct {
	Decisions  int `json:"decisions"`
	Actions    int `json:"actions"`
	Highlights int `json:"highlights"`
	Total      int `json:"total"`
	Coverage   int `json:"coverage"` // percent, 0-100
}

// Count returns word and character counts for text.
// Words are whitespace-separated fields; chars are runes.
func Count(text string) Counts {
	return Counts{
		Words: len(strings.Fields(text)),
		Chars: CountChars(text),
	}
}

// ComputeStats counts the real items in each bucket and derives coverage.
func ComputeStats(r Result) Stats {
	s := Stats{
		Decisions:  len(realItems(r.Decisions)),
		Actions:    len(realItems(r.Actions)),
		Highlights: len(realItems(r.Highlights)),
	}
	s.Total = s.Decisions + s.Actions + s.Highlights
	if s.Total > 0 {
		s.Coverage = min(100, int(math.Round(float64(s.Total)/coverageTarget*100)))
	}
	return s
}
