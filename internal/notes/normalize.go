package notes

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize turns a workspace or digest name into its lookup key:
// trimmed, lowercased, internal whitespace collapsed to single spaces.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return whitespaceRun.ReplaceAllString(s, " ")
}

// CountChars counts runes, not bytes.
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}

// EstimateTokens approximates LLM tokens as 1.3 per word, rounded up.
func EstimateTokens(text string) int {
	return int(math.Ceil(float64(len(strings.Fields(text))) * 1.3))
}
