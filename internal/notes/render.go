package notes

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// RenderOptions controls the plain text summary layout.
type RenderOptions struct {
	// OriginalNotes is appended under "Original Notes:" when non-empty.
	OriginalNotes string

	// GeneratedAt adds a "Generated on" footer when non-zero.
	GeneratedAt time.Time
}

// textSection pairs a bucket with its heading and empty placeholder.
type textSection struct {
	heading string
	empty   string
	items   func(Result) []string
}

var textSections = []textSection{
	{"DECISIONS:", "No decisions detected", func(r Result) []string { return r.Decisions }},
	{"ACTION ITEMS:", "No action items detected", func(r Result) []string { return r.Actions }},
	{"KEY POINTS:", "No key points detected", func(r Result) []string { return r.Highlights }},
}

// RenderText formats a result as the plain text "MEETING SUMMARY" document.
func RenderText(r Result, opts RenderOptions) string {
	var b strings.Builder
	b.WriteString("MEETING SUMMARY\n")
	b.WriteString("================\n")

	for _, sec := range textSections {
		b.WriteString("\n")
		b.WriteString(sec.heading)
		b.WriteString("\n")

		items := realItems(sec.items(r))
		if len(items) == 0 {
			b.WriteString(sec.empty)
			b.WriteString("\n")
			continue
		}
		for i, item := range items {
			fmt.Fprintf(&b, "%d. %s\n", i+1, capitalizeFirst(item))
		}
	}

	if opts.OriginalNotes != "" || !opts.GeneratedAt.IsZero() {
		b.WriteString("\n---\n")
	}
	if opts.OriginalNotes != "" {
		b.WriteString("Original Notes:\n")
		b.WriteString(strings.TrimSpace(opts.OriginalNotes))
		b.WriteString("\n")
	}
	if !opts.GeneratedAt.IsZero() {
		if opts.OriginalNotes != "" {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Generated on: %s\n", opts.GeneratedAt.Format(time.RFC1123))
	}

	return strings.TrimRight(b.String(), "\n")
}

// RenderMarkdown formats a result as markdown sections with bullet lists.
// Empty buckets render as an italic placeholder line.
func RenderMarkdown(r Result) string {
	sections := []struct {
		title string
		items []string
	}{
		{"Decisions", realItems(r.Decisions)},
		{"Action items", realItems(r.Actions)},
		{"Key points", realItems(r.Highlights)},
	}

	var b strings.Builder
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "## %s\n\n", sec.title)
		if len(sec.items) == 0 {
			b.WriteString("_None detected._\n")
			continue
		}
		for _, item := range sec.items {
			fmt.Fprintf(&b, "- %s\n", capitalizeFirst(item))
		}
	}
	return b.String()
}

// ExportFilename returns the download name for a summary produced at t.
func ExportFilename(t time.Time) string {
	return fmt.Sprintf("meeting-summary-%s.txt", t.Format("2006-01-02"))
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
