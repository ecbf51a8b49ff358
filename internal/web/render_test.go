package web

import (
	"strings"
	"testing"

	"github.com/hpungsan/minutes/internal/notes"
)

func TestRenderMarkdown_Digest(t *testing.T) {
	md := notes.RenderMarkdown(notes.Classify("Agreed: ship it\nKim: send notes"))
	html := string(renderMarkdown(md))

	if !strings.Contains(html, "<h2>Decisions</h2>") {
		t.Errorf("missing decisions heading: %s", html)
	}
	if !strings.Contains(html, "<li>Ship it</li>") {
		t.Errorf("missing decision item: %s", html)
	}
}

func TestRenderMarkdown_DropsRawHTML(t *testing.T) {
	html := string(renderMarkdown("<script>alert(1)</script>\n\ntext"))
	if strings.Contains(html, "<script>") {
		t.Errorf("raw HTML should be omitted: %s", html)
	}
}

func TestFormatChars(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-4500, "-4,500"},
	}
	for _, tt := range tests {
		if got := formatChars(tt.n); got != tt.want {
			t.Errorf("formatChars(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	if got := formatTime(0); got != "1970-01-01 00:00" {
		t.Errorf("formatTime(0) = %q", got)
	}
}

func TestDerefAndHasValue(t *testing.T) {
	s := "x"
	var nilStr *string

	if deref(&s) != "x" {
		t.Error("deref(&s) should be x")
	}
	if deref(nilStr) != "" {
		t.Error("deref(nil *string) should be empty string")
	}
	if !hasValue(&s) || hasValue(nilStr) || hasValue(nil) {
		t.Error("hasValue mismatch")
	}
}
