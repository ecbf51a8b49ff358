package ops

import (
	"bufio"
	"context"
	"database/sql"
	"path/filepath"
	"time"

	"github.com/hpungsan/minutes/internal/config"
	"github.com/hpungsan/minutes/internal/errors"
	"github.com/hpungsan/minutes/internal/notes"
)

// RenderFormat selects the summary layout.
type RenderFormat string

const (
	RenderFormatText     RenderFormat = "text"
	RenderFormatMarkdown RenderFormat = "markdown"
)

// RenderInput contains parameters for the Render operation.
type RenderInput struct {
	ID        string
	Workspace string
	Name      string
	Format    RenderFormat // default: text

	// IncludeNotes appends the original notes (text format only).
	IncludeNotes bool

	// Write saves the summary to Path, or to
	// <exports>/meeting-summary-YYYY-MM-DD.txt when Path is empty.
	Write bool
	Path  string
}

// RenderOutput contains the result of the Render operation.
type RenderOutput struct {
	ID      string `json:"id"`
	Format  string `json:"format"`
	Summary string `json:"summary"`
	Path    string `json:"path,omitempty"`
}

// Render formats a stored digest as a readable meeting summary.
func Render(ctx context.Context, database *sql.DB, cfg *config.Config, input RenderInput) (*RenderOutput, error) {
	format := input.Format
	if format == "" {
		format = RenderFormatText
	}
	if format != RenderFormatText && format != RenderFormatMarkdown {
		return nil, errors.NewInvalidRequest("format must be one of: text, markdown")
	}
	if input.Write && format != RenderFormatText {
		return nil, errors.NewInvalidRequest("only the text format can be written to a file")
	}

	addr, err := ValidateAddress(input.ID, input.Workspace, input.Name)
	if err != nil {
		return nil, err
	}
	d, err := getByAddress(ctx, database, addr, false)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var summary string
	if format == RenderFormatMarkdown {
		summary = notes.RenderMarkdown(d.Result)
	} else {
		opts := notes.RenderOptions{GeneratedAt: now}
		if input.IncludeNotes {
			opts.OriginalNotes = d.NotesText
		}
		summary = notes.RenderText(d.Result, opts)
	}

	out := &RenderOutput{ID: d.ID, Format: string(format), Summary: summary}
	if !input.Write {
		return out, nil
	}

	path := input.Path
	if path == "" {
		dir, err := ExportsDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, notes.ExportFilename(now.UTC()))
	}
	if err := ValidateOutputPath(path, ExtRender, cfg); err != nil {
		return nil, err
	}

	err = writeAtomic(path, func(w *bufio.Writer) error {
		if _, err := w.WriteString(summary + "\n"); err != nil {
			return errors.NewInternal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out.Path = path
	return out, nil
}
