package ops

import (
	"context"

	"github.com/hpungsan/minutes/internal/config"
	"github.com/hpungsan/minutes/internal/errors"
	"github.com/hpungsan/minutes/internal/metrics"
	"github.com/hpungsan/minutes/internal/notes"
)

// ClassifyInput contains parameters for the Classify operation.
type ClassifyInput struct {
	NotesText string
	Explain   bool // include per-line verdicts
}

// ClassifyOutput is the classification of one notes block.
type ClassifyOutput struct {
	Result   notes.Result        `json:"result"`
	Stats    notes.Stats         `json:"stats"`
	Counts   notes.Counts        `json:"counts"`
	Verdicts []notes.LineVerdict `json:"verdicts,omitempty"`
}

// Classify runs the classifier without storing anything.
// Empty notes are valid and yield only the no-decisions sentinel.
func Classify(ctx context.Context, cfg *config.Config, input ClassifyInput) (*ClassifyOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("classify")
	}
	if err := checkSize(cfg, input.NotesText); err != nil {
		return nil, err
	}

	result := notes.Classify(input.NotesText)
	stats := notes.ComputeStats(result)
	metrics.Default().ObserveClassification(len(notes.SplitLines(input.NotesText)), stats)

	out := &ClassifyOutput{
		Result: result,
		Stats:  stats,
		Counts: notes.Count(input.NotesText),
	}
	if input.Explain {
		out.Verdicts = notes.ClassifyLines(input.NotesText)
	}
	return out, nil
}

// checkSize enforces notes_max_chars. A zero limit disables the check.
func checkSize(cfg *config.Config, text string) error {
	if cfg == nil || cfg.NotesMaxChars <= 0 {
		return nil
	}
	if n := notes.CountChars(text); n > cfg.NotesMaxChars {
		return errors.NewNotesTooLarge(cfg.NotesMaxChars, n)
	}
	return nil
}
