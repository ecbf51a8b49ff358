package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/minutes/internal/db"
	"github.com/hpungsan/minutes/internal/notes"
)

// LatestInput contains parameters for the Latest operation.
type LatestInput struct {
	Workspace      string // defaults to "default"
	IncludeText    bool   // include notes text and buckets
	IncludeDeleted bool
}

// LatestOutput contains the result of the Latest operation.
type LatestOutput struct {
	Item *LatestItem `json:"item"` // nil if the workspace is empty
}

// LatestItem is the newest digest's summary, with the full
// classification when requested.
type LatestItem struct {
	notes.DigestSummary
	NotesText string        `json:"notes_text,omitempty"`
	Result    *notes.Result `json:"result,omitempty"`
	FetchKey  FetchKey      `json:"fetch_key"`
}

// Latest retrieves the most recently updated digest in a workspace.
func Latest(ctx context.Context, database *sql.DB, input LatestInput) (*LatestOutput, error) {
	d, err := db.GetLatest(ctx, database, normalizeWorkspace(input.Workspace), input.IncludeText, input.IncludeDeleted)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return &LatestOutput{}, nil
	}

	item := &LatestItem{
		DigestSummary: d.ToSummary(),
		FetchKey:      fetchKeyOf(d),
	}
	if input.IncludeText {
		item.NotesText = d.NotesText
		item.Result = &d.Result
	}
	return &LatestOutput{Item: item}, nil
}
