package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/minutes/internal/db"
	"github.com/hpungsan/minutes/internal/notes"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Workspace      string // defaults to "default"
	Limit          int    // default: 20, max: 100
	Offset         int
	IncludeDeleted bool
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []notes.DigestSummary `json:"items"`
	Pagination Pagination            `json:"pagination"`
	Sort       string                `json:"sort"`
}

// List returns a page of digest summaries for a workspace.
func List(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	workspace := normalizeWorkspace(input.Workspace)

	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)
	offset := max(input.Offset, 0)

	summaries, total, err := db.ListByWorkspace(ctx, database, workspace, limit, offset, input.IncludeDeleted)
	if err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []notes.DigestSummary{}
	}

	return &ListOutput{
		Items: summaries,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(summaries) < total,
			Total:   total,
		},
		Sort: "updated_at_desc",
	}, nil
}
