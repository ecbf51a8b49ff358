package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/minutes/internal/db"
	"github.com/hpungsan/minutes/internal/notes"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID             string
	Workspace      string
	Name           string
	IncludeDeleted bool
	IncludeText    *bool // default: true (nil means default)
}

// FetchOutput is a stored digest plus its stats and fetch key.
type FetchOutput struct {
	notes.Digest
	Stats    notes.Stats `json:"stats"`
	FetchKey FetchKey    `json:"fetch_key"`
}

// Fetch retrieves a digest by ID or by (workspace, name).
func Fetch(ctx context.Context, database *sql.DB, input FetchInput) (*FetchOutput, error) {
	addr, err := ValidateAddress(input.ID, input.Workspace, input.Name)
	if err != nil {
		return nil, err
	}

	d, err := getByAddress(ctx, database, addr, input.IncludeDeleted)
	if err != nil {
		return nil, err
	}

	output := &FetchOutput{
		Digest:   *d,
		Stats:    notes.ComputeStats(d.Result),
		FetchKey: fetchKeyOf(d),
	}
	if input.IncludeText != nil && !*input.IncludeText {
		output.NotesText = ""
	}
	return output, nil
}

func getByAddress(ctx context.Context, database *sql.DB, addr *Address, includeDeleted bool) (*notes.Digest, error) {
	if addr.ByID {
		return db.GetByID(ctx, database, addr.ID, includeDeleted)
	}
	return db.GetByName(ctx, database, addr.Workspace, addr.Name, includeDeleted)
}
