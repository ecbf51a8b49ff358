package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/minutes/internal/db"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID        string
	Workspace string
	Name      string
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// Delete soft-deletes a digest. Its name becomes free for reuse.
func Delete(ctx context.Context, database *sql.DB, input DeleteInput) (*DeleteOutput, error) {
	addr, err := ValidateAddress(input.ID, input.Workspace, input.Name)
	if err != nil {
		return nil, err
	}

	d, err := getByAddress(ctx, database, addr, false)
	if err != nil {
		return nil, err
	}

	if err := db.SoftDelete(ctx, database, d.ID); err != nil {
		return nil, err
	}

	return &DeleteOutput{Deleted: true, ID: d.ID}, nil
}
