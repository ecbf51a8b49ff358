package ops

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hpungsan/minutes/internal/db"
	"github.com/hpungsan/minutes/internal/errors"
)

// PurgeInput contains parameters for the Purge operation.
type PurgeInput struct {
	Workspace     *string // optional workspace filter
	OlderThanDays *int    // only rows deleted more than N days ago
}

// PurgeOutput contains the result of the Purge operation.
type PurgeOutput struct {
	Purged  int    `json:"purged"`
	Message string `json:"message"`
}

// Purge permanently removes soft-deleted digests.
func Purge(ctx context.Context, database *sql.DB, input PurgeInput) (*PurgeOutput, error) {
	if input.OlderThanDays != nil && *input.OlderThanDays < 0 {
		return nil, errors.NewInvalidRequest("older_than_days must be >= 0")
	}

	var workspaceNorm *string
	if input.Workspace != nil {
		ws := normalizeWorkspace(*input.Workspace)
		workspaceNorm = &ws
	}

	count, err := db.PurgeDeleted(ctx, database, workspaceNorm, input.OlderThanDays)
	if err != nil {
		return nil, err
	}

	return &PurgeOutput{
		Purged:  count,
		Message: purgeMessage(count, workspaceNorm, input.OlderThanDays),
	}, nil
}

func purgeMessage(count int, workspace *string, olderThanDays *int) string {
	if count == 0 {
		return "No deleted digests to purge"
	}

	msg := fmt.Sprintf("Permanently deleted %d %s", count, plural(count, "digest"))
	if workspace != nil {
		msg += fmt.Sprintf(" from workspace %q", *workspace)
	}
	if olderThanDays != nil {
		msg += fmt.Sprintf(" (deleted more than %d days ago)", *olderThanDays)
	}
	return msg
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
