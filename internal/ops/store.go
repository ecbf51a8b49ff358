package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/minutes/internal/config"
	"github.com/hpungsan/minutes/internal/db"
	"github.com/hpungsan/minutes/internal/errors"
	"github.com/hpungsan/minutes/internal/metrics"
	"github.com/hpungsan/minutes/internal/notes"
)

// StoreMode controls collision behavior.
type StoreMode string

const (
	StoreModeError   StoreMode = "error"   // default: fail on name collision
	StoreModeReplace StoreMode = "replace" // overwrite existing
)

// StoreInput contains parameters for the Store operation.
type StoreInput struct {
	Workspace string  // default: "default"
	Name      *string // optional
	Title     *string // default: same as name, or nil
	NotesText string  // required
	Tags      []string
	Source    *string
	Mode      StoreMode // default: StoreModeError
}

// StoreOutput contains the result of the Store operation.
type StoreOutput struct {
	ID       string       `json:"id"`
	FetchKey FetchKey     `json:"fetch_key"`
	Replaced bool         `json:"replaced,omitempty"`
	Stats    notes.Stats  `json:"stats"`
	Result   notes.Result `json:"result"`
}

// Store classifies a notes block and persists the digest.
func Store(ctx context.Context, database *sql.DB, cfg *config.Config, input StoreInput) (*StoreOutput, error) {
	if strings.TrimSpace(input.NotesText) == "" {
		return nil, errors.NewInvalidRequest("notes_text is required")
	}

	if strings.TrimSpace(input.Workspace) == "" {
		input.Workspace = DefaultWorkspace
	}
	if input.Mode == "" {
		input.Mode = StoreModeError
	}
	if input.Mode != StoreModeError && input.Mode != StoreModeReplace {
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace")
	}

	workspaceNorm := notes.Normalize(input.Workspace)
	if workspaceNorm == "" {
		return nil, errors.NewInvalidRequest("workspace must not be empty")
	}

	var nameRaw, nameNorm *string
	if input.Name != nil {
		normalized := notes.Normalize(*input.Name)
		if normalized == "" {
			return nil, errors.NewInvalidRequest("name must not be empty (omit it for unnamed digests)")
		}
		nameRaw = input.Name
		nameNorm = &normalized
	}

	title := cleanOptionalString(input.Title)
	if title == nil && nameRaw != nil {
		title = nameRaw
	}

	if err := checkSize(cfg, input.NotesText); err != nil {
		return nil, err
	}

	result := notes.Classify(input.NotesText)
	stats := notes.ComputeStats(result)
	metrics.Default().ObserveClassification(len(notes.SplitLines(input.NotesText)), stats)

	// Discarded if the upsert lands on an existing row.
	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	now := time.Now().Unix()

	d := &notes.Digest{
		ID:             id,
		WorkspaceRaw:   input.Workspace,
		WorkspaceNorm:  workspaceNorm,
		NameRaw:        nameRaw,
		NameNorm:       nameNorm,
		Title:          title,
		NotesText:      input.NotesText,
		NotesChars:     notes.CountChars(input.NotesText),
		WordCount:      notes.Count(input.NotesText).Words,
		TokensEstimate: notes.EstimateTokens(input.NotesText),
		Result:         result,
		Tags:           input.Tags,
		Source:         cleanOptionalString(input.Source),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	name := ""
	if nameRaw != nil {
		name = *nameRaw
	}

	out := &StoreOutput{ID: id, Stats: stats, Result: result}

	if input.Mode == StoreModeReplace {
		res, err := db.Upsert(ctx, database, d)
		if err != nil {
			return nil, err
		}
		out.ID = res.ID
		out.Replaced = res.Replaced
		out.FetchKey = BuildFetchKey(input.Workspace, name, res.ID)
		return out, nil
	}

	if err := db.Insert(ctx, database, d); err != nil {
		if err == db.ErrUniqueConstraint {
			return nil, errors.NewNameAlreadyExists(input.Workspace, name)
		}
		return nil, err
	}

	out.FetchKey = BuildFetchKey(input.Workspace, name, id)
	return out, nil
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
