package ops

import (
	"strings"

	"github.com/hpungsan/minutes/internal/errors"
	"github.com/hpungsan/minutes/internal/notes"
)

// DefaultWorkspace is used when no workspace is given.
const DefaultWorkspace = "default"

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// Address is a validated digest address: an ID, or a normalized
// (workspace, name) pair.
type Address struct {
	ByID      bool
	ID        string
	Workspace string
	Name      string
}

// ValidateAddress requires exactly one addressing mode.
// An id combined with a name or workspace is ambiguous.
func ValidateAddress(id, workspace, name string) (*Address, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	workspace = strings.TrimSpace(workspace)

	hasID := id != ""
	if hasID && (name != "" || workspace != "") {
		return nil, errors.NewAmbiguousAddressing()
	}
	if !hasID && name == "" {
		return nil, errors.NewInvalidRequest("must specify either id or name")
	}
	if hasID {
		return &Address{ByID: true, ID: id}, nil
	}

	nameNorm := notes.Normalize(name)
	if nameNorm == "" {
		return nil, errors.NewInvalidRequest("name must not be empty")
	}
	return &Address{
		Workspace: normalizeWorkspace(workspace),
		Name:      nameNorm,
	}, nil
}

// normalizeWorkspace normalizes ws, falling back to the default workspace.
func normalizeWorkspace(ws string) string {
	if norm := notes.Normalize(ws); norm != "" {
		return norm
	}
	return DefaultWorkspace
}

// FetchKey tells a client how to fetch a digest again: by (workspace, name)
// when it has a name, otherwise by id.
type FetchKey struct {
	Workspace string `json:"workspace,omitempty"`
	Name      string `json:"name,omitempty"`
	ID        string `json:"id,omitempty"`
}

// BuildFetchKey creates the FetchKey for a digest.
func BuildFetchKey(workspace, name, id string) FetchKey {
	if name != "" {
		return FetchKey{Workspace: workspace, Name: name}
	}
	return FetchKey{ID: id}
}

func fetchKeyOf(d *notes.Digest) FetchKey {
	name := ""
	if d.NameRaw != nil {
		name = *d.NameRaw
	}
	return BuildFetchKey(d.WorkspaceRaw, name, d.ID)
}

// cleanOptionalString trims s and maps blank strings to nil.
func cleanOptionalString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
