package notes

// Digest is a stored classification of one block of meeting notes.
type Digest struct {
	// ID is a ULID
	ID string `json:"id"`

	// WorkspaceRaw is the workspace as provided by the user
	WorkspaceRaw string `json:"workspace"`

	// WorkspaceNorm is the normalized workspace key
	WorkspaceNorm string `json:"workspace_norm"`

	NameRaw  *string `json:"name,omitempty"`
	NameNorm *string `json:"name_norm,omitempty"`
	Title    *string `json:"title,omitempty"`

	// NotesText is the original notes as submitted
	NotesText string `json:"notes_text,omitempty"`

	NotesChars     int `json:"notes_chars"`
	WordCount      int `json:"word_count"`
	TokensEstimate int `json:"tokens_estimate"`

	// Result holds the buckets exactly as Classify produced them,
	// including the no-decisions sentinel.
	Result Result `json:"result"`

	Tags   []string `json:"tags,omitempty"`
	Source *string  `json:"source,omitempty"`

	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
	DeletedAt *int64 `json:"deleted_at,omitempty"`
}

// DigestSummary is a Digest without notes text or bucket contents.
// Used by list and latest.
type DigestSummary struct {
	ID             string   `json:"id"`
	Workspace      string   `json:"workspace"`
	WorkspaceNorm  string   `json:"workspace_norm"`
	Name           *string  `json:"name,omitempty"`
	NameNorm       *string  `json:"name_norm,omitempty"`
	Title          *string  `json:"title,omitempty"`
	NotesChars     int      `json:"notes_chars"`
	TokensEstimate int      `json:"tokens_estimate"`
	Stats          Stats    `json:"stats"`
	Tags           []string `json:"tags,omitempty"`
	Source         *string  `json:"source,omitempty"`
	CreatedAt      int64    `json:"created_at"`
	UpdatedAt      int64    `json:"updated_at"`
	DeletedAt      *int64   `json:"deleted_at,omitempty"`
}

// ToSummary strips the text and buckets, keeping their stats.
func (d *Digest) ToSummary() DigestSummary {
	return DigestSummary{
		ID:             d.ID,
		Workspace:      d.WorkspaceRaw,
		WorkspaceNorm:  d.WorkspaceNorm,
		Name:           d.NameRaw,
		NameNorm:       d.NameNorm,
		Title:          d.Title,
		NotesChars:     d.NotesChars,
		TokensEstimate: d.TokensEstimate,
		Stats:          ComputeStats(d.Result),
		Tags:           d.Tags,
		Source:         d.Source,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
		DeletedAt:      d.DeletedAt,
	}
}

// DisplayName returns title, then name, then ID.
func (d *Digest) DisplayName() string {
	if d.Title != nil && *d.Title != "" {
		return *d.Title
	}
	if d.NameRaw != nil && *d.NameRaw != "" {
		return *d.NameRaw
	}
	return d.ID
}

// ExportHeader is the first line of a JSONL export file.
type ExportHeader struct {
	MinutesExport bool   `json:"_minutes_export"`
	SchemaVersion string `json:"schema_version"`
	ExportedAt    int64  `json:"exported_at"`
}

// ExportRecord is one digest line in a JSONL export file.
type ExportRecord struct {
	ID           string   `json:"id"`
	WorkspaceRaw string   `json:"workspace_raw"`
	NameRaw      *string  `json:"name_raw"`
	Title        *string  `json:"title"`
	NotesText    string   `json:"notes_text"`
	Decisions    []string `json:"decisions"`
	Actions      []string `json:"actions"`
	Highlights   []string `json:"highlights"`
	Tags         []string `json:"tags"`
	Source       *string  `json:"source"`
	CreatedAt    int64    `json:"created_at"`
	UpdatedAt    int64    `json:"updated_at"`
	DeletedAt    *int64   `json:"deleted_at"`
}

// ToExportRecord converts a Digest for export.
func (d *Digest) ToExportRecord() *ExportRecord {
	return &ExportRecord{
		ID:           d.ID,
		WorkspaceRaw: d.WorkspaceRaw,
		NameRaw:      d.NameRaw,
		Title:        d.Title,
		NotesText:    d.NotesText,
		Decisions:    d.Result.Decisions,
		Actions:      d.Result.Actions,
		Highlights:   d.Result.Highlights,
		Tags:         d.Tags,
		Source:       d.Source,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
		DeletedAt:    d.DeletedAt,
	}
}
