package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/hpungsan/minutes/internal/errors"
	"github.com/hpungsan/minutes/internal/notes"
)

// ErrUniqueConstraint is returned when an insert violates the
// (workspace, name) uniqueness of active digests.
var ErrUniqueConstraint = &errors.MinutesError{
	Code:    "UNIQUE_CONSTRAINT",
	Status:  409,
	Message: "unique constraint violation",
}

// digestColumns is the column list shared by every full-row SELECT.
const digestColumns = `id, workspace_raw, workspace_norm, name_raw, name_norm,
	title, notes_text, notes_chars, word_count, tokens_estimate,
	decisions_json, actions_json, highlights_json,
	tags_json, source, created_at, updated_at, deleted_at`

// summaryColumns matches digestColumns but skips the notes text.
const summaryColumns = `id, workspace_raw, workspace_norm, name_raw, name_norm,
	title, '' AS notes_text, notes_chars, word_count, tokens_estimate,
	decisions_json, actions_json, highlights_json,
	tags_json, source, created_at, updated_at, deleted_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// encoded holds the JSON columns of a digest.
type encoded struct {
	decisions  string
	actions    string
	highlights string
	tags       sql.NullString
}

func encode(d *notes.Digest) (*encoded, error) {
	var e encoded
	for _, f := range []struct {
		dst   *string
		items []string
	}{
		{&e.decisions, d.Result.Decisions},
		{&e.actions, d.Result.Actions},
		{&e.highlights, d.Result.Highlights},
	} {
		if f.items == nil {
			f.items = []string{}
		}
		data, err := json.Marshal(f.items)
		if err != nil {
			return nil, err
		}
		*f.dst = string(data)
	}

	if len(d.Tags) > 0 {
		data, err := json.Marshal(d.Tags)
		if err != nil {
			return nil, err
		}
		e.tags = sql.NullString{String: string(data), Valid: true}
	}
	return &e, nil
}

// Insert stores a new digest.
func Insert(ctx context.Context, db *sql.DB, d *notes.Digest) error {
	e, err := encode(d)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		INSERT INTO digests (` + digestColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`

	_, err = db.ExecContext(ctx, query,
		d.ID, d.WorkspaceRaw, d.WorkspaceNorm, toNullString(d.NameRaw), toNullString(d.NameNorm),
		toNullString(d.Title), d.NotesText, d.NotesChars, d.WordCount, d.TokensEstimate,
		e.decisions, e.actions, e.highlights,
		e.tags, toNullString(d.Source), d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	return nil
}

// UpsertResult reports the row an upsert landed on.
type UpsertResult struct {
	ID       string
	Replaced bool
}

// Upsert inserts d, or replaces the content of the active digest with the
// same (workspace, name). The existing row keeps its ID and created_at.
// Unnamed digests are always inserted.
func Upsert(ctx context.Context, db *sql.DB, d *notes.Digest) (*UpsertResult, error) {
	if d.NameNorm == nil {
		if err := Insert(ctx, db, d); err != nil {
			return nil, err
		}
		return &UpsertResult{ID: d.ID}, nil
	}

	e, err := encode(d)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	query := `
		INSERT INTO digests (` + digestColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
		ON CONFLICT(workspace_norm, name_norm) WHERE name_norm IS NOT NULL AND deleted_at IS NULL
		DO UPDATE SET
			workspace_raw = excluded.workspace_raw,
			name_raw = excluded.name_raw,
			title = excluded.title,
			notes_text = excluded.notes_text,
			notes_chars = excluded.notes_chars,
			word_count = excluded.word_count,
			tokens_estimate = excluded.tokens_estimate,
			decisions_json = excluded.decisions_json,
			actions_json = excluded.actions_json,
			highlights_json = excluded.highlights_json,
			tags_json = excluded.tags_json,
			source = excluded.source,
			updated_at = excluded.updated_at
		RETURNING id
	`

	var id string
	err = db.QueryRowContext(ctx, query,
		d.ID, d.WorkspaceRaw, d.WorkspaceNorm, toNullString(d.NameRaw), toNullString(d.NameNorm),
		toNullString(d.Title), d.NotesText, d.NotesChars, d.WordCount, d.TokensEstimate,
		e.decisions, e.actions, e.highlights,
		e.tags, toNullString(d.Source), d.CreatedAt, d.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return &UpsertResult{ID: id, Replaced: id != d.ID}, nil
}

// isUniqueConstraintError checks for SQLite's "UNIQUE constraint failed".
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetByID retrieves a digest by its ULID.
func GetByID(ctx context.Context, db *sql.DB, id string, includeDeleted bool) (*notes.Digest, error) {
	query := `SELECT ` + digestColumns + ` FROM digests WHERE id = ?`
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}

	d, err := scanDigest(db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return d, nil
}

// GetByName retrieves a digest by normalized workspace and name.
// With includeDeleted, an active row is preferred over deleted ones.
func GetByName(ctx context.Context, db *sql.DB, workspaceNorm, nameNorm string, includeDeleted bool) (*notes.Digest, error) {
	query := `SELECT ` + digestColumns + ` FROM digests WHERE workspace_norm = ? AND name_norm = ?`
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	} else {
		query += " ORDER BY (deleted_at IS NULL) DESC, updated_at DESC LIMIT 1"
	}

	d, err := scanDigest(db.QueryRowContext(ctx, query, workspaceNorm, nameNorm))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(nameNorm)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return d, nil
}

// GetLatest returns the most recently updated digest in a workspace,
// or nil if the workspace has none. Without withText the notes text is empty.
func GetLatest(ctx context.Context, db *sql.DB, workspaceNorm string, withText, includeDeleted bool) (*notes.Digest, error) {
	cols := summaryColumns
	if withText {
		cols = digestColumns
	}
	query := `SELECT ` + cols + ` FROM digests WHERE workspace_norm = ?`
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}
	query += " ORDER BY updated_at DESC, id DESC LIMIT 1"

	d, err := scanDigest(db.QueryRowContext(ctx, query, workspaceNorm))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return d, nil
}

// ListByWorkspace returns one page of summaries, newest first, plus the
// total number of matching digests.
func ListByWorkspace(ctx context.Context, db *sql.DB, workspaceNorm string, limit, offset int, includeDeleted bool) ([]notes.DigestSummary, int, error) {
	where := " WHERE workspace_norm = ?"
	if !includeDeleted {
		where += " AND deleted_at IS NULL"
	}

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM digests`+where, workspaceNorm).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := `SELECT ` + summaryColumns + ` FROM digests` + where +
		" ORDER BY updated_at DESC, id DESC LIMIT ? OFFSET ?"
	rows, err := db.QueryContext(ctx, query, workspaceNorm, limit, offset)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var summaries []notes.DigestSummary
	for rows.Next() {
		d, err := scanDigest(rows)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		summaries = append(summaries, d.ToSummary())
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	return summaries, total, nil
}

// SoftDelete marks an active digest as deleted.
func SoftDelete(ctx context.Context, db *sql.DB, id string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE digests SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().Unix(), id,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

// PurgeDeleted permanently removes soft-deleted digests, optionally limited
// to one workspace and to rows deleted more than olderThanDays ago.
func PurgeDeleted(ctx context.Context, db *sql.DB, workspaceNorm *string, olderThanDays *int) (int, error) {
	query := `DELETE FROM digests WHERE deleted_at IS NOT NULL`
	var args []any

	if workspaceNorm != nil {
		query += " AND workspace_norm = ?"
		args = append(args, *workspaceNorm)
	}
	if olderThanDays != nil {
		cutoff := time.Now().Add(-time.Duration(*olderThanDays) * 24 * time.Hour).Unix()
		query += " AND deleted_at < ?"
		args = append(args, cutoff)
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(n), nil
}

// StreamForExport returns rows for export in creation order.
// The caller must close the rows and scan them with ScanDigestFromRows.
func StreamForExport(ctx context.Context, db *sql.DB, workspaceNorm *string, includeDeleted bool) (*sql.Rows, error) {
	query := `SELECT ` + digestColumns + ` FROM digests WHERE 1 = 1`
	var args []any

	if workspaceNorm != nil {
		query += " AND workspace_norm = ?"
		args = append(args, *workspaceNorm)
	}
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return rows, nil
}

// ScanDigestFromRows scans the current row of a StreamForExport result.
func ScanDigestFromRows(rows *sql.Rows) (*notes.Digest, error) {
	return scanDigest(rows)
}

// scanDigest scans a digestColumns/summaryColumns row.
func scanDigest(row rowScanner) (*notes.Digest, error) {
	var (
		d              notes.Digest
		nameRaw        sql.NullString
		nameNorm       sql.NullString
		title          sql.NullString
		decisionsJSON  string
		actionsJSON    string
		highlightsJSON string
		tagsJSON       sql.NullString
		source         sql.NullString
		deletedAt      sql.NullInt64
	)

	err := row.Scan(
		&d.ID, &d.WorkspaceRaw, &d.WorkspaceNorm, &nameRaw, &nameNorm,
		&title, &d.NotesText, &d.NotesChars, &d.WordCount, &d.TokensEstimate,
		&decisionsJSON, &actionsJSON, &highlightsJSON,
		&tagsJSON, &source, &d.CreatedAt, &d.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	d.NameRaw = fromNullString(nameRaw)
	d.NameNorm = fromNullString(nameNorm)
	d.Title = fromNullString(title)
	d.Source = fromNullString(source)
	if deletedAt.Valid {
		d.DeletedAt = &deletedAt.Int64
	}

	for _, f := range []struct {
		raw string
		dst *[]string
	}{
		{decisionsJSON, &d.Result.Decisions},
		{actionsJSON, &d.Result.Actions},
		{highlightsJSON, &d.Result.Highlights},
	} {
		if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
			return nil, err
		}
	}

	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &d.Tags); err != nil {
			return nil, err
		}
	}

	return &d, nil
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
