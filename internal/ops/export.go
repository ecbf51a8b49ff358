package ops

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/hpungsan/minutes/internal/config"
	"github.com/hpungsan/minutes/internal/db"
	"github.com/hpungsan/minutes/internal/errors"
	"github.com/hpungsan/minutes/internal/notes"
)

// ExportSchemaVersion is written to the header line of every export.
const ExportSchemaVersion = "1.0"

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path           string  // default: <exports>/<workspace|all>-<timestamp>.jsonl
	Workspace      *string // optional workspace filter
	IncludeDeleted bool
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// Export writes digests to a JSONL file: one header line, then one
// record per digest in creation order.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	now := time.Now()

	var workspaceNorm *string
	if input.Workspace != nil {
		ws := normalizeWorkspace(*input.Workspace)
		workspaceNorm = &ws
	}

	exportPath := input.Path
	if exportPath == "" {
		var err error
		if exportPath, err = defaultExportPath(workspaceNorm, now); err != nil {
			return nil, err
		}
	}
	if err := ValidateOutputPath(exportPath, ExtExport, cfg); err != nil {
		return nil, err
	}

	rows, err := db.StreamForExport(ctx, database, workspaceNorm, input.IncludeDeleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	count := 0
	err = writeAtomic(exportPath, func(w *bufio.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)

		header := notes.ExportHeader{
			MinutesExport: true,
			SchemaVersion: ExportSchemaVersion,
			ExportedAt:    now.Unix(),
		}
		if err := enc.Encode(header); err != nil {
			return errors.NewInternal(err)
		}

		for rows.Next() {
			if ctx.Err() != nil {
				return errors.NewCancelled("export")
			}
			d, err := db.ScanDigestFromRows(rows)
			if err != nil {
				return errors.NewInternal(err)
			}
			if err := enc.Encode(d.ToExportRecord()); err != nil {
				return errors.NewInternal(err)
			}
			count++
		}
		if err := rows.Err(); err != nil {
			return errors.NewInternal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ExportOutput{
		Path:       exportPath,
		Count:      count,
		ExportedAt: now.Unix(),
	}, nil
}

// defaultExportPath builds <exports>/<workspace|all>-<timestamp>.jsonl.
func defaultExportPath(workspaceNorm *string, now time.Time) (string, error) {
	dir, err := ExportsDir()
	if err != nil {
		return "", err
	}
	name := "all"
	if workspaceNorm != nil {
		name = SanitizeForFilename(*workspaceNorm)
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%s.jsonl", name, now.Format("2006-01-02T150405"))), nil
}
