package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/hpungsan/minutes/internal/config"
	"github.com/hpungsan/minutes/internal/errors"
	"github.com/hpungsan/minutes/internal/logging"
	"github.com/hpungsan/minutes/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db     *sql.DB
	cfg    *config.Config
	logger *zap.Logger
}

// NewHandlers creates a new Handlers instance. A nil logger discards output.
func NewHandlers(db *sql.DB, cfg *config.Config, logger *zap.Logger) *Handlers {
	return &Handlers{db: db, cfg: cfg, logger: logging.OrNop(logger)}
}

// Request types for each tool

type ClassifyRequest struct {
	NotesText string `json:"notes_text"`
	Explain   bool   `json:"explain,omitempty"`
}

type StoreRequest struct {
	Workspace string   `json:"workspace"`
	Name      *string  `json:"name,omitempty"`
	Title     *string  `json:"title,omitempty"`
	NotesText string   `json:"notes_text"`
	Tags      []string `json:"tags,omitempty"`
	Source    *string  `json:"source,omitempty"`
	Mode      string   `json:"mode,omitempty"`
}

// AddressRequest identifies a digest by id or by workspace + name.
type AddressRequest struct {
	ID        string `json:"id,omitempty"`
	Workspace string `json:"workspace,omitempty"`
	Name      string `json:"name,omitempty"`
}

type FetchRequest struct {
	AddressRequest
	IncludeDeleted bool  `json:"include_deleted,omitempty"`
	IncludeText    *bool `json:"include_text,omitempty"`
}

type ListRequest struct {
	Workspace      string `json:"workspace,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	Offset         int    `json:"offset,omitempty"`
	IncludeDeleted bool   `json:"include_deleted,omitempty"`
}

type LatestRequest struct {
	Workspace      string `json:"workspace,omitempty"`
	IncludeText    bool   `json:"include_text,omitempty"`
	IncludeDeleted bool   `json:"include_deleted,omitempty"`
}

type PurgeRequest struct {
	Workspace     *string `json:"workspace,omitempty"`
	OlderThanDays *int    `json:"older_than_days,omitempty"`
}

type ExportRequest struct {
	Path           string  `json:"path,omitempty"`
	Workspace      *string `json:"workspace,omitempty"`
	IncludeDeleted bool    `json:"include_deleted,omitempty"`
}

type RenderRequest struct {
	AddressRequest
	Format       string `json:"format,omitempty"`
	IncludeNotes bool   `json:"include_notes,omitempty"`
	Write        bool   `json:"write,omitempty"`
	Path         string `json:"path,omitempty"`
}

// HandleClassify handles notes_classify.
func (h *Handlers) HandleClassify(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ClassifyRequest](req)
	if err != nil {
		return h.errorResult("notes_classify", errors.NewInvalidRequest(err.Error())), nil
	}

	out, err := ops.Classify(ctx, h.cfg, ops.ClassifyInput{
		NotesText: input.NotesText,
		Explain:   input.Explain,
	})
	return h.result("notes_classify", out, err)
}

// HandleStore handles digest_store.
func (h *Handlers) HandleStore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StoreRequest](req)
	if err != nil {
		return h.errorResult("digest_store", errors.NewInvalidRequest(err.Error())), nil
	}

	out, err := ops.Store(ctx, h.db, h.cfg, ops.StoreInput{
		Workspace: input.Workspace,
		Name:      input.Name,
		Title:     input.Title,
		NotesText: input.NotesText,
		Tags:      input.Tags,
		Source:    input.Source,
		Mode:      ops.StoreMode(input.Mode),
	})
	return h.result("digest_store", out, err)
}

// HandleFetch handles digest_fetch.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return h.errorResult("digest_fetch", errors.NewInvalidRequest(err.Error())), nil
	}

	out, err := ops.Fetch(ctx, h.db, ops.FetchInput{
		ID:             input.ID,
		Workspace:      input.Workspace,
		Name:           input.Name,
		IncludeDeleted: input.IncludeDeleted,
		IncludeText:    input.IncludeText,
	})
	return h.result("digest_fetch", out, err)
}

// HandleList handles digest_list.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return h.errorResult("digest_list", errors.NewInvalidRequest(err.Error())), nil
	}

	out, err := ops.List(ctx, h.db, ops.ListInput{
		Workspace:      input.Workspace,
		Limit:          input.Limit,
		Offset:         input.Offset,
		IncludeDeleted: input.IncludeDeleted,
	})
	return h.result("digest_list", out, err)
}

// HandleLatest handles digest_latest.
func (h *Handlers) HandleLatest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LatestRequest](req)
	if err != nil {
		return h.errorResult("digest_latest", errors.NewInvalidRequest(err.Error())), nil
	}

	out, err := ops.Latest(ctx, h.db, ops.LatestInput{
		Workspace:      input.Workspace,
		IncludeText:    input.IncludeText,
		IncludeDeleted: input.IncludeDeleted,
	})
	return h.result("digest_latest", out, err)
}

// HandleDelete handles digest_delete.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddressRequest](req)
	if err != nil {
		return h.errorResult("digest_delete", errors.NewInvalidRequest(err.Error())), nil
	}

	out, err := ops.Delete(ctx, h.db, ops.DeleteInput{
		ID:        input.ID,
		Workspace: input.Workspace,
		Name:      input.Name,
	})
	return h.result("digest_delete", out, err)
}

// HandlePurge handles digest_purge.
func (h *Handlers) HandlePurge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PurgeRequest](req)
	if err != nil {
		return h.errorResult("digest_purge", errors.NewInvalidRequest(err.Error())), nil
	}

	out, err := ops.Purge(ctx, h.db, ops.PurgeInput{
		Workspace:     input.Workspace,
		OlderThanDays: input.OlderThanDays,
	})
	return h.result("digest_purge", out, err)
}

// HandleExport handles digest_export.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return h.errorResult("digest_export", errors.NewInvalidRequest(err.Error())), nil
	}

	out, err := ops.Export(ctx, h.db, h.cfg, ops.ExportInput{
		Path:           input.Path,
		Workspace:      input.Workspace,
		IncludeDeleted: input.IncludeDeleted,
	})
	return h.result("digest_export", out, err)
}

// HandleRender handles digest_render.
func (h *Handlers) HandleRender(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RenderRequest](req)
	if err != nil {
		return h.errorResult("digest_render", errors.NewInvalidRequest(err.Error())), nil
	}

	out, err := ops.Render(ctx, h.db, h.cfg, ops.RenderInput{
		ID:           input.ID,
		Workspace:    input.Workspace,
		Name:         input.Name,
		Format:       ops.RenderFormat(input.Format),
		IncludeNotes: input.IncludeNotes,
		Write:        input.Write,
		Path:         input.Path,
	})
	return h.result("digest_render", out, err)
}

// Result helpers

func (h *Handlers) result(tool string, data any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return h.errorResult(tool, err), nil
	}
	h.logger.Debug("tool call", zap.String("tool", tool))
	return mcp.NewToolResultJSON(data)
}

func (h *Handlers) errorResult(tool string, err error) *mcp.CallToolResult {
	if errors.StatusOf(err) >= 500 {
		h.logger.Error("tool call failed", zap.String("tool", tool), zap.Error(err))
	} else {
		h.logger.Debug("tool call rejected", zap.String("tool", tool), zap.Error(err))
	}
	return errorResult(err)
}

// errorResult converts err into an IsError result carrying
// {"error": {code, message, status, details}}. INTERNAL errors carry a
// generic message and no details.
func errorResult(err error) *mcp.CallToolResult {
	errorObj := map[string]any{
		"code":    errors.ErrInternal,
		"message": "an internal error occurred",
		"status":  500,
	}

	var minutesErr *errors.MinutesError
	if stderrors.As(err, &minutesErr) && minutesErr.Code != errors.ErrInternal {
		errorObj["code"] = minutesErr.Code
		errorObj["message"] = minutesErr.Message
		errorObj["status"] = minutesErr.Status
		if minutesErr.Details != nil {
			errorObj["details"] = minutesErr.Details
		}
	}

	content, _ := json.Marshal(map[string]any{"error": errorObj})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}
