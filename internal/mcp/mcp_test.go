package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap/zaptest"

	"github.com/hpungsan/minutes/internal/config"
	"github.com/hpungsan/minutes/internal/db"
	"github.com/hpungsan/minutes/internal/errors"
)

const meetingNotes = `Agreed: move the launch to May
Priya: send the invite list
Downtime risk during migration
random chatter`

// testSetup creates a temporary database and config for testing.
func testSetup(t *testing.T) (*sql.DB, *config.Config) {
	t.Helper()

	baseDir := t.TempDir()
	t.Setenv(config.HomeEnv, baseDir)

	database, err := db.Init(baseDir)
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true
	return database, cfg
}

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	database, cfg := testSetup(t)
	return NewHandlers(database, cfg, zaptest.NewLogger(t))
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestHandleClassify(t *testing.T) {
	h := newTestHandlers(t)

	result, err := h.HandleClassify(context.Background(), makeRequest(map[string]any{
		"notes_text": meetingNotes,
		"explain":    true,
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	out := parseOutput(t, result)
	res := out["result"].(map[string]any)
	if got := res["decisions"].([]any); len(got) != 1 || got[0] != "move the launch to May" {
		t.Errorf("decisions = %v", got)
	}
	if got := res["actions"].([]any); len(got) != 1 || got[0] != "Priya: send the invite list" {
		t.Errorf("actions = %v", got)
	}
	if got := res["highlights"].([]any); len(got) != 1 || got[0] != "Downtime risk during migration" {
		t.Errorf("highlights = %v", got)
	}
	if got := out["verdicts"].([]any); len(got) != 4 {
		t.Errorf("len(verdicts) = %d, want 4", len(got))
	}
}

func TestHandleClassify_EmptyNotes(t *testing.T) {
	h := newTestHandlers(t)

	result, err := h.HandleClassify(context.Background(), makeRequest(map[string]any{"notes_text": ""}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	res := parseOutput(t, result)["result"].(map[string]any)
	if got := res["decisions"].([]any); len(got) != 1 || got[0] != "No clear items detected." {
		t.Errorf("decisions = %v, want sentinel", got)
	}
	if got := res["actions"].([]any); len(got) != 0 {
		t.Errorf("actions = %v, want []", got)
	}
}

func TestHandleStore(t *testing.T) {
	h := newTestHandlers(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		args      map[string]any
		errorCode string
	}{
		{
			name: "store named digest",
			args: map[string]any{"notes_text": meetingNotes, "workspace": "team", "name": "sync", "tags": []any{"weekly"}},
		},
		{
			name:      "missing notes_text",
			args:      map[string]any{"workspace": "team", "name": "empty"},
			errorCode: "INVALID_REQUEST",
		},
		{
			name:      "duplicate name",
			args:      map[string]any{"notes_text": meetingNotes, "workspace": "team", "name": "sync"},
			errorCode: "NAME_ALREADY_EXISTS",
		},
		{
			name: "duplicate name with replace",
			args: map[string]any{"notes_text": meetingNotes, "workspace": "team", "name": "sync", "mode": "replace"},
		},
		{
			name:      "unknown mode",
			args:      map[string]any{"notes_text": meetingNotes, "mode": "merge"},
			errorCode: "INVALID_REQUEST",
		},
		{
			name:      "wrong argument type",
			args:      map[string]any{"notes_text": 42},
			errorCode: "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleStore(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if tt.errorCode == "" {
				if result.IsError {
					t.Errorf("expected success, got error: %v", extractErrorMessage(result))
				}
				return
			}
			if !result.IsError {
				t.Fatal("expected error result, got success")
			}
			assertErrorCode(t, result, tt.errorCode)
		})
	}
}

func TestHandleFetchAndDelete(t *testing.T) {
	h := newTestHandlers(t)
	ctx := context.Background()

	stored := parseOutput(t, mustCall(t, h.HandleStore, map[string]any{
		"notes_text": meetingNotes, "workspace": "team", "name": "sync",
	}))
	id := stored["id"].(string)

	out := parseOutput(t, mustCall(t, h.HandleFetch, map[string]any{"workspace": "team", "name": "sync"}))
	if out["id"] != id {
		t.Errorf("fetched id = %v, want %s", out["id"], id)
	}
	if out["notes_text"] != meetingNotes {
		t.Errorf("notes_text = %v", out["notes_text"])
	}

	out = parseOutput(t, mustCall(t, h.HandleFetch, map[string]any{"id": id, "include_text": false}))
	if _, ok := out["notes_text"]; ok {
		t.Error("notes_text should be omitted when include_text is false")
	}

	result, _ := h.HandleFetch(ctx, makeRequest(map[string]any{"id": id, "name": "sync"}))
	assertErrorCode(t, result, "AMBIGUOUS_ADDRESSING")

	out = parseOutput(t, mustCall(t, h.HandleDelete, map[string]any{"id": id}))
	if out["deleted"] != true {
		t.Errorf("deleted = %v", out["deleted"])
	}

	result, _ = h.HandleFetch(ctx, makeRequest(map[string]any{"id": id}))
	assertErrorCode(t, result, "NOT_FOUND")

	result, _ = h.HandleDelete(ctx, makeRequest(map[string]any{"id": id}))
	assertErrorCode(t, result, "NOT_FOUND")
}

func TestHandleListAndLatest(t *testing.T) {
	h := newTestHandlers(t)

	for i := 0; i < 3; i++ {
		mustCall(t, h.HandleStore, map[string]any{"notes_text": meetingNotes, "workspace": "team", "name": fmt.Sprintf("m%d", i)})
	}

	out := parseOutput(t, mustCall(t, h.HandleList, map[string]any{"workspace": "team", "limit": 2}))
	if items := out["items"].([]any); len(items) != 2 {
		t.Errorf("len(items) = %d, want 2", len(items))
	}
	p := out["pagination"].(map[string]any)
	if p["has_more"] != true || p["total"] != float64(3) {
		t.Errorf("pagination = %v", p)
	}

	out = parseOutput(t, mustCall(t, h.HandleLatest, map[string]any{"workspace": "team"}))
	item, ok := out["item"].(map[string]any)
	if !ok {
		t.Fatalf("item = %v, want object", out["item"])
	}
	if _, ok := item["notes_text"]; ok {
		t.Error("latest should omit notes_text by default")
	}

	out = parseOutput(t, mustCall(t, h.HandleLatest, map[string]any{"workspace": "empty"}))
	if out["item"] != nil {
		t.Errorf("item = %v, want null", out["item"])
	}
}

func TestHandlePurge(t *testing.T) {
	h := newTestHandlers(t)

	stored := parseOutput(t, mustCall(t, h.HandleStore, map[string]any{"notes_text": meetingNotes}))
	mustCall(t, h.HandleDelete, map[string]any{"id": stored["id"]})

	out := parseOutput(t, mustCall(t, h.HandlePurge, map[string]any{}))
	if out["purged"] != float64(1) {
		t.Errorf("purged = %v, want 1", out["purged"])
	}

	result, _ := h.HandlePurge(context.Background(), makeRequest(map[string]any{"older_than_days": -2}))
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestHandleExportAndRender(t *testing.T) {
	h := newTestHandlers(t)
	dir := t.TempDir()

	stored := parseOutput(t, mustCall(t, h.HandleStore, map[string]any{"notes_text": meetingNotes, "name": "sync"}))
	id := stored["id"].(string)

	exportPath := filepath.Join(dir, "all.jsonl")
	out := parseOutput(t, mustCall(t, h.HandleExport, map[string]any{"path": exportPath}))
	if out["count"] != float64(1) {
		t.Errorf("count = %v, want 1", out["count"])
	}
	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.HasPrefix(string(data), `{"_minutes_export":true`) {
		t.Errorf("export header = %q", strings.SplitN(string(data), "\n", 2)[0])
	}

	out = parseOutput(t, mustCall(t, h.HandleRender, map[string]any{"id": id}))
	if !strings.Contains(out["summary"].(string), "1. Move the launch to May") {
		t.Errorf("summary = %v", out["summary"])
	}

	renderPath := filepath.Join(dir, "summary.txt")
	out = parseOutput(t, mustCall(t, h.HandleRender, map[string]any{"name": "sync", "write": true, "path": renderPath}))
	if out["path"] != renderPath {
		t.Errorf("path = %v, want %s", out["path"], renderPath)
	}
	if _, err := os.Stat(renderPath); err != nil {
		t.Errorf("rendered file missing: %v", err)
	}

	result, _ := h.HandleRender(context.Background(), makeRequest(map[string]any{"id": id, "format": "pdf"}))
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestServerRegistration(t *testing.T) {
	database, cfg := testSetup(t)

	tools := NewServer(database, cfg, nil, "test").ListTools()
	if len(tools) != len(toolRegistry) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(toolRegistry))
	}
	for _, name := range AllToolNames() {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	database, cfg := testSetup(t)
	cfg.DisabledTools = []string{"digest_purge", "digest_purge", "digest_export"}

	tools := NewServer(database, cfg, nil, "test").ListTools()
	if len(tools) != len(toolRegistry)-2 {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(toolRegistry)-2)
	}
	for _, name := range []string{"digest_purge", "digest_export"} {
		if _, ok := tools[name]; ok {
			t.Errorf("disabled tool %q should not be registered", name)
		}
	}

	cfg.DisabledTools = AllToolNames()
	if tools := NewServer(database, cfg, nil, "test").ListTools(); len(tools) != 0 {
		t.Errorf("registered tool count = %d, want 0", len(tools))
	}
}

func TestValidateDisabledTools(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantLen int
	}{
		{"all valid", []string{"digest_purge", "notes_classify"}, 0},
		{"one unknown", []string{"digest_purge", "digest_update"}, 1},
		{"empty list", []string{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if unknown := ValidateDisabledTools(tt.input); len(unknown) != tt.wantLen {
				t.Errorf("ValidateDisabledTools() returned %d unknown, want %d", len(unknown), tt.wantLen)
			}
		})
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()
	if len(names) != 9 {
		t.Errorf("AllToolNames() returned %d names, want 9", len(names))
	}
	if names[0] != "digest_delete" || names[len(names)-1] != "notes_classify" {
		t.Errorf("AllToolNames() not sorted: %v", names)
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	r := errorResult(errors.NewInternal(fmt.Errorf("sql error: open /tmp/secret.db: permission denied")))
	errObj := errorObject(t, r)

	if errObj["code"] != string(errors.ErrInternal) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrInternal)
	}
	if strings.Contains(errObj["message"].(string), "secret") {
		t.Error("INTERNAL message leaked the underlying error")
	}
	if _, ok := errObj["details"]; ok {
		t.Fatal("expected INTERNAL errors to omit details")
	}
}

func TestErrorResult_WrappedError(t *testing.T) {
	errObj := errorObject(t, errorResult(fmt.Errorf("render: %w", errors.NewAmbiguousAddressing())))
	if errObj["code"] != string(errors.ErrAmbiguousAddressing) {
		t.Errorf("code=%v, want %v", errObj["code"], errors.ErrAmbiguousAddressing)
	}
}

func TestErrorResult_NonInternalIncludesDetails(t *testing.T) {
	errObj := errorObject(t, errorResult(errors.NewNotesTooLarge(10, 20)))
	if errObj["status"] != float64(413) {
		t.Errorf("status=%v, want 413", errObj["status"])
	}
	details, ok := errObj["details"].(map[string]any)
	if !ok || details["max_chars"] != float64(10) {
		t.Errorf("details = %v", errObj["details"])
	}
}

// Helper functions

type handlerFunc func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func mustCall(t *testing.T, fn handlerFunc, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	result, err := fn(context.Background(), makeRequest(args))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	return result
}

// parseOutput extracts and unmarshals the JSON output from an MCP result.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &output); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return output
}

func errorObject(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if !result.IsError {
		t.Fatal("expected IsError=true")
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Fatalf("no error object in payload: %v", payload)
	}
	return errObj
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()
	if code := errorObject(t, result)["code"]; code != expectedCode {
		t.Errorf("got error code %v, want %q", code, expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}
	return text.Text
}
