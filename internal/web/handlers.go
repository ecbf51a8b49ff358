package web

import (
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/hpungsan/minutes/internal/config"
	"github.com/hpungsan/minutes/internal/errors"
	"github.com/hpungsan/minutes/internal/notes"
	"github.com/hpungsan/minutes/internal/ops"
)

// maxClassifyBody caps POST /api/classify bodies when no notes limit is set.
const maxClassifyBody = 1 << 20

// maxEscapedRuneBytes is the longest JSON encoding of one rune.
const maxEscapedRuneBytes = 12

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
}

// ListPageData is the template data for the digest list.
type ListPageData struct {
	PageData
	Items      []notes.DigestSummary
	Pagination ops.Pagination
	Workspace  string
	Deleted    bool
}

// DetailPageData is the template data for one digest.
type DetailPageData struct {
	PageData
	Digest       *ops.FetchOutput
	RenderedHTML template.HTML
	DisplayName  string
}

// HandleList handles GET /digests.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	workspace := r.URL.Query().Get("workspace")
	if workspace == "" {
		workspace = ops.DefaultWorkspace
	}

	input := ops.ListInput{
		Workspace:      workspace,
		Limit:          parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset:         parseIntParam(r, "offset", 0),
		IncludeDeleted: parseBoolParam(r, "include_deleted"),
	}

	result, err := ops.List(r.Context(), h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData: PageData{
			Title:   "Digests",
			Version: h.renderer.version,
			Nav:     "digests",
		},
		Items:      result.Items,
		Pagination: result.Pagination,
		Workspace:  workspace,
		Deleted:    input.IncludeDeleted,
	})
}

// HandleDetail handles GET /digests/{id}.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("digest ID is required"))
		return
	}

	d, err := ops.Fetch(r.Context(), h.db, ops.FetchInput{
		ID:             id,
		IncludeDeleted: parseBoolParam(r, "include_deleted"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, d)
		return
	}

	name := d.DisplayName()
	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: PageData{
			Title:   name,
			Version: h.renderer.version,
			Nav:     "digests",
		},
		Digest:       d,
		RenderedHTML: renderMarkdown(notes.RenderMarkdown(d.Result)),
		DisplayName:  name,
	})
}

// HandleDelete handles DELETE /digests/{id}.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("digest ID is required"))
		return
	}

	result, err := ops.Delete(r.Context(), h.db, ops.DeleteInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/digests")
		w.WriteHeader(http.StatusOK)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	http.Redirect(w, r, "/digests", http.StatusFound)
}

// HandlePurge handles POST /digests/purge. The form must carry confirm=true.
func (h *Handlers) HandlePurge(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	if r.FormValue("confirm") != "true" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("confirm parameter must be \"true\""))
		return
	}

	input := ops.PurgeInput{
		Workspace: ptrString(r.FormValue("workspace")),
	}
	if days := r.FormValue("older_than_days"); days != "" {
		d, err := strconv.Atoi(days)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("older_than_days must be an integer"))
			return
		}
		input.OlderThanDays = &d
	}

	result, err := ops.Purge(r.Context(), h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="purge-result">` + template.HTMLEscapeString(result.Message) + `</div>`))
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	http.Redirect(w, r, "/digests?include_deleted=true", http.StatusFound)
}

// classifyRequest is the POST /api/classify body.
type classifyRequest struct {
	NotesText string `json:"notes_text"`
	Explain   bool   `json:"explain"`
}

// HandleClassify handles POST /api/classify. Always answers in JSON.
func (h *Handlers) HandleClassify(w http.ResponseWriter, r *http.Request) {
	limit := int64(maxClassifyBody)
	if h.cfg != nil && h.cfg.NotesMaxChars > 0 {
		// A JSON-escaped rune takes up to 12 bytes (a \uXXXX surrogate
		// pair). The rune limit itself is enforced by ops.Classify.
		limit = int64(h.cfg.NotesMaxChars)*maxEscapedRuneBytes + 1024
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	var req classifyRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		r.Header.Set("Accept", "application/json")
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			h.renderer.renderError(w, r, &errors.MinutesError{
				Code:    errors.ErrNotesTooLarge,
				Status:  http.StatusRequestEntityTooLarge,
				Message: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
				Details: map[string]any{"max_bytes": tooLarge.Limit},
			})
			return
		}
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid JSON body: "+err.Error()))
		return
	}

	out, err := ops.Classify(r.Context(), h.cfg, ops.ClassifyInput{
		NotesText: req.NotesText,
		Explain:   req.Explain,
	})
	if err != nil {
		r.Header.Set("Accept", "application/json")
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1"
}

// ptrString returns a pointer to s if non-empty, nil otherwise.
func ptrString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
