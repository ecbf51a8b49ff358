package mcp

import "github.com/mark3labs/mcp-go/mcp"

// Shared addressing parameters: either id, or workspace + name.
var addressOptions = []mcp.ToolOption{
	mcp.WithString("id", mcp.Description("Digest ID (ULID). Do not combine with workspace/name.")),
	mcp.WithString("workspace", mcp.Description(`Workspace of a named digest (default "default").`)),
	mcp.WithString("name", mcp.Description("Digest name within the workspace.")),
}

func withOptions(base []mcp.ToolOption, extra ...mcp.ToolOption) []mcp.ToolOption {
	return append(append([]mcp.ToolOption{}, base...), extra...)
}

var classifyToolDef = mcp.NewTool("notes_classify",
	mcp.WithDescription("Classify raw meeting notes into decisions, action items and highlights without storing them. "+
		"Each non-empty line lands in at most one bucket; decisions are reported as \"No clear items detected.\" when none are found."),
	mcp.WithString("notes_text", mcp.Required(), mcp.Description("Raw meeting notes, one item per line.")),
	mcp.WithBoolean("explain", mcp.Description("Include the rule that matched each line.")),
)

var storeToolDef = mcp.NewTool("digest_store",
	mcp.WithDescription("Classify meeting notes and store the resulting digest."),
	mcp.WithString("notes_text", mcp.Required(), mcp.Description("Raw meeting notes, one item per line.")),
	mcp.WithString("workspace", mcp.Description(`Workspace (default "default").`)),
	mcp.WithString("name", mcp.Description("Optional name, unique among active digests in the workspace.")),
	mcp.WithString("title", mcp.Description("Display title (defaults to the name).")),
	mcp.WithArray("tags", mcp.Description("Free-form tags."), mcp.WithStringItems()),
	mcp.WithString("source", mcp.Description("Where the notes came from.")),
	mcp.WithString("mode", mcp.Description("Name collision behavior."), mcp.Enum("error", "replace")),
)

var fetchToolDef = mcp.NewTool("digest_fetch",
	withOptions(addressOptions,
		mcp.WithDescription("Fetch a stored digest by id or by workspace + name."),
		mcp.WithBoolean("include_text", mcp.Description("Include the original notes (default true).")),
		mcp.WithBoolean("include_deleted", mcp.Description("Also match soft-deleted digests.")),
	)...,
)

var listToolDef = mcp.NewTool("digest_list",
	mcp.WithDescription("List digest summaries in a workspace, newest first."),
	mcp.WithString("workspace", mcp.Description(`Workspace (default "default").`)),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100).")),
	mcp.WithNumber("offset", mcp.Description("Items to skip.")),
	mcp.WithBoolean("include_deleted", mcp.Description("Include soft-deleted digests.")),
)

var latestToolDef = mcp.NewTool("digest_latest",
	mcp.WithDescription("Return the most recently updated digest in a workspace, or null."),
	mcp.WithString("workspace", mcp.Description(`Workspace (default "default").`)),
	mcp.WithBoolean("include_text", mcp.Description("Include notes text and buckets (default false).")),
	mcp.WithBoolean("include_deleted", mcp.Description("Include soft-deleted digests.")),
)

var deleteToolDef = mcp.NewTool("digest_delete",
	withOptions(addressOptions,
		mcp.WithDescription("Soft-delete a digest. Its name becomes available again."),
	)...,
)

var purgeToolDef = mcp.NewTool("digest_purge",
	mcp.WithDescription("Permanently remove soft-deleted digests."),
	mcp.WithString("workspace", mcp.Description("Only purge this workspace.")),
	mcp.WithNumber("older_than_days", mcp.Description("Only purge digests deleted more than N days ago.")),
)

var exportToolDef = mcp.NewTool("digest_export",
	mcp.WithDescription("Export digests to a JSONL file (header line plus one digest per line)."),
	mcp.WithString("path", mcp.Description("Destination .jsonl file (default: exports directory).")),
	mcp.WithString("workspace", mcp.Description("Only export this workspace.")),
	mcp.WithBoolean("include_deleted", mcp.Description("Include soft-deleted digests.")),
)

var renderToolDef = mcp.NewTool("digest_render",
	withOptions(addressOptions,
		mcp.WithDescription("Render a stored digest as a readable meeting summary, optionally saving it as a .txt file."),
		mcp.WithString("format", mcp.Description("Summary layout (default text)."), mcp.Enum("text", "markdown")),
		mcp.WithBoolean("include_notes", mcp.Description("Append the original notes (text only).")),
		mcp.WithBoolean("write", mcp.Description("Save the text summary to a file.")),
		mcp.WithString("path", mcp.Description("Destination .txt file (default: exports/meeting-summary-YYYY-MM-DD.txt).")),
	)...,
)
