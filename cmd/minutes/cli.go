package main

import (
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/minutes/internal/config"
	"github.com/hpungsan/minutes/internal/errors"
	"github.com/hpungsan/minutes/internal/logging"
	"github.com/hpungsan/minutes/internal/notes"
	"github.com/hpungsan/minutes/internal/ops"
	"github.com/hpungsan/minutes/internal/web"
)

// defaultStdinLimit caps stdin reads when notes_max_chars is disabled.
const defaultStdinLimit = 4 << 20

// stdinSlack is extra room over the notes limit for whitespace that
// readStdin trims.
const stdinSlack = 1024

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, logger *zap.Logger) *cli.App {
	logger = logging.OrNop(logger)
	app := &cli.App{
		Name:    "minutes",
		Usage:   "Meeting notes digest store",
		Version: Version,
		Commands: []*cli.Command{
			classifyCmd(cfg),
			explainCmd(cfg),
			storeCmd(db, cfg),
			fetchCmd(db),
			listCmd(db),
			latestCmd(db),
			deleteCmd(db),
			purgeCmd(db),
			exportCmd(db, cfg),
			renderCmd(db, cfg),
			serveCmd(db, cfg, logger),
		},
	}
	// Return errors to the caller instead of exiting, so tests can see them.
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// addressFlags are shared by commands that take an [id] or --name.
func addressFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "workspace", Aliases: []string{"w"}, Usage: "Workspace name (default: default)"},
		&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Digest name"},
	}
}

// address reads a positional ID, or --workspace and --name.
func address(c *cli.Context) (id, workspace, name string) {
	if c.NArg() > 0 {
		return c.Args().First(), "", ""
	}
	return "", c.String("workspace"), c.String("name")
}

func classifyCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "classify",
		Usage: "Classify notes from stdin without storing them",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "Output format: json|text|markdown"},
		},
		Action: func(c *cli.Context) error {
			format := c.String("format")
			if format != "json" && format != "text" && format != "markdown" {
				return outputError(errors.NewInvalidRequest("format must be one of: json, text, markdown"))
			}

			if !stdinHasData(c) {
				return outputError(errors.NewInvalidRequest("notes must be piped via stdin"))
			}
			text, err := readInput(c, cfg)
			if err != nil {
				return outputError(err)
			}

			out, err := ops.Classify(c.Context, cfg, ops.ClassifyInput{NotesText: text})
			if err != nil {
				return outputError(err)
			}

			switch format {
			case "text":
				return outputText(c, notes.RenderText(out.Result, notes.RenderOptions{}))
			case "markdown":
				return outputText(c, notes.RenderMarkdown(out.Result))
			}
			return outputJSON(c, out)
		},
	}
}

func explainCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "explain",
		Usage: "Show which rule classified each line of notes from stdin",
		Action: func(c *cli.Context) error {
			if !stdinHasData(c) {
				return outputError(errors.NewInvalidRequest("notes must be piped via stdin"))
			}
			text, err := readInput(c, cfg)
			if err != nil {
				return outputError(err)
			}

			out, err := ops.Classify(c.Context, cfg, ops.ClassifyInput{NotesText: text, Explain: true})
			if err != nil {
				return outputError(err)
			}

			var b strings.Builder
			for _, v := range out.Verdicts {
				bucket := string(v.Bucket)
				if bucket == "" {
					bucket = "dropped"
				}
				fmt.Fprintf(&b, "%-10s %-17s %s\n", bucket, v.Rule, v.Line)
			}
			return outputText(c, b.String())
		},
	}
}

func storeCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "store",
		Usage: "Classify notes from stdin and store the digest",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "workspace", Aliases: []string{"w"}, Value: ops.DefaultWorkspace, Usage: "Workspace name"},
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Digest name (optional)"},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Digest title (defaults to name)"},
			&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
			&cli.StringFlag{Name: "source", Usage: "Where the notes came from"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Collision mode: error|replace"},
		},
		Action: func(c *cli.Context) error {
			if !stdinHasData(c) {
				return outputError(errors.NewInvalidRequest("notes_text must be piped via stdin"))
			}
			text, err := readInput(c, cfg)
			if err != nil {
				return outputError(err)
			}

			input := ops.StoreInput{
				Workspace: c.String("workspace"),
				NotesText: text,
				Tags:      parseTags(c.String("tags")),
				Mode:      ops.StoreMode(c.String("mode")),
			}
			if name := c.String("name"); name != "" {
				input.Name = &name
			}
			if title := c.String("title"); title != "" {
				input.Title = &title
			}
			if source := c.String("source"); source != "" {
				input.Source = &source
			}

			out, err := ops.Store(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, out)
		},
	}
}

func fetchCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Fetch a digest by ID or name",
		ArgsUsage: "[id]",
		Flags: append(addressFlags(),
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted digests"},
			&cli.BoolFlag{Name: "no-text", Usage: "Exclude notes_text from output"},
		),
		Action: func(c *cli.Context) error {
			input := ops.FetchInput{IncludeDeleted: c.Bool("include-deleted")}
			input.ID, input.Workspace, input.Name = address(c)
			if c.Bool("no-text") {
				includeText := false
				input.IncludeText = &includeText
			}

			out, err := ops.Fetch(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, out)
		},
	}
}

func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List digests in a workspace, most recently updated first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "workspace", Aliases: []string{"w"}, Value: ops.DefaultWorkspace, Usage: "Workspace name"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Usage: "Items to skip"},
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted digests"},
		},
		Action: func(c *cli.Context) error {
			out, err := ops.List(c.Context, db, ops.ListInput{
				Workspace:      c.String("workspace"),
				Limit:          c.Int("limit"),
				Offset:         c.Int("offset"),
				IncludeDeleted: c.Bool("include-deleted"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, out)
		},
	}
}

func latestCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "latest",
		Usage: "Get the most recently updated digest in a workspace",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "workspace", Aliases: []string{"w"}, Value: ops.DefaultWorkspace, Usage: "Workspace name"},
			&cli.BoolFlag{Name: "include-text", Usage: "Include notes_text and buckets"},
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted digests"},
		},
		Action: func(c *cli.Context) error {
			out, err := ops.Latest(c.Context, db, ops.LatestInput{
				Workspace:      c.String("workspace"),
				IncludeText:    c.Bool("include-text"),
				IncludeDeleted: c.Bool("include-deleted"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, out)
		},
	}
}

func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Soft-delete a digest",
		ArgsUsage: "[id]",
		Flags:     addressFlags(),
		Action: func(c *cli.Context) error {
			var input ops.DeleteInput
			input.ID, input.Workspace, input.Name = address(c)

			out, err := ops.Delete(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, out)
		},
	}
}

func purgeCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "Permanently delete soft-deleted digests",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "workspace", Aliases: []string{"w"}, Usage: "Filter by workspace"},
			&cli.StringFlag{Name: "older-than", Usage: "Only purge if deleted more than N days ago (e.g., 7d)"},
		},
		Action: func(c *cli.Context) error {
			var input ops.PurgeInput
			if workspace := c.String("workspace"); workspace != "" {
				input.Workspace = &workspace
			}
			if olderThan := c.String("older-than"); olderThan != "" {
				days, err := parseDuration(olderThan)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.OlderThanDays = &days
			}

			out, err := ops.Purge(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, out)
		},
	}
}

func exportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export digests to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.minutes/exports/<workspace>-<timestamp>.jsonl)"},
			&cli.StringFlag{Name: "workspace", Aliases: []string{"w"}, Usage: "Filter by workspace"},
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted digests"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ExportInput{
				Path:           c.String("path"),
				IncludeDeleted: c.Bool("include-deleted"),
			}
			if workspace := c.String("workspace"); workspace != "" {
				input.Workspace = &workspace
			}

			out, err := ops.Export(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, out)
		},
	}
}

func renderCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "Render a stored digest as a text or markdown summary",
		ArgsUsage: "[id]",
		Flags: append(addressFlags(),
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: string(ops.RenderFormatText), Usage: "Output format: text|markdown"},
			&cli.BoolFlag{Name: "include-notes", Usage: "Append the original notes (text format)"},
			&cli.BoolFlag{Name: "write", Usage: "Write the summary to a file instead of stdout (text format)"},
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "File path for --write (default: ~/.minutes/exports/meeting-summary-<date>.txt)"},
		),
		Action: func(c *cli.Context) error {
			input := ops.RenderInput{
				Format:       ops.RenderFormat(c.String("format")),
				IncludeNotes: c.Bool("include-notes"),
				Write:        c.Bool("write"),
				Path:         c.String("path"),
			}
			input.ID, input.Workspace, input.Name = address(c)

			out, err := ops.Render(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}
			if input.Write {
				return outputJSON(c, out)
			}
			return outputText(c, out.Summary)
		},
	}
}

func serveCmd(db *sql.DB, cfg *config.Config, logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 8642, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv, err := web.NewServer(db, cfg, logger, Version, c.String("bind"), c.Int("port"))
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return web.Run(ctx, srv, logger)
		},
	}
}

// outputJSON writes v to the app's writer as indented JSON.
func outputJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputText writes s followed by exactly one newline.
func outputText(c *cli.Context, s string) error {
	_, err := fmt.Fprintln(c.App.Writer, strings.TrimRight(s, "\n"))
	return err
}

// outputError formats err as "[CODE] message" with exit status 1.
func outputError(err error) error {
	var mErr *errors.MinutesError
	if stderrors.As(err, &mErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", mErr.Code, mErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData reports whether the app's reader is something other than
// an interactive terminal.
func stdinHasData(c *cli.Context) bool {
	f, ok := c.App.Reader.(*os.File)
	if !ok {
		return c.App.Reader != nil
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readInput reads notes from the app's reader, bounded by the configured
// notes limit.
func readInput(c *cli.Context, cfg *config.Config) (string, error) {
	limit := int64(defaultStdinLimit)
	if cfg != nil && cfg.NotesMaxChars > 0 {
		// Slack for surrounding whitespace; ops.Classify enforces the rune limit.
		limit = int64(cfg.NotesMaxChars)*4 + stdinSlack
	}
	return readStdin(c.App.Reader, limit)
}

// readStdin reads at most limit bytes from r and trims surrounding space.
func readStdin(r io.Reader, limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", errors.NewInternal(err)
	}
	if int64(len(data)) > limit {
		return "", errors.NewInvalidRequest(fmt.Sprintf("input exceeds %d bytes", limit))
	}
	return strings.TrimSpace(string(data)), nil
}

// parseTags splits a comma-separated string into a slice of tags.
func parseTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// parseDuration parses "7d" format to days.
func parseDuration(s string) (int, error) {
	numStr, ok := strings.CutSuffix(s, "d")
	if !ok {
		return 0, fmt.Errorf("duration must end with 'd' (days), e.g., 7d")
	}
	days, err := strconv.Atoi(numStr)
	if err != nil {
		return 0, fmt.Errorf("invalid duration: %s", s)
	}
	if days < 0 {
		return 0, fmt.Errorf("duration must be non-negative")
	}
	return days, nil
}

