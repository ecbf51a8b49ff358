package ops

import (
	"context"
	"database/sql"
	"testing"

	"github.com/hpungsan/minutes/internal/config"
	"github.com/hpungsan/minutes/internal/db"
)

const standupNotes = `Decision: ship on Friday
Bob: prepare the release notes
We need to update the docs
Launch target is 3 weeks out
lunch was good`

func stringPtr(s string) *string {
	return &s
}

func boolPtr(b bool) *bool {
	return &b
}

func intPtr(n int) *int {
	return &n
}

// setupDB opens a fresh database in a temp base directory and points
// MINUTES_HOME at it, so the exports directory lives there too.
func setupDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	baseDir := t.TempDir()
	t.Setenv(config.HomeEnv, baseDir)

	database, err := db.Init(baseDir)
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database, baseDir
}

// mustStore stores notes under (workspace, name) and returns the ID.
func mustStore(t *testing.T, database *sql.DB, workspace string, name *string, text string) string {
	t.Helper()
	out, err := Store(context.Background(), database, config.DefaultConfig(), StoreInput{
		Workspace: workspace,
		Name:      name,
		NotesText: text,
	})
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	return out.ID
}
