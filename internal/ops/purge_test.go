package ops

import (
	"context"
	"testing"

	"github.com/hpungsan/minutes/internal/errors"
)

func TestPurge(t *testing.T) {
	database, _ := setupDB(t)
	ctx := context.Background()

	a := mustStore(t, database, "eng", nil, "a")
	b := mustStore(t, database, "ops", nil, "b")
	keep := mustStore(t, database, "eng", nil, "c")
	for _, id := range []string{a, b} {
		if _, err := Delete(ctx, database, DeleteInput{ID: id}); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
	}

	out, err := Purge(ctx, database, PurgeInput{OlderThanDays: intPtr(7)})
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if out.Purged != 0 || out.Message != "No deleted digests to purge" {
		t.Errorf("Purge recent = %+v", out)
	}

	out, err = Purge(ctx, database, PurgeInput{Workspace: stringPtr("ENG")})
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if out.Purged != 1 || out.Message != `Permanently deleted 1 digest from workspace "eng"` {
		t.Errorf("Purge eng = %+v", out)
	}

	out, err = Purge(ctx, database, PurgeInput{})
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if out.Purged != 1 {
		t.Errorf("Purged = %d, want 1", out.Purged)
	}

	if _, err := Fetch(ctx, database, FetchInput{ID: keep}); err != nil {
		t.Errorf("active digest affected by purge: %v", err)
	}
}

func TestPurge_NegativeOlderThanDays(t *testing.T) {
	database, _ := setupDB(t)

	_, err := Purge(context.Background(), database, PurgeInput{OlderThanDays: intPtr(-1)})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("Purge error = %v, want INVALID_REQUEST", err)
	}
}

func TestPurgeMessage(t *testing.T) {
	got := purgeMessage(3, stringPtr("eng"), intPtr(30))
	want := `Permanently deleted 3 digests from workspace "eng" (deleted more than 30 days ago)`
	if got != want {
		t.Errorf("purgeMessage = %q, want %q", got, want)
	}
}
