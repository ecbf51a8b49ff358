package ops

import (
	"context"
	"fmt"
	"testing"
)

func TestList_PaginationAndBounds(t *testing.T) {
	database, _ := setupDB(t)
	for i := 0; i < 5; i++ {
		mustStore(t, database, "eng", stringPtr(fmt.Sprintf("meeting-%d", i)), standupNotes)
	}
	mustStore(t, database, "ops", nil, standupNotes)

	tests := []struct {
		name        string
		input       ListInput
		wantLen     int
		wantLimit   int
		wantOffset  int
		wantHasMore bool
	}{
		{"defaults", ListInput{Workspace: "ENG"}, 5, DefaultListLimit, 0, false},
		{"first page", ListInput{Workspace: "eng", Limit: 2}, 2, 2, 0, true},
		{"last page", ListInput{Workspace: "eng", Limit: 2, Offset: 4}, 1, 2, 4, false},
		{"limit capped", ListInput{Workspace: "eng", Limit: 1000}, 5, MaxListLimit, 0, false},
		{"negative offset", ListInput{Workspace: "eng", Offset: -3}, 5, DefaultListLimit, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := List(context.Background(), database, tt.input)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(out.Items) != tt.wantLen {
				t.Errorf("len(Items) = %d, want %d", len(out.Items), tt.wantLen)
			}
			p := out.Pagination
			if p.Limit != tt.wantLimit || p.Offset != tt.wantOffset || p.HasMore != tt.wantHasMore || p.Total != 5 {
				t.Errorf("Pagination = %+v", p)
			}
			if out.Sort != "updated_at_desc" {
				t.Errorf("Sort = %q", out.Sort)
			}
		})
	}
}

func TestList_EmptyWorkspaceReturnsEmptySlice(t *testing.T) {
	database, _ := setupDB(t)

	out, err := List(context.Background(), database, ListInput{Workspace: "nobody"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if out.Items == nil || len(out.Items) != 0 {
		t.Errorf("Items = %#v, want empty non-nil", out.Items)
	}
}

func TestList_SummariesCarryStats(t *testing.T) {
	database, _ := setupDB(t)
	mustStore(t, database, "", stringPtr("standup"), standupNotes)

	out, err := List(context.Background(), database, ListInput{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	s := out.Items[0].Stats
	if s.Decisions != 1 || s.Actions != 2 || s.Highlights != 1 || s.Total != 4 {
		t.Errorf("Stats = %+v", s)
	}
}
