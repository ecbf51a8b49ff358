package ops

import (
	"testing"

	"github.com/hpungsan/minutes/internal/errors"
)

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		workspace string
		addrName  string
		want      Address
		wantCode  errors.ErrorCode
	}{
		{name: "by id", id: " 01ABC ", want: Address{ByID: true, ID: "01ABC"}},
		{name: "by name", workspace: "  Team  Eng ", addrName: "Weekly  Sync", want: Address{Workspace: "team eng", Name: "weekly sync"}},
		{name: "default workspace", addrName: "retro", want: Address{Workspace: "default", Name: "retro"}},
		{name: "id with name", id: "01ABC", addrName: "retro", wantCode: errors.ErrAmbiguousAddressing},
		{name: "id with workspace", id: "01ABC", workspace: "team", wantCode: errors.ErrAmbiguousAddressing},
		{name: "neither", workspace: "team", wantCode: errors.ErrInvalidRequest},
		{name: "blank name", addrName: "   ", wantCode: errors.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateAddress(tt.id, tt.workspace, tt.addrName)
			if tt.wantCode != "" {
				if !errors.Is(err, tt.wantCode) {
					t.Fatalf("ValidateAddress() error = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateAddress() error = %v", err)
			}
			if *got != tt.want {
				t.Errorf("ValidateAddress() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestBuildFetchKey(t *testing.T) {
	named := BuildFetchKey("Team", "Retro", "01ABC")
	if named != (FetchKey{Workspace: "Team", Name: "Retro"}) {
		t.Errorf("named FetchKey = %+v", named)
	}

	unnamed := BuildFetchKey("Team", "", "01ABC")
	if unnamed != (FetchKey{ID: "01ABC"}) {
		t.Errorf("unnamed FetchKey = %+v", unnamed)
	}
}
