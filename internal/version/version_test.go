package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestGetInfo(t *testing.T) {
	orig := Version
	defer func() { Version, GitCommit, BuildTime = orig, "unknown", "unknown" }()

	Version = "1.0.0"
	GitCommit = "abc123def456"
	BuildTime = "2025-01-02_12:00:00_UTC"

	info := GetInfo()

	if info.Version != "1.0.0" {
		t.Errorf("Expected version 1.0.0, got %s", info.Version)
	}
	if info.GitCommit != "abc123def456" {
		t.Errorf("Expected commit abc123def456, got %s", info.GitCommit)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("Expected Go version %s, got %s", runtime.Version(), info.GoVersion)
	}
}

func TestInfoString(t *testing.T) {
	info := Info{Version: "1.0.0", GitCommit: "abc123", BuildTime: "2025-01-02", GoVersion: "go1.25.0"}

	result := info.String()
	for _, part := range []string{"Nebo v1.0.0", "Commit: abc123", "Built: 2025-01-02", "Go: go1.25.0"} {
		if !strings.Contains(result, part) {
			t.Errorf("String() output missing expected part: %s\nGot: %s", part, result)
		}
	}
}

func TestInfoShort(t *testing.T) {
	tests := []struct {
		commit string
		want   string
	}{
		{"abc123def456", "v1.0.0 (abc123d)"},
		{"abc", "v1.0.0 (abc)"},
	}

	for _, tt := range tests {
		got := Info{Version: "1.0.0", GitCommit: tt.commit}.Short()
		if got != tt.want {
			t.Errorf("Short() = %s, want %s", got, tt.want)
		}
	}
}

func TestUserAgent(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "2.3.4"
	if got := UserAgent(); !strings.HasPrefix(got, "nebo/2.3.4") {
		t.Errorf("UserAgent() = %s", got)
	}
}
