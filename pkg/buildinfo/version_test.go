package buildinfo

import (
	"strings"
	"testing"
)

func TestProducer(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	defer func() { Version, Commit = oldVersion, oldCommit }()

	Version, Commit = "v1.2.3", "abc123"
	if got, want := Producer(), "distindex/v1.2.3 (abc123)"; got != want {
		t.Errorf("Producer() = %q, want %q", got, want)
	}
	if !strings.Contains(String(), "version: v1.2.3") {
		t.Errorf("String() = %q, want it to contain the version", String())
	}
}
