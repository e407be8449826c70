package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	Version, Commit = "1.2.3", "abc123"
	t.Cleanup(func() { Version, Commit = "dev", "unknown" })

	out := String()
	if !strings.Contains(out, "version: 1.2.3") || !strings.Contains(out, "commit: abc123") {
		t.Fatalf("unexpected build info %q", out)
	}
}
