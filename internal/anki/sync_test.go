package anki

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSyncerFindBinaryExplicitPath(t *testing.T) {
	t.Parallel()

	bin := filepath.Join(t.TempDir(), "anki")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write stub binary: %v", err)
	}

	s := &Syncer{Bin: bin, Profile: "User 1"}
	got, err := s.findBinary()
	if err != nil {
		t.Fatalf("findBinary() error: %v", err)
	}
	if got != bin {
		t.Errorf("findBinary() = %q, want %q", got, bin)
	}
}

func TestSyncerFindBinaryMissingExplicitPath(t *testing.T) {
	t.Parallel()

	s := &Syncer{Bin: filepath.Join(t.TempDir(), "no-such-anki")}
	if _, err := s.findBinary(); err == nil {
		t.Error("findBinary() succeeded for a missing path, want error")
	}
}

func TestSyncRunsProcessWithCredentials(t *testing.T) {
	t.Parallel()

	// A stub that records its arguments and environment, then exits 0.
	dir := t.TempDir()
	bin := filepath.Join(dir, "anki")
	out := filepath.Join(dir, "out")
	script := "#!/bin/sh\necho \"$@\" > " + out + "\necho \"$ANKIWEB_USERNAME:$ANKIWEB_PASSWORD\" >> " + out + "\n"
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub binary: %v", err)
	}

	s := &Syncer{Bin: bin, Profile: "User 1", Username: "user@example.com", Password: "hunter2"}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.Sync(ctx); err != nil {
		t.Fatalf("Sync() error: %v", err)
	}

	recorded, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read stub output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(recorded)), "\n")
	if len(lines) != 2 {
		t.Fatalf("stub recorded %d lines, want 2", len(lines))
	}
	if lines[0] != "--profile User 1 --sync" {
		t.Errorf("args = %q, want %q", lines[0], "--profile User 1 --sync")
	}
	if lines[1] != "user@example.com:hunter2" {
		t.Errorf("credentials = %q, want %q", lines[1], "user@example.com:hunter2")
	}
}

func TestSyncFailsWhenProcessFails(t *testing.T) {
	t.Parallel()

	bin := filepath.Join(t.TempDir(), "anki")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\nexit 3\n"), 0o755); err != nil {
		t.Fatalf("write stub binary: %v", err)
	}

	s := &Syncer{Bin: bin, Profile: "User 1"}
	if err := s.Sync(context.Background()); err == nil {
		t.Error("Sync() succeeded for a failing process, want error")
	}
}
