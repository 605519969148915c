package anki

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// syncWait is how long a sync run is given before the Anki process is
// killed. Anki has no headless exit-after-sync mode, so the process is
// always terminated once the window has passed or it exits on its own.
const syncWait = 10 * time.Second

// Syncer pushes the local collection to AnkiWeb by launching the Anki
// binary with its --sync flag. The sync is best-effort: a process that
// started and ran is reported as success.
type Syncer struct {
	// Bin is an explicit path to the Anki binary. When empty, the binary
	// is searched on PATH and in common install locations.
	Bin string

	// Profile is the Anki profile to sync (e.g. "User 1").
	Profile string

	// Username and Password are AnkiWeb credentials, passed to Anki via
	// environment variables.
	Username string
	Password string
}

// Sync runs one sync attempt. It blocks for at most [syncWait] plus process
// teardown. The returned error is user-presentable.
func (s *Syncer) Sync(ctx context.Context) error {
	bin, err := s.findBinary()
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(ctx, syncWait)
	defer cancel()

	cmd := exec.CommandContext(runCtx, bin, "--profile", s.Profile, "--sync")
	cmd.Env = append(os.Environ(),
		"ANKIWEB_USERNAME="+s.Username,
		"ANKIWEB_PASSWORD="+s.Password,
	)

	slog.Info("anki: syncing collection to AnkiWeb", "profile", s.Profile, "bin", bin)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("anki: start sync process: %w", err)
	}

	// Anki stays open after syncing; the context deadline kills it. A kill
	// after the wait window is therefore the expected outcome, not a failure.
	err = cmd.Wait()
	if err != nil && runCtx.Err() == nil {
		return fmt.Errorf("anki: sync process failed: %w", err)
	}

	slog.Info("anki: sync completed", "profile", s.Profile)
	return nil
}

// findBinary locates the Anki executable.
func (s *Syncer) findBinary() (string, error) {
	if s.Bin != "" {
		if _, err := os.Stat(s.Bin); err == nil {
			return s.Bin, nil
		}
		return "", fmt.Errorf("anki: binary not found at %s", s.Bin)
	}

	if path, err := exec.LookPath("anki"); err == nil {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	candidates := []string{
		filepath.Join(home, "anki", "anki"),
		filepath.Join(home, "Applications", "anki", "anki"),
		"/usr/bin/anki",
		"/usr/local/bin/anki",
		"/opt/anki/anki",
	}
	for _, c := range candidates {
		if home == "" && !filepath.IsAbs(c) {
			continue
		}
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", fmt.Errorf("anki: binary not found; set the anki_bin config option")
}
