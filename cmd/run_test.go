package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fchimpan/gh-hue-hunt/internal/history"
	"github.com/fchimpan/gh-hue-hunt/internal/identity"
	"github.com/fchimpan/gh-hue-hunt/internal/tui"
)

// Tests in this package replace the global logger, so they do not run in
// parallel.

type fakeHistory struct {
	rows   []history.Result
	closed bool
}

func (f *fakeHistory) Record(ctx context.Context, r history.Result) error {
	f.rows = append(f.rows, r)
	return nil
}

func (f *fakeHistory) Recent(ctx context.Context, limit int) ([]history.Result, error) {
	return f.rows[:min(limit, len(f.rows))], nil
}

func (f *fakeHistory) Best(ctx context.Context, limit int) ([]history.Result, error) {
	return f.Recent(ctx, limit)
}

func (f *fakeHistory) Close() error {
	f.closed = true
	return nil
}

func noEnv(string) string { return "" }

func TestRun_Success(t *testing.T) {
	var calledTUI bool

	deps := Deps{
		LookupLogin: func(ctx context.Context) (string, error) {
			return "octocat", nil
		},
		RunTUI: func(opts tui.Options) error {
			calledTUI = true
			if opts.Player != "octocat" {
				t.Fatalf("player mismatch: got %q", opts.Player)
			}
			if opts.Seed != 123 {
				t.Fatalf("seed mismatch: got %d", opts.Seed)
			}
			if opts.Record != nil {
				t.Fatalf("Record should be nil without --db")
			}
			return nil
		},
		OpenHistory: func(path string) (history.Store, error) {
			t.Fatalf("OpenHistory should not be called without --db")
			return nil, nil
		},
		Getenv: noEnv,
	}

	if err := run(context.Background(), deps, playOptions{seed: 123}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !calledTUI {
		t.Fatalf("RunTUI not called")
	}
}

func TestRun_ExplicitPlayerSkipsLookup(t *testing.T) {
	deps := Deps{
		LookupLogin: func(ctx context.Context) (string, error) {
			t.Fatalf("LookupLogin should not be called when --player is set")
			return "", nil
		},
		RunTUI: func(opts tui.Options) error {
			if opts.Player != "ada" {
				t.Fatalf("player mismatch: got %q", opts.Player)
			}
			return nil
		},
		Getenv: noEnv,
	}

	if err := run(context.Background(), deps, playOptions{player: "ada"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestRun_OfflineUsesEnvironment(t *testing.T) {
	deps := Deps{
		LookupLogin: func(ctx context.Context) (string, error) {
			t.Fatalf("LookupLogin should not be called with --offline")
			return "", nil
		},
		RunTUI: func(opts tui.Options) error {
			if opts.Player != "grace" {
				t.Fatalf("player mismatch: got %q", opts.Player)
			}
			return nil
		},
		Getenv: func(k string) string {
			if k == "USER" {
				return "grace"
			}
			return ""
		},
	}

	if err := run(context.Background(), deps, playOptions{offline: true}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestRun_LookupFailureFallsBackWithHint(t *testing.T) {
	var stderr bytes.Buffer
	deps := Deps{
		LookupLogin: func(ctx context.Context) (string, error) {
			return "", &identity.LookupError{Reason: "not logged in to GitHub"}
		},
		RunTUI: func(opts tui.Options) error {
			if opts.Player != "player" {
				t.Fatalf("player mismatch: got %q", opts.Player)
			}
			return nil
		},
		Getenv: noEnv,
		Stderr: &stderr,
	}

	if err := run(context.Background(), deps, playOptions{}); err != nil {
		t.Fatalf("lookup failure should not abort the game, got %v", err)
	}
	if !strings.Contains(stderr.String(), "hint:") {
		t.Fatalf("expected hint, got stderr=%q", stderr.String())
	}
}

func TestRun_RecordsToHistory(t *testing.T) {
	fake := &fakeHistory{}
	deps := Deps{
		RunTUI: func(opts tui.Options) error {
			if opts.Record == nil {
				t.Fatalf("Record should be set with --db")
			}
			return opts.Record(history.Result{ID: "x", Player: opts.Player, Rounds: 3})
		},
		OpenHistory: func(path string) (history.Store, error) {
			if path != "games.db" {
				t.Fatalf("path mismatch: got %q", path)
			}
			return fake, nil
		},
		Getenv: noEnv,
	}

	if err := run(context.Background(), deps, playOptions{player: "ada", dbPath: "games.db"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(fake.rows) != 1 || fake.rows[0].Rounds != 3 {
		t.Fatalf("rows: %+v", fake.rows)
	}
	if !fake.closed {
		t.Fatalf("history store not closed")
	}
}

func TestRun_HistoryOpenError(t *testing.T) {
	deps := Deps{
		RunTUI: func(opts tui.Options) error {
			t.Fatalf("RunTUI should not be called when history fails to open")
			return nil
		},
		OpenHistory: func(path string) (history.Store, error) {
			return nil, errors.New("boom")
		},
		Getenv: noEnv,
	}

	err := run(context.Background(), deps, playOptions{player: "ada", dbPath: "games.db"})
	if err == nil || !strings.Contains(err.Error(), "failed to open history") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestRun_LogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hue.log")
	deps := Deps{
		RunTUI: func(opts tui.Options) error { return nil },
		Getenv: noEnv,
		Now:    func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) },
	}
	if err := run(context.Background(), deps, playOptions{player: "ada", logFile: path}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	badPath := filepath.Join(t.TempDir(), "missing", "hue.log")
	if err := run(context.Background(), deps, playOptions{player: "ada", logFile: badPath}); err == nil {
		t.Fatalf("expected error for unwritable log file")
	}
}

func TestRun_MissingDeps(t *testing.T) {
	if err := run(context.Background(), Deps{}, playOptions{}); err == nil {
		t.Fatalf("expected error")
	}
}
