package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fchimpan/gh-hue-hunt/internal/history"
	"github.com/fchimpan/gh-hue-hunt/internal/identity"
	"github.com/fchimpan/gh-hue-hunt/internal/tui"
)

type playOptions struct {
	seed    uint64
	player  string
	dbPath  string
	logFile string
	offline bool
}

func run(ctx context.Context, deps Deps, opts playOptions) error {
	if deps.RunTUI == nil {
		return fmt.Errorf("deps.RunTUI is nil")
	}
	if deps.Getenv == nil {
		return fmt.Errorf("deps.Getenv is nil")
	}

	closeLog, err := tuiLogger(opts.logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	lookup := identity.Lookup(deps.LookupLogin)
	if opts.offline {
		lookup = nil
	}
	player, err := identity.Resolve(ctx, opts.player, lookup, deps.Getenv)
	if err != nil {
		log.Debug().Err(err).Str("player", player).Msg("falling back to local player name")
		if identity.IsLookupError(err) && deps.Stderr != nil {
			fmt.Fprintf(deps.Stderr, "hint: playing as %q; run `gh auth login` or pass --player to choose a name\n", player)
		}
	}

	tuiOpts := tui.Options{Player: player, Seed: opts.seed, Now: deps.Now}
	if opts.dbPath != "" {
		if deps.OpenHistory == nil {
			return fmt.Errorf("deps.OpenHistory is nil")
		}
		store, err := deps.OpenHistory(opts.dbPath)
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		defer store.Close()
		tuiOpts.Record = func(r history.Result) error {
			return store.Record(ctx, r)
		}
	}

	log.Info().Str("player", player).Uint64("seed", opts.seed).Msg("starting game")
	return deps.RunTUI(tuiOpts)
}

// tuiLogger keeps log output off the terminal the game is drawing on.
// The returned func restores the previous logger.
func tuiLogger(path string) (func(), error) {
	prev := log.Logger
	if path == "" {
		log.Logger = zerolog.New(io.Discard)
		return func() { log.Logger = prev }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log.Logger = zerolog.New(f).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	return func() {
		log.Logger = prev
		_ = f.Close()
	}, nil
}

// consoleLogger sends human-readable logs to w at the given level.
func consoleLogger(w io.Writer, level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).
		With().Timestamp().Logger().Level(lvl)
}
