package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fchimpan/gh-hue-hunt/internal/config"
	"github.com/fchimpan/gh-hue-hunt/internal/history"
	"github.com/fchimpan/gh-hue-hunt/internal/httpserver"
	"github.com/fchimpan/gh-hue-hunt/internal/identity"
	"github.com/fchimpan/gh-hue-hunt/internal/tui"
)

type Deps struct {
	LookupLogin func(ctx context.Context) (string, error)
	RunTUI      func(opts tui.Options) error
	OpenHistory func(path string) (history.Store, error)
	Serve       func(ctx context.Context, addr string, srv *httpserver.Server) error
	LoadConfig  func() config.Config
	Getenv      func(string) string
	Now         func() time.Time
	Stdout      io.Writer
	Stderr      io.Writer
}

func DefaultDeps() Deps {
	return Deps{
		LookupLogin: identity.GitHubLogin,
		RunTUI:      defaultRunTUI,
		OpenHistory: history.OpenSQLite,
		Serve:       defaultServe,
		LoadConfig:  config.Load,
		Getenv:      os.Getenv,
		Now:         time.Now,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
	}
}

func NewRootCmd(deps Deps) *cobra.Command {
	var opts playOptions

	c := &cobra.Command{
		Use:          "hue-hunt",
		Short:        "Find the cell with a slightly different hue before time runs out",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.LoadConfig != nil {
				cfg := deps.LoadConfig()
				if opts.player == "" {
					opts.player = cfg.Player
				}
				if !cmd.Flags().Changed("db") {
					opts.dbPath = cfg.DBPath
				}
			}
			if !cmd.Flags().Changed("seed") {
				if deps.Now == nil {
					return fmt.Errorf("deps.Now is nil")
				}
				opts.seed = uint64(deps.Now().UnixNano())
			}
			return run(cmd.Context(), deps, opts)
		},
	}

	c.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed (default: time based)")
	c.Flags().StringVarP(&opts.player, "player", "p", "", "player name (default: GitHub login, then $USER)")
	c.Flags().StringVar(&opts.dbPath, "db", "", "sqlite file for finished games (default: $HUE_DB, empty disables history)")
	c.Flags().StringVar(&opts.logFile, "log-file", "", "write debug logs to this file while playing")
	c.Flags().BoolVar(&opts.offline, "offline", false, "do not ask GitHub for the player name")

	c.AddCommand(newServeCmd(deps), newHistoryCmd(deps))

	c.SetOut(deps.Stdout)
	c.SetErr(deps.Stderr)
	return c
}
