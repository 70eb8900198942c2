package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fchimpan/gh-hue-hunt/internal/history"
	"github.com/fchimpan/gh-hue-hunt/internal/httpserver"
	"github.com/fchimpan/gh-hue-hunt/internal/store"
)

func newServeCmd(deps Deps) *cobra.Command {
	var addr, dbPath string

	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the game over HTTP for a browser client",
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.LoadConfig == nil {
				return fmt.Errorf("deps.LoadConfig is nil")
			}
			if deps.Serve == nil {
				return fmt.Errorf("deps.Serve is nil")
			}
			cfg := deps.LoadConfig()
			consoleLogger(deps.Stderr, cfg.LogLevel)

			if addr == "" {
				addr = ":" + cfg.Port
			}
			if !cmd.Flags().Changed("db") {
				dbPath = cfg.DBPath
			}

			var hist history.Store
			if dbPath != "" {
				if deps.OpenHistory == nil {
					return fmt.Errorf("deps.OpenHistory is nil")
				}
				h, err := deps.OpenHistory(dbPath)
				if err != nil {
					return fmt.Errorf("failed to open history: %w", err)
				}
				defer h.Close()
				hist = h
			}

			srv := httpserver.New(httpserver.Options{
				Store:        store.NewMemoryStore(),
				History:      hist,
				ClientOrigin: cfg.ClientOrigin,
				Now:          deps.Now,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info().Str("addr", addr).Bool("history", hist != nil).Msg("starting server")
			if err := deps.Serve(ctx, addr, srv); err != nil {
				return fmt.Errorf("server exited: %w", err)
			}
			log.Info().Msg("server stopped")
			return nil
		},
	}

	c.Flags().StringVar(&addr, "addr", "", "listen address (default: :$PORT)")
	c.Flags().StringVar(&dbPath, "db", "", "sqlite file for finished games (default: $HUE_DB)")
	return c
}

func defaultServe(ctx context.Context, addr string, srv *httpserver.Server) error {
	if err := srv.Start(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
