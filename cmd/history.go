package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/fchimpan/gh-hue-hunt/internal/history"
)

func newHistoryCmd(deps Deps) *cobra.Command {
	var (
		dbPath string
		limit  int
		best   bool
	)

	c := &cobra.Command{
		Use:   "history",
		Short: "List finished games",
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.OpenHistory == nil {
				return fmt.Errorf("deps.OpenHistory is nil")
			}
			if limit <= 0 {
				return fmt.Errorf("--limit must be > 0")
			}
			if deps.LoadConfig != nil {
				cfg := deps.LoadConfig()
				consoleLogger(deps.Stderr, cfg.LogLevel)
				if dbPath == "" {
					dbPath = cfg.DBPath
				}
			}
			if dbPath == "" {
				return fmt.Errorf("no history database: pass --db or set HUE_DB")
			}

			h, err := deps.OpenHistory(dbPath)
			if err != nil {
				return fmt.Errorf("failed to open history: %w", err)
			}
			defer h.Close()

			var rows []history.Result
			if best {
				rows, err = h.Best(cmd.Context(), limit)
			} else {
				rows, err = h.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return fmt.Errorf("failed to list history: %w", err)
			}
			if len(rows) == 0 {
				fmt.Fprintln(deps.Stdout, "no games recorded yet")
				return nil
			}
			fmt.Fprintln(deps.Stdout, renderHistory(rows))
			return nil
		},
	}

	c.Flags().StringVar(&dbPath, "db", "", "sqlite file to read (default: $HUE_DB)")
	c.Flags().IntVarP(&limit, "limit", "n", 10, "number of games to show")
	c.Flags().BoolVar(&best, "best", false, "order by rounds completed instead of date")
	return c
}

func renderHistory(rows []history.Result) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("PLAYER", "ROUNDS", "MISTAKES", "LEVEL", "DIFFICULTY", "FINISHED")
	for _, r := range rows {
		t.Row(
			r.Player,
			strconv.Itoa(r.Rounds),
			strconv.Itoa(r.Mistakes),
			strconv.Itoa(r.Level),
			fmt.Sprintf("x%.1f", r.Difficulty),
			r.FinishedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	return t.String()
}
