package cmd

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fchimpan/gh-hue-hunt/internal/tui"
)

func defaultRunTUI(opts tui.Options) error {
	p := tea.NewProgram(
		tui.NewModel(opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
