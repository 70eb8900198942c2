package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/fchimpan/gh-hue-hunt/internal/results"
	"github.com/fchimpan/gh-hue-hunt/internal/round"
)

// Grid geometry in terminal cells. A cell is two columns wide, which looks
// roughly square in most fonts.
const (
	cellWidth  = 2
	cellHeight = 1
	cellStride = cellWidth + 1
	rowStride  = cellHeight
)

// Lines above the grid: HUD, countdown, blank.
const gridOffsetY = 3

// overlayTextWidth bounds the prose in the game-over box.
const overlayTextWidth = 52

var (
	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#d0d7de"))
	styleHudLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b949e"))
	styleHudValue = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#d0d7de"))
	styleHudWarn  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff7b72"))
	styleHudOk    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7ee787"))
	styleHudDim   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681"))
	styleCursor   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0d1117"))

	styleOverlay = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#30363d")).
			Padding(1, 2)
	styleOverTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff7b72"))
	styleProse     = lipgloss.NewStyle().Width(overlayTextWidth)
	styleFootnote  = styleHudDim.Width(overlayTextWidth)
)

type fieldOverlay struct {
	Title  string
	Lines  []string
	Footer string
}

func (m *Model) View() string {
	var b strings.Builder
	switch {
	case m.screen == screenTitle:
		m.viewTitle(&b)
	case m.game.Over():
		m.viewOverlay(&b, gameOverOverlay(m.summary, m.recordErr))
	default:
		m.viewPlay(&b)
	}
	return b.String()
}

func (m *Model) viewTitle(b *strings.Builder) {
	lines := []string{
		styleTitle.Render("ARE YOU COLORBLIND?"),
		"",
		styleHudLabel.Render("spot the cell with a different hue before the timer runs out"),
		"",
		styleHudDim.Render("enter start  ·  q quit"),
	}
	pad := m.padFor(lines)
	for i := 0; i < m.topPad(len(lines)); i++ {
		b.WriteByte('\n')
	}
	for _, l := range lines {
		b.WriteString(pad)
		b.WriteString(l)
		b.WriteByte('\n')
	}
}

func (m *Model) viewPlay(b *strings.Builder) {
	cfg := m.game.Config()
	hud := renderHUD(m.player, m.game.Level(), m.game.Completed(), m.game.Mistakes(), m.game.Difficulty())
	countdown := renderCountdown(m.timer.Timeout)
	grid := m.renderGrid(cfg)
	help := styleHudDim.Render("select the color with a different hue  (←↑↓→ hjkl move, enter/click pick, q quit)")

	lines := append([]string{hud, countdown, ""}, grid...)
	lines = append(lines, "", help)

	top := m.topPad(len(lines))
	pad := m.padFor(lines)
	gridW := cfg.GridSize*cellStride - 1
	gridPad := pad
	if m.w > gridW {
		gridPad = strings.Repeat(" ", (m.w-gridW)/2)
	}
	m.gridTop = top + gridOffsetY
	m.gridLeft = len(gridPad)

	for i := 0; i < top; i++ {
		b.WriteByte('\n')
	}
	for i, l := range lines {
		if i >= gridOffsetY && i < gridOffsetY+len(grid) {
			b.WriteString(gridPad)
		} else {
			b.WriteString(pad)
		}
		b.WriteString(l)
		b.WriteByte('\n')
	}
}

func (m *Model) renderGrid(cfg round.Config) []string {
	pair := m.game.Pair()
	base := lipgloss.NewStyle().Background(lipgloss.Color(pair.Base))
	diff := lipgloss.NewStyle().Background(lipgloss.Color(pair.Different))
	plainBase := base.Render(strings.Repeat(" ", cellWidth))
	plainDiff := diff.Render(strings.Repeat(" ", cellWidth))

	rows := make([]string, 0, cfg.GridSize)
	for r := 0; r < cfg.GridSize; r++ {
		var row strings.Builder
		for c := 0; c < cfg.GridSize; c++ {
			if c > 0 {
				row.WriteByte(' ')
			}
			i := r*cfg.GridSize + c
			st, plain := base, plainBase
			if i == cfg.DifferentCell {
				st, plain = diff, plainDiff
			}
			if i == m.cursor {
				row.WriteString(styleCursor.Inherit(st).Render("<>"))
			} else {
				row.WriteString(plain)
			}
		}
		rows = append(rows, row.String())
	}
	return rows
}

func (m *Model) viewOverlay(b *strings.Builder, ov fieldOverlay) {
	body := make([]string, 0, len(ov.Lines)+4)
	body = append(body, styleOverTitle.Render(ov.Title), "")
	body = append(body, ov.Lines...)
	body = append(body, "", styleHudDim.Render(ov.Footer))
	box := styleOverlay.Render(strings.Join(body, "\n"))
	if m.w > 0 && m.h > 0 {
		b.WriteString(lipgloss.Place(m.w, m.h, lipgloss.Center, lipgloss.Center, box))
		return
	}
	b.WriteString(box)
}

func gameOverOverlay(sum *results.Summary, recordErr error) fieldOverlay {
	ov := fieldOverlay{Title: "GAME OVER!", Footer: "r play again  ·  q quit"}
	if sum == nil {
		return ov
	}
	ov.Lines = append(ov.Lines, styleHudOk.Render(sum.Headline()), "")
	if len(sum.Colors) > 0 {
		ov.Lines = append(ov.Lines, styleHudValue.Render("Performance analysis:"), styleProse.Render(sum.Message), "")
		for _, e := range sum.Colors {
			ov.Lines = append(ov.Lines, fmt.Sprintf("  %-8s %d", e.Color, e.Count))
		}
	} else {
		ov.Lines = append(ov.Lines, sum.Message)
	}
	if sum.Timeouts > 0 {
		ov.Lines = append(ov.Lines, fmt.Sprintf("  %-8s %d", "timeouts", sum.Timeouts))
	}
	if recordErr != nil {
		ov.Lines = append(ov.Lines, "", styleHudWarn.Render("could not save result: "+recordErr.Error()))
	}
	ov.Lines = append(ov.Lines, "", styleFootnote.Render(results.Disclaimer))
	return ov
}

func renderHUD(player string, level, rounds, mistakes int, difficulty float64) string {
	sep := styleHudDim.Render("  |  ")
	mistakeStyle := styleHudValue
	if mistakes >= round.MaxMistakes-1 {
		mistakeStyle = styleHudWarn
	}
	return strings.Join([]string{
		styleHudLabel.Render("player ") + styleHudValue.Render(player),
		styleHudLabel.Render("level ") + styleHudValue.Render(fmt.Sprintf("%d", level)),
		styleHudLabel.Render("rounds ") + styleHudValue.Render(fmt.Sprintf("%d", rounds)),
		styleHudLabel.Render("mistakes ") + mistakeStyle.Render(fmt.Sprintf("%d/%d", mistakes, round.MaxMistakes)),
		styleHudLabel.Render("difficulty ") + styleHudDim.Render(fmt.Sprintf("x%.1f", difficulty)),
	}, sep)
}

func renderCountdown(remaining time.Duration) string {
	const barW = 18
	total := round.RoundDuration.Seconds()
	left := min(max(remaining.Seconds(), 0), total)
	fill := int(float64(barW) * left / total)
	st := styleHudOk
	if left <= 1 {
		st = styleHudWarn
	}
	return styleHudLabel.Render("[") +
		st.Render(strings.Repeat("█", fill)) +
		styleHudDim.Render(strings.Repeat("░", barW-fill)) +
		styleHudLabel.Render("] ") +
		st.Render(fmt.Sprintf("%.1fs", left))
}

func (m *Model) padFor(lines []string) string {
	w := 0
	for _, l := range lines {
		w = max(w, lipgloss.Width(l))
	}
	if m.w > w {
		return strings.Repeat(" ", (m.w-w)/2)
	}
	return ""
}

func (m *Model) topPad(n int) int {
	if m.h > n {
		return (m.h - n) / 2
	}
	return 0
}
