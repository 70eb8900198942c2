package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/timer"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/fchimpan/gh-hue-hunt/internal/history"
	"github.com/fchimpan/gh-hue-hunt/internal/results"
	"github.com/fchimpan/gh-hue-hunt/internal/round"
)

// tickInterval is how often the countdown redraws.
const tickInterval = 100 * time.Millisecond

type screen int

const (
	screenTitle screen = iota
	screenPlay
)

type Options struct {
	Player string
	Seed   uint64
	// Record is called once per finished game. Optional.
	Record func(history.Result) error
	Now    func() time.Time
}

type Model struct {
	player string
	game   *round.Controller
	record func(history.Result) error
	now    func() time.Time

	screen screen
	w, h   int

	cursor   int
	timer    timer.Model
	timerGen uint64 // generation the running timer belongs to

	recorded  bool
	recordErr error
	summary   *results.Summary

	// Grid origin from the last View, for mouse hit-testing.
	gridTop  int
	gridLeft int
}

func NewModel(opts Options) *Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	player := opts.Player
	if player == "" {
		player = "player"
	}
	return &Model{
		player: player,
		game:   round.New(opts.Seed),
		record: opts.Record,
		now:    now,
	}
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.w = msg.Width
		m.h = msg.Height
		return m, nil
	case timer.TickMsg, timer.StartStopMsg:
		var cmd tea.Cmd
		m.timer, cmd = m.timer.Update(msg)
		return m, cmd
	case timer.TimeoutMsg:
		if msg.ID != m.timer.ID() {
			return m, nil
		}
		return m, m.resolve(m.game.Expire(m.timerGen))
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if idx, ok := m.cellAt(msg.X, msg.Y); ok {
			m.cursor = idx
			return m, m.resolve(m.game.Select(idx))
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		return m, tea.Quit
	}

	if m.screen == screenTitle {
		if key.Matches(msg, keys.Select) {
			m.screen = screenPlay
			m.game.Start()
			return m, m.armTimer()
		}
		return m, nil
	}

	if m.game.Over() {
		if key.Matches(msg, keys.Restart) {
			m.game.Reset()
			m.game.Start()
			m.recorded = false
			m.recordErr = nil
			m.summary = nil
			return m, m.armTimer()
		}
		return m, nil
	}

	size := m.game.Config().GridSize
	row, col := m.cursor/max(size, 1), m.cursor%max(size, 1)
	switch {
	case key.Matches(msg, keys.Up):
		row = max(row-1, 0)
	case key.Matches(msg, keys.Down):
		row = min(row+1, size-1)
	case key.Matches(msg, keys.Left):
		col = max(col-1, 0)
	case key.Matches(msg, keys.Right):
		col = min(col+1, size-1)
	case key.Matches(msg, keys.Select):
		return m, m.resolve(m.game.Select(m.cursor))
	default:
		return m, nil
	}
	m.cursor = row*size + col
	return m, nil
}

// resolve reacts to an outcome: a new round needs a fresh countdown, a
// finished game needs its summary and history entry.
func (m *Model) resolve(out round.Outcome) tea.Cmd {
	switch out {
	case round.Ignored:
		return nil
	case round.GameOver:
		m.finish()
		return m.timer.Stop()
	default:
		log.Debug().Str("outcome", out.String()).Uint64("round", m.game.Config().Generation).Msg("round resolved")
		return m.armTimer()
	}
}

// armTimer replaces the countdown with one for the current round. Messages
// from the previous timer carry its ID and are dropped.
func (m *Model) armTimer() tea.Cmd {
	cfg := m.game.Config()
	if m.cursor >= cfg.Cells() {
		m.cursor = 0
	}
	m.timer = timer.NewWithInterval(round.RoundDuration, tickInterval)
	m.timerGen = cfg.Generation
	return m.timer.Init()
}

func (m *Model) finish() {
	snap := m.game.Snapshot()
	sum := results.Summarize(snap)
	m.summary = &sum
	log.Info().Str("player", m.player).Int("rounds", snap.Completed).Msg("game over")

	if m.record == nil || m.recorded {
		return
	}
	at := m.now()
	id := m.player + "-" + at.UTC().Format("20060102T150405.000000000")
	if err := m.record(history.FromSnapshot(id, m.player, snap, at)); err != nil {
		log.Warn().Err(err).Msg("record result")
		m.recordErr = err
		return
	}
	m.recorded = true
}

// cellAt maps a terminal position to a grid cell using the layout of the last
// rendered frame.
func (m *Model) cellAt(x, y int) (int, bool) {
	if m.screen != screenPlay || !m.game.Selectable() {
		return 0, false
	}
	size := m.game.Config().GridSize
	col := (x - m.gridLeft) / cellStride
	row := (y - m.gridTop) / rowStride
	if x < m.gridLeft || y < m.gridTop || col >= size || row >= size {
		return 0, false
	}
	// Gaps between cells are not part of any cell.
	if (x-m.gridLeft)%cellStride >= cellWidth || (y-m.gridTop)%rowStride >= cellHeight {
		return 0, false
	}
	return row*size + col, true
}
