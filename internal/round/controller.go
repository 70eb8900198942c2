package round

import (
	"maps"
	"math"
	"math/rand/v2"

	"github.com/fchimpan/gh-hue-hunt/internal/palette"
)

// Controller owns the state of one game session. It is not safe for
// concurrent use; surfaces serialise calls.
type Controller struct {
	seed uint64
	rng  *rand.Rand
	pal  palette.Palette

	onTransition func(from, to Phase)

	phase      Phase
	cfg        Config
	generation uint64
	colorPair  int

	completed  int
	mistakes   int
	difficulty float64
	bumpedAt   int
	ledger     map[string]int
}

type Option func(*Controller)

// WithPalette replaces the default colour rotation.
func WithPalette(p palette.Palette) Option {
	return func(c *Controller) { c.pal = p }
}

// WithTransitionHook registers fn to be called on every phase change.
func WithTransitionHook(fn func(from, to Phase)) Option {
	return func(c *Controller) { c.onTransition = fn }
}

func New(seed uint64, opts ...Option) *Controller {
	c := &Controller{
		seed: seed,
		rng:  newRNG(seed),
		pal:  palette.Default,
	}
	for _, o := range opts {
		o(c)
	}
	if c.pal.Len() == 0 {
		c.pal = palette.Default
	}
	c.clear()
	return c
}

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Start begins the first round. It only acts from the idle phase.
func (c *Controller) Start() bool {
	if c.phase != PhaseIdle {
		return false
	}
	c.startNewRound()
	return true
}

// Select resolves a click on cell index. Clicks outside an active round or
// outside the grid are ignored.
func (c *Controller) Select(index int) Outcome {
	if c.phase != PhaseActive {
		return Ignored
	}
	if index < 0 || index >= c.cfg.Cells() {
		return Ignored
	}
	c.setPhase(PhaseLocked)

	if index == c.cfg.DifferentCell {
		c.completed++
		c.startNewRound()
		return Correct
	}
	return c.recordMistake(c.ColorName())
}

// SelectAt is Select restricted to the round with the given generation.
func (c *Controller) SelectAt(generation uint64, index int) Outcome {
	if generation != c.cfg.Generation {
		return Ignored
	}
	return c.Select(index)
}

// Timeout resolves the active round as expired.
func (c *Controller) Timeout() Outcome {
	if c.phase != PhaseActive {
		return Ignored
	}
	c.setPhase(PhaseLocked)
	return c.recordMistake(TimeoutKey)
}

// Expire is Timeout restricted to the round with the given generation, so a
// countdown that outlives its round cannot cost a mistake in the next one.
func (c *Controller) Expire(generation uint64) Outcome {
	if generation != c.cfg.Generation {
		return Ignored
	}
	return c.Timeout()
}

// Reset returns the session to idle with fresh counters. The random stream
// moves on so a replay does not repeat the previous layout.
func (c *Controller) Reset() {
	c.seed++
	c.rng = newRNG(c.seed)
	c.clear()
}

func (c *Controller) clear() {
	c.completed = 0
	c.mistakes = 0
	c.difficulty = 1.0
	c.bumpedAt = 0
	c.colorPair = 0
	c.ledger = make(map[string]int)
	// Keep the generation counter so stale reports from the old game stay stale.
	c.cfg = Config{Generation: c.generation}
	c.setPhase(PhaseIdle)
}

func (c *Controller) startNewRound() {
	if c.phase == PhaseOver {
		return
	}
	if c.completed > 0 && c.completed%difficultyEvery == 0 && c.bumpedAt != c.completed {
		c.difficulty = math.Min(math.Round((c.difficulty+difficultyStep)*10)/10, maxDifficulty)
		c.bumpedAt = c.completed
	}

	size := c.gridSize(c.completed / RoundsPerLevel)
	c.colorPair = c.pal.Next(c.colorPair)
	c.generation++
	c.cfg = Config{
		GridSize:      size,
		ColorPair:     c.colorPair,
		DifferentCell: c.rng.IntN(size * size),
		Generation:    c.generation,
	}
	c.setPhase(PhaseActive)
}

// gridSize maps a level tier to an edge length: the first tiers walk the
// fixed sequence, later tiers draw from it at random.
func (c *Controller) gridSize(tier int) int {
	if tier < len(GridSizes) {
		return GridSizes[tier]
	}
	return GridSizes[c.rng.IntN(len(GridSizes))]
}

func (c *Controller) recordMistake(key string) Outcome {
	c.ledger[key]++
	c.mistakes++
	if c.mistakes >= MaxMistakes {
		c.setPhase(PhaseOver)
		return GameOver
	}
	c.startNewRound()
	return Mistake
}

func (c *Controller) setPhase(to Phase) {
	from := c.phase
	c.phase = to
	if c.onTransition != nil && from != to {
		c.onTransition(from, to)
	}
}

func (c *Controller) Phase() Phase { return c.phase }
func (c *Controller) Config() Config { return c.cfg }
func (c *Controller) Selectable() bool { return c.phase == PhaseActive }
func (c *Controller) Over() bool { return c.phase == PhaseOver }
func (c *Controller) Completed() int { return c.completed }
func (c *Controller) Mistakes() int { return c.mistakes }
func (c *Controller) Difficulty() float64 { return c.difficulty }

// Level is the 1-based level shown to players.
func (c *Controller) Level() int { return c.completed/RoundsPerLevel + 1 }

// Pair is the colour pair of the current round.
func (c *Controller) Pair() palette.Pair { return c.pal.At(c.cfg.ColorPair) }

func (c *Controller) ColorName() string { return c.Pair().Name }

// Ledger returns a copy of the per-colour mistake counts.
func (c *Controller) Ledger() map[string]int { return maps.Clone(c.ledger) }

func (c *Controller) Snapshot() Snapshot {
	pair := c.Pair()
	return Snapshot{
		Phase:         c.phase,
		Round:         c.cfg.Generation,
		GridSize:      c.cfg.GridSize,
		ColorPair:     c.cfg.ColorPair,
		ColorName:     pair.Name,
		BaseColor:     pair.Base,
		DiffColor:     pair.Different,
		DifferentCell: c.cfg.DifferentCell,
		Selectable:    c.Selectable(),
		Over:          c.Over(),
		Completed:     c.completed,
		Level:         c.Level(),
		Mistakes:      c.mistakes,
		MaxMistakes:   MaxMistakes,
		Difficulty:    c.difficulty,
		Ledger:        c.Ledger(),
	}
}
