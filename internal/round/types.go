package round

import (
	"fmt"
	"time"
)

const (
	RoundsPerLevel = 5
	MaxMistakes    = 5
	RoundDuration  = 3 * time.Second

	// TimeoutKey is the ledger bucket for rounds that expired without a
	// selection. It is never a colour name.
	TimeoutKey = "timeout"

	difficultyStep  = 0.2
	difficultyEvery = 3
	maxDifficulty   = 3.0
)

// GridSizes are the grid edge lengths, in tier order.
var GridSizes = [...]int{2, 4, 8, 12}

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseActive
	PhaseLocked
	PhaseOver
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseActive:
		return "active"
	case PhaseLocked:
		return "locked"
	case PhaseOver:
		return "over"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// Outcome reports what an input did to the game.
type Outcome int

const (
	Ignored Outcome = iota
	Correct
	Mistake
	GameOver
)

func (o Outcome) String() string {
	switch o {
	case Ignored:
		return "ignored"
	case Correct:
		return "correct"
	case Mistake:
		return "mistake"
	case GameOver:
		return "game_over"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// Config is the layout of a single round. It never changes once the round
// has started.
type Config struct {
	GridSize      int
	ColorPair     int
	DifferentCell int
	Generation    uint64
}

// Cells is the number of cells in the grid.
func (c Config) Cells() int { return c.GridSize * c.GridSize }

// Snapshot is a read-only copy of the controller state for rendering surfaces.
type Snapshot struct {
	Phase         Phase          `json:"phase"`
	Round         uint64         `json:"round"`
	GridSize      int            `json:"gridSize"`
	ColorPair     int            `json:"colorPair"`
	ColorName     string         `json:"colorName"`
	BaseColor     string         `json:"baseColor"`
	DiffColor     string         `json:"differentColor"`
	DifferentCell int            `json:"differentCell"`
	Selectable    bool           `json:"selectable"`
	Over          bool           `json:"over"`
	Completed     int            `json:"completed"`
	Level         int            `json:"level"`
	Mistakes      int            `json:"mistakes"`
	MaxMistakes   int            `json:"maxMistakes"`
	Difficulty    float64        `json:"difficulty"`
	Ledger        map[string]int `json:"ledger"`
}
