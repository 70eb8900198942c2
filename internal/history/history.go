// Package history persists finished games so players can compare runs.
package history

import (
	"context"
	"time"

	"github.com/fchimpan/gh-hue-hunt/internal/round"
)

// Result is one finished game.
type Result struct {
	ID         string         `json:"id"`
	Player     string         `json:"player"`
	Rounds     int            `json:"rounds"`
	Mistakes   int            `json:"mistakes"`
	Level      int            `json:"level"`
	Difficulty float64        `json:"difficulty"`
	Ledger     map[string]int `json:"ledger"`
	FinishedAt time.Time      `json:"finishedAt"`
}

// FromSnapshot builds a Result for a finished game.
func FromSnapshot(id, player string, snap round.Snapshot, at time.Time) Result {
	return Result{
		ID:         id,
		Player:     player,
		Rounds:     snap.Completed,
		Mistakes:   snap.Mistakes,
		Level:      snap.Level,
		Difficulty: snap.Difficulty,
		Ledger:     snap.Ledger,
		FinishedAt: at.UTC(),
	}
}

// Store records and lists results.
type Store interface {
	Record(ctx context.Context, r Result) error
	// Recent lists results newest first.
	Recent(ctx context.Context, limit int) ([]Result, error)
	// Best lists results by rounds completed, then fewest mistakes.
	Best(ctx context.Context, limit int) ([]Result, error)
	Close() error
}
