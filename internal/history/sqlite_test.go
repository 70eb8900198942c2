package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fchimpan/gh-hue-hunt/internal/round"
)

func openTemp(t *testing.T) Store {
	t.Helper()
	st, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "hue.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSQLite_RecordAndRecent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := openTemp(t)
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for i, rounds := range []int{3, 9, 6} {
		r := Result{
			ID:         string(rune('a' + i)),
			Player:     "ada",
			Rounds:     rounds,
			Mistakes:   5,
			Level:      rounds/round.RoundsPerLevel + 1,
			Difficulty: 1.2,
			Ledger:     map[string]int{"blue": 3, round.TimeoutKey: 2},
			FinishedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := st.Record(ctx, r); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	recent, err := st.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("len: got %d", len(recent))
	}
	if recent[0].ID != "c" || recent[2].ID != "a" {
		t.Fatalf("order: got %s..%s", recent[0].ID, recent[2].ID)
	}
	if recent[0].Ledger["blue"] != 3 || recent[0].Ledger[round.TimeoutKey] != 2 {
		t.Fatalf("ledger: got %v", recent[0].Ledger)
	}
	if !recent[2].FinishedAt.Equal(base) {
		t.Fatalf("finishedAt: got %v", recent[2].FinishedAt)
	}
}

func TestSQLite_Best(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := openTemp(t)
	now := time.Now()
	results := []Result{
		{ID: "low", Player: "p", Rounds: 2, Mistakes: 5, FinishedAt: now},
		{ID: "high-sloppy", Player: "p", Rounds: 12, Mistakes: 5, FinishedAt: now},
		{ID: "high-clean", Player: "p", Rounds: 12, Mistakes: 4, FinishedAt: now},
	}
	for _, r := range results {
		if err := st.Record(ctx, r); err != nil {
			t.Fatalf("record %s: %v", r.ID, err)
		}
	}

	best, err := st.Best(ctx, 2)
	if err != nil {
		t.Fatalf("best: %v", err)
	}
	if len(best) != 2 || best[0].ID != "high-clean" || best[1].ID != "high-sloppy" {
		t.Fatalf("best: got %+v", best)
	}
}

func TestSQLite_RecordIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := openTemp(t)
	r := Result{ID: "same", Player: "p", Rounds: 1, FinishedAt: time.Now()}
	for range 3 {
		if err := st.Record(ctx, r); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	got, err := st.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len: got %d", len(got))
	}
	if got[0].Ledger == nil {
		t.Fatalf("nil ledger should round-trip as empty map")
	}
}

func TestFromSnapshot(t *testing.T) {
	t.Parallel()

	c := round.New(1)
	c.Start()
	for range round.MaxMistakes {
		cfg := c.Config()
		c.Select((cfg.DifferentCell + 1) % cfg.Cells())
	}
	at := time.Date(2026, 5, 6, 7, 8, 9, 0, time.FixedZone("x", 3600))
	r := FromSnapshot("id1", "ada", c.Snapshot(), at)
	if r.Mistakes != round.MaxMistakes || r.Rounds != 0 || r.Player != "ada" {
		t.Fatalf("result: %+v", r)
	}
	if r.FinishedAt.Location() != time.UTC {
		t.Fatalf("finishedAt should be UTC")
	}
}
