package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fchimpan/gh-hue-hunt/internal/round"
)

func TestMemoryStore_SaveGetDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := NewMemoryStore()
	s := NewSession("ada", round.New(1))
	if len(s.ID) != 16 {
		t.Fatalf("id length: got %d", len(s.ID))
	}
	if err := st.Save(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := st.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != s {
		t.Fatalf("expected the same session pointer")
	}
	if err := st.Delete(ctx, s.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := st.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := st.Delete(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMemoryStore_RejectsEmptyID(t *testing.T) {
	t.Parallel()

	if err := NewMemoryStore().Save(context.Background(), &Session{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestMemoryStore_ConcurrentSaves(t *testing.T) {
	t.Parallel()

	st := NewMemoryStore()
	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = st.Save(context.Background(), NewSession("p", round.New(0)))
		}()
	}
	wg.Wait()
	if st.Len() != 32 {
		t.Fatalf("len: got %d", st.Len())
	}
}

func TestMemoryStore_PruneIdle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := NewMemoryStore()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	idle := NewSession("idle", round.New(1))
	idle.Touch(base)
	busy := NewSession("busy", round.New(2))
	busy.Touch(base.Add(20 * time.Minute))
	for _, s := range []*Session{idle, busy} {
		if err := st.Save(ctx, s); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	if n := st.Prune(ctx, base.Add(10*time.Minute)); n != 1 {
		t.Fatalf("pruned: got %d want 1", n)
	}
	if _, err := st.Get(ctx, idle.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("idle session should be gone, got %v", err)
	}
	if _, err := st.Get(ctx, busy.ID); err != nil {
		t.Fatalf("busy session should remain: %v", err)
	}
}

func TestSession_NewIsFresh(t *testing.T) {
	t.Parallel()

	s := NewSession("p", round.New(0))
	if time.Since(s.LastSeen()) > time.Minute {
		t.Fatalf("new session should be touched on creation, got %v", s.LastSeen())
	}
}
