package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fchimpan/gh-hue-hunt/internal/round"
)

var ErrNotFound = errors.New("session not found")

// Session is one player's game. Mu serialises access to Game, which is not
// safe for concurrent use.
type Session struct {
	ID       string
	Player   string
	Mu       sync.Mutex
	Game     *round.Controller
	Recorded bool // result already written to history

	lastSeen atomic.Int64 // unix nanos
}

func NewSession(player string, game *round.Controller) *Session {
	s := &Session{ID: randomID(), Player: player, Game: game}
	s.Touch(time.Now())
	return s
}

// Touch marks the session as used at t.
func (s *Session) Touch(t time.Time) { s.lastSeen.Store(t.UnixNano()) }

func (s *Session) LastSeen() time.Time { return time.Unix(0, s.lastSeen.Load()) }

type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	// Prune drops sessions last used before cutoff and reports how many.
	Prune(ctx context.Context, cutoff time.Time) int
	Len() int
}

type memory struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*Session)}
}

func (m *memory) Save(ctx context.Context, s *Session) error {
	if s == nil || s.ID == "" {
		return errors.New("session has no id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *memory) Prune(ctx context.Context, cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// randomID returns a 16 hex char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
