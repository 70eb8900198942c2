// Package httpserver exposes the game to a browser over JSON.
//
// Routes:
//   - GET  /health, GET /
//   - POST /game/new                  start a session and its first round
//   - GET  /game/{id}                 current state
//   - POST /game/{id}/select          {round, index}, both required
//   - POST /game/{id}/timeout         {round}, required
//   - POST /game/{id}/restart
//   - GET  /game/{id}/results         summary once the game is over
//   - DELETE /game/{id}
//   - GET  /history?limit=&best=1     finished games (when history is enabled)
//
// The browser owns the countdown and reports expiry. Every report must carry
// the round it belongs to, so late clicks and timeouts from a finished round
// are ignored instead of costing a mistake. Sessions idle for longer than the
// session TTL are dropped.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/fchimpan/gh-hue-hunt/internal/history"
	"github.com/fchimpan/gh-hue-hunt/internal/results"
	"github.com/fchimpan/gh-hue-hunt/internal/round"
	"github.com/fchimpan/gh-hue-hunt/internal/store"
)

type Options struct {
	Store        store.Store
	History      history.Store // nil disables /history and recording
	ClientOrigin string
	Seed         func() uint64
	Now          func() time.Time
	// SessionTTL is how long an untouched session is kept. Defaults to 30m.
	SessionTTL time.Duration
}

const defaultSessionTTL = 30 * time.Minute

type Server struct {
	r       *chi.Mux
	store   store.Store
	history history.Store
	origin  string
	seed    func() uint64
	now     func() time.Time
	ttl     time.Duration
}

func New(opts Options) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		store:   opts.Store,
		history: opts.History,
		origin:  opts.ClientOrigin,
		seed:    opts.Seed,
		now:     opts.Now,
		ttl:     opts.SessionTTL,
	}
	if s.store == nil {
		s.store = store.NewMemoryStore()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.seed == nil {
		s.seed = func() uint64 { return uint64(s.now().UnixNano()) }
	}
	if s.ttl <= 0 {
		s.ttl = defaultSessionTTL
	}
	if s.origin == "" {
		s.origin = "http://localhost:5173"
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(s.cors)

	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"hue-hunt","endpoints":["/health","POST /game/new","/game/{id}","/history"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Post("/game/new", s.handleNewGame)
	s.r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", s.handleState)
		r.Delete("/", s.handleDelete)
		r.Post("/select", s.handleSelect)
		r.Post("/timeout", s.handleTimeout)
		r.Post("/restart", s.handleRestart)
		r.Get("/results", s.handleResults)
	})
	s.r.Get("/history", s.handleHistory)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})
	s.r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
	})
	return s
}

// Start serves HTTP on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	go s.sweep(ctx)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

// Handler exposes the router (useful for tests).
func (s *Server) Handler() http.Handler { return s.r }

// sweep drops idle sessions until ctx is done.
func (s *Server) sweep(ctx context.Context) {
	t := time.NewTicker(s.ttl / 2)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.pruneIdle(ctx)
		}
	}
}

func (s *Server) pruneIdle(ctx context.Context) int {
	n := s.store.Prune(ctx, s.now().Add(-s.ttl))
	if n > 0 {
		log.Debug().Int("sessions", n).Int("left", s.store.Len()).Msg("pruned idle sessions")
	}
	return n
}

// ----------------------------- middleware ----------------------------------

func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("reqId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// ------------------------------- game --------------------------------------

type newGameReq struct {
	Seed   *uint64 `json:"seed"`
	Player string  `json:"player"`
}

type stateRes struct {
	GameID string `json:"gameId"`
	Player string `json:"player"`
	round.Snapshot
}

type moveRes struct {
	Outcome round.Outcome `json:"outcome"`
	State   stateRes      `json:"state"`
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	seed := s.seed()
	if req.Seed != nil {
		seed = *req.Seed
	}
	player := req.Player
	if player == "" {
		player = "guest"
	}

	game := round.New(seed)
	game.Start()
	sess := store.NewSession(player, game)
	sess.Touch(s.now())
	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	log.Info().Str("gameId", sess.ID).Str("player", player).Msg("game started")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, stateOf(sess))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *store.Session) {
		writeJSON(w, stateOf(sess))
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type selectReq struct {
	Round *uint64 `json:"round"`
	Index *int    `json:"index"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if req.Index == nil {
		writeError(w, http.StatusBadRequest, "missing_index")
		return
	}
	if req.Round == nil {
		writeError(w, http.StatusBadRequest, "missing_round")
		return
	}
	s.withSession(w, r, func(sess *store.Session) {
		out := sess.Game.SelectAt(*req.Round, *req.Index)
		s.afterMove(r.Context(), sess, out)
		writeJSON(w, moveRes{Outcome: out, State: stateOf(sess)})
	})
}

type timeoutReq struct {
	Round *uint64 `json:"round"`
}

func (s *Server) handleTimeout(w http.ResponseWriter, r *http.Request) {
	var req timeoutReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if req.Round == nil {
		writeError(w, http.StatusBadRequest, "missing_round")
		return
	}
	s.withSession(w, r, func(sess *store.Session) {
		out := sess.Game.Expire(*req.Round)
		s.afterMove(r.Context(), sess, out)
		writeJSON(w, moveRes{Outcome: out, State: stateOf(sess)})
	})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *store.Session) {
		sess.Game.Reset()
		sess.Game.Start()
		sess.Recorded = false
		writeJSON(w, stateOf(sess))
	})
}

type resultsRes struct {
	results.Summary
	Headline   string `json:"headline"`
	Disclaimer string `json:"disclaimer"`
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *store.Session) {
		if !sess.Game.Over() {
			writeError(w, http.StatusConflict, "game_in_progress")
			return
		}
		sum := results.Summarize(sess.Game.Snapshot())
		writeJSON(w, resultsRes{Summary: sum, Headline: sum.Headline(), Disclaimer: results.Disclaimer})
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "history_disabled")
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "bad_limit")
			return
		}
		limit = n
	}
	var (
		rows []history.Result
		err  error
	)
	if r.URL.Query().Get("best") == "1" {
		rows, err = s.history.Best(r.Context(), limit)
	} else {
		rows, err = s.history.Recent(r.Context(), limit)
	}
	if err != nil {
		log.Error().Err(err).Msg("list history")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, rows)
}

// afterMove records the finished game once. Failures are logged, not
// surfaced: the move itself already happened.
func (s *Server) afterMove(ctx context.Context, sess *store.Session, out round.Outcome) {
	if out != round.GameOver || sess.Recorded || s.history == nil {
		return
	}
	snap := sess.Game.Snapshot()
	res := history.FromSnapshot(fmt.Sprintf("%s-%d", sess.ID, snap.Round), sess.Player, snap, s.now())
	if err := s.history.Record(ctx, res); err != nil {
		log.Warn().Err(err).Str("gameId", sess.ID).Msg("record result")
		return
	}
	sess.Recorded = true
	log.Info().Str("gameId", sess.ID).Int("rounds", snap.Completed).Msg("game over")
}

func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*store.Session)) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "store_error")
		return
	}
	sess.Mu.Lock()
	defer sess.Mu.Unlock()
	sess.Touch(s.now())
	fn(sess)
}

func stateOf(sess *store.Session) stateRes {
	return stateRes{GameID: sess.ID, Player: sess.Player, Snapshot: sess.Game.Snapshot()}
}

// decodeBody decodes a JSON body into v. An empty body, chunked or not,
// leaves v unchanged.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}
