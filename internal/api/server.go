// Package api serves the running simulation over HTTP.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/gridlife/internal/engine"
	"github.com/talgya/gridlife/internal/grid"
	"github.com/talgya/gridlife/internal/persistence"
	"github.com/talgya/gridlife/internal/planner"
)

// Server serves the simulation state over HTTP.
type Server struct {
	Eng      *engine.Engine
	Steward  *planner.Steward // Optional; adds learning figures to status
	DB       *persistence.DB  // Optional; enables snapshots
	Addr     string
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	AdminRate     int           // Admin requests per client per window
	AdminWindow   time.Duration // Admin rate window
	EventsDefault int           // Events returned without ?limit
}

// Handler builds the routing table.
func (s *Server) Handler() http.Handler {
	rate, window := s.AdminRate, s.AdminWindow
	if rate <= 0 {
		rate = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	adminLimiter := NewRateLimiter(rate, window)

	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/api/v1/grid", s.handleGrid)
	mux.HandleFunc("/api/v1/integrity", s.handleIntegrity)
	mux.HandleFunc("/api/v1/events", s.handleEvents)

	// Admin endpoints.
	mux.HandleFunc("/api/v1/speed", RateLimitMiddleware(adminLimiter, s.adminOnly(s.handleSpeed)))
	mux.HandleFunc("/api/v1/snapshot", RateLimitMiddleware(adminLimiter, s.adminOnly(s.handleSnapshot)))

	return mux
}

// Start begins serving in a goroutine and returns the server so the caller
// can shut it down.
func (s *Server) Start() *http.Server {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", s.Addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return srv
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no GRIDLIFE_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var c engine.Census
	var length, height int
	s.Eng.View(func(g *grid.Grid) {
		c = engine.TakeCensus(g)
		length, height = g.Length(), g.Height()
	})

	status := map[string]any{
		"name":       "gridlife",
		"tick":       c.Tick,
		"speed":      s.Eng.Speed(),
		"running":    s.Eng.Running(),
		"length":     length,
		"height":     height,
		"population": c.Alive,
		"entities":   c.Entities,
	}
	if s.Steward != nil {
		learning := map[string]any{
			"equipped": s.Steward.Equipped(),
			"vetoed":   s.Steward.Vetoed(),
			"pending":  s.Steward.Memory().Len(),
		}
		if b, ok := s.Steward.Model().(interface{ Batches() int }); ok {
			learning["batches"] = b.Batches()
		}
		status["learning"] = learning
	}
	writeJSON(w, status)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var c engine.Census
	kinds := make(map[string]int)
	s.Eng.View(func(g *grid.Grid) {
		c = engine.TakeCensus(g)
		for k, n := range g.Stats() {
			kinds[k.String()] = n
		}
	})
	writeJSON(w, map[string]any{
		"census": c,
		"kinds":  kinds,
	})
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	var resp struct {
		Tick   uint64   `json:"tick"`
		Length int      `json:"length"`
		Height int      `json:"height"`
		Rows   []string `json:"rows"`
	}
	s.Eng.View(func(g *grid.Grid) {
		resp.Tick = g.Epoch()
		resp.Length, resp.Height = g.Length(), g.Height()
		resp.Rows = g.Rows()
	})
	writeJSON(w, resp)
}

func (s *Server) handleIntegrity(w http.ResponseWriter, r *http.Request) {
	var problems []string
	var tick uint64
	s.Eng.View(func(g *grid.Grid) {
		problems = g.IntegrityCheck()
		tick = g.Epoch()
	})
	if problems == nil {
		problems = []string{}
	}
	writeJSON(w, map[string]any{
		"tick":     tick,
		"ok":       len(problems) == 0,
		"problems": problems,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := s.EventsDefault
	if limit <= 0 {
		limit = 50
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	events := s.Eng.RecentEvents(limit)
	if cat := r.URL.Query().Get("category"); cat != "" {
		filtered := events[:0]
		for _, e := range events {
			if e.Category == cat {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}
	writeJSON(w, events)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	var id string
	var tick uint64
	err := s.Eng.Update(func(g *grid.Grid) error {
		var err error
		id, err = s.DB.SaveGrid(g)
		tick = g.Epoch()
		return err
	})
	if err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"tick":     tick,
		"snapshot": id,
		"message":  "snapshot saved",
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", "error", err)
	}
}
