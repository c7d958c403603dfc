package server

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"ai_editor_service/assist"
	"ai_editor_service/store"
)

// Server wires the assistant pipeline, the SQLite-backed stores and the
// HTTP surface together.
type Server struct {
	assistant *assist.Assistant
	store     *store.Store
	cfg       Config
	logger    *zap.Logger
	sessions  *sessionStore
	cooldown  *cooldownGate
}

func New(assistant *assist.Assistant, st *store.Store, cfg Config, logger *zap.Logger) (*Server, error) {
	if assistant == nil {
		return nil, errors.New("assistant required")
	}
	if st == nil {
		return nil, errors.New("store required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.applyDefaults()
	return &Server{
		assistant: assistant,
		store:     st,
		cfg:       cfg,
		logger:    logger,
		sessions:  newSessionStore(),
		cooldown:  newCooldownGate(time.Duration(cfg.Quota.CooldownMS) * time.Millisecond),
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/assist", s.handleAssist)
	mux.HandleFunc("/api/sessions", s.handleSessionCreate)
	mux.HandleFunc("/api/sessions/", s.handleSessionByID)
	mux.HandleFunc("/api/preview", s.handlePreview)
	mux.HandleFunc("/health", s.handleHealth)
	return s.corsMiddleware(s.logMiddleware(mux))
}

// --- Session store ---

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*assist.Session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*assist.Session)}
}

func (s *sessionStore) set(id string, sess *assist.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = sess
}

func (s *sessionStore) get(id string) (*assist.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// --- Per-user cooldown ---

// cooldownGate spaces out a user's assist calls. It runs before the quota
// ledger so a rapid double-submit burns at most one quota unit.
type cooldownGate struct {
	mu       sync.Mutex
	interval time.Duration
	limiters map[string]*rate.Limiter
}

func newCooldownGate(interval time.Duration) *cooldownGate {
	return &cooldownGate{
		interval: interval,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (g *cooldownGate) allow(userID string) (bool, time.Duration) {
	if g.interval <= 0 {
		return true, 0
	}
	g.mu.Lock()
	lim, ok := g.limiters[userID]
	if !ok {
		lim = rate.NewLimiter(rate.Every(g.interval), 1)
		g.limiters[userID] = lim
	}
	g.mu.Unlock()
	if lim.Allow() {
		return true, 0
	}
	return false, g.interval
}

// --- Middleware ---

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(s.cfg.AllowedOrigins))
	for _, o := range s.cfg.AllowedOrigins {
		allowed[o] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		reqID := uuid.NewString()
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("req", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}
