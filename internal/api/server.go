package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sonderlabs/mirror/internal/analyzer"
	"github.com/sonderlabs/mirror/internal/reflection"
	"github.com/sonderlabs/mirror/internal/session"
	"github.com/sonderlabs/mirror/internal/store"
)

type Server struct {
	router    *chi.Mux
	port      int
	sessions  *session.Manager
	analyzer  *analyzer.Analyzer
	responder *reflection.Responder
	store     *store.Store
	themes    []string
	logger    *slog.Logger
	started   time.Time
}

func NewServer(port int, apiToken string, sessions *session.Manager, an *analyzer.Analyzer, rsp *reflection.Responder, db *store.Store, themes []string, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:    router,
		port:      port,
		sessions:  sessions,
		analyzer:  an,
		responder: rsp,
		store:     db,
		themes:    themes,
		logger:    logger,
		started:   time.Now(),
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/mirror/status", s.status)

	router.Route("/api/v1/mirror/conversations", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Post("/{id}/turns", s.postTurn)
		r.Get("/{id}/summary", s.getSummary)
		r.Delete("/{id}", s.deleteConversation)
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"service":        "mirror",
		"status":         "ok",
		"conversations":  s.sessions.Count(),
		"uptime_seconds": int(time.Since(s.started).Seconds()),
	})
}
