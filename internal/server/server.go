package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dyike/CortexHedge/config"
	"github.com/dyike/CortexHedge/internal/ollama"
	"github.com/dyike/CortexHedge/internal/registry"
	"github.com/dyike/CortexHedge/internal/service"
	"github.com/dyike/CortexHedge/internal/storage/sqlite"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// StatusChecker reports the local Ollama status.
type StatusChecker interface {
	Check(ctx context.Context) ollama.Status
}

type Server struct {
	cfg      *config.Config
	registry *registry.Registry
	runs     *service.HedgeFundService
	store    *sqlite.Store
	ollama   StatusChecker
	logger   zerolog.Logger

	pingInterval time.Duration
	upgrader     websocket.Upgrader
	httpServer   *http.Server
}

func New(cfg *config.Config, reg *registry.Registry, runs *service.HedgeFundService, store *sqlite.Store, status StatusChecker, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:          cfg,
		registry:     reg,
		runs:         runs,
		store:        store,
		ollama:       status,
		logger:       logger.With().Str("component", "server").Logger(),
		pingInterval: time.Second,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.allowOrigin,
	}
	return s
}

func (s *Server) allowOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range s.cfg.CORSAllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// Router builds the HTTP handler with every route mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(s.logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", s.handleRoot)
	r.Get("/ping", s.handlePing)

	r.Route("/hedge-fund", func(r chi.Router) {
		r.Get("/agents", s.handleAgents)
		r.Get("/swarms", s.handleSwarms)
		r.Post("/run", s.handleRun)
		r.Get("/ws", s.handleRunWebsocket)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
	})

	r.Route("/flows", func(r chi.Router) {
		r.Get("/", s.handleListFlows)
		r.Post("/", s.handleCreateFlow)
		r.Get("/{id}", s.handleGetFlow)
		r.Put("/{id}", s.handleUpdateFlow)
		r.Delete("/{id}", s.handleDeleteFlow)
		r.Post("/{id}/duplicate", s.handleDuplicateFlow)
	})

	r.Get("/ollama/status", s.handleOllamaStatus)
	return r
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.ServerAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.ServerAddr).Msg("server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info().Msg("shutting down server")
	return s.httpServer.Shutdown(shutdownCtx)
}
