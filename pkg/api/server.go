package api

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/yourusername/qchess/internal/config"
	"github.com/yourusername/qchess/internal/store"
)

// Server is the HTTP API server.
type Server struct {
	cfg      *config.Config
	handlers *Handlers
	manager  *Manager
	hub      *Hub
	pool     *WorkerPool
	server   *http.Server
	log      zerolog.Logger
}

// NewServer wires the manager, hub, pool and handlers together. The
// archive store may be nil.
func NewServer(cfg *config.Config, manager *Manager, archive *store.Store, log zerolog.Logger) *Server {
	hub := NewHub(log)
	pool := NewWorkerPool(PoolConfig{})
	handlers := NewHandlers(manager, hub, pool, archive, cfg, log)

	return &Server{
		cfg:      cfg,
		handlers: handlers,
		manager:  manager,
		hub:      hub,
		pool:     pool,
		log:      log.With().Str("component", "server").Logger(),
	}
}

// Manager returns the game registry.
func (s *Server) Manager() *Manager { return s.manager }

// Pool returns the worker pool for monitoring.
func (s *Server) Pool() *WorkerPool { return s.pool }

// Router builds the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/", s.handlers.Root)
	r.Get("/health", s.handlers.Health)
	r.Get("/stats", s.handlers.Stats)

	r.Route("/api/game", func(r chi.Router) {
		r.Post("/new", s.handlers.CreateGame)
		r.Get("/", s.handlers.ListGames)
		r.Get("/{gameID}", s.handlers.GetGame)
		r.Post("/{gameID}/move", s.handlers.MakeMove)
		r.Post("/{gameID}/resign", s.handlers.Resign)
		r.Get("/{gameID}/legal-moves/{square}", s.handlers.LegalMoves)
		r.Get("/{gameID}/all-legal-moves", s.handlers.AllLegalMoves)
		r.Delete("/{gameID}", s.handlers.DeleteGame)
	})

	r.Route("/api/quantum", func(r chi.Router) {
		r.Post("/{gameID}/evaluate", s.handlers.Evaluate)
		r.Get("/{gameID}/best-move", s.handlers.BestMove)
		r.Post("/{gameID}/measure", s.handlers.Measure)
		r.Get("/{gameID}/circuit", s.handlers.Circuit)
		r.Get("/{gameID}/superposition", s.handlers.SuperpositionStates)
		r.Post("/{gameID}/superposition", s.handlers.CreateSuperposition)
		r.Post("/{gameID}/entangle", s.handlers.CreateEntanglement)
	})

	r.Route("/api/analysis", func(r chi.Router) {
		r.Post("/{gameID}/position", s.handlers.AnalyzePosition)
		r.Get("/{gameID}/history", s.handlers.History)
		r.Get("/{gameID}/probability/{square}", s.handlers.SquareProbability)
		r.Get("/archive", s.handlers.ArchivedGames)
		r.Get("/archive/{gameID}", s.handlers.ArchivedGameMoves)
	})

	r.Get("/ws/{gameID}", s.handlers.HandleWS)

	return r
}

// requestLogger emits one structured line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// Start begins serving. It blocks until the listener fails or Shutdown
// is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.log.Info().Str("addr", s.cfg.Addr()).Msg("starting server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// ListenAndServeWithGracefulShutdown starts the server and drains it on
// SIGINT or SIGTERM.
func (s *Server) ListenAndServeWithGracefulShutdown() error {
	errChan := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		s.log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}
