package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movie-catalog/internal/config"
	"github.com/Clark-Hu/movie-catalog/internal/domain"
	"github.com/Clark-Hu/movie-catalog/internal/repository"
	"github.com/Clark-Hu/movie-catalog/internal/store"
)

type movieReader interface {
	List(ctx context.Context, filter repository.MovieFilter) ([]domain.Movie, error)
	GetByID(ctx context.Context, id int64) (domain.Movie, error)
}

type directorReader interface {
	List(ctx context.Context) ([]domain.Director, error)
	GetByID(ctx context.Context, id int64) (domain.Director, error)
}

type genreReader interface {
	List(ctx context.Context) ([]domain.Genre, error)
	GetByID(ctx context.Context, id int64) (domain.Genre, error)
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
	Stats() *pgxpool.Stat
}

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg       config.Config
	health    healthChecker
	movies    movieReader
	directors directorReader
	genres    genreReader
	logger    *log.Logger
	router    chi.Router
	httpSrv   *http.Server
}

// New constructs the HTTP server with base middleware and routes.
func New(cfg config.Config, st *store.Store, repo *repository.Repository, logger *log.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	return newServer(cfg, r, st, repo.Movies, repo.Directors, repo.Genres, logger)
}

func newServer(cfg config.Config, r chi.Router, health healthChecker, movies movieReader, directors directorReader, genres genreReader, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		cfg:       cfg,
		health:    health,
		movies:    movies,
		directors: directors,
		genres:    genres,
		logger:    logger,
		router:    r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.NotFound(s.handleNotFound)
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Route("/movies", func(r chi.Router) {
		r.Get("/", s.handleListMovies)
		r.Get("/{id:[0-9]+}", s.handleGetMovie)
	})
	s.router.Route("/directors", func(r chi.Router) {
		r.Get("/", s.handleListDirectors)
		r.Get("/{id:[0-9]+}", s.handleGetDirector)
	})
	s.router.Route("/genres", func(r chi.Router) {
		r.Get("/", s.handleListGenres)
		r.Get("/{id:[0-9]+}", s.handleGetGenre)
	})
}

// ServeHTTP dispatches to the router, which lets tests drive the full stack.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start boots the HTTP server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("http: listening on %s", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

type healthResponse struct {
	Status string        `json:"status"`
	Pool   *poolResponse `json:"pool,omitempty"`
}

type poolResponse struct {
	TotalConns    int32 `json:"totalConns"`
	IdleConns     int32 `json:"idleConns"`
	AcquiredConns int32 `json:"acquiredConns"`
	MaxConns      int32 `json:"maxConns"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.health == nil {
		s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Database unavailable")
		return
	}
	if err := s.health.HealthCheck(ctx); err != nil {
		s.logger.Printf("health check failed: %v", err)
		s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Database unavailable")
		return
	}

	resp := healthResponse{Status: "ok"}
	if stat := s.health.Stats(); stat != nil {
		resp.Pool = &poolResponse{
			TotalConns:    stat.TotalConns(),
			IdleConns:     stat.IdleConns(),
			AcquiredConns: stat.AcquiredConns(),
			MaxConns:      stat.MaxConns(),
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.respondNotFound(w)
}
