package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/cinelog/cinelog/internal/auth"
	"github.com/cinelog/cinelog/internal/config"
	"github.com/cinelog/cinelog/internal/moviesearch"
	"github.com/cinelog/cinelog/internal/repository"
	"github.com/cinelog/cinelog/internal/store"
)

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg      config.Config
	store    *store.Store
	repo     *repository.Repository
	search   moviesearch.Client
	verifier *auth.Verifier
	validate *validator.Validate
	logger   *log.Logger
	router   chi.Router
	httpSrv  *http.Server
}

// New constructs the HTTP server with base middleware and routes.
func New(cfg config.Config, st *store.Store, repo *repository.Repository, searchClient moviesearch.Client, verifier *auth.Verifier, logger *log.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		cfg:      cfg,
		store:    st,
		repo:     repo,
		search:   searchClient,
		verifier: verifier,
		validate: validator.New(),
		logger:   logger,
		router:   r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)

	s.router.Route("/movies", func(r chi.Router) {
		r.Get("/", s.handleListMovies)
		r.Post("/", s.handleCreateMovie)
		r.Route("/{movieID}", func(r chi.Router) {
			r.Get("/", s.handleGetMovie)
			r.Get("/reviews", s.handleListMovieReviews)
			r.With(s.requireUser).Post("/reviews", s.handleSubmitReview)
		})
	})

	s.router.Route("/reviews/{reviewID}", func(r chi.Router) {
		r.Use(s.requireUser)
		r.Patch("/", s.handleUpdateReview)
		r.Delete("/", s.handleDeleteReview)
	})

	s.router.Route("/me", func(r chi.Router) {
		r.Use(s.requireUser)
		r.Get("/reviews", s.handleListMyReviews)
		r.Get("/profile", s.handleGetMyProfile)
		r.Put("/profile", s.handleUpdateMyProfile)
		r.Route("/watchlist", func(r chi.Router) {
			r.Get("/", s.handleListWatchlist)
			r.Post("/", s.handleAddToWatchlist)
			r.Delete("/{movieID}", s.handleRemoveFromWatchlist)
		})
	})

	s.router.Get("/profiles/{username}", s.handleGetProfile)
	s.router.With(s.requireUser).Get("/search", s.handleSearch)
}

// Start boots the HTTP server asynchronously.
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

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.HealthCheck(ctx); err != nil {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
