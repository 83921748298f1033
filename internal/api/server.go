// Package api provides the HTTP server and handlers for the Quiver API.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/quiverapp/quiver-server/internal/config"
	apperrors "github.com/quiverapp/quiver-server/internal/errors"
	"github.com/quiverapp/quiver-server/internal/logger"
	"github.com/quiverapp/quiver-server/internal/ratelimit"
	"github.com/quiverapp/quiver-server/internal/service"
	"github.com/quiverapp/quiver-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	cfg             *config.Config
	store           store.Store
	authService     *service.AuthService
	specService     *service.SpecService
	noteService     *service.NoteService
	transferService *service.TransferService
	limiter         *ratelimit.KeyedLimiter
	router          *chi.Mux
	logger          *logger.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg *config.Config, st store.Store, authService *service.AuthService, specService *service.SpecService, noteService *service.NoteService, transferService *service.TransferService, log *logger.Logger) *Server {
	s := &Server{
		cfg:             cfg,
		store:           st,
		authService:     authService,
		specService:     specService,
		noteService:     noteService,
		transferService: transferService,
		limiter:         ratelimit.New(authRatePerSecond, authRateBurst),
		router:          chi.NewRouter(),
		logger:          log,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close stops the server's background work. The HTTP listener itself is
// owned by the caller.
func (s *Server) Close() error {
	s.limiter.Stop()
	return nil
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Unknown routes and methods answer in the same error shape as
	// everything else, not chi's plain-text default.
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, apperrors.NotFound("Route not found"), s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, apperrors.NotFound("Route not found"), s.logger)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/auth", func(r chi.Router) {
			r.Get("/session", s.handleSession)
			r.With(s.rateLimit).Post("/register", s.handleRegister)
			r.With(s.rateLimit).Post("/login", s.handleLogin)
			r.With(s.rateLimit).Post("/reset-password", s.handleResetPassword)
			// Reachable without a session so a locked-out user can
			// redeem a reset token; the handler still picks up the
			// cookie when one is present.
			r.Post("/update-password", s.handleUpdatePassword)
			r.With(s.requireAuth).Post("/logout", s.handleLogout)
		})

		r.Route("/ski-specs", func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/", s.handleListSpecs)
			r.Post("/", s.handleCreateSpec)
			r.Get("/compare", s.handleCompareSpecs)
			r.Get("/export", s.handleExportSpecs)
			r.Post("/import", s.handleImportSpecs)

			r.Route("/{specID}", func(r chi.Router) {
				r.Get("/", s.handleGetSpec)
				r.Put("/", s.handleUpdateSpec)
				r.Delete("/", s.handleDeleteSpec)

				r.Route("/notes", func(r chi.Router) {
					r.Get("/", s.handleListNotes)
					r.Post("/", s.handleCreateNote)
					r.Get("/{noteID}", s.handleGetNote)
					r.Put("/{noteID}", s.handleUpdateNote)
					r.Delete("/{noteID}", s.handleDeleteNote)
				})
			})
		})
	})
}
