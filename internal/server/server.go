// Package server is the composition root: it wires the database, services,
// handlers, and middleware into a chi router, and owns startup and graceful
// shutdown.
//
// DEPENDENCY CHAIN:
//
//	config.Config → sqlite.DB → services → handlers → routes
//
// Each layer only receives what it needs: services get repository
// interfaces, handlers get services, routes get handlers. The database
// connection is owned here and closed on shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/promptmaster/internal/auth"
	"github.com/sakif/promptmaster/internal/config"
	"github.com/sakif/promptmaster/internal/handler"
	"github.com/sakif/promptmaster/internal/middleware"
	"github.com/sakif/promptmaster/internal/optimizer"
	sqliteRepo "github.com/sakif/promptmaster/internal/repository/sqlite"
	"github.com/sakif/promptmaster/internal/service"
)

// Server holds the router and the resources it owns.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain. The returned server owns the
// database connection.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes wires middleware, services, handlers, and the route tree.
//
// MIDDLEWARE ORDER MATTERS: RequestID first so everything downstream can
// log it, Recoverer before the handlers so a panic becomes a 500, auth
// only inside the groups that need it.
func (s *Server) setupRoutes(ctx context.Context) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	tokens, err := auth.NewTokenService(s.cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	opt, err := optimizer.New(ctx, s.cfg.GeminiAPIKey, s.cfg.GeminiModel, s.logger)
	if err != nil {
		return fmt.Errorf("creating optimizer: %w", err)
	}

	authSvc := service.NewAuthService(s.db, s.db, tokens, passwords, s.logger)
	promptSvc := service.NewPromptService(s.db, s.db, s.logger)
	categorySvc := service.NewCategoryService(s.db, s.logger)
	userSvc := service.NewUserService(s.db, passwords, s.logger)
	settingsSvc := service.NewSettingsService(s.db, s.logger)

	authH := handler.NewAuthHandler(authSvc, s.logger)
	promptH := handler.NewPromptHandler(promptSvc, s.logger)
	categoryH := handler.NewCategoryHandler(categorySvc, s.logger)
	userH := handler.NewUserHandler(userSvc, s.logger)
	settingsH := handler.NewSettingsHandler(settingsSvc, s.logger)
	aiH := handler.NewAIHandler(opt, s.logger)

	requireAuth := auth.RequireAuth(tokens)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", handleHealth)

		// Open endpoints — the login screen needs these before any token
		// exists.
		r.Post("/auth/login", authH.HandleLogin)
		r.Post("/auth/register", authH.HandleRegister)
		r.Get("/prompts/public", promptH.HandleListPublic)
		r.Get("/categories", categoryH.HandleList)
		r.Get("/settings", settingsH.HandleGet)

		// Authenticated endpoints.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/auth/me", authH.HandleMe)
			r.Post("/auth/change-password", authH.HandleChangePassword)

			r.Get("/prompts", promptH.HandleList)
			r.Post("/prompts", promptH.HandleCreate)
			r.Put("/prompts/{id}", promptH.HandleUpdate)
			r.Delete("/prompts/{id}", promptH.HandleDelete)
			r.Post("/prompts/{id}/favorite", promptH.HandleToggleFavorite)

			r.Post("/categories", categoryH.HandleCreate)

			r.Post("/ai/optimize", aiH.HandleOptimize)
			r.Post("/ai/ideas", aiH.HandleIdeas)

			// Admin endpoints. The services re-check the role — the
			// middleware is the first gate, not the only one.
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAdmin)

				r.Delete("/categories/{id}", categoryH.HandleDelete)
				r.Get("/users", userH.HandleList)
				r.Post("/users", userH.HandleCreate)
				r.Delete("/users/{id}", userH.HandleDelete)
				r.Put("/settings", settingsH.HandleUpdate)
			})
		})
	})

	return nil
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests (30s),
// close the database (flushes the WAL).
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // Gemini calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", s.cfg.Addr),
			slog.String("database", s.cfg.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
