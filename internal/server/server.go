// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer — it connects handlers, middleware, and routes.
// Think of it as the control centre that decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
// main.go loads config and creates the logger, then New() assembles the rest:
//   sqlite KV → Documents → services (directory, session, reset, features,
//   stats, share) → handlers → routes
//
// This is the "composition root" pattern — all dependencies are wired
// in one place (New/setupRoutes), rather than scattered across the codebase.
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

	"github.com/mediapro/studio/internal/auth"
	"github.com/mediapro/studio/internal/config"
	"github.com/mediapro/studio/internal/handler"
	"github.com/mediapro/studio/internal/middleware"
	"github.com/mediapro/studio/internal/service"
	"github.com/mediapro/studio/internal/store"
	"github.com/mediapro/studio/internal/store/sqlite"
)

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection (db). When the server shuts down,
// we must close it to flush any pending writes and release the file lock.
// This is handled in Start() during graceful shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqlite.DB
}

// New creates a Server: it opens the store, wires every service and handler,
// and runs the directory bootstrap (seeding or migrating the administrator
// account) before any request can be served.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(ctx); err != nil {
		db.Close() // Clean up DB if wiring fails
		return nil, err
	}

	return s, nil
}

// setupRoutes assembles the dependency graph and configures all middleware
// and route handlers.
//
// ROUTE STRUCTURE:
// POST   /auth/login                  → authenticate, set session cookie
// POST   /auth/logout                 → clear session
// POST   /auth/forgot-password        → issue reset token, return reset link
// POST   /auth/reset-password         → consume token, set new password
// GET    /api/features                → feature flag map (public gate check)
// POST   /api/usage/{feature}         → record one feature use
// POST   /api/share                   → mint a share link
// GET    /s/{slug}                    → resolve a share link
// GET    /api/me                      → logged-in user's record
// /api/admin/* (admin only):
//   GET/POST     /users, PATCH/DELETE /users/{id}, POST /users/{id}/toggle
//   PUT          /features
//   GET/PUT      /settings, /system
//   GET          /stats, /activity
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added. Our order:
// 1. RequestID — assigns unique ID to each request (for tracing)
// 2. RealIP — extracts real client IP from proxy headers
// 3. Recoverer — catches panics and returns 500 instead of crashing
// 4. Logger — logs each request with timing info
func (s *Server) setupRoutes(ctx context.Context) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// === Core wiring ===
	docs := store.NewDocuments(s.db)
	passwords := auth.NewPasswordService()
	clock := service.RealClock{}

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	directory := service.NewDirectoryService(docs, passwords, clock, s.logger)
	sessions := service.NewSessionService(docs, directory, s.logger)
	resets := service.NewResetService(docs, passwords, clock, s.logger)
	features := service.NewFeatureService(docs, clock, s.logger)
	stats := service.NewStatsService(docs, clock, s.logger)
	share := service.NewShareService(docs, clock, s.logger)

	// Seed or migrate the administrator account before serving traffic.
	seed := service.InitialAdmin{
		Name:        s.config.Admin.Name,
		Email:       s.config.Admin.Email,
		Password:    s.config.Admin.Password,
		LegacyEmail: s.config.Admin.LegacyEmail,
	}
	if err := directory.Bootstrap(ctx, seed); err != nil {
		return fmt.Errorf("bootstrapping directory: %w", err)
	}

	authHandler := handler.NewAuthHandler(sessions, directory, resets, tokens, s.logger)
	usersHandler := handler.NewUsersHandler(directory, s.logger)
	featuresHandler := handler.NewFeaturesHandler(features, directory, s.logger)
	statsHandler := handler.NewStatsHandler(stats, features, directory, s.logger)
	shareHandler := handler.NewShareHandler(share, stats, directory, s.logger)

	// === Public routes ===
	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
		r.Post("/forgot-password", authHandler.HandleForgotPassword)
		r.Post("/reset-password", authHandler.HandleResetPassword)
	})

	s.router.Get("/api/features", featuresHandler.HandleFlags)
	s.router.Get("/s/{slug}", shareHandler.HandleResolve)

	// Feature endpoints: anonymous use is allowed, but a logged-in user's
	// actions are attributed to them in the activity feed.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.OptionalAuth(tokens))
		r.Post("/api/usage/{feature}", statsHandler.HandleRecordUsage)
		r.Post("/api/share", shareHandler.HandleMint)
	})

	// === Authenticated routes ===
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Get("/api/me", authHandler.HandleMe)
	})

	// === Admin routes ===
	s.router.Route("/api/admin", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Use(auth.RequireAdmin(directory))

		r.Get("/users", usersHandler.HandleList)
		r.Post("/users", usersHandler.HandleCreate)
		r.Patch("/users/{id}", usersHandler.HandleRename)
		r.Post("/users/{id}/toggle", usersHandler.HandleToggleStatus)
		r.Delete("/users/{id}", usersHandler.HandleDelete)

		r.Put("/features", featuresHandler.HandleSetFlag)
		r.Get("/settings", featuresHandler.HandleGetSettings)
		r.Put("/settings", featuresHandler.HandleSetSettings)
		r.Get("/system", featuresHandler.HandleGetSystem)
		r.Put("/system", featuresHandler.HandleSetSystem)

		r.Get("/stats", statsHandler.HandleStats)
		r.Get("/activity", statsHandler.HandleActivity)
	})

	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases file lock)
//
// The `defer s.db.Close()` ensures step 3 happens even if something panics.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
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
