package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ayush/library-console/internal/api"
	"github.com/ayush/library-console/internal/audit"
	"github.com/ayush/library-console/internal/auth"
	"github.com/ayush/library-console/internal/config"
	"github.com/ayush/library-console/internal/middleware"
	"github.com/ayush/library-console/internal/store"
	"github.com/ayush/library-console/internal/view"
	"github.com/ayush/library-console/internal/web"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// ── Redis (sessions) ─────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		fatal(logger, "redis connect", err)
	}
	defer rdb.Close()
	sessions, err := auth.NewSessionStore(rdb, cfg.SessionSecret)
	if err != nil {
		fatal(logger, "session store", err)
	}
	if cfg.SessionSecret == "" {
		logger.Warn("SESSION_SECRET not set; sessions will not survive a restart")
	}

	// ── PostgreSQL (audit, optional) ─────────────────────────
	var recorder audit.Recorder = audit.NewLogRecorder(logger)
	if cfg.PostgresDSN != "" {
		pgPool, err := store.NewPostgresPool(ctx, cfg.PostgresDSN)
		if err != nil {
			fatal(logger, "postgres connect", err)
		}
		defer pgPool.Close()
		pgAudit := audit.NewPostgresStore(pgPool)
		if err := pgAudit.Migrate(ctx); err != nil {
			fatal(logger, "postgres migrate", err)
		}
		recorder = pgAudit
	}

	// ── Templates ────────────────────────────────────────────
	pages, err := view.New(logger)
	if err != nil {
		fatal(logger, "templates", err)
	}

	// ── Handlers ─────────────────────────────────────────────
	backend := api.New(cfg.BackendURL, cfg.LoginURL)
	authHandler := auth.NewHandler(backend, sessions, pages, logger, cfg.CookieSecure)
	webHandler := web.NewHandler(backend, pages, recorder, logger)

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.LoadSession(sessions, logger))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Public pages
	r.Group(func(r chi.Router) {
		r.Use(middleware.Guarded)
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, auth.LandingPage, http.StatusFound)
		})
		r.Get("/login", authHandler.LoginPage)
		r.Post("/login", authHandler.Login)
	})
	r.Post("/logout", authHandler.Logout)

	// Console pages (protected)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		webHandler.Routes(r)
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("console listening", "port", cfg.Port, "backend", cfg.BackendURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, "server error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "err", err)
	os.Exit(1)
}
