package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"

	"github.com/alquipy/notifier/internal/adapter/anthropic"
	"github.com/alquipy/notifier/internal/adapter/fsm"
	"github.com/alquipy/notifier/internal/adapter/handoff"
	"github.com/alquipy/notifier/internal/adapter/otel"
	"github.com/alquipy/notifier/internal/adapter/postgrest"
	"github.com/alquipy/notifier/internal/adapter/resend"
	riveradapter "github.com/alquipy/notifier/internal/adapter/river"
	"github.com/alquipy/notifier/internal/adapter/sqlite"
	"github.com/alquipy/notifier/internal/app"
	"github.com/alquipy/notifier/internal/domain"

	handler "github.com/alquipy/notifier/internal/adapter/http"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Missing .env is fine; real deployments set variables directly.
	_ = godotenv.Load()

	port := envOrDefault("PORT", "8080")
	dbPath := envOrDefault("DATABASE_PATH", "notifier.db")

	ctx := context.Background()

	// --- Observability ---
	providers, err := otel.Setup(ctx, otel.ConfigFromEnv())
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			slog.Error("otel shutdown", "error", err)
		}
	}()

	// --- Adapters (out) ---

	// The local database always opens: the job queue lives there even when
	// subscriber data comes from the remote backend.
	db, err := otel.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	var repo domain.FilterRepository
	switch backend := envOrDefault("REPOSITORY_BACKEND", "postgrest"); backend {
	case "postgrest":
		baseURL := os.Getenv("SUPABASE_URL")
		serviceKey := os.Getenv("SUPABASE_SERVICE_KEY")
		if baseURL == "" || serviceKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY are required with the postgrest backend")
		}
		repo = postgrest.New(baseURL, serviceKey)
	case "sqlite":
		sqliteRepo, err := sqlite.NewFromDB(db)
		if err != nil {
			return fmt.Errorf("repository: %w", err)
		}
		repo = sqliteRepo
	default:
		return fmt.Errorf("unknown REPOSITORY_BACKEND %q (use \"postgrest\" or \"sqlite\")", backend)
	}
	repo = otel.NewTracingRepository(repo)

	resendKey := os.Getenv("RESEND_API_KEY")
	if resendKey == "" {
		return fmt.Errorf("RESEND_API_KEY is required")
	}
	from := envOrDefault("MAIL_FROM", "AlquiPY <notificaciones@alquipy.com>")
	sender := otel.NewTracingSender(resend.New(resendKey, from))

	riverClient, err := riveradapter.Setup(ctx, db)
	if err != nil {
		return fmt.Errorf("river: %w", err)
	}
	if err := riverClient.Start(ctx); err != nil {
		return fmt.Errorf("river start: %w", err)
	}
	publisher := otel.NewTracingPublisher(riveradapter.NewPublisher(riverClient))

	var store domain.HandoffStore
	switch backend := envOrDefault("HANDOFF_BACKEND", "memory"); backend {
	case "memory":
		store = handoff.NewMemoryStore()
	case "redis":
		opts, err := redis.ParseURL(envOrDefault("REDIS_URL", "redis://localhost:6379"))
		if err != nil {
			return fmt.Errorf("redis url: %w", err)
		}
		store = handoff.NewRedisStore(redis.NewClient(opts))
	default:
		return fmt.Errorf("unknown HANDOFF_BACKEND %q (use \"memory\" or \"redis\")", backend)
	}

	// The parse endpoint is optional; without an API key it answers 503.
	var parser domain.ListingParser
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		parser, err = anthropic.New(anthropic.Config{APIKey: key})
		if err != nil {
			return fmt.Errorf("parser: %w", err)
		}
	}

	// --- Application ---
	renderer, err := app.NewRenderer(envOrDefault("SITE_BASE_URL", "https://alquilapy.com"))
	if err != nil {
		return fmt.Errorf("renderer: %w", err)
	}
	operator := envOrDefault("OPERATOR_EMAIL", "alquilapy@gmail.com")
	svc := app.NewNotifyService(app.NewClassifier(fsm.New()), repo, sender, renderer, publisher, operator)

	// --- Adapters (in) ---
	router := chi.NewMux()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(otelchi.Middleware("notifier", otelchi.WithChiRoutes(router)))

	api := humachi.New(router, huma.DefaultConfig("notifier", "0.1.0"))
	handler.Register(api, svc, parser, store)

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("notifier listening", "port", port)
		slog.Info("API docs", "url", "http://localhost:"+port+"/docs")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-done:
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown", "error", err)
	}
	if err := riverClient.Stop(shutdownCtx); err != nil {
		slog.Error("river shutdown", "error", err)
	}

	slog.Info("stopped")
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
