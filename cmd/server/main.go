package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/signupgate/internal/api"
	"github.com/mcoot/signupgate/internal/config"
	"github.com/mcoot/signupgate/internal/factory"
	"github.com/mcoot/signupgate/internal/web"
)

// How often expired login sessions are dropped
const sessionCleanInterval = 5 * time.Minute

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cfg, err := config.Load(os.Getenv("SIGNUP_CONFIG"))
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := factory.New(ctx, factory.ConfigFrom(cfg, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close application", slog.String("error", err.Error()))
		}
	}()

	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		AuthService:    app.AuthService,
		Registrar:      app.RegistrationService,
		SignupManager:  app.SignupManager,
		HubManager:     app.HubManager,
		Storage:        app.Storage,
		Metrics:        app.Metrics,
		Registry:       app.Registry,
		AllowedOrigins: cfg.Server.CORSOrigins,
	})

	webRouter := web.NewRouter(web.RouterConfig{
		Logger:        logger,
		AuthService:   app.AuthService,
		SignupManager: app.SignupManager,
		HubManager:    app.HubManager,
		Outbox:        app.Outbox,
		Clock:         app.Clock,
		Metrics:       app.Metrics,
		StaticDir:     findStaticDir(),
	})

	// Combine routers
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/metrics", apiRouter)
	mux.Handle("/", webRouter)

	server := api.NewServer(mux, api.ServerConfigFrom(cfg.Server), logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(server.Start)

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")
		// Close signup sessions first so open event streams end
		app.SignupManager.Close()
		return server.Shutdown(context.Background())
	})

	g.Go(func() error {
		return app.SignupManager.Run(gctx, cfg.Gate.SweepInterval)
	})

	g.Go(func() error {
		ticker := time.NewTicker(sessionCleanInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := app.AuthService.CleanExpiredSessions(); n > 0 {
					logger.Info("cleaned expired login sessions", slog.Int("count", n))
				}
			}
		}
	})

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.Storage.Type),
		slog.String("strategy", string(app.SignupManager.Strategy())),
	)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// findStaticDir looks for the static files directory, returning "" when absent
func findStaticDir() string {
	candidates := []string{
		"internal/web/static",
		filepath.Join(os.Getenv("PWD"), "internal/web/static"),
	}

	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return ""
}
