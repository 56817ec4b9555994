package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mcoot/signupgate/internal/config"
	"github.com/mcoot/signupgate/internal/dependencies/clock"
	"github.com/mcoot/signupgate/internal/dependencies/random"
	"github.com/mcoot/signupgate/internal/metrics"
	"github.com/mcoot/signupgate/internal/services/auth"
	"github.com/mcoot/signupgate/internal/services/registration"
	"github.com/mcoot/signupgate/internal/services/signup"
	"github.com/mcoot/signupgate/internal/storage"
	"github.com/mcoot/signupgate/internal/storage/memory"
	"github.com/mcoot/signupgate/internal/storage/postgres"
	redisstorage "github.com/mcoot/signupgate/internal/storage/redis"
	"github.com/mcoot/signupgate/internal/web/outbox"
	"github.com/mcoot/signupgate/internal/web/sse"
)

// Storage type constants
const (
	StorageTypeMemory   = config.StorageMemory
	StorageTypeRedis    = config.StorageRedis
	StorageTypePostgres = config.StoragePostgres
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Observability
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	// Services
	RegistrationService *registration.Service
	Registrar           signup.Registrar
	Strategy            signup.Strategy
	SignupManager       *signup.Manager
	AuthService         *auth.Service
	HubManager          *sse.HubManager
	Outbox              *outbox.Outbox
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// DatabaseURL is the postgres connection string (required if StorageType is "postgres")
	DatabaseURL string
	// Signup selects and tunes the verification gate
	// If the strategy is empty, defaults to signup.DefaultConfig()
	Signup signup.Config
	// AuthConfig holds configuration for the auth service (optional)
	AuthConfig auth.Config
	// Registration tunes the in-process registration backend (optional)
	Registration registration.Config
	// CaptchaSecret enables server-side token checks when set
	CaptchaSecret    string
	CaptchaVerifyURL string
	// RegistrationURL points gates at a remote registration backend.
	// If empty, gates call the in-process backend.
	RegistrationURL string
}

// ConfigFrom converts the loaded server configuration
func ConfigFrom(cfg config.Config, logger *slog.Logger) Config {
	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = cfg.Storage.RedisURL
	return Config{
		Logger:           logger,
		StorageType:      cfg.Storage.Type,
		RedisConfig:      &redisCfg,
		DatabaseURL:      cfg.Storage.DatabaseURL,
		Signup:           cfg.SignupConfig(),
		CaptchaSecret:    cfg.Captcha.Secret,
		CaptchaVerifyURL: cfg.Captcha.VerifyURL,
		RegistrationURL:  cfg.Registration.URL,
	}
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	app, err := newWithDependencies(store, clock.New(), random.New(), cfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return app, nil
}

func newStorage(ctx context.Context, cfg Config, logger *slog.Logger) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		store, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return store, nil
	case StorageTypePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DatabaseURL required when StorageType is postgres")
		}
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to postgres")
		store := postgres.New(pool)
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be memory, redis or postgres", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) (*App, error) {
	signupCfg := cfg.Signup
	if signupCfg.Strategy == "" {
		signupCfg = signup.DefaultConfig()
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	var verifier registration.TokenVerifier
	if cfg.CaptchaSecret != "" {
		verifier = registration.NewSiteVerifier(cfg.CaptchaSecret, cfg.CaptchaVerifyURL, 5*time.Second)
	}
	registrationService := registration.New(store, clk, verifier, m, cfg.Registration, logger)

	var registrar signup.Registrar = registrationService
	if cfg.RegistrationURL != "" {
		registrar = registration.NewClient(cfg.RegistrationURL, signupCfg.SubmitTimeout)
		logger.Info("gates use remote registration backend", slog.String("url", cfg.RegistrationURL))
	}

	strategy, err := signup.NewStrategy(signupCfg, clk, rnd)
	if err != nil {
		return nil, err
	}

	hubManager := sse.NewHubManager(logger)
	box := outbox.New(outbox.WithPresence(hubManager.HasClients))
	listener := signup.Listeners{sse.NewBroadcaster(hubManager, logger), box}

	controller := signup.NewController(registrar, signupCfg.SubmitTimeout, logger)
	manager := signup.NewManager(strategy, controller, clk, listener, m, signupCfg, logger)

	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}

	return &App{
		Storage:             store,
		Clock:               clk,
		Random:              rnd,
		Registry:            registry,
		Metrics:             m,
		RegistrationService: registrationService,
		Registrar:           registrar,
		Strategy:            strategy,
		SignupManager:       manager,
		AuthService:         auth.New(store, clk, authCfg),
		HubManager:          hubManager,
		Outbox:              box,
	}, nil
}

// Close closes every signup session and releases storage
func (a *App) Close() error {
	a.SignupManager.Close()
	a.HubManager.Close()
	return a.Storage.Close()
}
