package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcoot/signupgate/internal/api/handler"
	"github.com/mcoot/signupgate/internal/api/middleware"
	"github.com/mcoot/signupgate/internal/metrics"
	"github.com/mcoot/signupgate/internal/services/auth"
	"github.com/mcoot/signupgate/internal/services/signup"
	"github.com/mcoot/signupgate/internal/storage"
	"github.com/mcoot/signupgate/internal/web/sse"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	AuthService    *auth.Service
	Registrar      signup.Registrar
	SignupManager  *signup.Manager
	HubManager     *sse.HubManager
	Storage        storage.Storage      // optional, pinged by /health
	Metrics        *metrics.Metrics     // optional
	Registry       *prometheus.Registry // optional, served at /metrics
	AllowedOrigins []string             // CORS origins; empty disables CORS headers
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	hubManager := cfg.HubManager
	if hubManager == nil {
		hubManager = sse.NewHubManager(cfg.Logger)
	}

	// Create handlers
	healthHandler := handler.NewHealthHandler(cfg.Storage, cfg.SignupManager)
	registrationHandler := handler.NewRegistrationHandler(cfg.Registrar)
	signupHandler := handler.NewSignupHandler(cfg.SignupManager, hubManager, cfg.Logger)
	userHandler := handler.NewUserHandler(cfg.AuthService)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	requestIDMiddleware := middleware.RequestID()
	loggingMiddleware := middleware.Logging(cfg.Logger)
	metricsMiddleware := middleware.Metrics(cfg.Metrics)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	if cfg.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(requestIDMiddleware)
	api.Use(loggingMiddleware)
	api.Use(metricsMiddleware)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)

	// Registration backend
	api.HandleFunc("/register", registrationHandler.Register).Methods(http.MethodPost)

	// Signup gates
	api.HandleFunc("/signup", signupHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/signup/{id}", signupHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/signup/{id}", signupHandler.Leave).Methods(http.MethodDelete)
	api.HandleFunc("/signup/{id}/fields/{field}", signupHandler.SetField).Methods(http.MethodPut)
	api.HandleFunc("/signup/{id}/submit", signupHandler.Submit).Methods(http.MethodPost)
	api.HandleFunc("/signup/{id}/challenge", signupHandler.Challenge).Methods(http.MethodPost)
	api.HandleFunc("/signup/{id}/challenge", signupHandler.Dismiss).Methods(http.MethodDelete)
	api.HandleFunc("/signup/{id}/events", signupHandler.Events).Methods(http.MethodGet)

	// Login (no auth required)
	api.HandleFunc("/login", userHandler.Login).Methods(http.MethodPost)

	// Protected user routes
	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware)
	protected.HandleFunc("/me", userHandler.GetMe).Methods(http.MethodGet)
	protected.HandleFunc("/logout", userHandler.Logout).Methods(http.MethodPost)

	var h http.Handler = r
	if len(cfg.AllowedOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(cfg.AllowedOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}),
			handlers.AllowedHeaders([]string{"Authorization", "Content-Type", middleware.RequestIDHeader}),
			handlers.ExposedHeaders([]string{middleware.RequestIDHeader}),
		)(h)
	}
	return handlers.ProxyHeaders(h)
}
