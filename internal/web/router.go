package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/signupgate/internal/dependencies/clock"
	"github.com/mcoot/signupgate/internal/metrics"
	"github.com/mcoot/signupgate/internal/services/auth"
	"github.com/mcoot/signupgate/internal/services/signup"
	"github.com/mcoot/signupgate/internal/web/handler"
	"github.com/mcoot/signupgate/internal/web/middleware"
	"github.com/mcoot/signupgate/internal/web/outbox"
	"github.com/mcoot/signupgate/internal/web/sse"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger        *slog.Logger
	AuthService   *auth.Service
	SignupManager *signup.Manager
	HubManager    *sse.HubManager
	Outbox        *outbox.Outbox
	Clock         clock.Clock
	Metrics       *metrics.Metrics // optional
	StaticDir     string // Path to static files directory
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create middleware
	requestIDMiddleware := middleware.RequestID()
	loggingMiddleware := middleware.Logging(cfg.Logger)
	metricsMiddleware := middleware.Metrics(cfg.Metrics)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	flashMiddleware := middleware.Flash()
	optionalAuthMiddleware := middleware.OptionalAuth(cfg.AuthService)
	authMiddleware := middleware.Auth(cfg.AuthService)
	signupMiddleware := middleware.SignupSession(cfg.SignupManager, true)
	existingSignupMiddleware := middleware.SignupSession(cfg.SignupManager, false)

	// Apply global middleware to all routes
	r.Use(recoveryMiddleware)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)
	r.Use(metricsMiddleware)

	hubManager := cfg.HubManager
	if hubManager == nil {
		hubManager = sse.NewHubManager(cfg.Logger)
	}
	box := cfg.Outbox
	if box == nil {
		box = outbox.New()
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	// Create handlers
	homeHandler := handler.NewHomeHandler()
	authHandler := handler.NewAuthHandler(cfg.AuthService, box)
	signupHandler := handler.NewSignupHandler(cfg.SignupManager, hubManager, box, clk, cfg.Logger)

	// Static files
	if cfg.StaticDir != "" {
		staticHandler := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
		r.PathPrefix("/static/").Handler(staticHandler)
	}

	// Public pages
	public := r.NewRoute().Subrouter()
	public.Use(flashMiddleware)
	public.Use(optionalAuthMiddleware)
	public.HandleFunc("/", homeHandler.Home).Methods(http.MethodGet)
	public.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)

	// Pages that require a login
	protected := r.NewRoute().Subrouter()
	protected.Use(flashMiddleware)
	protected.Use(authMiddleware)
	protected.HandleFunc("/account", homeHandler.Account).Methods(http.MethodGet)

	// Login is where a finished signup lands
	login := r.NewRoute().Subrouter()
	login.Use(flashMiddleware)
	login.Use(optionalAuthMiddleware)
	login.Use(existingSignupMiddleware)
	login.HandleFunc("/login", authHandler.LoginPage).Methods(http.MethodGet)
	login.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)

	// Signup stream only attaches to an existing session
	events := r.NewRoute().Subrouter()
	events.Use(existingSignupMiddleware)
	events.HandleFunc("/register/events", signupHandler.Events).Methods(http.MethodGet)

	// Signup pages and actions
	register := r.NewRoute().Subrouter()
	register.Use(flashMiddleware)
	register.Use(optionalAuthMiddleware)
	register.Use(signupMiddleware)
	register.HandleFunc("/register", signupHandler.Page).Methods(http.MethodGet)
	register.HandleFunc("/register", signupHandler.Submit).Methods(http.MethodPost)
	register.HandleFunc("/register/field", signupHandler.Field).Methods(http.MethodPost)
	register.HandleFunc("/register/challenge", signupHandler.Challenge).Methods(http.MethodPost)
	register.HandleFunc("/register/dismiss", signupHandler.Dismiss).Methods(http.MethodPost)
	register.HandleFunc("/register/leave", signupHandler.Leave).Methods(http.MethodPost)

	r.NotFoundHandler = recoveryMiddleware(requestIDMiddleware(loggingMiddleware(metricsMiddleware(http.HandlerFunc(homeHandler.NotFound)))))

	return r
}
