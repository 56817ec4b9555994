package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/signupgate/internal/metrics"
	"github.com/mcoot/signupgate/internal/middleware"
)

// Logging creates logging middleware for the web interface
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger)
}

// RequestID tags web requests with an id
func RequestID() func(http.Handler) http.Handler {
	return middleware.RequestID()
}

// Metrics records web request metrics
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return middleware.Metrics(m)
}
