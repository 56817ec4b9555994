package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/signupgate/internal/metrics"
	"github.com/mcoot/signupgate/internal/middleware"
)

// Logging creates request logging middleware for the API
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger.With(slog.String("component", "api")))
}

// RequestID tags API requests with an id
func RequestID() func(http.Handler) http.Handler {
	return middleware.RequestID()
}

// Metrics records API request metrics
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return middleware.Metrics(m)
}

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = middleware.RequestIDHeader
