package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mcoot/signupgate/internal/model"
)

// Registration outcomes as seen by the gate
const (
	OutcomeSuccess   = "success"
	OutcomeRejected  = "rejected"
	OutcomeTransport = "transport_error"
	OutcomeDiscarded = "discarded"
)

// Metrics provides observability for signup gates and the registration backend.
// All methods are safe to call on a nil *Metrics.
type Metrics struct {
	GateTransitions      *prometheus.CounterVec
	ChallengeInputs      *prometheus.CounterVec
	RegistrationCalls    *prometheus.CounterVec
	RegistrationDuration prometheus.Histogram
	UsersRegistered      prometheus.Counter
	ActiveSessions       prometheus.Gauge
	HTTPRequests         *prometheus.CounterVec
	HTTPDuration         *prometheus.HistogramVec
}

// New creates a Metrics instance with every collector registered on reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		GateTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "signup_gate_transitions_total",
			Help: "Verification gate state transitions",
		}, []string{"from", "to"}),
		ChallengeInputs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "signup_challenge_inputs_total",
			Help: "Challenge inputs by strategy and result",
		}, []string{"strategy", "result"}),
		RegistrationCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "signup_registration_calls_total",
			Help: "Registration calls made by gates, by outcome",
		}, []string{"outcome"}),
		RegistrationDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "signup_registration_duration_seconds",
			Help:    "Duration of registration calls made by gates",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		UsersRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "signup_users_registered_total",
			Help: "Users created by the registration backend",
		}),
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "signup_active_sessions",
			Help: "Open signup sessions",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// ObserveTransition records a gate state change
func (m *Metrics) ObserveTransition(from, to model.VerificationState) {
	if m == nil {
		return
	}
	m.GateTransitions.WithLabelValues(string(from), string(to)).Inc()
}

// ObserveChallengeInput records one challenge input and whether it was accepted
func (m *Metrics) ObserveChallengeInput(kind model.ChallengeKind, result string) {
	if m == nil {
		return
	}
	m.ChallengeInputs.WithLabelValues(string(kind), result).Inc()
}

// ObserveRegistration records a completed registration call
func (m *Metrics) ObserveRegistration(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.RegistrationCalls.WithLabelValues(outcome).Inc()
	m.RegistrationDuration.Observe(d.Seconds())
}

// IncrementUsersRegistered records a user persisted by the backend
func (m *Metrics) IncrementUsersRegistered() {
	if m == nil {
		return
	}
	m.UsersRegistered.Inc()
}

// SessionOpened increments the open session gauge
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.ActiveSessions.Inc()
}

// SessionClosed decrements the open session gauge
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
}

// ObserveHTTPRequest records one served HTTP request
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
