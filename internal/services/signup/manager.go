package signup

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/signupgate/internal/dependencies/clock"
	"github.com/mcoot/signupgate/internal/metrics"
	"github.com/mcoot/signupgate/internal/model"
)

// Manager owns the gates of all open signup sessions
type Manager struct {
	strategy     Strategy
	controller   *Controller
	clock        clock.Clock
	listener     Listener
	metrics      *metrics.Metrics
	logger       *slog.Logger
	challengeTTL time.Duration
	sessionTTL   time.Duration

	mu    sync.RWMutex
	gates map[string]*Gate
}

// NewManager creates a session manager. Every gate it creates shares the
// strategy, controller and listener.
func NewManager(
	strategy Strategy,
	controller *Controller,
	clk clock.Clock,
	listener Listener,
	m *metrics.Metrics,
	cfg Config,
	logger *slog.Logger,
) *Manager {
	if listener == nil {
		listener = NopListener{}
	}
	return &Manager{
		strategy:     strategy,
		controller:   controller,
		clock:        clk,
		listener:     listener,
		metrics:      m,
		logger:       logger.With(slog.String("component", "signup.manager")),
		challengeTTL: cfg.ChallengeTTL,
		sessionTTL:   cfg.SessionTTL,
		gates:        make(map[string]*Gate),
	}
}

// Strategy returns the kind of challenge new gates present
func (m *Manager) Strategy() model.ChallengeKind {
	return m.strategy.Kind()
}

// Create opens a new signup session
func (m *Manager) Create() *Gate {
	id := uuid.NewString()
	gate := NewGate(id, GateConfig{
		Strategy:     m.strategy,
		Controller:   m.controller,
		Clock:        m.clock,
		Listener:     m.listener,
		Metrics:      m.metrics,
		Logger:       m.logger,
		ChallengeTTL: m.challengeTTL,
	})

	m.mu.Lock()
	m.gates[id] = gate
	m.mu.Unlock()

	m.metrics.SessionOpened()
	m.logger.Debug("signup session opened", slog.String("session_id", id))
	return gate
}

// Get returns the gate of an open session
func (m *Manager) Get(id string) (*Gate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	gate, ok := m.gates[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return gate, nil
}

// Leave closes a session, discarding its form, timers and any in-flight result
func (m *Manager) Leave(id string) error {
	m.mu.Lock()
	gate, ok := m.gates[id]
	if ok {
		delete(m.gates, id)
	}
	m.mu.Unlock()

	if !ok {
		return model.ErrSessionNotFound
	}
	m.closeGate(gate)
	return nil
}

// Sweep closes sessions idle for longer than the session TTL and returns how
// many were closed
func (m *Manager) Sweep() int {
	if m.sessionTTL <= 0 {
		return 0
	}
	cutoff := m.clock.Now().Add(-m.sessionTTL)

	var stale []*Gate
	m.mu.Lock()
	for id, gate := range m.gates {
		if gate.LastActive().Before(cutoff) {
			stale = append(stale, gate)
			delete(m.gates, id)
		}
	}
	m.mu.Unlock()

	for _, gate := range stale {
		m.closeGate(gate)
	}
	if len(stale) > 0 {
		m.logger.Info("swept idle signup sessions", slog.Int("count", len(stale)))
	}
	return len(stale)
}

// Run sweeps idle sessions every interval until ctx is cancelled.
// A non-positive interval disables sweeping. Ticks come from the manager's
// clock, one sweep at a time.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}

	tick := make(chan struct{}, 1)
	for {
		timer := m.clock.AfterFunc(interval, func() {
			select {
			case tick <- struct{}{}:
			default:
			}
		})
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-tick:
			m.Sweep()
		}
	}
}

// Count returns the number of open sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.gates)
}

// Close closes every open session
func (m *Manager) Close() {
	m.mu.Lock()
	gates := m.gates
	m.gates = make(map[string]*Gate)
	m.mu.Unlock()

	for _, gate := range gates {
		m.closeGate(gate)
	}
}

func (m *Manager) closeGate(gate *Gate) {
	gate.Close()
	m.listener.Closed(gate.ID())
	m.metrics.SessionClosed()
	m.logger.Debug("signup session closed", slog.String("session_id", gate.ID()))
}
