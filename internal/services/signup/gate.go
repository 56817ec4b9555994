package signup

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/signupgate/internal/dependencies/clock"
	"github.com/mcoot/signupgate/internal/metrics"
	"github.com/mcoot/signupgate/internal/model"
)

// User-facing messages
const (
	MsgMissingFields   = "All fields are required."
	MsgTokenMissing    = "Please complete the CAPTCHA."
	MsgTryAgain        = "Incorrect, try again."
	MsgExpired         = "Verification expired. Please submit again."
	MsgChallengeFailed = "Verification failed. Please submit again."
	MsgSignupFailed    = "Signup failed."
	MsgSignupRetry     = "Signup failed. Try again."
)

// LoginPath is where a successful registration navigates to
const LoginPath = "/login"

// GateConfig holds the collaborators of a gate
type GateConfig struct {
	Strategy     Strategy
	Controller   *Controller
	Clock        clock.Clock
	Listener     Listener
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
	ChallengeTTL time.Duration
}

type effect func()

// Gate is the verification state machine of one signup session.
//
// Every input runs under mu. Timers and the registration call carry the epoch
// they were started in and are dropped if the epoch moved on or the gate was
// closed. Listener effects are dispatched after mu is released.
type Gate struct {
	id           string
	strategy     Strategy
	controller   *Controller
	clock        clock.Clock
	listener     Listener
	metrics      *metrics.Metrics
	logger       *slog.Logger
	challengeTTL time.Duration

	mu         sync.Mutex
	state      model.VerificationState
	form       model.RegistrationForm
	formError  string
	challenge  Challenge
	expiresAt  time.Time
	epoch      uint64
	timers     []clock.Timer
	submitting bool
	settled    chan struct{}
	cancel     context.CancelFunc
	launch     effect
	lastResult *model.RegistrationResult
	lastActive time.Time
	closed     bool
}

// NewGate creates an idle gate
func NewGate(id string, cfg GateConfig) *Gate {
	listener := cfg.Listener
	if listener == nil {
		listener = NopListener{}
	}
	return &Gate{
		id:           id,
		strategy:     cfg.Strategy,
		controller:   cfg.Controller,
		clock:        cfg.Clock,
		listener:     listener,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger.With(slog.String("session_id", id)),
		challengeTTL: cfg.ChallengeTTL,
		state:        model.StateIdle,
		lastActive:   cfg.Clock.Now(),
	}
}

// ID returns the session id of the gate
func (g *Gate) ID() string {
	return g.id
}

// SetField records a field change
func (g *Gate) SetField(name, value string) error {
	return g.update(func() ([]effect, error) {
		g.touchLocked()
		return nil, g.form.Set(name, value)
	})
}

// Submit validates the form and starts a challenge. An incomplete form keeps
// the gate idle and returns ErrMissingFields. Resubmitting while challenging
// or failed starts a fresh challenge.
func (g *Gate) Submit() error {
	return g.update(func() ([]effect, error) {
		if g.submitting {
			return nil, model.ErrSubmissionInFlight
		}
		g.touchLocked()
		g.formError = ""

		if !g.form.Complete() {
			g.teardownLocked()
			g.setStateLocked(model.StateIdle)
			g.formError = MsgMissingFields
			return g.flushLocked(nil), model.ErrMissingFields
		}

		g.beginChallengeLocked()
		return g.flushLocked(nil), nil
	})
}

// Act feeds one input to the live challenge. A wrong answer returns
// ErrChallengeIncorrect and sends a transient notification; the gate stays
// challenging.
func (g *Gate) Act(action model.ChallengeAction) error {
	return g.update(func() ([]effect, error) {
		if g.submitting {
			return nil, model.ErrSubmissionInFlight
		}
		if g.state != model.StateChallenging {
			if g.state == model.StateFailed {
				return nil, model.ErrChallengeExpired
			}
			return nil, model.ErrNotChallenging
		}
		g.touchLocked()

		kind := g.challenge.Kind()
		var effects []effect
		err := g.challenge.Handle(action)
		switch {
		case err == nil:
			g.metrics.ObserveChallengeInput(kind, "accepted")
		case errors.Is(err, model.ErrChallengeIncorrect):
			g.metrics.ObserveChallengeInput(kind, "incorrect")
			effects = append(effects, g.notifyEffect(model.NotifyInfo, MsgTryAgain))
		case errors.Is(err, model.ErrTokenMissing):
			g.metrics.ObserveChallengeInput(kind, "invalid")
			g.formError = MsgTokenMissing
			return g.flushLocked(nil), err
		default:
			g.metrics.ObserveChallengeInput(kind, "invalid")
			return nil, err
		}

		g.evaluateLocked()
		return g.flushLocked(effects), err
	})
}

// Dismiss abandons the current challenge and returns to idle without side
// effects. Dismissing an idle gate does nothing.
func (g *Gate) Dismiss() error {
	return g.update(func() ([]effect, error) {
		if g.submitting {
			return nil, model.ErrSubmissionInFlight
		}
		g.touchLocked()
		if g.state == model.StateIdle {
			return nil, nil
		}
		g.teardownLocked()
		g.setStateLocked(model.StateIdle)
		return g.flushLocked(nil), nil
	})
}

// Close tears the gate down. Pending timers are stopped, an in-flight
// registration call is cancelled and its result discarded, and no further
// effects are produced.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.closed = true
	g.teardownLocked()
	if g.cancel != nil {
		g.cancel()
	}
	g.form = model.RegistrationForm{}
	g.logger.Debug("signup gate closed")
}

// Await blocks until the in-flight registration call, if any, has settled and
// its effects have been dispatched.
func (g *Gate) Await(ctx context.Context) error {
	g.mu.Lock()
	settled := g.settled
	g.mu.Unlock()
	if settled == nil {
		return nil
	}
	select {
	case <-settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns a read-only view of the gate
func (g *Gate) Snapshot() model.GateSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

// LastActive returns the time of the last user input
func (g *Gate) LastActive() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastActive
}

// update runs fn under the lock and dispatches the effects it returns
func (g *Gate) update(fn func() ([]effect, error)) error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return model.ErrGateClosed
	}
	effects, err := fn()
	g.mu.Unlock()

	dispatch(effects)
	return err
}

func dispatch(effects []effect) {
	for _, e := range effects {
		e()
	}
}

// flushLocked appends the state event and, if the gate just verified, the
// start of the registration call, so listeners see Verified before the result.
func (g *Gate) flushLocked(effects []effect) []effect {
	effects = append(effects, g.stateEffectLocked())
	if g.launch != nil {
		effects = append(effects, g.launch)
		g.launch = nil
	}
	return effects
}

func (g *Gate) beginChallengeLocked() {
	g.teardownLocked()
	g.challenge = g.strategy.Begin(gateScheduler{gate: g, epoch: g.epoch})
	g.expiresAt = time.Time{}
	if g.challengeTTL > 0 {
		g.expiresAt = g.clock.Now().Add(g.challengeTTL)
		g.afterLocked(g.epoch, g.challengeTTL, func() {
			g.failLocked(MsgExpired)
		})
	}
	g.setStateLocked(model.StateChallenging)
}

// teardownLocked discards the challenge and invalidates its timers
func (g *Gate) teardownLocked() {
	for _, t := range g.timers {
		t.Stop()
	}
	g.timers = nil
	g.challenge = nil
	g.expiresAt = time.Time{}
	g.epoch++
}

type gateScheduler struct {
	gate  *Gate
	epoch uint64
}

func (s gateScheduler) After(d time.Duration, fn func()) {
	s.gate.afterLocked(s.epoch, d, fn)
}

func (g *Gate) afterLocked(epoch uint64, d time.Duration, fn func()) {
	t := g.clock.AfterFunc(d, func() { g.fire(epoch, fn) })
	g.timers = append(g.timers, t)
}

func (g *Gate) fire(epoch uint64, fn func()) {
	g.mu.Lock()
	if g.closed || g.epoch != epoch || g.state != model.StateChallenging {
		g.mu.Unlock()
		return
	}
	fn()
	g.evaluateLocked()
	effects := g.flushLocked(nil)
	g.mu.Unlock()

	dispatch(effects)
}

// evaluateLocked fires the transition for a resolved challenge
func (g *Gate) evaluateLocked() {
	if g.state != model.StateChallenging || g.challenge == nil {
		return
	}
	switch g.challenge.Resolve() {
	case OutcomePassed:
		g.verifyLocked()
	case OutcomeFailed:
		g.failLocked(MsgChallengeFailed)
	}
}

func (g *Gate) failLocked(msg string) {
	g.teardownLocked()
	g.setStateLocked(model.StateFailed)
	g.formError = msg
}

// verifyLocked consumes the challenge and prepares exactly one registration call
func (g *Gate) verifyLocked() {
	req := g.form.Request(g.challenge.Token())
	g.teardownLocked()
	g.setStateLocked(model.StateVerified)

	ctx, cancel := context.WithCancel(context.Background())
	settled := make(chan struct{})
	epoch := g.epoch
	g.submitting = true
	g.settled = settled
	g.cancel = cancel
	g.launch = func() {
		go g.submit(ctx, cancel, epoch, req, settled)
	}
}

func (g *Gate) submit(ctx context.Context, cancel context.CancelFunc, epoch uint64, req model.RegisterRequest, settled chan struct{}) {
	defer close(settled)
	defer cancel()

	start := g.clock.Now()
	result, err := g.controller.Submit(ctx, req)
	elapsed := g.clock.Now().Sub(start)

	g.mu.Lock()
	g.submitting = false
	g.settled = nil
	g.cancel = nil
	if g.closed || g.epoch != epoch {
		g.mu.Unlock()
		g.metrics.ObserveRegistration(metrics.OutcomeDiscarded, elapsed)
		return
	}
	effects := g.settleLocked(result, err, elapsed)
	effects = g.flushLocked(effects)
	g.mu.Unlock()

	dispatch(effects)
}

// settleLocked applies the outcome of the registration call
func (g *Gate) settleLocked(result model.RegistrationResult, err error, elapsed time.Duration) []effect {
	g.setStateLocked(model.StateIdle)

	switch {
	case err != nil:
		g.logger.Warn("registration call failed", slog.String("error", err.Error()))
		g.metrics.ObserveRegistration(metrics.OutcomeTransport, elapsed)
		g.formError = MsgSignupRetry
		g.lastResult = nil
		return []effect{g.notifyEffect(model.NotifyError, MsgSignupRetry)}

	case !result.Success:
		msg := strings.TrimSpace(result.Message)
		if msg == "" {
			msg = MsgSignupFailed
		}
		g.logger.Info("registration rejected", slog.String("message", msg))
		g.metrics.ObserveRegistration(metrics.OutcomeRejected, elapsed)
		g.formError = msg
		g.lastResult = &model.RegistrationResult{Success: false, Message: msg}
		return nil

	default:
		g.logger.Info("registration succeeded")
		g.metrics.ObserveRegistration(metrics.OutcomeSuccess, elapsed)
		g.form = model.RegistrationForm{}
		g.formError = ""
		g.lastResult = &result
		return []effect{
			g.notifyEffect(model.NotifySuccess, result.Message),
			g.navigateEffect(LoginPath),
		}
	}
}

func (g *Gate) setStateLocked(to model.VerificationState) {
	from := g.state
	if from == to {
		return
	}
	g.state = to
	g.metrics.ObserveTransition(from, to)
	g.logger.Debug("gate transition",
		slog.String("from", string(from)),
		slog.String("to", string(to)),
	)
}

func (g *Gate) touchLocked() {
	g.lastActive = g.clock.Now()
}

func (g *Gate) snapshotLocked() model.GateSnapshot {
	s := model.GateSnapshot{
		SessionID:  g.id,
		State:      g.state,
		Strategy:   g.strategy.Kind(),
		Username:   g.form.Username,
		Email:      g.form.Email,
		Error:      g.formError,
		Submitting: g.submitting,
	}
	if g.challenge != nil {
		view := g.challenge.View()
		view.ExpiresAt = g.expiresAt
		s.Challenge = &view
	}
	if g.lastResult != nil {
		result := *g.lastResult
		s.LastResult = &result
	}
	return s
}

func (g *Gate) stateEffectLocked() effect {
	snapshot := g.snapshotLocked()
	return func() { g.listener.StateChanged(snapshot) }
}

func (g *Gate) notifyEffect(level model.NotificationLevel, msg string) effect {
	n := model.Notification{Level: level, Message: msg}
	return func() { g.listener.Notify(g.id, n) }
}

func (g *Gate) navigateEffect(path string) effect {
	return func() { g.listener.Navigate(g.id, path) }
}
