package signup

import (
	"fmt"
	"time"

	"github.com/mcoot/signupgate/internal/dependencies/clock"
	"github.com/mcoot/signupgate/internal/dependencies/random"
	"github.com/mcoot/signupgate/internal/model"
)

// Outcome is how far a challenge has progressed
type Outcome int

const (
	OutcomePending Outcome = iota // still challenging
	OutcomePassed                 // gate may move to Verified
	OutcomeFailed                 // gate moves to Failed
)

// Scheduler runs a callback after a delay, under the gate lock, for as long
// as the challenge that scheduled it is still live.
type Scheduler interface {
	After(d time.Duration, fn func())
}

// Challenge is one live instance of a strategy's task. Methods are called
// with the owning gate's lock held and must not block.
type Challenge interface {
	Kind() model.ChallengeKind

	// View returns the renderable state of the challenge
	View() model.ChallengeView

	// Handle applies one user input. ErrChallengeIncorrect reports a wrong
	// answer; the challenge stays open.
	Handle(action model.ChallengeAction) error

	// Resolve reports the current outcome
	Resolve() Outcome

	// Token is forwarded with the registration call, if the strategy produces one
	Token() string
}

// Strategy creates challenges of a single kind
type Strategy interface {
	Kind() model.ChallengeKind
	Begin(sched Scheduler) Challenge
}

// Defaults for gate configuration
const (
	DefaultVerifyDelay   = 2 * time.Second
	DefaultMismatchDelay = time.Second
	DefaultPairs         = 4
	DefaultChallengeTTL  = 5 * time.Minute
	DefaultSessionTTL    = 30 * time.Minute
	DefaultSubmitTimeout = 10 * time.Second
)

// DefaultSymbols is the deck used by the matching games
var DefaultSymbols = []string{"🍎", "🍌", "🍇", "🍒", "🍋", "🍉", "🥝", "🍑"}

// Config selects and tunes the gate strategy
type Config struct {
	Strategy      model.ChallengeKind
	VerifyDelay   time.Duration
	MismatchDelay time.Duration
	Pairs         int
	Symbols       []string
	MaxMisses     int // target variant; 0 means unlimited
	SiteKey       string
	ChallengeTTL  time.Duration
	SessionTTL    time.Duration
	SubmitTimeout time.Duration
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() Config {
	return Config{
		Strategy:      model.ChallengeDelay,
		VerifyDelay:   DefaultVerifyDelay,
		MismatchDelay: DefaultMismatchDelay,
		Pairs:         DefaultPairs,
		Symbols:       DefaultSymbols,
		ChallengeTTL:  DefaultChallengeTTL,
		SessionTTL:    DefaultSessionTTL,
		SubmitTimeout: DefaultSubmitTimeout,
	}
}

// NewStrategy builds the strategy named by cfg.Strategy
func NewStrategy(cfg Config, clk clock.Clock, rnd random.Random) (Strategy, error) {
	symbols := cfg.Symbols
	if len(symbols) == 0 {
		symbols = DefaultSymbols
	}

	switch cfg.Strategy {
	case model.ChallengeToken:
		return &TokenStrategy{SiteKey: cfg.SiteKey}, nil
	case model.ChallengeDelay:
		delay := cfg.VerifyDelay
		if delay <= 0 {
			delay = DefaultVerifyDelay
		}
		return &DelayStrategy{Delay: delay, Clock: clk}, nil
	case model.ChallengePairs:
		pairs := cfg.Pairs
		if pairs <= 0 {
			pairs = DefaultPairs
		}
		if pairs > len(symbols) {
			return nil, fmt.Errorf("pairs game needs %d symbols, have %d", pairs, len(symbols))
		}
		delay := cfg.MismatchDelay
		if delay <= 0 {
			delay = DefaultMismatchDelay
		}
		return &PairsStrategy{Symbols: symbols[:pairs], MismatchDelay: delay, Random: rnd}, nil
	case model.ChallengeTarget:
		if len(symbols) < 2 {
			return nil, fmt.Errorf("target game needs at least 2 symbols, have %d", len(symbols))
		}
		return &TargetStrategy{Symbols: symbols, MaxMisses: cfg.MaxMisses, Random: rnd}, nil
	default:
		return nil, fmt.Errorf("unknown gate strategy %q", cfg.Strategy)
	}
}
