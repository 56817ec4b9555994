package signup

import (
	"time"

	"github.com/mcoot/signupgate/internal/dependencies/clock"
	"github.com/mcoot/signupgate/internal/model"
)

// DelayStrategy resolves a fixed delay after the user acknowledges the
// challenge. Further acknowledgements are ignored.
type DelayStrategy struct {
	Delay time.Duration
	Clock clock.Clock
}

func (s *DelayStrategy) Kind() model.ChallengeKind { return model.ChallengeDelay }

func (s *DelayStrategy) Begin(sched Scheduler) Challenge {
	return &delayChallenge{delay: s.Delay, clock: s.Clock, sched: sched}
}

type delayChallenge struct {
	delay time.Duration
	clock clock.Clock
	sched Scheduler

	readyAt *time.Time
	elapsed bool
}

func (c *delayChallenge) Kind() model.ChallengeKind { return model.ChallengeDelay }

func (c *delayChallenge) View() model.ChallengeView {
	v := model.ChallengeView{Kind: model.ChallengeDelay, Acknowledged: c.readyAt != nil}
	if c.readyAt != nil {
		at := *c.readyAt
		v.ReadyAt = &at
	}
	return v
}

func (c *delayChallenge) Handle(action model.ChallengeAction) error {
	if !action.Acknowledge {
		return model.ErrInvalidAction
	}
	if c.readyAt != nil {
		return nil
	}
	at := c.clock.Now().Add(c.delay)
	c.readyAt = &at
	c.sched.After(c.delay, func() { c.elapsed = true })
	return nil
}

func (c *delayChallenge) Resolve() Outcome {
	if c.elapsed {
		return OutcomePassed
	}
	return OutcomePending
}

func (c *delayChallenge) Token() string { return "" }
