package signup

import (
	"github.com/mcoot/signupgate/internal/dependencies/random"
	"github.com/mcoot/signupgate/internal/model"
)

// TargetStrategy shows every symbol once, shuffled, and asks the user to pick
// the named one.
type TargetStrategy struct {
	Symbols   []string
	MaxMisses int
	Random    random.Random
}

func (s *TargetStrategy) Kind() model.ChallengeKind { return model.ChallengeTarget }

func (s *TargetStrategy) Begin(Scheduler) Challenge {
	deck := append([]string(nil), s.Symbols...)
	random.Shuffle(s.Random, len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	return &targetChallenge{
		deck:      deck,
		target:    random.Pick(s.Random, deck),
		maxMisses: s.MaxMisses,
	}
}

type targetChallenge struct {
	deck      []string
	target    string
	maxMisses int
	misses    int
	hit       bool
}

func (c *targetChallenge) Kind() model.ChallengeKind { return model.ChallengeTarget }

func (c *targetChallenge) View() model.ChallengeView {
	cards := make([]model.ChallengeCard, len(c.deck))
	for i, symbol := range c.deck {
		cards[i] = model.ChallengeCard{Index: i, Symbol: symbol}
	}
	return model.ChallengeView{Kind: model.ChallengeTarget, Cards: cards, Target: c.target}
}

func (c *targetChallenge) Handle(action model.ChallengeAction) error {
	if action.Select == nil {
		return model.ErrInvalidAction
	}
	i := *action.Select
	if i < 0 || i >= len(c.deck) {
		return model.ErrInvalidAction
	}
	if c.deck[i] == c.target {
		c.hit = true
		return nil
	}
	c.misses++
	return model.ErrChallengeIncorrect
}

func (c *targetChallenge) Resolve() Outcome {
	switch {
	case c.hit:
		return OutcomePassed
	case c.maxMisses > 0 && c.misses >= c.maxMisses:
		return OutcomeFailed
	default:
		return OutcomePending
	}
}

func (c *targetChallenge) Token() string { return "" }
