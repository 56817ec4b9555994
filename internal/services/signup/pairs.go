package signup

import (
	"time"

	"github.com/mcoot/signupgate/internal/dependencies/random"
	"github.com/mcoot/signupgate/internal/model"
)

// PairsStrategy deals every symbol twice, shuffled face down. The user turns
// over two cards at a time; equal cards stay solved, unequal ones flip back
// after MismatchDelay.
type PairsStrategy struct {
	Symbols       []string
	MismatchDelay time.Duration
	Random        random.Random
}

func (s *PairsStrategy) Kind() model.ChallengeKind { return model.ChallengePairs }

func (s *PairsStrategy) Begin(sched Scheduler) Challenge {
	deck := make([]string, 0, len(s.Symbols)*2)
	deck = append(deck, s.Symbols...)
	deck = append(deck, s.Symbols...)
	random.Shuffle(s.Random, len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	return &pairsChallenge{
		deck:   deck,
		solved: make([]bool, len(deck)),
		delay:  s.MismatchDelay,
		sched:  sched,
	}
}

type pairsChallenge struct {
	deck     []string
	solved   []bool
	revealed []int // at most two
	delay    time.Duration
	sched    Scheduler
}

func (c *pairsChallenge) Kind() model.ChallengeKind { return model.ChallengePairs }

func (c *pairsChallenge) View() model.ChallengeView {
	cards := make([]model.ChallengeCard, len(c.deck))
	for i, symbol := range c.deck {
		card := model.ChallengeCard{Index: i, Solved: c.solved[i], Revealed: c.isRevealed(i)}
		if card.Solved || card.Revealed {
			card.Symbol = symbol
		}
		cards[i] = card
	}
	return model.ChallengeView{Kind: model.ChallengePairs, Cards: cards}
}

func (c *pairsChallenge) Handle(action model.ChallengeAction) error {
	if action.Select == nil {
		return model.ErrInvalidAction
	}
	i := *action.Select
	if i < 0 || i >= len(c.deck) {
		return model.ErrInvalidAction
	}
	if len(c.revealed) == 2 || c.solved[i] || c.isRevealed(i) {
		return nil
	}

	c.revealed = append(c.revealed, i)
	if len(c.revealed) < 2 {
		return nil
	}

	a, b := c.revealed[0], c.revealed[1]
	if c.deck[a] == c.deck[b] {
		c.solved[a] = true
		c.solved[b] = true
		c.revealed = nil
		return nil
	}
	c.sched.After(c.delay, func() { c.revealed = nil })
	return model.ErrChallengeIncorrect
}

func (c *pairsChallenge) Resolve() Outcome {
	for _, solved := range c.solved {
		if !solved {
			return OutcomePending
		}
	}
	return OutcomePassed
}

func (c *pairsChallenge) Token() string { return "" }

func (c *pairsChallenge) isRevealed(i int) bool {
	for _, r := range c.revealed {
		if r == i {
			return true
		}
	}
	return false
}
