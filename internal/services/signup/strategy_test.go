package signup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/signupgate/internal/dependencies/mocks"
	"github.com/mcoot/signupgate/internal/model"
)

type noScheduler struct{}

func (noScheduler) After(time.Duration, func()) {}

func TestNewStrategy(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	rnd := mocks.NewMockRandom()

	tests := []struct {
		name    string
		cfg     Config
		want    model.ChallengeKind
		wantErr bool
	}{
		{"token", Config{Strategy: model.ChallengeToken}, model.ChallengeToken, false},
		{"delay", Config{Strategy: model.ChallengeDelay}, model.ChallengeDelay, false},
		{"pairs", Config{Strategy: model.ChallengePairs, Pairs: 3}, model.ChallengePairs, false},
		{"target", Config{Strategy: model.ChallengeTarget}, model.ChallengeTarget, false},
		{"unknown", Config{Strategy: "puzzle"}, "", true},
		{"too many pairs", Config{Strategy: model.ChallengePairs, Pairs: 3, Symbols: []string{"a", "b"}}, "", true},
		{"target needs two symbols", Config{Strategy: model.ChallengeTarget, Symbols: []string{"a"}}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy, err := NewStrategy(tt.cfg, clk, rnd)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, strategy.Kind())
		})
	}
}

func TestNewStrategy_AppliesDefaults(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	strategy, err := NewStrategy(Config{Strategy: model.ChallengeDelay}, clk, mocks.NewMockRandom())
	require.NoError(t, err)
	assert.Equal(t, DefaultVerifyDelay, strategy.(*DelayStrategy).Delay)

	strategy, err = NewStrategy(Config{Strategy: model.ChallengePairs}, clk, mocks.NewMockRandom())
	require.NoError(t, err)
	pairs := strategy.(*PairsStrategy)
	assert.Len(t, pairs.Symbols, DefaultPairs)
	assert.Equal(t, DefaultMismatchDelay, pairs.MismatchDelay)
}

func TestPairsStrategy_DealsEachSymbolTwice(t *testing.T) {
	rnd := mocks.NewMockRandom()
	rnd.QueueIntn(2, 0, 1, 0, 3)
	s := &PairsStrategy{Symbols: []string{"a", "b", "c"}, MismatchDelay: time.Second, Random: rnd}

	c := s.Begin(noScheduler{}).(*pairsChallenge)

	counts := map[string]int{}
	for _, symbol := range c.deck {
		counts[symbol]++
	}
	assert.Equal(t, map[string]int{"a": 2, "b": 2, "c": 2}, counts)
	assert.Equal(t, OutcomePending, c.Resolve())
}

func TestTargetStrategy_TargetIsInDeck(t *testing.T) {
	rnd := mocks.NewMockRandom()
	rnd.QueueIntn(0, 0, 0, 2)
	s := &TargetStrategy{Symbols: []string{"a", "b", "c", "d"}, Random: rnd}

	view := s.Begin(noScheduler{}).View()

	assert.Len(t, view.Cards, 4)
	assert.Contains(t, []string{"a", "b", "c", "d"}, view.Target)
	found := false
	for _, card := range view.Cards {
		found = found || card.Symbol == view.Target
	}
	assert.True(t, found)
}

func TestTokenChallenge(t *testing.T) {
	c := (&TokenStrategy{SiteKey: "k"}).Begin(noScheduler{})

	assert.ErrorIs(t, c.Handle(model.ChallengeAction{}), model.ErrTokenMissing)
	assert.Equal(t, OutcomePending, c.Resolve())

	require.NoError(t, c.Handle(model.ChallengeAction{Token: " abc "}))
	assert.Equal(t, OutcomePassed, c.Resolve())
	assert.Equal(t, "abc", c.Token())
}
