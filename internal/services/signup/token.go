package signup

import (
	"strings"

	"github.com/mcoot/signupgate/internal/model"
)

// TokenStrategy resolves once an external verification widget hands over an
// opaque token. The token is not checked here.
type TokenStrategy struct {
	SiteKey string
}

func (s *TokenStrategy) Kind() model.ChallengeKind { return model.ChallengeToken }

func (s *TokenStrategy) Begin(Scheduler) Challenge {
	return &tokenChallenge{siteKey: s.SiteKey}
}

type tokenChallenge struct {
	siteKey string
	token   string
}

func (c *tokenChallenge) Kind() model.ChallengeKind { return model.ChallengeToken }

func (c *tokenChallenge) View() model.ChallengeView {
	return model.ChallengeView{Kind: model.ChallengeToken, SiteKey: c.siteKey}
}

func (c *tokenChallenge) Handle(action model.ChallengeAction) error {
	token := strings.TrimSpace(action.Token)
	if token == "" {
		return model.ErrTokenMissing
	}
	c.token = token
	return nil
}

func (c *tokenChallenge) Resolve() Outcome {
	if c.token != "" {
		return OutcomePassed
	}
	return OutcomePending
}

func (c *tokenChallenge) Token() string { return c.token }
