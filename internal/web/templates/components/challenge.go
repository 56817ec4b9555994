package components

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/mcoot/signupgate/internal/model"
	"github.com/mcoot/signupgate/internal/web/templates/markup"
)

// Challenge renders the live challenge of a gate with its controls
func Challenge(view model.ChallengeView) templ.Component {
	return markup.Func(func(ctx context.Context, m *markup.Writer) {
		m.Raw(`<section id="challenge"`)
		m.Attr("data-kind", string(view.Kind))
		m.Raw(`><h2>Verify you are human</h2>`)

		switch view.Kind {
		case model.ChallengeToken:
			tokenChallenge(m, view)
		case model.ChallengeDelay:
			delayChallenge(m, view)
		case model.ChallengePairs:
			m.Raw(`<p class="challenge-prompt">Find every matching pair.</p>`)
			cardGrid(m, view.Cards, false)
		case model.ChallengeTarget:
			m.Raw(`<p class="challenge-prompt">Select the <span id="challenge-target">`)
			m.Text(view.Target)
			m.Raw(`</span></p>`)
			cardGrid(m, view.Cards, true)
		}

		m.Raw(`<form method="post" action="/register/dismiss" class="challenge-dismiss">`)
		m.Raw(`<button type="submit" name="dismiss" value="true">Cancel</button></form>`)
		m.Raw("</section>")
	})
}

// ChallengePanel renders what the gate shows below the form: the verifying
// notice while the account is created, the live challenge, or nothing
func ChallengePanel(snap model.GateSnapshot) templ.Component {
	return markup.Func(func(ctx context.Context, m *markup.Writer) {
		switch {
		case snap.Submitting || snap.State == model.StateVerified:
			m.Component(ctx, Verifying())
		case snap.State == model.StateChallenging && snap.Challenge != nil:
			m.Component(ctx, Challenge(*snap.Challenge))
		}
	})
}

// Verifying renders the panel shown while the registration call is made
func Verifying() templ.Component {
	return markup.Func(func(ctx context.Context, m *markup.Writer) {
		m.Raw(`<section id="challenge" data-kind="verified"><p class="challenge-status">Verified. Creating your account…</p></section>`)
	})
}

func tokenChallenge(m *markup.Writer, view model.ChallengeView) {
	m.Raw(`<form method="post" action="/register/challenge" id="token-form">`)
	m.Raw(`<div class="captcha-widget"`)
	m.Attr("data-sitekey", view.SiteKey)
	m.Raw(`></div><label for="token">Verification token</label>`)
	m.Raw(`<input id="token" name="token" type="text" autocomplete="off">`)
	m.Raw(`<button type="submit">Verify</button></form>`)
}

func delayChallenge(m *markup.Writer, view model.ChallengeView) {
	if !view.Acknowledged {
		m.Raw(`<form method="post" action="/register/challenge">`)
		m.Raw(`<input type="hidden" name="acknowledge" value="true">`)
		m.Raw(`<button type="submit" id="acknowledge">I'm not a robot</button></form>`)
		return
	}
	m.Raw(`<p class="challenge-status" id="verifying"`)
	if view.ReadyAt != nil {
		m.Attr("data-ready-at", view.ReadyAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
	}
	m.Raw(`>Verifying…</p>`)
}

func cardGrid(m *markup.Writer, cards []model.ChallengeCard, faceUp bool) {
	m.Raw(`<div class="challenge-cards">`)
	for _, card := range cards {
		m.Raw(`<form method="post" action="/register/challenge" class="challenge-card-form">`)
		m.Raw(`<input type="hidden" name="select"`)
		m.Attr("value", strconv.Itoa(card.Index))
		m.Raw(`><button type="submit" class="challenge-card"`)
		m.Attr("data-index", strconv.Itoa(card.Index))
		m.BoolAttr("disabled", card.Solved)
		if card.Solved {
			m.Attr("data-solved", "true")
		}
		if card.Revealed {
			m.Attr("data-revealed", "true")
		}
		m.Raw(">")
		switch {
		case faceUp || card.Symbol != "":
			m.Text(card.Symbol)
		default:
			m.Text("?")
		}
		m.Raw("</button></form>")
	}
	m.Raw("</div>")
}
