package sse

import (
	"bytes"
	"context"

	"github.com/a-h/templ"

	"github.com/mcoot/signupgate/internal/model"
	"github.com/mcoot/signupgate/internal/web/templates/components"
)

// Element ids on the register page that fragments replace
const (
	ChallengeSlotID = "challenge-slot"
	FormErrorID     = "form-error"
)

// Renderer converts gate snapshots to HTML fragments for SSE
type Renderer struct{}

// NewRenderer creates a new Renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderChallengePanel renders the challenge panel component as HTML
func (r *Renderer) RenderChallengePanel(ctx context.Context, snap model.GateSnapshot) (string, error) {
	var buf bytes.Buffer
	err := components.ChallengePanel(snap).Render(ctx, &buf)
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderSignup renders every part of the register page that follows the gate
// state, each wrapped for an out-of-band swap
func (r *Renderer) RenderSignup(ctx context.Context, snap model.GateSnapshot) (string, error) {
	panel, err := r.RenderChallengePanel(ctx, snap)
	if err != nil {
		return "", err
	}
	return WrapForOOBSwap(FormErrorID, templ.EscapeString(snap.Error)) +
		WrapForOOBSwap(ChallengeSlotID, panel), nil
}

// WrapForOOBSwap wraps HTML in a div whose contents replace those of the
// element with the same id
func WrapForOOBSwap(id, html string) string {
	return `<div id="` + id + `" hx-swap-oob="innerHTML">` + html + `</div>`
}
