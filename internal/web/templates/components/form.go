package components

import (
	"context"

	"github.com/a-h/templ"

	"github.com/mcoot/signupgate/internal/model"
	"github.com/mcoot/signupgate/internal/web/templates/markup"
)

// SignupForm renders the registration fields and the form-level error.
// The password is never echoed back.
func SignupForm(snap model.GateSnapshot) templ.Component {
	return markup.Func(func(ctx context.Context, m *markup.Writer) {
		locked := snap.Submitting || snap.State == model.StateVerified

		m.Raw(`<form id="signup-form" method="post" action="/register">`)
		field(m, model.FieldUsername, "Username", "text", snap.Username, locked)
		field(m, model.FieldEmail, "Email", "email", snap.Email, locked)
		field(m, model.FieldPassword, "Password", "password", "", locked)

		m.Raw(`<div id="form-error" class="form-error" role="alert">`)
		m.Text(snap.Error)
		m.Raw("</div>")

		m.Raw(`<button type="submit"`)
		m.BoolAttr("disabled", locked)
		m.Raw(">")
		if snap.Submitting {
			m.Text("Creating account…")
		} else {
			m.Text("Sign up")
		}
		m.Raw("</button></form>")
	})
}

func field(m *markup.Writer, name, label, inputType, value string, disabled bool) {
	m.Raw(`<label`)
	m.Attr("for", name)
	m.Raw(">")
	m.Text(label)
	m.Raw(`</label><input`)
	m.Attr("id", name)
	m.Attr("name", name)
	m.Attr("type", inputType)
	m.Attr("value", value)
	m.Attr("data-field", name)
	m.BoolAttr("disabled", disabled)
	m.Raw(">")
}
