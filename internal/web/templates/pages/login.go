package pages

import (
	"context"

	"github.com/a-h/templ"

	"github.com/mcoot/signupgate/internal/web/templates/layout"
	"github.com/mcoot/signupgate/internal/web/templates/markup"
)

// LoginData holds data for the login page
type LoginData struct {
	layout.PageData
	Identifier string
	Error      string
}

// Login renders the login form
func Login(data LoginData) templ.Component {
	return layout.Base(data.PageData, markup.Func(func(ctx context.Context, m *markup.Writer) {
		m.Raw(`<h1>Log in</h1><form id="login-form" method="post" action="/login">`)
		m.Raw(`<label for="identifier">Username or email</label><input id="identifier" name="identifier" type="text"`)
		m.Attr("value", data.Identifier)
		m.Raw(`><label for="password">Password</label><input id="password" name="password" type="password">`)
		if data.Error != "" {
			m.Raw(`<div id="login-error" class="form-error" role="alert">`)
			m.Text(data.Error)
			m.Raw(`</div>`)
		}
		m.Raw(`<button type="submit">Log in</button></form>`)
		m.Raw(`<p>No account yet? <a href="/register">Sign up</a></p>`)
	}))
}
