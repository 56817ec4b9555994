package pages

import (
	"context"

	"github.com/a-h/templ"

	"github.com/mcoot/signupgate/internal/web/templates/layout"
	"github.com/mcoot/signupgate/internal/web/templates/markup"
)

// AccountData holds data for the account page
type AccountData struct {
	layout.PageData
}

// Account shows the signed-in user's details
func Account(data AccountData) templ.Component {
	return layout.Base(data.PageData, markup.Func(func(ctx context.Context, m *markup.Writer) {
		u := data.User
		m.Raw(`<h1>Your account</h1><dl id="account">`)
		m.Raw(`<dt>Username</dt><dd id="account-username">`)
		m.Text(u.Username)
		m.Raw(`</dd><dt>Email</dt><dd id="account-email">`)
		m.Text(u.Email)
		m.Raw(`</dd><dt>Member since</dt><dd id="account-created">`)
		m.Text(u.CreatedAt.Format("2 January 2006"))
		m.Raw(`</dd></dl>`)
	}))
}
