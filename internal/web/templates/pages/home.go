package pages

import (
	"context"

	"github.com/a-h/templ"

	"github.com/mcoot/signupgate/internal/web/templates/layout"
	"github.com/mcoot/signupgate/internal/web/templates/markup"
)

// HomeData holds data for the home page
type HomeData struct {
	layout.PageData
}

// Home renders the landing page
func Home(data HomeData) templ.Component {
	return layout.Base(data.PageData, markup.Func(func(ctx context.Context, m *markup.Writer) {
		m.Raw(`<h1>Welcome</h1>`)
		if data.User != nil {
			m.Raw(`<p id="signed-in">Signed in as <strong>`)
			m.Text(data.User.Username)
			m.Raw(`</strong>.</p>`)
			return
		}
		m.Raw(`<p><a href="/register" id="signup-link">Create an account</a> or <a href="/login">log in</a>.</p>`)
	}))
}

// ErrorData holds data for the error page
type ErrorData struct {
	layout.PageData
	Status  int
	Message string
}

// Error renders a full-page error
func Error(data ErrorData) templ.Component {
	return layout.Base(data.PageData, markup.Func(func(ctx context.Context, m *markup.Writer) {
		m.Raw(`<h1 id="error-title">`)
		m.Text(data.Title)
		m.Raw(`</h1><p id="error-message">`)
		m.Text(data.Message)
		m.Raw(`</p><p><a href="/">Return to home</a></p>`)
	}))
}
