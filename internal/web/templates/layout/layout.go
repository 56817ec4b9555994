package layout

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/mcoot/signupgate/internal/model"
	"github.com/mcoot/signupgate/internal/web/templates/markup"
)

// FlashMessage is a one-off message shown at the top of a page
type FlashMessage struct {
	Type    string // success, error or info
	Message string
}

// PageData is shared by every page
type PageData struct {
	Title   string
	User    *model.User
	Flashes []FlashMessage
	// RefreshSeconds adds a meta refresh so pages waiting on the server update
	// without script
	RefreshSeconds int
}

// FlashesFromNotifications converts gate notifications to flash messages
func FlashesFromNotifications(notes []model.Notification) []FlashMessage {
	flashes := make([]FlashMessage, 0, len(notes))
	for _, n := range notes {
		flashes = append(flashes, FlashMessage{Type: string(n.Level), Message: n.Message})
	}
	return flashes
}

// Base renders the page shell around body
func Base(data PageData, body templ.Component) templ.Component {
	return markup.Func(func(ctx context.Context, m *markup.Writer) {
		m.Raw("<!DOCTYPE html>\n<html lang=\"en\"><head><meta charset=\"utf-8\">")
		m.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		if data.RefreshSeconds > 0 {
			m.Raw(`<meta http-equiv="refresh"`)
			m.Attr("content", strconv.Itoa(data.RefreshSeconds))
			m.Raw(">")
		}
		m.Raw("<title>")
		m.Text(data.Title + " - Sign up")
		m.Raw("</title></head><body>")

		nav(m, data.User)
		flashes(m, data.Flashes)

		m.Raw(`<main id="content">`)
		m.Component(ctx, body)
		m.Raw("</main></body></html>")
	})
}

func nav(m *markup.Writer, user *model.User) {
	m.Raw(`<nav><a href="/">Home</a>`)
	if user != nil {
		m.Raw(`<a href="/account" class="nav-user">`)
		m.Text(user.Username)
		m.Raw(`</a><form method="post" action="/logout" class="inline"><button type="submit">Log out</button></form>`)
	} else {
		m.Raw(`<a href="/register">Sign up</a><a href="/login">Log in</a>`)
	}
	m.Raw("</nav>")
}

func flashes(m *markup.Writer, list []FlashMessage) {
	m.Raw(`<div id="flashes">`)
	for _, f := range list {
		m.Raw(`<div`)
		m.Attr("class", "flash flash-"+f.Type)
		m.Raw(` role="status">`)
		m.Text(f.Message)
		m.Raw("</div>")
	}
	m.Raw("</div>")
}
