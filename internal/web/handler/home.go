package handler

import (
	"net/http"

	"github.com/mcoot/signupgate/internal/web/middleware"
	"github.com/mcoot/signupgate/internal/web/templates/layout"
	"github.com/mcoot/signupgate/internal/web/templates/pages"
)

// HomeHandler handles the home page
type HomeHandler struct{}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler() *HomeHandler {
	return &HomeHandler{}
}

// Home renders the home page
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := pages.HomeData{
		PageData: layout.PageData{
			Title:   "Home",
			User:    middleware.GetUser(r.Context()),
			Flashes: middleware.GetFlashes(r.Context()),
		},
	}
	render(w, r, http.StatusOK, pages.Home(data))
}

// Account renders the signed-in user's details
func (h *HomeHandler) Account(w http.ResponseWriter, r *http.Request) {
	data := pages.AccountData{
		PageData: layout.PageData{
			Title:   "Account",
			User:    middleware.GetUser(r.Context()),
			Flashes: middleware.GetFlashes(r.Context()),
		},
	}
	render(w, r, http.StatusOK, pages.Account(data))
}

// NotFound renders the 404 page
func (h *HomeHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	data := pages.ErrorData{
		PageData: layout.PageData{Title: "Not Found"},
		Status:   http.StatusNotFound,
		Message:  "The page you are looking for does not exist.",
	}
	render(w, r, http.StatusNotFound, pages.Error(data))
}
