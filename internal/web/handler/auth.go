package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/signupgate/internal/services/auth"
	"github.com/mcoot/signupgate/internal/web/middleware"
	"github.com/mcoot/signupgate/internal/web/outbox"
	"github.com/mcoot/signupgate/internal/web/templates/layout"
	"github.com/mcoot/signupgate/internal/web/templates/pages"
)

// AuthHandler handles login and logout
type AuthHandler struct {
	authService *auth.Service
	outbox      *outbox.Outbox
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *auth.Service, box *outbox.Outbox) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		outbox:      box,
	}
}

// LoginPage renders the login page. It is where a successful signup lands,
// so whatever the signup session left in the outbox is shown here.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUser(r.Context()) != nil {
		// Already logged in, redirect to home
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	flashes := middleware.GetFlashes(r.Context())
	if gate := middleware.GetGate(r.Context()); gate != nil {
		notes, _ := h.outbox.Drain(gate.ID())
		flashes = append(flashes, layout.FlashesFromNotifications(notes)...)
	}

	data := pages.LoginData{
		PageData: layout.PageData{
			Title:   "Log in",
			Flashes: flashes,
		},
	}
	render(w, r, http.StatusOK, pages.Login(data))
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLoginError(w, r, http.StatusBadRequest, "Invalid form data", "")
		return
	}

	identifier := strings.TrimSpace(r.FormValue("identifier"))
	password := r.FormValue("password")

	if identifier == "" || password == "" {
		h.renderLoginError(w, r, http.StatusOK, "Username and password are required", identifier)
		return
	}

	session, err := h.authService.Login(r.Context(), identifier, password)
	if err != nil {
		h.renderLoginError(w, r, http.StatusOK, "Invalid username or password", identifier)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	middleware.SetFlash(w, "success", "Welcome back, "+session.User.Username+"!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout ends the login session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		h.authService.InvalidateSession(cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	middleware.SetFlash(w, "info", "You have been logged out")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) renderLoginError(w http.ResponseWriter, r *http.Request, status int, errorMsg, identifier string) {
	data := pages.LoginData{
		PageData:   layout.PageData{Title: "Log in"},
		Identifier: identifier,
		Error:      errorMsg,
	}
	render(w, r, status, pages.Login(data))
}
