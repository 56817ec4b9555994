package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/mcoot/signupgate/internal/services/signup"
)

const (
	gateContextKey contextKey = "gate"

	// SignupCookieName holds the signup session id
	SignupCookieName = "signup_session"
)

// GetGate retrieves the signup gate from the request context
// Returns nil if the request has no signup session
func GetGate(ctx context.Context) *signup.Gate {
	gate, _ := ctx.Value(gateContextKey).(*signup.Gate)
	return gate
}

// SignupSession returns middleware that puts the browser's signup gate in
// the context. With create set, a missing or expired session is replaced by
// a new one.
func SignupSession(manager *signup.Manager, create bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var gate *signup.Gate
			if cookie, err := r.Cookie(SignupCookieName); err == nil {
				gate, _ = manager.Get(cookie.Value)
			}
			if gate == nil && create {
				gate = manager.Create()
				SetSignupCookie(w, gate.ID())
			}

			ctx := context.WithValue(r.Context(), gateContextKey, gate)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SetSignupCookie stores the signup session id in the browser
func SetSignupCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SignupCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSignupCookie removes the signup session id from the browser
func ClearSignupCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SignupCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
