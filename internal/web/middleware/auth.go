package middleware

import (
	"context"
	"net/http"

	"github.com/mcoot/signupgate/internal/model"
	"github.com/mcoot/signupgate/internal/services/auth"
)

type contextKey string

const (
	userContextKey contextKey = "user"

	// SessionCookieName holds the login session token
	SessionCookieName = "session"
)

// GetUser retrieves the logged-in user from the request context
// Returns nil if nobody is logged in
func GetUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(userContextKey).(*model.User)
	return user
}

// Auth returns middleware that requires a login
// Redirects to the login page if not authenticated
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := getUserFromSession(r, authService)
			if user == nil {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth returns middleware that attempts authentication but doesn't require it
// Sets the user in context if authenticated, nil otherwise
func OptionalAuth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := getUserFromSession(r, authService)
			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func getUserFromSession(r *http.Request, authService *auth.Service) *model.User {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil
	}

	user, err := authService.GetUser(cookie.Value)
	if err != nil {
		return nil
	}

	return user
}
