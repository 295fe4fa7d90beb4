// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/views"
)

// SessionCookieName holds the signed session token.
const SessionCookieName = "session"

// LoginRequiredMessage is flashed when an anonymous visitor hits a
// protected page.
const LoginRequiredMessage = "Please log in to access this page."

// NotAuthorizedMessage is flashed when a voter opens an admin page.
const NotAuthorizedMessage = "You are not authorized to access this page!"

type contextKey string

const userKey contextKey = "user"

// SetSessionCookie stores token in an HttpOnly cookie that expires with the
// session.
func SetSessionCookie(w http.ResponseWriter, token string, expires time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie in the browser.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionToken returns the session token sent with r, or "".
func SessionToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// CurrentUser returns the user stored by RequireLogin, or nil.
func CurrentUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

// RequireLogin resolves the session cookie and puts the user in the request
// context. Anonymous or stale sessions are sent to /login.
func RequireLogin(gate *auth.Gate, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := SessionToken(r)
		if token == "" {
			redirectToLogin(w, r)
			return
		}

		user, err := gate.Resolve(r.Context(), token)
		if errors.Is(err, auth.ErrUnauthenticated) {
			redirectToLogin(w, r)
			return
		}
		if err != nil {
			slog.Error("failed to resolve session", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		next(w, r.WithContext(WithUser(r.Context(), user)))
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	views.SetFlash(w, LoginRequiredMessage)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// DenyFunc answers a request whose user lacks a capability.
type DenyFunc func(w http.ResponseWriter, r *http.Request)

// RedirectTo flashes message, if any, and redirects to path.
func RedirectTo(path, message string) DenyFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if message != "" {
			views.SetFlash(w, message)
		}
		http.Redirect(w, r, path, http.StatusFound)
	}
}

// JSONForbidden answers 403 {"error":"Unauthorized"}.
func JSONForbidden(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(w, http.StatusForbidden, "Unauthorized")
}

// RequireCapability lets the request through only if the logged-in user's
// role grants capability. It must run inside RequireLogin.
func RequireCapability(capability models.Capability, deny DenyFunc, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r.Context())
		if user == nil || !user.Role.Can(capability) {
			deny(w, r)
			return
		}
		next(w, r)
	}
}
