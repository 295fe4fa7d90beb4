// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/views"
)

type AuthHandler struct {
	gate  *auth.Gate
	views *views.Renderer
	cfg   cliparse.Config
}

func NewAuthHandler(gate *auth.Gate, renderer *views.Renderer, cfg cliparse.Config) *AuthHandler {
	return &AuthHandler{gate: gate, views: renderer, cfg: cfg}
}

// Home handles GET /
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusFound)
}

// RegisterPage handles GET /register
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, r, "register.html", &views.Page{Title: "Register"})
}

// Register handles POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		formError(w, err)
		return
	}

	user, err := h.gate.Register(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	switch {
	case errors.Is(err, db.ErrDuplicateUsername):
		views.SetFlash(w, "Username already exists!")
		http.Redirect(w, r, "/register", http.StatusFound)
		return
	case errors.Is(err, auth.ErrEmptyUsername),
		errors.Is(err, auth.ErrUsernameTooLong),
		errors.Is(err, auth.ErrEmptyPassword),
		errors.Is(err, auth.ErrPasswordTooLong):
		views.SetFlash(w, capitalize(err.Error()))
		http.Redirect(w, r, "/register", http.StatusFound)
		return
	case err != nil:
		slog.Error("failed to register user", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)

	views.SetFlash(w, "Registration successful! Please log in.")
	http.Redirect(w, r, "/login", http.StatusFound)
}

// LoginPage handles GET /login
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, r, "login.html", &views.Page{Title: "Login"})
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		formError(w, err)
		return
	}

	login, err := h.gate.Authenticate(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if errors.Is(err, auth.ErrInvalidCredentials) {
		slog.Warn("failed login", "username", r.PostFormValue("username"), "ip", middleware.GetClientIP(r))
		views.SetFlash(w, "Invalid username or password")
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	if err != nil {
		slog.Error("failed to authenticate", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	middleware.SetSessionCookie(w, login.Token, login.ExpiresAt, h.cfg.SecureCookies)

	slog.Info("user logged in",
		"user_id", login.User.ID,
		"role", login.User.Role.String(),
		"ip", middleware.GetClientIP(r),
	)

	http.Redirect(w, r, login.User.Role.Home(), http.StatusFound)
}

// Logout handles GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Logout(r.Context(), middleware.SessionToken(r)); err != nil {
		// The cookie is cleared regardless; a leftover row expires on its own
		slog.Error("failed to delete session", "error", err)
	}
	middleware.ClearSessionCookie(w, h.cfg.SecureCookies)
	http.Redirect(w, r, "/login", http.StatusFound)
}
