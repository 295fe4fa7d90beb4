// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/models"
)

const maxUsername = 150

// dummyHash is compared against when the username is unknown so a failed
// login costs the same bcrypt work either way.
var dummyHash, _ = HashPassword("quickly-vote-dummy-password")

// Login is the result of a successful Authenticate.
type Login struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// Gate registers and authenticates users and resolves session tokens.
type Gate struct {
	users    *db.UserStore
	sessions *db.SessionStore
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewGate(users *db.UserStore, sessions *db.SessionStore, secret string, ttl time.Duration) *Gate {
	return &Gate{
		users:    users,
		sessions: sessions,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Register creates a voter account.
func (g *Gate) Register(ctx context.Context, username, password string) (*models.User, error) {
	return g.create(ctx, username, password, models.RoleVoter)
}

func (g *Gate) create(ctx context.Context, username, password string, role models.Role) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrEmptyUsername
	}
	if utf8.RuneCountInString(username) > maxUsername {
		return nil, ErrUsernameTooLong
	}
	if password == "" {
		return nil, ErrEmptyPassword
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	return g.users.Create(ctx, username, hash, role)
}

// Authenticate checks credentials and opens a new session.
func (g *Gate) Authenticate(ctx context.Context, username, password string) (*Login, error) {
	user, err := g.users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, db.ErrUserNotFound) {
		CheckPassword(dummyHash, password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	now := g.now()
	expiresAt := now.Add(g.ttl)
	sessionID := NewSessionID()

	if _, err := g.sessions.Create(ctx, sessionID, user.ID, expiresAt); err != nil {
		return nil, err
	}

	token, err := IssueToken(g.secret, sessionID, user.ID, now, expiresAt)
	if err != nil {
		return nil, err
	}

	return &Login{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Resolve returns the user behind a session token. Any problem with the
// token, its session row, or its user yields ErrUnauthenticated; storage
// failures are returned as-is.
func (g *Gate) Resolve(ctx context.Context, token string) (*models.User, error) {
	claims, err := ParseToken(g.secret, token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrUnauthenticated
	}

	session, err := g.sessions.Get(ctx, claims.ID)
	if errors.Is(err, db.ErrSessionNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}

	if session.UserID != userID || g.now().After(session.ExpiresAt) {
		return nil, ErrUnauthenticated
	}

	user, err := g.users.GetByID(ctx, userID)
	if errors.Is(err, db.ErrUserNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// RequireAdmin fails with ErrUnauthorized unless user may manage the election.
func (g *Gate) RequireAdmin(user *models.User) error {
	if user == nil || !user.Role.Can(models.CapManage) {
		return ErrUnauthorized
	}
	return nil
}

// Logout deletes the session behind token. Unknown or malformed tokens are
// ignored, so calling it twice is harmless.
func (g *Gate) Logout(ctx context.Context, token string) error {
	claims, err := ParseToken(g.secret, token)
	if err != nil {
		return nil
	}
	return g.sessions.Delete(ctx, claims.ID)
}

// SeedAdmin creates the admin account if no user with that name exists.
// It reports whether an account was created.
//
// The default credentials are a bootstrap convenience for first run, not a
// security control; callers should warn while they still work.
func (g *Gate) SeedAdmin(ctx context.Context, username, password string) (bool, error) {
	_, err := g.users.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, db.ErrUserNotFound) {
		return false, err
	}

	_, err = g.create(ctx, username, password, models.RoleAdmin)
	if errors.Is(err, db.ErrDuplicateUsername) {
		// Another process seeded it first
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to seed admin: %w", err)
	}
	return true, nil
}

// PasswordWorks reports whether username/password would authenticate,
// without opening a session. Used to detect default credentials at startup.
func (g *Gate) PasswordWorks(ctx context.Context, username, password string) (bool, error) {
	user, err := g.users.GetByUsername(ctx, username)
	if errors.Is(err, db.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return CheckPassword(user.PasswordHash, password), nil
}

// PurgeExpired deletes sessions past their expiry.
func (g *Gate) PurgeExpired(ctx context.Context) (int64, error) {
	return g.sessions.DeleteExpired(ctx, g.now())
}
