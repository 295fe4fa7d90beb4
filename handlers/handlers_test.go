// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"path/filepath"
	"testing"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/photos"
	"github.com/danielhkuo/quickly-vote/testutil"
	"github.com/danielhkuo/quickly-vote/views"
	"github.com/danielhkuo/quickly-vote/voting"
)

// fixture bundles the handlers over one fresh database.
type fixture struct {
	db         *db.DB
	gate       *auth.Gate
	photos     *photos.Store
	voting     *voting.Service
	auth       *AuthHandler
	vote       *VotingHandler
	admin      *AdminHandler
	candidates *CandidateHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	d := testutil.SetupTestDB(t)
	store, err := photos.NewStore(filepath.Join(t.TempDir(), "photos"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	users := db.NewUserStore(d)
	candidates := db.NewCandidateStore(d)
	svc := voting.NewService(users, db.NewVoteStore(d), store)
	gate := testutil.NewTestGate(d)
	renderer := views.New()

	return &fixture{
		db:         d,
		gate:       gate,
		photos:     store,
		voting:     svc,
		auth:       NewAuthHandler(gate, renderer, testutil.GetTestConfig()),
		vote:       NewVotingHandler(svc, candidates, renderer),
		admin:      NewAdminHandler(svc, users, store, renderer),
		candidates: NewCandidateHandler(candidates, renderer),
	}
}

// as attaches user to the request the way RequireLogin does
func as(r *http.Request, user *models.User) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), user))
}
