// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/handlers"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/photos"
	"github.com/danielhkuo/quickly-vote/views"
	"github.com/danielhkuo/quickly-vote/voting"
)

// Services are the long-lived dependencies shared by all handlers.
type Services struct {
	Gate       *auth.Gate
	Users      *db.UserStore
	Candidates *db.CandidateStore
	Voting     *voting.Service
	Photos     *photos.Store
	Views      *views.Renderer
}

func NewServices(d *db.DB, cfg cliparse.Config, photoStore *photos.Store) *Services {
	users := db.NewUserStore(d)
	votes := db.NewVoteStore(d)

	return &Services{
		Gate:       auth.NewGate(users, db.NewSessionStore(d), cfg.SessionSecret, cfg.SessionTTL),
		Users:      users,
		Candidates: db.NewCandidateStore(d),
		Voting:     voting.NewService(users, votes, photoStore),
		Photos:     photoStore,
		Views:      views.New(),
	}
}

func NewRouter(s *Services, cfg cliparse.Config) http.Handler {
	mux := http.NewServeMux()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(s.Gate, s.Views, cfg)
	votingHandler := handlers.NewVotingHandler(s.Voting, s.Candidates, s.Views)
	adminHandler := handlers.NewAdminHandler(s.Voting, s.Users, s.Photos, s.Views)
	candidateHandler := handlers.NewCandidateHandler(s.Candidates, s.Views)

	// login wraps a handler that needs a session
	login := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.NoCache(middleware.RequireLogin(s.Gate, h)))
	}

	toVote := middleware.RedirectTo("/vote", middleware.NotAuthorizedMessage)
	adminPage := func(h http.HandlerFunc) http.HandlerFunc {
		return login(middleware.RequireCapability(models.CapManage, toVote, h))
	}
	adminJSON := func(h http.HandlerFunc) http.HandlerFunc {
		return login(middleware.RequireCapability(models.CapManage, middleware.JSONForbidden, h))
	}
	voter := func(h http.HandlerFunc) http.HandlerFunc {
		return login(middleware.RequireCapability(models.CapVote, middleware.RedirectTo("/admin", ""), h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Accounts (public)
	mux.HandleFunc("GET /{$}", middleware.WithLogging(authHandler.Home))
	mux.HandleFunc("GET /register", middleware.WithLogging(authHandler.RegisterPage))
	mux.HandleFunc("POST /register", middleware.WithLogging(authHandler.Register))
	mux.HandleFunc("GET /login", middleware.WithLogging(authHandler.LoginPage))
	mux.HandleFunc("POST /login", middleware.WithLogging(authHandler.Login))
	mux.HandleFunc("GET /logout", login(authHandler.Logout))

	// Voting (voters only)
	mux.HandleFunc("GET /vote", voter(votingHandler.VotePage))
	mux.HandleFunc("POST /vote", voter(votingHandler.SubmitVote))

	// Admin pages
	mux.HandleFunc("GET /admin", adminPage(adminHandler.Dashboard))
	mux.HandleFunc("GET /voters", adminPage(adminHandler.Voters))
	mux.HandleFunc("GET /candidates", adminPage(candidateHandler.Page))
	mux.HandleFunc("POST /candidates", adminPage(candidateHandler.Create))

	// Admin JSON and assets
	mux.HandleFunc("GET /results-data", adminJSON(adminHandler.ResultsData))
	mux.HandleFunc("GET /photos/{file}", adminJSON(adminHandler.Photo))
	mux.HandleFunc("POST /edit_candidate/{id}", adminJSON(candidateHandler.Edit))
	mux.HandleFunc("DELETE /delete_candidate/{id}", adminJSON(candidateHandler.Delete))

	return middleware.LimitBody(cfg.MaxUploadBytes, mux)
}
