// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/photos"
	"github.com/danielhkuo/quickly-vote/views"
	"github.com/danielhkuo/quickly-vote/voting"
)

type VotingHandler struct {
	voting     *voting.Service
	candidates *db.CandidateStore
	views      *views.Renderer
}

func NewVotingHandler(svc *voting.Service, candidates *db.CandidateStore, renderer *views.Renderer) *VotingHandler {
	return &VotingHandler{voting: svc, candidates: candidates, views: renderer}
}

// VotePage handles GET /vote
func (h *VotingHandler) VotePage(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	state, err := h.voting.Status(r.Context(), user)
	if err != nil {
		slog.Error("failed to read vote status", "error", err, "user_id", user.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if state == models.StateVoted {
		h.renderDone(w, r, user)
		return
	}

	h.renderBallot(w, r, user)
}

// renderDone shows the thank-you page with the voter's own choice.
func (h *VotingHandler) renderDone(w http.ResponseWriter, r *http.Request, user *models.User) {
	vote, err := h.voting.Ballot(r.Context(), user)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		slog.Error("failed to load ballot", "error", err, "user_id", user.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.views.Render(w, r, "vote_done.html", &views.Page{Title: "Vote", CurrentUser: user, Vote: vote})
}

func (h *VotingHandler) renderBallot(w http.ResponseWriter, r *http.Request, user *models.User) {
	candidates, err := h.candidates.List(r.Context())
	if err != nil {
		slog.Error("failed to list candidates", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.views.Render(w, r, "vote.html", &views.Page{
		Title:       "Vote",
		CurrentUser: user,
		Candidates:  candidates,
	})
}

// SubmitVote handles POST /vote
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	if err := r.ParseForm(); err != nil {
		formError(w, err)
		return
	}

	_, err := h.voting.Cast(r.Context(), user, r.PostFormValue("candidate"), r.PostFormValue("photo"))
	switch {
	case err == nil:
		views.SetFlash(w, "Vote submitted successfully!")
		http.Redirect(w, r, "/vote", http.StatusFound)
	case errors.Is(err, db.ErrAlreadyVoted):
		h.renderDone(w, r, user)
	case errors.Is(err, photos.ErrMissingPhoto):
		views.SetFlash(w, "Face photo required for voting!")
		http.Redirect(w, r, "/vote", http.StatusFound)
	case errors.Is(err, photos.ErrDecode):
		slog.Warn("rejected vote photo", "error", err, "user_id", user.ID)
		views.SetFlash(w, "Could not read the photo. Please retake it and try again.")
		http.Redirect(w, r, "/vote", http.StatusFound)
	case errors.Is(err, voting.ErrNoCandidate):
		views.SetFlash(w, "Please select a candidate.")
		http.Redirect(w, r, "/vote", http.StatusFound)
	case errors.Is(err, voting.ErrNotVoter):
		http.Redirect(w, r, user.Role.Home(), http.StatusFound)
	default:
		slog.Error("failed to cast vote", "error", err, "user_id", user.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
