// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/photos"
	"github.com/danielhkuo/quickly-vote/views"
	"github.com/danielhkuo/quickly-vote/voting"
)

type AdminHandler struct {
	voting *voting.Service
	users  *db.UserStore
	photos *photos.Store
	views  *views.Renderer
}

func NewAdminHandler(svc *voting.Service, users *db.UserStore, photoStore *photos.Store, renderer *views.Renderer) *AdminHandler {
	return &AdminHandler{voting: svc, users: users, photos: photoStore, views: renderer}
}

// Dashboard handles GET /admin
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	tally, total, err := h.voting.Summary(r.Context())
	if err != nil {
		slog.Error("failed to compute tally", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	voters, err := h.voting.VoterList(r.Context())
	if err != nil {
		slog.Error("failed to list voters", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.views.Render(w, r, "admin_dashboard.html", &views.Page{
		Title:       "Admin Dashboard",
		CurrentUser: middleware.CurrentUser(r.Context()),
		Tally:       tally,
		TotalVotes:  total,
		Voters:      voters,
	})
}

// Voters handles GET /voters
func (h *AdminHandler) Voters(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		slog.Error("failed to list users", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.views.Render(w, r, "voters.html", &views.Page{
		Title:       "Voters",
		CurrentUser: middleware.CurrentUser(r.Context()),
		Users:       users,
	})
}

// ResultsData handles GET /results-data
func (h *AdminHandler) ResultsData(w http.ResponseWriter, r *http.Request) {
	count, err := h.voting.Tally(r.Context())
	if err != nil {
		slog.Error("failed to compute tally", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	total := 0
	for _, n := range count {
		total += n
	}

	middleware.JSONResponse(w, http.StatusOK, models.ResultsResponse{
		Count: count,
		Total: total,
	})
}

// Photo handles GET /photos/{file}
func (h *AdminHandler) Photo(w http.ResponseWriter, r *http.Request) {
	path, ok := h.photos.Locate(r.PathValue("file"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Cache-Control", "private, no-store")
	http.ServeFile(w, r, path)
}
