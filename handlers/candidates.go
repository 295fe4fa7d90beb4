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
	"github.com/danielhkuo/quickly-vote/views"
)

// multipartMemory is how much of a multipart form is kept in memory.
// Candidate forms are a single short field.
const multipartMemory = 1 << 20

type CandidateHandler struct {
	candidates *db.CandidateStore
	views      *views.Renderer
}

func NewCandidateHandler(candidates *db.CandidateStore, renderer *views.Renderer) *CandidateHandler {
	return &CandidateHandler{candidates: candidates, views: renderer}
}

// Page handles GET /candidates
func (h *CandidateHandler) Page(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.candidates.List(r.Context())
	if err != nil {
		slog.Error("failed to list candidates", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.views.Render(w, r, "candidates.html", &views.Page{
		Title:       "Candidates",
		CurrentUser: middleware.CurrentUser(r.Context()),
		Candidates:  candidates,
	})
}

// Create handles POST /candidates
func (h *CandidateHandler) Create(w http.ResponseWriter, r *http.Request) {
	name, ok := readName(w, r)
	if !ok {
		return
	}

	candidate, err := h.candidates.Create(r.Context(), name)
	switch {
	case errors.Is(err, db.ErrEmptyName):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Name required")
		return
	case errors.Is(err, db.ErrDuplicateName):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Candidate already exists")
		return
	case errors.Is(err, db.ErrNameTooLong):
		middleware.ErrorResponse(w, http.StatusBadRequest, capitalize(err.Error()))
		return
	case err != nil:
		slog.Error("failed to create candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("candidate created", "candidate_id", candidate.ID, "name", candidate.Name)

	middleware.JSONResponse(w, http.StatusOK, models.CreateCandidateResponse{
		ID:   candidate.ID,
		Name: candidate.Name,
	})
}

// Edit handles POST /edit_candidate/{id}
func (h *CandidateHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid candidate id")
		return
	}

	name, ok := readName(w, r)
	if !ok {
		return
	}

	candidate, err := h.candidates.Rename(r.Context(), id, name)
	switch {
	case errors.Is(err, db.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	case errors.Is(err, db.ErrEmptyName):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Empty name")
		return
	case errors.Is(err, db.ErrDuplicateName):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Candidate already exists")
		return
	case errors.Is(err, db.ErrNameTooLong):
		middleware.ErrorResponse(w, http.StatusBadRequest, capitalize(err.Error()))
		return
	case err != nil:
		slog.Error("failed to rename candidate", "error", err, "candidate_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("candidate renamed", "candidate_id", candidate.ID, "name", candidate.Name)

	middleware.JSONResponse(w, http.StatusOK, models.EditCandidateResponse{
		Success: true,
		ID:      candidate.ID,
		Name:    candidate.Name,
	})
}

// Delete handles DELETE /delete_candidate/{id}
// Votes already cast for the candidate are kept.
func (h *CandidateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid candidate id")
		return
	}

	err := h.candidates.Delete(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete candidate", "error", err, "candidate_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("candidate deleted", "candidate_id", id)

	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// readName reads the "name" field from a JSON, multipart or urlencoded body.
// On failure it has already written the response.
func readName(w http.ResponseWriter, r *http.Request) (string, bool) {
	if isJSON(r) {
		var req models.CandidateRequest
		if err := middleware.ParseJSONBody(r, &req); err != nil {
			if middleware.IsTooLarge(err) {
				middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, "Request too large")
				return "", false
			}
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
			return "", false
		}
		return req.Name, true
	}

	err := r.ParseMultipartForm(multipartMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		if middleware.IsTooLarge(err) {
			middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, "Request too large")
			return "", false
		}
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid form")
		return "", false
	}
	return r.FormValue("name"), true
}
