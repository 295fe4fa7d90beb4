// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/photos"
)

var (
	ErrNotVoter    = errors.New("this account cannot vote")
	ErrNoCandidate = errors.New("no candidate selected")
)

// Service runs the per-user NotVoted -> Voted transition and the reports
// built on the vote ledger.
type Service struct {
	users  *db.UserStore
	votes  *db.VoteStore
	photos *photos.Store
}

func NewService(users *db.UserStore, votes *db.VoteStore, photoStore *photos.Store) *Service {
	return &Service{users: users, votes: votes, photos: photoStore}
}

// Status reads the user's voting state from storage rather than trusting the
// copy loaded with the session.
func (s *Service) Status(ctx context.Context, user *models.User) (models.VoteState, error) {
	fresh, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		return models.StateNotVoted, err
	}
	if fresh.HasVoted {
		return models.StateVoted, nil
	}
	return models.StateNotVoted, nil
}

// Cast records the user's one vote.
//
// The photo is staged before the transaction and committed after it, so the
// database never references a photo that was not written; if the final
// rename fails the vote still stands and photos.Store.Recover finishes the
// job at next start.
func (s *Service) Cast(ctx context.Context, user *models.User, candidate, photoField string) (*models.Vote, error) {
	if !user.Role.Can(models.CapVote) {
		return nil, ErrNotVoter
	}

	state, err := s.Status(ctx, user)
	if err != nil {
		return nil, err
	}
	if state == models.StateVoted {
		return nil, db.ErrAlreadyVoted
	}

	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return nil, ErrNoCandidate
	}

	photo, err := photos.DecodeDataURI(photoField)
	if err != nil {
		return nil, err
	}

	staged, err := s.photos.Stage(user.ID, photo)
	if err != nil {
		return nil, err
	}

	vote, err := s.votes.Record(ctx, user.ID, candidate, staged.RelPath())
	if err != nil {
		if derr := staged.Discard(); derr != nil {
			slog.Error("failed to discard staged photo", "error", derr, "user_id", user.ID)
		}
		return nil, err
	}

	if err := staged.Commit(); err != nil {
		slog.Error("vote committed but photo rename failed; recovery will retry",
			"error", err, "user_id", user.ID, "vote_id", vote.ID)
	}

	slog.Info("vote recorded", "user_id", user.ID, "vote_id", vote.ID, "candidate", candidate)

	return vote, nil
}

// Tally maps candidate name to vote count.
func (s *Service) Tally(ctx context.Context) (map[string]int, error) {
	return s.votes.Tally(ctx)
}

// SortedTally orders the tally by count (descending), then name.
func (s *Service) SortedTally(ctx context.Context) ([]models.TallyEntry, error) {
	count, err := s.votes.Tally(ctx)
	if err != nil {
		return nil, err
	}
	return SortTally(count), nil
}

// Summary is the sorted tally and its total. The total is checked against
// the number of users marked as voted; a difference means vote rows outlived
// their users and is logged, not fixed.
func (s *Service) Summary(ctx context.Context) ([]models.TallyEntry, int, error) {
	entries, err := s.SortedTally(ctx)
	if err != nil {
		return nil, 0, err
	}

	total := 0
	for _, entry := range entries {
		total += entry.Count
	}

	voted, err := s.users.CountVoted(ctx)
	if err != nil {
		return nil, 0, err
	}
	if voted != total {
		slog.Warn("tally does not match voted users", "tally_total", total, "voted_users", voted)
	}

	return entries, total, nil
}

// Ballot returns the vote the user cast, or db.ErrNotFound.
func (s *Service) Ballot(ctx context.Context, user *models.User) (*models.Vote, error) {
	return s.votes.GetByUser(ctx, user.ID)
}

// SortTally turns a tally map into a stable, display-ordered slice.
func SortTally(count map[string]int) []models.TallyEntry {
	entries := make([]models.TallyEntry, 0, len(count))
	for name, n := range count {
		entries = append(entries, models.TallyEntry{Candidate: name, Count: n})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Candidate < entries[j].Candidate
	})
	return entries
}

// VoterList returns one row per vote; see db.VoteStore.Voters.
func (s *Service) VoterList(ctx context.Context) ([]models.VoterRow, error) {
	return s.votes.Voters(ctx)
}

// RecoverPhotos resolves pending photo files against the ledger.
func (s *Service) RecoverPhotos(ctx context.Context) (restored, removed int, err error) {
	return s.photos.Recover(ctx, s.votes.HasVoted)
}
