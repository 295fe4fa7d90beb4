// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/quickly-vote/models"
)

// UnknownVoter is shown in the voter list when a vote's user row is missing.
const UnknownVoter = "Unknown"

// VoteStore is the append-only vote ledger.
type VoteStore struct {
	db *DB
}

func NewVoteStore(d *DB) *VoteStore {
	return &VoteStore{db: d}
}

// Record writes the user's single vote and flips has_voted in one
// transaction. The conditional UPDATE and UNIQUE(votes.user_id) together
// guarantee that concurrent calls for the same user produce at most one row;
// losers get ErrAlreadyVoted.
func (s *VoteStore) Record(ctx context.Context, userID int64, candidate, photoPath string) (*models.Vote, error) {
	vote := models.Vote{
		UserID:    userID,
		Candidate: candidate,
		PhotoPath: photoPath,
		CreatedAt: time.Now().UTC(),
	}

	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, s.db.Rebind(`
			UPDATE users SET has_voted = TRUE WHERE id = ? AND has_voted = FALSE
		`), userID)
		if err != nil {
			return fmt.Errorf("failed to mark user as voted: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return s.whyNotUpdated(ctx, tx, userID)
		}

		err = tx.QueryRowContext(ctx, s.db.Rebind(`
			INSERT INTO votes (user_id, candidate, photo_path, created_at)
			VALUES (?, ?, ?, ?)
			RETURNING id
		`), userID, candidate, photoPath, vote.CreatedAt).Scan(&vote.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyVoted
			}
			return fmt.Errorf("failed to insert vote: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &vote, nil
}

// whyNotUpdated distinguishes a missing user from one who already voted.
func (s *VoteStore) whyNotUpdated(ctx context.Context, tx *sql.Tx, userID int64) error {
	var exists bool
	err := tx.QueryRowContext(ctx, s.db.Rebind(`
		SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)
	`), userID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return ErrUserNotFound
	}
	return ErrAlreadyVoted
}

// GetByUser returns the vote cast by userID, or ErrNotFound.
func (s *VoteStore) GetByUser(ctx context.Context, userID int64) (*models.Vote, error) {
	var vote models.Vote
	err := s.db.Conn.QueryRowContext(ctx, s.db.Rebind(`
		SELECT id, user_id, candidate, photo_path, created_at
		FROM votes WHERE user_id = ?
	`), userID).Scan(&vote.ID, &vote.UserID, &vote.Candidate, &vote.PhotoPath, &vote.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query vote: %w", err)
	}
	return &vote, nil
}

// HasVoted reports whether a vote row exists for userID.
func (s *VoteStore) HasVoted(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := s.db.Conn.QueryRowContext(ctx, s.db.Rebind(`
		SELECT EXISTS(SELECT 1 FROM votes WHERE user_id = ?)
	`), userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check vote: %w", err)
	}
	return exists, nil
}

// Tally counts votes by the stored candidate string, so renamed or deleted
// candidates keep their historical totals under the old name.
func (s *VoteStore) Tally(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.Conn.QueryContext(ctx, `
		SELECT candidate, COUNT(*) FROM votes GROUP BY candidate
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to tally votes: %w", err)
	}
	defer rows.Close()

	count := make(map[string]int)
	for rows.Next() {
		var candidate string
		var n int
		if err := rows.Scan(&candidate, &n); err != nil {
			return nil, fmt.Errorf("failed to scan tally: %w", err)
		}
		count[candidate] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tally: %w", err)
	}

	return count, nil
}

// Voters lists one row per vote in the order votes were cast.
func (s *VoteStore) Voters(ctx context.Context) ([]models.VoterRow, error) {
	rows, err := s.db.Conn.QueryContext(ctx, s.db.Rebind(`
		SELECT COALESCE(u.username, ?), v.candidate, v.photo_path, v.created_at
		FROM votes v
		LEFT JOIN users u ON u.id = v.user_id
		ORDER BY v.created_at, v.id
	`), UnknownVoter)
	if err != nil {
		return nil, fmt.Errorf("failed to query voters: %w", err)
	}
	defer rows.Close()

	voters := []models.VoterRow{}
	for rows.Next() {
		var row models.VoterRow
		if err := rows.Scan(&row.Username, &row.Candidate, &row.PhotoPath, &row.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan voter: %w", err)
		}
		voters = append(voters, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate voters: %w", err)
	}

	return voters, nil
}
