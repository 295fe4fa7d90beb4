// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/danielhkuo/quickly-vote/models"
)

const maxCandidateName = 100

// CandidateStore is the candidate registry. Deleting or renaming a
// candidate never touches votes: vote rows keep their own name snapshot.
type CandidateStore struct {
	db *DB
}

func NewCandidateStore(d *DB) *CandidateStore {
	return &CandidateStore{db: d}
}

// Create adds a candidate with a trimmed, unique name.
func (s *CandidateStore) Create(ctx context.Context, name string) (*models.Candidate, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	if err := s.checkUnique(ctx, name, 0); err != nil {
		return nil, err
	}

	candidate := models.Candidate{Name: name}
	err = s.db.Conn.QueryRowContext(ctx, s.db.Rebind(`
		INSERT INTO candidates (name) VALUES (?) RETURNING id
	`), name).Scan(&candidate.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("failed to insert candidate: %w", err)
	}

	return &candidate, nil
}

// Rename changes a candidate's name under the same rules as Create.
func (s *CandidateStore) Rename(ctx context.Context, id int64, name string) (*models.Candidate, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	if err := s.checkUnique(ctx, name, id); err != nil {
		return nil, err
	}

	result, err := s.db.Conn.ExecContext(ctx, s.db.Rebind(`
		UPDATE candidates SET name = ? WHERE id = ?
	`), name, id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("failed to rename candidate: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return &models.Candidate{ID: id, Name: name}, nil
}

// Delete removes a candidate. Votes cast for it are left untouched.
func (s *CandidateStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.Conn.ExecContext(ctx, s.db.Rebind(`DELETE FROM candidates WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *CandidateStore) Get(ctx context.Context, id int64) (*models.Candidate, error) {
	var candidate models.Candidate
	err := s.db.Conn.QueryRowContext(ctx, s.db.Rebind(`
		SELECT id, name FROM candidates WHERE id = ?
	`), id).Scan(&candidate.ID, &candidate.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate: %w", err)
	}
	return &candidate, nil
}

// List returns all candidates in creation order.
func (s *CandidateStore) List(ctx context.Context) ([]models.Candidate, error) {
	rows, err := s.db.Conn.QueryContext(ctx, `SELECT id, name FROM candidates ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidates: %w", err)
	}

	return candidates, nil
}

// checkUnique fails with ErrDuplicateName if another candidate (id != excludeID)
// already uses name.
func (s *CandidateStore) checkUnique(ctx context.Context, name string, excludeID int64) error {
	var exists bool
	err := s.db.Conn.QueryRowContext(ctx, s.db.Rebind(`
		SELECT EXISTS(SELECT 1 FROM candidates WHERE name = ? AND id != ?)
	`), name, excludeID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check candidate name: %w", err)
	}
	if exists {
		return ErrDuplicateName
	}
	return nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(name) > maxCandidateName {
		return "", ErrNameTooLong
	}
	return name, nil
}
