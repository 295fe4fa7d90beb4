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

// UserStore persists accounts. It never deletes users and only ever flips
// has_voted from false to true (see VoteStore.Record).
type UserStore struct {
	db *DB
}

func NewUserStore(d *DB) *UserStore {
	return &UserStore{db: d}
}

const userColumns = `id, username, password_hash, has_voted, is_admin, created_at`

// Create inserts a new account. The username must already be validated and
// the password already hashed.
func (s *UserStore) Create(ctx context.Context, username, passwordHash string, role models.Role) (*models.User, error) {
	exists, err := s.exists(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateUsername
	}

	now := time.Now().UTC()
	user := models.User{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
	}

	// UNIQUE(username) catches the race between the check above and the insert
	err = s.db.Conn.QueryRowContext(ctx, s.db.Rebind(`
		INSERT INTO users (username, password_hash, has_voted, is_admin, created_at)
		VALUES (?, ?, FALSE, ?, ?)
		RETURNING id
	`), username, passwordHash, role.IsAdmin(), now).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return &user, nil
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	row := s.db.Conn.QueryRowContext(ctx, s.db.Rebind(`
		SELECT `+userColumns+` FROM users WHERE id = ?
	`), id)
	return scanUser(row)
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	row := s.db.Conn.QueryRowContext(ctx, s.db.Rebind(`
		SELECT `+userColumns+` FROM users WHERE username = ?
	`), username)
	return scanUser(row)
}

// List returns every account ordered by id.
func (s *UserStore) List(ctx context.Context) ([]*models.User, error) {
	rows, err := s.db.Conn.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// CountVoted returns how many users have has_voted set.
func (s *UserStore) CountVoted(ctx context.Context) (int, error) {
	var n int
	err := s.db.Conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE has_voted = TRUE`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count voters: %w", err)
	}
	return n, nil
}

func (s *UserStore) exists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.db.Conn.QueryRowContext(ctx, s.db.Rebind(`
		SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)
	`), username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	var user models.User
	var isAdmin bool
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.HasVoted, &isAdmin, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	user.Role = models.RoleFromAdmin(isAdmin)
	return &user, nil
}
