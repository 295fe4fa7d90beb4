// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import "errors"

var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrUserNotFound      = errors.New("user not found")

	ErrEmptyName     = errors.New("name required")
	ErrNameTooLong   = errors.New("name must be at most 100 characters")
	ErrDuplicateName = errors.New("candidate already exists")
	ErrNotFound      = errors.New("candidate not found")

	ErrAlreadyVoted = errors.New("user has already voted")

	ErrSessionNotFound = errors.New("session not found")
)
