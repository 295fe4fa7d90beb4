// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Role is the kind of account a user holds. It is persisted as the
// is_admin column but handled as a variant so routes can be gated by
// capability instead of by flag checks.
type Role int

const (
	RoleVoter Role = iota
	RoleAdmin
)

// Capability is something a role may be allowed to do.
type Capability int

const (
	CapVote Capability = iota
	CapManage
)

// RoleFromAdmin maps the stored is_admin flag to a Role.
func RoleFromAdmin(isAdmin bool) Role {
	if isAdmin {
		return RoleAdmin
	}
	return RoleVoter
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Can reports whether the role grants capability c.
// Admins manage but never vote; voters vote but never manage.
func (r Role) Can(c Capability) bool {
	switch c {
	case CapVote:
		return r == RoleVoter
	case CapManage:
		return r == RoleAdmin
	}
	return false
}

// Home is the landing page for the role after login.
func (r Role) Home() string {
	if r == RoleAdmin {
		return "/admin"
	}
	return "/vote"
}

func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}
	return "voter"
}

// VoteState is a voter's position in the NotVoted -> Voted machine.
type VoteState int

const (
	StateNotVoted VoteState = iota
	StateVoted
)

func (s VoteState) String() string {
	if s == StateVoted {
		return "voted"
	}
	return "not_voted"
}

// Domain types

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	HasVoted     bool      `json:"has_voted"`
	Role         Role      `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Candidate struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Vote is immutable once written. Candidate is a snapshot of the name at
// vote time, not a reference to the candidates table.
type Vote struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Candidate string    `json:"candidate"`
	PhotoPath string    `json:"photo_path"`
	CreatedAt time.Time `json:"timestamp"`
}

type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// VoterRow is one line of the admin voter list.
type VoterRow struct {
	Username  string    `json:"username"`
	Candidate string    `json:"candidate"`
	PhotoPath string    `json:"photo"`
	Timestamp time.Time `json:"timestamp"`
}

// TallyEntry is a candidate name with its vote count, used for ordered display.
type TallyEntry struct {
	Candidate string `json:"candidate"`
	Count     int    `json:"count"`
}

// Request types

type CandidateRequest struct {
	Name string `json:"name"`
}

// Response types

type CreateCandidateResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type EditCandidateResponse struct {
	Success bool   `json:"success"`
	ID      int64  `json:"id"`
	Name    string `json:"name"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

// candidate name -> vote count
type ResultsResponse struct {
	Count map[string]int `json:"count"`
	Total int            `json:"total"`
}

// Error response

type ErrorResponse struct {
	Error string `json:"error"`
}
