// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, request, and response types.

# Roles and Capabilities

Accounts are either voters or admins:

	role := models.RoleFromAdmin(isAdmin)
	role.Can(models.CapVote)   // true for voters only
	role.Can(models.CapManage) // true for admins only

Routes are gated by capability rather than by checking is_admin directly.
Role.Home gives the post-login landing page.

# Voting State

Each voter moves from StateNotVoted to StateVoted exactly once. There is no
transition back.

# Domain Types

  - User: account with bcrypt hash, role, and has_voted flag
  - Candidate: named option with a unique name
  - Vote: immutable record with a candidate name snapshot and photo path
  - Session: server-side session row referenced by the session token
  - VoterRow: admin dashboard line (username, candidate, photo, timestamp)
  - TallyEntry: candidate name and vote count

# Request and Response Types

JSON bodies for the candidate endpoints:

  - CandidateRequest: name
  - CreateCandidateResponse: id, name
  - EditCandidateResponse: success, id, name
  - SuccessResponse: success
  - ResultsResponse: count, total
  - ErrorResponse: error
*/
package models
