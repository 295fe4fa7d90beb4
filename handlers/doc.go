// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Vote app.

# Handler Types

Each handler is a struct holding the services it needs:

  - AuthHandler: registration, login, logout
  - VotingHandler: ballot page and vote submission
  - AdminHandler: dashboard, user list, live tally JSON, voter photos
  - CandidateHandler: candidate list and JSON create/rename/delete

Handlers are created via constructor functions:

	votingHandler := handlers.NewVotingHandler(votingSvc, candidates, renderer)

Authentication and capability checks happen in middleware before a handler
runs; handlers read the logged-in user with middleware.CurrentUser.

# Voting

A voter moves NotVoted -> Voted exactly once:

	GET  /vote → ballot, or the thank-you page once voted
	POST /vote → candidate + photo (data URI) → voting.Service.Cast

Page routes answer with redirects and flash messages.

# Candidates

JSON endpoints return {"error": "..."} on failure:

	POST   /candidates           → {"id", "name"}
	POST   /edit_candidate/{id}  → {"success", "id", "name"}
	DELETE /delete_candidate/{id} → {"success": true}

The name may be sent as JSON ({"name": "..."}) or as a form field.
*/
package handlers
