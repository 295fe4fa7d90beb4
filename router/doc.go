// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Vote app.

# Route Registration

NewServices wires the stores and services over one database, and NewRouter
mounts every endpoint on an http.ServeMux wrapped in the body limit:

	services := router.NewServices(database, cfg, photoStore)
	handler := router.NewRouter(services, cfg)

# Endpoints

Public:

	GET  /health
	GET  /          - Redirect to /login
	GET  /register, POST /register
	GET  /login,    POST /login

Logged in:

	GET  /logout

Voters (admins are sent to /admin):

	GET  /vote  - Ballot or thank-you page
	POST /vote  - Cast the one vote

Admin pages (voters are sent to /vote with a flash):

	GET  /admin       - Tally and voter list
	GET  /voters      - Registered users
	GET  /candidates  - Candidate management page
	POST /candidates  - Create candidate (JSON response)

Admin JSON (voters get 403 {"error":"Unauthorized"}):

	GET    /results-data          - {"count": {...}, "total": n}
	GET    /photos/{file}         - Voter photo
	POST   /edit_candidate/{id}   - Rename candidate
	DELETE /delete_candidate/{id} - Delete candidate

# Gating

Routes are gated by capability (models.CapVote, models.CapManage), not by
checking the role directly; see middleware.RequireCapability.
*/
package router
