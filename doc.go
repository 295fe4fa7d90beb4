// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Vote server.

Quickly Vote is a small election app: people register, log in and cast
exactly one vote, attaching a camera photo taken in the browser. An admin
manages the candidate list and watches the tally and the voter list.

# Starting the Server

A session secret is required; everything else has defaults:

	SESSION_SECRET=$(openssl rand -hex 32) go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -session-secret "..."

Settings may also live in a .env file (see package cliparse).

# Startup

On start the server creates the schema if needed, seeds the admin account
(admin / admin123 unless ADMIN_PASSWORD is set), deletes expired sessions
and finishes or discards photo writes interrupted by a crash. It logs a
warning on every start while the admin still has the default password.

# Architecture

  - handlers: HTTP request handlers (auth, voting, admin, candidates)
  - router: Service wiring and route definitions using Go 1.22+ routing
  - middleware: logging, body limit, sessions, capability gates, JSON helpers
  - views: embedded HTML templates and flash messages
  - voting: the once-only vote transition and tally reports
  - photos: data URI decoding and the write-ahead photo store
  - auth: password hashing, session tokens, and the login gate
  - db: SQLite/PostgreSQL connection, schema, and stores
  - models: domain and request/response types
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
