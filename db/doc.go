// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles connections, schema creation, and the data stores.

# Connecting

Open supports SQLite (modernc.org/sqlite, pure Go) and PostgreSQL (lib/pq):

	d, err := db.Open("sqlite", "quickly-vote.db")
	d, err := db.Open("postgres", "postgres://...")

SQLite connections get foreign keys, a busy timeout, immediate transactions,
and a single open connection. Queries are written with ? placeholders and
passed through Rebind, which emits $1, $2, ... for PostgreSQL.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(d); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - users: accounts (username unique, bcrypt hash, has_voted, is_admin)
  - candidates: names (unique)
  - votes: one per user (user_id unique), candidate name snapshot, photo path
  - sessions: server-side sessions referenced by session tokens

# Stores

  - UserStore: Create, GetByID, GetByUsername, List, CountVoted
  - CandidateStore: Create, Rename, Delete, Get, List
  - VoteStore: Record, GetByUser, HasVoted, Tally, Voters
  - SessionStore: Create, Get, Delete, DeleteExpired

VoteStore.Record flips users.has_voted and inserts the vote in a single
transaction. Together with UNIQUE(votes.user_id) this keeps has_voted and
the vote rows in step even under concurrent submissions.

# Errors

Stores return sentinel errors (ErrDuplicateUsername, ErrDuplicateName,
ErrEmptyName, ErrNotFound, ErrAlreadyVoted, ...). UNIQUE violations from
either driver are mapped to the matching sentinel.
*/
package db
