// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/testutil"
)

func TestOpen_UnsupportedType(t *testing.T) {
	if _, err := db.Open("mysql", "whatever"); err == nil {
		t.Error("Open() expected an error for an unsupported type")
	}
}

func TestCreateSchema_Idempotent(t *testing.T) {
	d := testutil.SetupTestDB(t)

	// SetupTestDB already ran it once
	if err := db.CreateSchema(d); err != nil {
		t.Fatalf("second CreateSchema() error = %v", err)
	}
}

func TestRebind(t *testing.T) {
	query := "SELECT * FROM users WHERE id = ? AND username = ?"

	sqlite := &db.DB{Dialect: db.SQLite}
	if got := sqlite.Rebind(query); got != query {
		t.Errorf("SQLite Rebind() = %q, want unchanged", got)
	}

	pg := &db.DB{Dialect: db.Postgres}
	want := "SELECT * FROM users WHERE id = $1 AND username = $2"
	if got := pg.Rebind(query); got != want {
		t.Errorf("Postgres Rebind() = %q, want %q", got, want)
	}
}

func TestUserStore(t *testing.T) {
	d := testutil.SetupTestDB(t)
	users := db.NewUserStore(d)
	ctx := context.Background()

	alice, err := users.Create(ctx, "alice", "hash-a", models.RoleVoter)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if alice.ID == 0 {
		t.Error("Create() should assign an id")
	}

	admin, err := users.Create(ctx, "boss", "hash-b", models.RoleAdmin)
	if err != nil {
		t.Fatalf("Create(admin) error = %v", err)
	}

	t.Run("duplicate username", func(t *testing.T) {
		_, err := users.Create(ctx, "alice", "hash-c", models.RoleVoter)
		if !errors.Is(err, db.ErrDuplicateUsername) {
			t.Errorf("Create() error = %v, want ErrDuplicateUsername", err)
		}
	})

	t.Run("get by id and name", func(t *testing.T) {
		got, err := users.GetByID(ctx, alice.ID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if got.Username != "alice" || got.PasswordHash != "hash-a" || got.Role != models.RoleVoter {
			t.Errorf("GetByID() = %+v", got)
		}

		got, err = users.GetByUsername(ctx, "boss")
		if err != nil {
			t.Fatalf("GetByUsername() error = %v", err)
		}
		if got.ID != admin.ID || !got.Role.IsAdmin() {
			t.Errorf("GetByUsername() = %+v, want admin %d", got, admin.ID)
		}
	})

	t.Run("missing user", func(t *testing.T) {
		if _, err := users.GetByID(ctx, 9999); !errors.Is(err, db.ErrUserNotFound) {
			t.Errorf("GetByID() error = %v, want ErrUserNotFound", err)
		}
		if _, err := users.GetByUsername(ctx, "ghost"); !errors.Is(err, db.ErrUserNotFound) {
			t.Errorf("GetByUsername() error = %v, want ErrUserNotFound", err)
		}
	})

	t.Run("list", func(t *testing.T) {
		all, err := users.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("List() returned %d users, want 2", len(all))
		}
		if all[0].Username != "alice" || all[1].Username != "boss" {
			t.Errorf("List() order = %s, %s", all[0].Username, all[1].Username)
		}
	})
}

func TestCandidateStore(t *testing.T) {
	d := testutil.SetupTestDB(t)
	candidates := db.NewCandidateStore(d)
	ctx := context.Background()

	empty, err := candidates.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("List() on empty table = %#v, want empty non-nil slice", empty)
	}

	bob, err := candidates.Create(ctx, "  Bob ")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if bob.Name != "Bob" {
		t.Errorf("Create() name = %q, want trimmed Bob", bob.Name)
	}
	carol, _ := candidates.Create(ctx, "Carol")

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"duplicate", "Bob", db.ErrDuplicateName},
		{"empty", "", db.ErrEmptyName},
		{"blank", "   ", db.ErrEmptyName},
		{"too long", strings.Repeat("x", 101), db.ErrNameTooLong},
	}
	for _, tt := range tests {
		t.Run("create "+tt.name, func(t *testing.T) {
			if _, err := candidates.Create(ctx, tt.input); !errors.Is(err, tt.wantErr) {
				t.Errorf("Create(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}

	t.Run("rename", func(t *testing.T) {
		renamed, err := candidates.Rename(ctx, bob.ID, "Robert")
		if err != nil {
			t.Fatalf("Rename() error = %v", err)
		}
		if renamed.ID != bob.ID || renamed.Name != "Robert" {
			t.Errorf("Rename() = %+v", renamed)
		}

		// Renaming to its own name is allowed
		if _, err := candidates.Rename(ctx, bob.ID, "Robert"); err != nil {
			t.Errorf("Rename() to same name error = %v", err)
		}

		if _, err := candidates.Rename(ctx, bob.ID, "Carol"); !errors.Is(err, db.ErrDuplicateName) {
			t.Errorf("Rename() to taken name error = %v, want ErrDuplicateName", err)
		}
		if _, err := candidates.Rename(ctx, bob.ID, " "); !errors.Is(err, db.ErrEmptyName) {
			t.Errorf("Rename() to blank error = %v, want ErrEmptyName", err)
		}
		if _, err := candidates.Rename(ctx, 9999, "Zed"); !errors.Is(err, db.ErrNotFound) {
			t.Errorf("Rename() missing error = %v, want ErrNotFound", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := candidates.Delete(ctx, carol.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if err := candidates.Delete(ctx, carol.ID); !errors.Is(err, db.ErrNotFound) {
			t.Errorf("second Delete() error = %v, want ErrNotFound", err)
		}
		if _, err := candidates.Get(ctx, carol.ID); !errors.Is(err, db.ErrNotFound) {
			t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
		}

		list, _ := candidates.List(ctx)
		if len(list) != 1 || list[0].Name != "Robert" {
			t.Errorf("List() after delete = %+v", list)
		}
	})
}

func TestVoteStore_Record(t *testing.T) {
	d := testutil.SetupTestDB(t)
	votes := db.NewVoteStore(d)
	users := db.NewUserStore(d)
	ctx := context.Background()

	alice := testutil.CreateTestUser(t, d, "alice", "pw1")

	vote, err := votes.Record(ctx, alice.ID, "Bob", "photos/user_1.png")
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if vote.Candidate != "Bob" || vote.UserID != alice.ID {
		t.Errorf("Record() = %+v", vote)
	}

	fresh, _ := users.GetByID(ctx, alice.ID)
	if !fresh.HasVoted {
		t.Error("Record() should set has_voted")
	}

	if _, err := votes.Record(ctx, alice.ID, "Carol", "photos/user_1.png"); !errors.Is(err, db.ErrAlreadyVoted) {
		t.Errorf("second Record() error = %v, want ErrAlreadyVoted", err)
	}

	if _, err := votes.Record(ctx, 9999, "Bob", "photos/user_9999.png"); !errors.Is(err, db.ErrUserNotFound) {
		t.Errorf("Record() for missing user error = %v, want ErrUserNotFound", err)
	}

	got, err := votes.GetByUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetByUser() error = %v", err)
	}
	if got.ID != vote.ID || got.Candidate != "Bob" {
		t.Errorf("GetByUser() = %+v, want the first vote", got)
	}

	voted, _ := votes.HasVoted(ctx, alice.ID)
	if !voted {
		t.Error("HasVoted() = false, want true")
	}
}

func TestVoteStore_TallyAndVoters(t *testing.T) {
	d := testutil.SetupTestDB(t)
	votes := db.NewVoteStore(d)
	ctx := context.Background()

	ballots := []struct {
		user      string
		candidate string
	}{
		{"alice", "Bob"},
		{"carol", "Bob"},
		{"dave", "Erin"},
	}
	for _, b := range ballots {
		u := testutil.CreateTestUser(t, d, b.user, "pw")
		if _, err := votes.Record(ctx, u.ID, b.candidate, "photos/"+b.user+".png"); err != nil {
			t.Fatalf("Record(%s) error = %v", b.user, err)
		}
		// Distinct timestamps for ordering
		time.Sleep(5 * time.Millisecond)
	}

	tally, err := votes.Tally(ctx)
	if err != nil {
		t.Fatalf("Tally() error = %v", err)
	}
	if tally["Bob"] != 2 || tally["Erin"] != 1 || len(tally) != 2 {
		t.Errorf("Tally() = %v, want Bob:2 Erin:1", tally)
	}

	voted, err := db.NewUserStore(d).CountVoted(ctx)
	if err != nil {
		t.Fatalf("CountVoted() error = %v", err)
	}
	if voted != 3 {
		t.Errorf("CountVoted() = %d, want 3", voted)
	}

	rows, err := votes.Voters(ctx)
	if err != nil {
		t.Fatalf("Voters() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Voters() returned %d rows, want 3", len(rows))
	}
	for i, b := range ballots {
		if rows[i].Username != b.user || rows[i].Candidate != b.candidate {
			t.Errorf("Voters()[%d] = %+v, want %s -> %s", i, rows[i], b.user, b.candidate)
		}
	}
}

func TestVoteStore_VotersUnknownUser(t *testing.T) {
	d := testutil.SetupTestDB(t)
	votes := db.NewVoteStore(d)
	ctx := context.Background()

	alice := testutil.CreateTestUser(t, d, "alice", "pw")
	if _, err := votes.Record(ctx, alice.ID, "Erin", "photos/user_1.png"); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	// A vote whose user row is gone, as left by a manual cleanup
	if _, err := d.Conn.ExecContext(ctx, `PRAGMA foreign_keys = OFF`); err != nil {
		t.Fatalf("failed to disable foreign keys: %v", err)
	}
	_, err := d.Conn.ExecContext(ctx,
		`INSERT INTO votes (user_id, candidate, photo_path, created_at) VALUES (?, ?, ?, ?)`,
		999, "Bob", "photos/user_999.png", time.Now().UTC())
	if err != nil {
		t.Fatalf("failed to insert orphan vote: %v", err)
	}

	rows, err := votes.Voters(ctx)
	if err != nil {
		t.Fatalf("Voters() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Voters() returned %d rows, want 2", len(rows))
	}
	if rows[0].Username != "alice" {
		t.Errorf("Voters()[0].Username = %q, want alice", rows[0].Username)
	}
	if rows[1].Username != "Unknown" {
		t.Errorf("Voters()[1].Username = %q, want Unknown", rows[1].Username)
	}
	if rows[1].Candidate != "Bob" {
		t.Errorf("Voters()[1].Candidate = %q, want Bob", rows[1].Candidate)
	}

	// The orphan vote still counts
	tally, err := votes.Tally(ctx)
	if err != nil {
		t.Fatalf("Tally() error = %v", err)
	}
	if tally["Bob"] != 1 || tally["Erin"] != 1 {
		t.Errorf("Tally() = %v, want Bob:1 Erin:1", tally)
	}
}

func TestSessionStore(t *testing.T) {
	d := testutil.SetupTestDB(t)
	sessions := db.NewSessionStore(d)
	ctx := context.Background()

	alice := testutil.CreateTestUser(t, d, "alice", "pw1")
	now := time.Now()

	if _, err := sessions.Create(ctx, "live", alice.ID, now.Add(time.Hour)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := sessions.Create(ctx, "stale", alice.ID, now.Add(-time.Hour)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := sessions.Get(ctx, "live")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.UserID != alice.ID {
		t.Errorf("Get() user = %d, want %d", got.UserID, alice.ID)
	}
	if got.ExpiresAt.Sub(now.Add(time.Hour)).Abs() > time.Second {
		t.Errorf("Get() expires_at = %v, want about %v", got.ExpiresAt, now.Add(time.Hour))
	}

	purged, err := sessions.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpired() error = %v", err)
	}
	if purged != 1 {
		t.Errorf("DeleteExpired() = %d, want 1", purged)
	}
	if _, err := sessions.Get(ctx, "stale"); !errors.Is(err, db.ErrSessionNotFound) {
		t.Errorf("Get(stale) error = %v, want ErrSessionNotFound", err)
	}

	if err := sessions.Delete(ctx, "live"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := sessions.Delete(ctx, "live"); err != nil {
		t.Errorf("Delete() of a missing session error = %v", err)
	}
}
