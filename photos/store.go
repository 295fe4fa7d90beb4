// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package photos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is the relative reference prefix stored in vote rows and served
// by the admin photo route.
const URLPrefix = "photos"

const pendingSuffix = ".pending"

var finalName = regexp.MustCompile(`^user_(\d+)\.(png|jpg|gif)$`)

// Store keeps one photo file per user in a flat directory.
//
// Writes are staged: the bytes go to a pending file first, and only after the
// vote is committed is the pending file renamed over the final name. A crash
// in between leaves a pending file that Recover resolves against the vote
// ledger on the next start.
type Store struct {
	dir string
}

// NewStore creates dir if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create photo directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// FileName is the final file name for a user's photo.
func FileName(userID int64, ext string) string {
	return fmt.Sprintf("user_%d%s", userID, ext)
}

// RelPath is the reference stored in the vote row, e.g. "photos/user_7.png".
func RelPath(userID int64, ext string) string {
	return URLPrefix + "/" + FileName(userID, ext)
}

// Staged is a photo written to a pending file and not yet visible under its
// final name.
type Staged struct {
	pending string
	final   string
	rel     string
	done    bool
}

// RelPath is the reference the photo will have once committed.
func (st *Staged) RelPath() string {
	return st.rel
}

// Stage writes the photo to a pending file next to its final location.
func (s *Store) Stage(userID int64, p *Photo) (*Staged, error) {
	name := FileName(userID, p.Ext())
	final := filepath.Join(s.dir, name)
	pending := final + "." + uuid.NewString() + pendingSuffix

	if err := os.WriteFile(pending, p.Data, 0o644); err != nil {
		os.Remove(pending)
		return nil, fmt.Errorf("failed to write photo: %w", err)
	}

	return &Staged{pending: pending, final: final, rel: RelPath(userID, p.Ext())}, nil
}

// Commit moves the pending file over the final name, replacing any earlier
// photo for the same user.
func (st *Staged) Commit() error {
	if st.done {
		return nil
	}
	if err := os.Rename(st.pending, st.final); err != nil {
		return fmt.Errorf("failed to commit photo: %w", err)
	}
	st.done = true
	return nil
}

// Discard removes the pending file.
func (st *Staged) Discard() error {
	if st.done {
		return nil
	}
	st.done = true
	if err := os.Remove(st.pending); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to discard photo: %w", err)
	}
	return nil
}

// Locate maps a served file name to its path on disk. Only final photo names
// are accepted.
func (s *Store) Locate(name string) (string, bool) {
	if !finalName.MatchString(name) {
		return "", false
	}
	return filepath.Join(s.dir, name), true
}

// VoteLookup reports whether the user has a committed vote.
type VoteLookup func(ctx context.Context, userID int64) (bool, error)

// Recover resolves pending files left by an interrupted vote. A pending file
// whose user has a committed vote is renamed into place unless a final photo
// already exists; every other pending file is removed.
func (s *Store) Recover(ctx context.Context, hasVoted VoteLookup) (restored, removed int, err error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read photo directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, pendingSuffix) {
			continue
		}

		pending := filepath.Join(s.dir, name)
		final, userID, ok := parsePending(name)
		if !ok {
			slog.Warn("removing unrecognised pending photo", "file", name)
			if err := os.Remove(pending); err != nil {
				return restored, removed, fmt.Errorf("failed to remove %s: %w", name, err)
			}
			removed++
			continue
		}

		voted, err := hasVoted(ctx, userID)
		if err != nil {
			return restored, removed, err
		}

		finalPath := filepath.Join(s.dir, final)
		if voted && !fileExists(finalPath) {
			if err := os.Rename(pending, finalPath); err != nil {
				return restored, removed, fmt.Errorf("failed to restore %s: %w", name, err)
			}
			restored++
			continue
		}

		if err := os.Remove(pending); err != nil {
			return restored, removed, fmt.Errorf("failed to remove %s: %w", name, err)
		}
		removed++
	}

	return restored, removed, nil
}

// parsePending splits "user_7.png.<uuid>.pending" into "user_7.png" and 7.
func parsePending(name string) (string, int64, bool) {
	rest := strings.TrimSuffix(name, pendingSuffix)
	dot := strings.LastIndex(rest, ".")
	if dot < 0 {
		return "", 0, false
	}
	final := rest[:dot]

	m := finalName.FindStringSubmatch(final)
	if m == nil {
		return "", 0, false
	}
	userID, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return final, userID, true
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
