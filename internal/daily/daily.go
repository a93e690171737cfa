// Package daily implements the per-user daily draw cache. Each user has at
// most one slot, stored as a JSON file under <base>/daily/, valid only for
// the calendar day it was written on.
package daily

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/litesuggar/omikuji/internal/fortune"
)

// Slot is one user's committed draw for a calendar day.
type Slot struct {
	DrawID  string           `json:"draw_id"`
	DrawnOn fortune.Date     `json:"drawn_on"`
	Fortune *fortune.Fortune `json:"fortune"`
}

// Store owns the slot files. Writes for the same user are last-write-wins;
// there is no locking because each user's slot is independent and a race
// between two same-day draws is a benign overwrite.
type Store struct {
	dir string
	loc *time.Location
}

// NewStore creates the slot directory under baseDir if needed.
func NewStore(baseDir string, loc *time.Location) (*Store, error) {
	dir := filepath.Join(baseDir, "daily")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create daily cache directory: %w", err)
	}
	_ = os.Chmod(dir, 0700)

	if loc == nil {
		loc = time.UTC
	}
	return &Store{dir: dir, loc: loc}, nil
}

// Get returns the user's slot if it was written today. A slot dated before
// today is purged and reported absent. A malformed slot file is discarded
// the same way; neither recovery is visible to the caller.
func (s *Store) Get(userID string) (*Slot, bool, error) {
	path, err := s.slotPath(userID)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read daily slot: %w", err)
	}

	var slot Slot
	if err := json.Unmarshal(data, &slot); err != nil || slot.Fortune == nil || slot.DrawnOn.IsZero() {
		slog.Warn("discarding corrupt daily slot", "user_id", userID, "path", path)
		_ = os.Remove(path)
		return nil, false, nil
	}

	if !slot.DrawnOn.Equal(fortune.Today(s.loc)) {
		// Day rollover: the slot is stale, not an error.
		_ = os.Remove(path)
		return nil, false, nil
	}

	return &slot, true, nil
}

// Put stores a slot for the user with drawnOn set to today, replacing any
// prior slot unconditionally. The write goes through a temp file + rename
// so readers never observe a partial slot.
func (s *Store) Put(userID, drawID string, f *fortune.Fortune) (*Slot, error) {
	path, err := s.slotPath(userID)
	if err != nil {
		return nil, err
	}

	slot := &Slot{
		DrawID:  drawID,
		DrawnOn: fortune.Today(s.loc),
		Fortune: f,
	}

	data, err := json.Marshal(slot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode daily slot: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return nil, fmt.Errorf("failed to write daily slot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("failed to commit daily slot: %w", err)
	}

	return slot, nil
}

// Invalidate deletes the user's slot so the next draw regenerates.
// Returns whether a slot existed.
func (s *Store) Invalidate(userID string) (bool, error) {
	path, err := s.slotPath(userID)
	if err != nil {
		return false, err
	}

	err = os.Remove(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to delete daily slot: %w", err)
	}
	return true, nil
}

// slotPath maps a user ID to its slot file, rejecting IDs that could
// escape the slot directory.
func (s *Store) slotPath(userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("user id must not be empty")
	}
	if strings.ContainsAny(userID, `/\`) || strings.Contains(userID, "..") {
		return "", fmt.Errorf("invalid user id %q", userID)
	}
	return filepath.Join(s.dir, userID+".json"), nil
}
