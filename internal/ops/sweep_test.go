package ops

import (
	"context"
	"testing"
	"time"

	"github.com/litesuggar/omikuji/internal/db"
	"github.com/litesuggar/omikuji/internal/errors"
	"github.com/litesuggar/omikuji/internal/fortune"
)

// insertAged stores a corpus entry whose dates sit days in the past.
func insertAged(t *testing.T, env *testEnv, level, theme string, daysAgo int) {
	t.Helper()
	date := fortune.Today(time.UTC).AddDays(-daysAgo)
	entry := fortune.NewEntry(validRecord(level, theme), date)
	if err := db.InsertEntry(env.db, entry); err != nil {
		t.Fatalf("InsertEntry failed: %v", err)
	}
}

func TestSweepDeletesExpired(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.CacheExpireDays = 7

	insertAged(t, env, "大吉", "旧的", 10)
	insertAged(t, env, "大吉", "新的", 3)

	out, err := Sweep(context.Background(), env.db, env.cfg)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if out.Deleted != 1 {
		t.Errorf("deleted = %d, want 1", out.Deleted)
	}

	if _, err := db.GetEntry(env.db, "大吉", "旧的"); !errors.Is(err, errors.ErrNotFound) {
		t.Error("expired entry should be gone")
	}
	if _, err := db.GetEntry(env.db, "大吉", "新的"); err != nil {
		t.Errorf("fresh entry should survive: %v", err)
	}
}

func TestSweepBoundary(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.CacheExpireDays = 7

	// Exactly at the cutoff: updated_date == today-7 is not strictly older.
	insertAged(t, env, "吉", "边界", 7)

	out, err := Sweep(context.Background(), env.db, env.cfg)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if out.Deleted != 0 {
		t.Errorf("deleted = %d, want 0 at the boundary", out.Deleted)
	}
}

func TestSweepDisabledRetention(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.CacheExpireDays = -1

	insertAged(t, env, "凶", "远古", 3650)

	out, err := Sweep(context.Background(), env.db, env.cfg)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if out.Deleted != 0 || out.Cutoff != "" {
		t.Errorf("sweep should be a no-op, got %+v", out)
	}

	if _, err := db.GetEntry(env.db, "凶", "远古"); err != nil {
		t.Errorf("entry should be kept forever: %v", err)
	}
}
