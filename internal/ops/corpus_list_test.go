package ops

import (
	"context"
	"testing"

	"github.com/litesuggar/omikuji/internal/errors"
)

func TestCorpusList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, key := range []struct{ level, theme string }{
		{"凶", "旅行"},
		{"大吉", "考试"},
		{"大吉", "姻缘"},
	} {
		if _, err := Merge(ctx, env.db, env.cfg, env.locks, MergeInput{Record: validRecord(key.level, key.theme)}); err != nil {
			t.Fatalf("Merge failed: %v", err)
		}
	}

	out, err := CorpusList(ctx, env.db, env.cfg, CorpusListInput{})
	if err != nil {
		t.Fatalf("CorpusList failed: %v", err)
	}
	if len(out.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(out.Entries))
	}
	// Grade order: 大吉 entries come before 凶.
	if out.Entries[0].Level != "大吉" || out.Entries[2].Level != "凶" {
		t.Errorf("entries out of grade order: %+v", out.Entries)
	}
	if out.Entries[0].Variants == 0 {
		t.Error("variant count should be populated")
	}
}

func TestCorpusListSingleLevel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := Merge(ctx, env.db, env.cfg, env.locks, MergeInput{Record: validRecord("大吉", "旅行")}); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if _, err := Merge(ctx, env.db, env.cfg, env.locks, MergeInput{Record: validRecord("凶", "旅行")}); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	out, err := CorpusList(ctx, env.db, env.cfg, CorpusListInput{Level: "凶"})
	if err != nil {
		t.Fatalf("CorpusList failed: %v", err)
	}
	if len(out.Entries) != 1 || out.Entries[0].Level != "凶" {
		t.Errorf("entries = %+v, want only 凶", out.Entries)
	}
}

func TestCorpusListUnknownLevel(t *testing.T) {
	env := newTestEnv(t)
	_, err := CorpusList(context.Background(), env.db, env.cfg, CorpusListInput{Level: "特吉"})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("err = %v, want INVALID_REQUEST", err)
	}
}

func TestCorpusListEmpty(t *testing.T) {
	env := newTestEnv(t)
	out, err := CorpusList(context.Background(), env.db, env.cfg, CorpusListInput{})
	if err != nil {
		t.Fatalf("CorpusList failed: %v", err)
	}
	if len(out.Entries) != 0 {
		t.Errorf("entries = %+v, want none", out.Entries)
	}
}
