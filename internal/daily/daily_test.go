package daily

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/litesuggar/omikuji/internal/fortune"
)

func testFortune() *fortune.Fortune {
	return &fortune.Fortune{
		Level:       "大吉",
		Theme:       "旅行",
		SignNumber:  "七",
		DivineTitle: "晨光",
		Sections: []fortune.Section{
			{Name: "运势", Content: "一帆风顺。"},
			{Name: "建议", Content: "早起出行。"},
			{Name: "警示", Content: "勿忘行囊。"},
			{Name: "寄语", Content: "山高水长。"},
		},
		Maxim: "行远必自迩。——礼记",
		Intro: "「晨钟响起。」",
		End:   "一路平安。",
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), time.UTC)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

func TestPutGetRoundTrip(t *testing.T) {
	store := newTestStore(t)

	put, err := store.Put("user1", "01ABC", testFortune())
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if !put.DrawnOn.Equal(fortune.Today(time.UTC)) {
		t.Errorf("drawn_on = %s, want today", put.DrawnOn)
	}

	got, ok, err := store.Get("user1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("slot should exist")
	}
	if got.DrawID != "01ABC" {
		t.Errorf("draw_id = %q, want 01ABC", got.DrawID)
	}
	if got.Fortune.Level != "大吉" || len(got.Fortune.Sections) != 4 {
		t.Errorf("fortune did not round-trip: %+v", got.Fortune)
	}
}

func TestGetAbsent(t *testing.T) {
	store := newTestStore(t)
	_, ok, err := store.Get("nobody")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("slot should be absent")
	}
}

func TestGetPurgesStaleSlot(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Put("user1", "01ABC", testFortune()); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Backdate the slot to yesterday by rewriting its drawn_on.
	path := filepath.Join(store.dir, "user1.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	today := fortune.Today(time.UTC)
	yesterday := today.AddDays(-1)
	stale := []byte(strings.Replace(string(data), today.String(), yesterday.String(), 1))
	if err := os.WriteFile(path, stale, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, ok, err := store.Get("user1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("stale slot should be absent")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("stale slot file should be removed")
	}
}

func TestGetDiscardsCorruptSlot(t *testing.T) {
	store := newTestStore(t)
	path := filepath.Join(store.dir, "user1.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, ok, err := store.Get("user1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("corrupt slot should be absent")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt slot file should be removed")
	}
}

func TestPutOverwritesExistingSlot(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Put("user1", "first", testFortune()); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	second := testFortune()
	second.Level = "凶"
	if _, err := store.Put("user1", "second", second); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	got, ok, err := store.Get("user1")
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if got.DrawID != "second" || got.Fortune.Level != "凶" {
		t.Errorf("slot not overwritten: %+v", got)
	}
}

func TestInvalidate(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Put("user1", "01ABC", testFortune()); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	existed, err := store.Invalidate("user1")
	if err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if !existed {
		t.Error("existed = false, want true")
	}

	existed, err = store.Invalidate("user1")
	if err != nil {
		t.Fatalf("second Invalidate failed: %v", err)
	}
	if existed {
		t.Error("second invalidate should report no slot")
	}
}

func TestRejectsUnsafeUserIDs(t *testing.T) {
	store := newTestStore(t)
	for _, id := range []string{"", "  ", "../escape", "a/b", `a\b`} {
		if _, _, err := store.Get(id); err == nil {
			t.Errorf("Get(%q) should fail", id)
		}
		if _, err := store.Put(id, "x", testFortune()); err == nil {
			t.Errorf("Put(%q) should fail", id)
		}
	}
}
