package web

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/litesuggar/omikuji/internal/config"
	"github.com/litesuggar/omikuji/internal/daily"
	"github.com/litesuggar/omikuji/internal/db"
	"github.com/litesuggar/omikuji/internal/fortune"
)

func testServer(t *testing.T) (http.Handler, *sql.DB) {
	t.Helper()

	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"

	store, err := daily.NewStore(t.TempDir(), time.UTC)
	if err != nil {
		t.Fatalf("daily.NewStore failed: %v", err)
	}

	srv := NewServer(database, cfg, store, "test", "127.0.0.1", 0)
	return srv.Handler, database
}

func seedEntry(t *testing.T, database *sql.DB, level, theme string) {
	t.Helper()
	entry := fortune.NewEntry(&fortune.Fortune{
		Level:       level,
		Theme:       theme,
		SignNumber:  "二",
		DivineTitle: "古灯",
		Sections: []fortune.Section{
			{Name: "运势", Content: "柳暗花明。"},
			{Name: "建议", Content: "以静制动。"},
			{Name: "警示", Content: "慎言慎行。"},
			{Name: "寄语", Content: "来日方长。"},
		},
		Maxim: "知者不惑。——论语",
		Intro: "「烛光摇曳。」",
		End:   "愿君安好。",
	}, fortune.Today(time.UTC))
	if err := db.InsertEntry(database, entry); err != nil {
		t.Fatalf("InsertEntry failed: %v", err)
	}
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRootRedirects(t *testing.T) {
	handler, _ := testServer(t)
	rec := get(t, handler, "/")
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/corpus" {
		t.Errorf("location = %q, want /corpus", loc)
	}
}

func TestListPage(t *testing.T) {
	handler, database := testServer(t)
	seedEntry(t, database, "大吉", "旅行")

	rec := get(t, handler, "/corpus")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "旅行") {
		t.Error("list should contain the seeded theme")
	}
	if !strings.Contains(body, "大吉") {
		t.Error("list should contain the grade")
	}
}

func TestListPageLevelFilter(t *testing.T) {
	handler, database := testServer(t)
	seedEntry(t, database, "大吉", "旅行")
	seedEntry(t, database, "凶", "考试")

	rec := get(t, handler, "/corpus?level=凶")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "考试") {
		t.Error("filtered list should contain 考试")
	}
	if strings.Contains(body, "旅行") {
		t.Error("filtered list should not contain 旅行")
	}
}

func TestListPageEmpty(t *testing.T) {
	handler, _ := testServer(t)
	rec := get(t, handler, "/corpus")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No corpus entries") {
		t.Error("empty corpus should show the placeholder")
	}
}

func TestDetailPage(t *testing.T) {
	handler, database := testServer(t)
	seedEntry(t, database, "大吉", "旅行")

	rec := get(t, handler, "/corpus/"+url.PathEscape("大吉")+"/"+url.PathEscape("旅行"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "柳暗花明") {
		t.Error("detail should list section variants")
	}
	if !strings.Contains(body, "古灯") {
		t.Error("detail should list divine title variants")
	}
	// The synthesized preview is rendered as markdown headings.
	if !strings.Contains(body, "御神签") {
		t.Error("detail should carry a rendered preview")
	}
}

func TestDetailPageNotFound(t *testing.T) {
	handler, _ := testServer(t)
	rec := get(t, handler, "/corpus/"+url.PathEscape("大吉")+"/"+url.PathEscape("不存在"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDetailErrorAsJSON(t *testing.T) {
	handler, _ := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/corpus/"+url.PathEscape("大吉")+"/"+url.PathEscape("不存在"), nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if payload.Error.Code != "NOT_FOUND" {
		t.Errorf("code = %q, want NOT_FOUND", payload.Error.Code)
	}
}

func TestSweepRequiresConfirm(t *testing.T) {
	handler, _ := testServer(t)
	req := httptest.NewRequest(http.MethodPost, "/corpus/sweep", strings.NewReader("confirm=false"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSweepRedirects(t *testing.T) {
	handler, _ := testServer(t)
	req := httptest.NewRequest(http.MethodPost, "/corpus/sweep", strings.NewReader("confirm=true"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/corpus" {
		t.Errorf("location = %q, want /corpus", loc)
	}
}

func TestSweepAsJSON(t *testing.T) {
	handler, _ := testServer(t)
	req := httptest.NewRequest(http.MethodPost, "/corpus/sweep", strings.NewReader("confirm=true"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var payload struct {
		Deleted int `json:"deleted"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
}

func TestDailyGetEndpoint(t *testing.T) {
	handler, _ := testServer(t)
	rec := get(t, handler, "/draws/alice")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var payload struct {
		Found bool `json:"found"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if payload.Found {
		t.Error("found = true, want false for an empty store")
	}
}

func TestStaticServed(t *testing.T) {
	handler, _ := testServer(t)
	rec := get(t, handler, "/static/style.css")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	handler, _ := testServer(t)
	rec := get(t, handler, "/corpus")
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing X-Content-Type-Options header")
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("missing Content-Security-Policy header")
	}
}
