package web

import (
	"database/sql"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/litesuggar/omikuji/internal/config"
	"github.com/litesuggar/omikuji/internal/daily"
	"github.com/litesuggar/omikuji/internal/errors"
	"github.com/litesuggar/omikuji/internal/fortune"
	"github.com/litesuggar/omikuji/internal/ops"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	daily    *daily.Store
	renderer *Renderer
}

// HandleList handles GET /corpus — list corpus entries, optionally
// filtered by grade.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	level := r.URL.Query().Get("level")

	result, err := ops.CorpusList(r.Context(), h.db, h.cfg, ops.CorpusListInput{Level: level})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData: PageData{
			Title:   "Corpus",
			Version: h.renderer.version,
			Nav:     "corpus",
		},
		Entries: result.Entries,
		Level:   level,
		Levels:  fortune.Levels,
	})
}

// HandleDetail handles GET /corpus/{level}/{theme} — view one corpus entry
// with a synthesized sign preview.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	level := r.PathValue("level")
	theme := r.PathValue("theme")

	result, err := ops.CorpusGet(r.Context(), h.db, h.cfg, ops.CorpusGetInput{
		Level: level,
		Theme: theme,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	entry := result.Entry
	sections := make([]detailSection, 0, len(entry.Sections))
	for _, s := range entry.Sections {
		sections = append(sections, detailSection{Name: s.Name, Variants: s.Variants})
	}

	// Synthesize a throwaway preview; the per-request source is fine here.
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	preview := entry.Synthesize(rng)

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: PageData{
			Title:   entry.Level + " · " + entry.Theme,
			Version: h.renderer.version,
			Nav:     "corpus",
		},
		Entry: &detailEntry{
			Level:       entry.Level,
			Theme:       entry.Theme,
			Sections:    sections,
			Intro:       entry.Intro,
			Maxim:       entry.Maxim,
			End:         entry.End,
			DivineTitle: entry.DivineTitle,
			SignNumber:  entry.SignNumber,
			CreatedDate: entry.CreatedDate.String(),
			UpdatedDate: entry.UpdatedDate.String(),
		},
		PreviewHTML: renderMarkdown(fortune.FormatMarkdown(preview)),
	})
}

// HandleDailyGet handles GET /draws/{user} — peek at a user's sign for
// today. Always JSON; an absent slot is a 200 with found=false.
func (h *Handlers) HandleDailyGet(w http.ResponseWriter, r *http.Request) {
	result, err := ops.DailyGet(h.daily, ops.DailyGetInput{
		UserID: r.PathValue("user"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleSweep handles POST /corpus/sweep — delete entries past retention.
func (h *Handlers) HandleSweep(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	if r.FormValue("confirm") != "true" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("confirm parameter must be \"true\""))
		return
	}

	result, err := ops.Sweep(r.Context(), h.db, h.cfg)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// JSON request
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, result)
		return
	}

	// Default: redirect
	http.Redirect(w, r, "/corpus", http.StatusFound)
}
