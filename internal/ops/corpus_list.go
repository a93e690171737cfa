package ops

import (
	"context"
	"database/sql"
	"sort"

	"github.com/litesuggar/omikuji/internal/config"
	"github.com/litesuggar/omikuji/internal/db"
	"github.com/litesuggar/omikuji/internal/errors"
	"github.com/litesuggar/omikuji/internal/fortune"
)

// CorpusListInput contains parameters for the CorpusList operation.
type CorpusListInput struct {
	Level string // optional; empty lists every level
}

// CorpusListItem summarizes one corpus entry.
type CorpusListItem struct {
	Level       string `json:"level"`
	Theme       string `json:"theme"`
	Variants    int    `json:"variants"` // total stored variants across all fields
	CreatedDate string `json:"created_date"`
	UpdatedDate string `json:"updated_date"`
}

// CorpusListOutput contains the result of the CorpusList operation.
type CorpusListOutput struct {
	Entries []CorpusListItem `json:"entries"`
}

// CorpusList summarizes the corpus, optionally restricted to one level.
// Results are ordered by level grade, then theme.
func CorpusList(ctx context.Context, database *sql.DB, cfg *config.Config, input CorpusListInput) (*CorpusListOutput, error) {
	level := input.Level
	if level != "" && !fortune.IsLevel(level) {
		return nil, errors.NewInvalidRequest("unknown level")
	}

	if _, err := Sweep(ctx, database, cfg); err != nil {
		return nil, err
	}

	levels := fortune.Levels
	if level != "" {
		levels = []string{level}
	}

	output := &CorpusListOutput{Entries: []CorpusListItem{}}
	for _, l := range levels {
		entries, err := db.ListEntries(database, l)
		if err != nil {
			return nil, err
		}

		themes := make([]string, 0, len(entries))
		for theme := range entries {
			themes = append(themes, theme)
		}
		sort.Strings(themes)

		for _, theme := range themes {
			e := entries[theme]
			output.Entries = append(output.Entries, CorpusListItem{
				Level:       e.Level,
				Theme:       e.Theme,
				Variants:    countVariants(e),
				CreatedDate: e.CreatedDate.String(),
				UpdatedDate: e.UpdatedDate.String(),
			})
		}
	}

	return output, nil
}

func countVariants(e *fortune.CorpusEntry) int {
	n := len(e.Intro) + len(e.Maxim) + len(e.End) + len(e.DivineTitle) + len(e.SignNumber)
	for _, s := range e.Sections {
		n += len(s.Variants)
	}
	return n
}
