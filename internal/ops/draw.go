package ops

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/litesuggar/omikuji/internal/config"
	"github.com/litesuggar/omikuji/internal/daily"
	"github.com/litesuggar/omikuji/internal/db"
	"github.com/litesuggar/omikuji/internal/errors"
	"github.com/litesuggar/omikuji/internal/fortune"
)

// Generator produces a fresh fortune for a corpus miss. The LLM client
// implements this; tests substitute stubs.
type Generator interface {
	Generate(ctx context.Context, level, theme string) (*fortune.Fortune, error)
}

// Draw sources, in the order the cache consults them.
const (
	SourceDaily     = "daily"
	SourceCorpus    = "corpus"
	SourceGenerated = "generated"
)

// DrawDeps bundles what a draw needs. The generator may be nil; a corpus
// miss then fails with GENERATION_FAILED instead of calling out.
type DrawDeps struct {
	DB        *sql.DB
	Config    *config.Config
	Daily     *daily.Store
	Locks     *KeyLocks
	Generator Generator
}

// DrawInput contains parameters for the Draw operation.
type DrawInput struct {
	UserID string // required
	Theme  string // required
	Level  string // optional; empty draws a weighted random grade
}

// DrawOutput contains the result of the Draw operation.
type DrawOutput struct {
	DrawID  string           `json:"draw_id"`
	DrawnOn string           `json:"drawn_on"`
	Source  string           `json:"source"`
	Fortune *fortune.Fortune `json:"fortune"`
}

// Draw returns the user's fortune for today. The daily slot wins outright;
// on a miss the corpus is consulted for the drawn (level, theme), and only
// a corpus miss reaches the generator. Whatever was produced is committed
// to the daily slot so the draw is stable for the rest of the day.
func Draw(ctx context.Context, deps DrawDeps, input DrawInput) (*DrawOutput, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, errors.NewInvalidRequest("user_id is required")
	}
	level, theme, err := ValidateKey(input.Level, input.Theme)
	if err != nil {
		return nil, err
	}

	if slot, ok, err := deps.Daily.Get(input.UserID); err != nil {
		return nil, errors.NewInternal(err)
	} else if ok {
		return &DrawOutput{
			DrawID:  slot.DrawID,
			DrawnOn: slot.DrawnOn.String(),
			Source:  SourceDaily,
			Fortune: slot.Fortune,
		}, nil
	}

	if level == "" {
		level = pickLevel()
	}

	if _, err := Sweep(ctx, deps.DB, deps.Config); err != nil {
		return nil, err
	}

	var (
		record *fortune.Fortune
		source string
	)

	entry, err := db.GetEntry(deps.DB, level, theme)
	switch {
	case err == nil:
		record = synthesize(entry)
		source = SourceCorpus
	case errors.Is(err, errors.ErrNotFound):
		record, err = generate(ctx, deps, level, theme)
		if err != nil {
			return nil, err
		}
		source = SourceGenerated
	default:
		return nil, err
	}

	slot, err := commitDraw(deps.Daily, input.UserID, record)
	if err != nil {
		return nil, err
	}

	return &DrawOutput{
		DrawID:  slot.DrawID,
		DrawnOn: slot.DrawnOn.String(),
		Source:  source,
		Fortune: record,
	}, nil
}

// generate calls the generator for a corpus miss and folds the result back
// into the corpus. A record that fails validation is discarded, never
// cached. A merge lock timeout aborts the draw as transient; the caller
// retries and finds the corpus warmed by whoever held the lock.
func generate(ctx context.Context, deps DrawDeps, level, theme string) (*fortune.Fortune, error) {
	if deps.Generator == nil {
		return nil, errors.NewGenerationFailed(errors.NewInvalidRequest("no generator configured"))
	}

	record, err := deps.Generator.Generate(ctx, level, theme)
	if err != nil {
		if errors.Is(err, errors.ErrGenerationFailed) {
			return nil, err
		}
		return nil, errors.NewGenerationFailed(err)
	}

	// The requested grade is authoritative regardless of what came back.
	record.Level = level
	record.Theme = theme

	if result := fortune.Validate(record); !result.Valid {
		return nil, errors.NewGenerationFailed(
			errors.NewInvalidRecord(strings.Join(result.Problems, "; "),
				map[string]any{"problems": result.Problems}))
	}

	if _, err := Merge(ctx, deps.DB, deps.Config, deps.Locks, MergeInput{Record: record}); err != nil {
		if errors.IsTransient(err) {
			return nil, err
		}
		// The record itself is good; losing the corpus write only costs a
		// regeneration on the next miss.
		slog.Warn("corpus merge failed after generation",
			"level", level, "theme", theme, "error", err.Error())
	}

	return record, nil
}

func commitDraw(store *daily.Store, userID string, record *fortune.Fortune) (*daily.Slot, error) {
	drawID, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	slot, err := store.Put(userID, drawID, record)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return slot, nil
}
