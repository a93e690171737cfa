package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/litesuggar/omikuji/internal/config"
	"github.com/litesuggar/omikuji/internal/db"
	"github.com/litesuggar/omikuji/internal/errors"
	"github.com/litesuggar/omikuji/internal/fortune"
)

// MergeInput contains parameters for the Merge operation.
type MergeInput struct {
	Record *fortune.Fortune // required, must pass validation
}

// MergeOutput contains the result of the Merge operation.
type MergeOutput struct {
	Level   string `json:"level"`
	Theme   string `json:"theme"`
	Created bool   `json:"created"` // true when the key was first seeded
}

// Merge folds a fortune record into the corpus entry for its (level, theme)
// key, creating the entry if the key is new. The whole read-merge-write runs
// inside one transaction under the key lock, so concurrent merges serialize
// and a failed merge leaves the entry exactly as it was.
func Merge(ctx context.Context, database *sql.DB, cfg *config.Config, locks *KeyLocks, input MergeInput) (*MergeOutput, error) {
	if input.Record == nil {
		return nil, errors.NewInvalidRequest("record is required")
	}
	if result := fortune.Validate(input.Record); !result.Valid {
		return nil, errors.NewInvalidRecord(strings.Join(result.Problems, "; "),
			map[string]any{"problems": result.Problems})
	}

	level, theme, err := ValidateKey(input.Record.Level, input.Record.Theme)
	if err != nil {
		return nil, err
	}

	release, err := locks.Acquire(ctx, level, theme, cfg.LockTimeout())
	if err != nil {
		return nil, err
	}
	defer release()

	// Expire before merging so a stale entry is replaced, not extended.
	if _, err := Sweep(ctx, database, cfg); err != nil {
		return nil, err
	}

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer tx.Rollback()

	today := fortune.Today(cfg.Location())

	created := false
	entry, err := db.GetEntry(tx, level, theme)
	switch {
	case errors.Is(err, errors.ErrNotFound):
		entry = fortune.NewEntry(input.Record, today)
		created = true
		if err := db.InsertEntry(tx, entry); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		entry.MergeRecord(input.Record, today)
		if err := db.UpdateEntry(tx, entry); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return &MergeOutput{Level: level, Theme: theme, Created: created}, nil
}
