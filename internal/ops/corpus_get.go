package ops

import (
	"context"
	"database/sql"

	"github.com/litesuggar/omikuji/internal/config"
	"github.com/litesuggar/omikuji/internal/db"
	"github.com/litesuggar/omikuji/internal/errors"
	"github.com/litesuggar/omikuji/internal/fortune"
)

// CorpusGetInput contains parameters for the CorpusGet operation.
type CorpusGetInput struct {
	Level string // required
	Theme string // required
}

// CorpusGetOutput contains the result of the CorpusGet operation.
type CorpusGetOutput struct {
	Entry *fortune.CorpusEntry `json:"entry"`
}

// CorpusGet retrieves the corpus entry for a key. Expired entries are swept
// first, so a hit is always within the retention window.
func CorpusGet(ctx context.Context, database *sql.DB, cfg *config.Config, input CorpusGetInput) (*CorpusGetOutput, error) {
	level, theme, err := ValidateKey(input.Level, input.Theme)
	if err != nil {
		return nil, err
	}
	if level == "" {
		return nil, errors.NewInvalidRequest("level is required")
	}

	if _, err := Sweep(ctx, database, cfg); err != nil {
		return nil, err
	}

	entry, err := db.GetEntry(database, level, theme)
	if err != nil {
		return nil, err
	}

	return &CorpusGetOutput{Entry: entry}, nil
}
