package ops

import (
	"context"
	"log/slog"

	"github.com/litesuggar/omikuji/internal/config"
	"github.com/litesuggar/omikuji/internal/db"
	"github.com/litesuggar/omikuji/internal/fortune"
)

// SweepOutput contains the result of the Sweep operation.
type SweepOutput struct {
	Deleted int    `json:"deleted"`
	Cutoff  string `json:"cutoff,omitempty"` // empty when retention is disabled
}

// Sweep deletes corpus entries whose updated date fell out of the retention
// window. A non-positive retention keeps entries forever and makes the
// sweep a no-op. Every corpus read and write path runs this first, so
// expired entries are never observable even without a background job.
func Sweep(ctx context.Context, q db.Querier, cfg *config.Config) (*SweepOutput, error) {
	if cfg.CacheExpireDays <= 0 {
		return &SweepOutput{}, nil
	}

	cutoff := fortune.Today(cfg.Location()).AddDays(-cfg.CacheExpireDays)
	deleted, err := db.DeleteOlderThan(q, cutoff)
	if err != nil {
		return nil, err
	}

	if deleted > 0 {
		slog.Info("swept expired corpus entries", "deleted", deleted, "cutoff", cutoff.String())
	}

	return &SweepOutput{Deleted: deleted, Cutoff: cutoff.String()}, nil
}
