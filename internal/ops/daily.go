package ops

import (
	"strings"

	"github.com/litesuggar/omikuji/internal/daily"
	"github.com/litesuggar/omikuji/internal/errors"
	"github.com/litesuggar/omikuji/internal/fortune"
)

// DailyGetInput contains parameters for the DailyGet operation.
type DailyGetInput struct {
	UserID string // required
}

// DailyGetOutput contains the result of the DailyGet operation.
type DailyGetOutput struct {
	Found   bool             `json:"found"`
	DrawID  string           `json:"draw_id,omitempty"`
	DrawnOn string           `json:"drawn_on,omitempty"`
	Fortune *fortune.Fortune `json:"fortune,omitempty"`
}

// DailyGet peeks at the user's daily slot without drawing. Stale and
// corrupt slots read as absent.
func DailyGet(store *daily.Store, input DailyGetInput) (*DailyGetOutput, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, errors.NewInvalidRequest("user_id is required")
	}

	slot, ok, err := store.Get(input.UserID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if !ok {
		return &DailyGetOutput{Found: false}, nil
	}

	return &DailyGetOutput{
		Found:   true,
		DrawID:  slot.DrawID,
		DrawnOn: slot.DrawnOn.String(),
		Fortune: slot.Fortune,
	}, nil
}

// InvalidateInput contains parameters for the Invalidate operation.
type InvalidateInput struct {
	UserID string // required
}

// InvalidateOutput contains the result of the Invalidate operation.
type InvalidateOutput struct {
	Invalidated bool `json:"invalidated"` // false when no slot existed
}

// Invalidate discards the user's daily slot so the next draw regenerates.
// Invalidating an absent slot succeeds and reports Invalidated=false.
func Invalidate(store *daily.Store, input InvalidateInput) (*InvalidateOutput, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, errors.NewInvalidRequest("user_id is required")
	}

	existed, err := store.Invalidate(input.UserID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &InvalidateOutput{Invalidated: existed}, nil
}
