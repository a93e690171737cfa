package mcp

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/litesuggar/omikuji/internal/fortune"
)

var drawToolDef = mcp.NewTool("omikuji_draw",
	mcp.WithDescription("Draw the user's fortune sign for today. The result is stable for the rest of the day; repeat calls return the same sign."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("Stable identifier of the user drawing the sign."),
	),
	mcp.WithString("theme",
		mcp.Required(),
		mcp.Description("Sign theme, e.g. 旅行, 考试, 姻缘."),
	),
	mcp.WithString("level",
		mcp.Description("Optional fortune grade ("+strings.Join(fortune.Levels, ", ")+"). Omit to draw a weighted random grade."),
	),
)

var dailyGetToolDef = mcp.NewTool("omikuji_daily_get",
	mcp.WithDescription("Peek at the user's sign for today without drawing one."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("Stable identifier of the user."),
	),
)

var invalidateToolDef = mcp.NewTool("omikuji_invalidate_daily",
	mcp.WithDescription("Discard the user's sign for today so the next draw produces a fresh one."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("Stable identifier of the user."),
	),
)

var corpusGetToolDef = mcp.NewTool("omikuji_corpus_get",
	mcp.WithDescription("Inspect the stored sign-text variants for one (level, theme) key."),
	mcp.WithString("level",
		mcp.Required(),
		mcp.Description("Fortune grade ("+strings.Join(fortune.Levels, ", ")+")."),
	),
	mcp.WithString("theme",
		mcp.Required(),
		mcp.Description("Sign theme."),
	),
)

var corpusListToolDef = mcp.NewTool("omikuji_corpus_list",
	mcp.WithDescription("List corpus entries with variant counts, optionally restricted to one grade."),
	mcp.WithString("level",
		mcp.Description("Optional fortune grade filter."),
	),
)

var sweepToolDef = mcp.NewTool("omikuji_sweep",
	mcp.WithDescription("Delete corpus entries that fell out of the retention window."),
)
