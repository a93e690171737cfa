package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/litesuggar/omikuji/internal/config"
	"github.com/litesuggar/omikuji/internal/daily"
	"github.com/litesuggar/omikuji/internal/errors"
	"github.com/litesuggar/omikuji/internal/fortune"
	"github.com/litesuggar/omikuji/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db        *sql.DB
	cfg       *config.Config
	daily     *daily.Store
	locks     *ops.KeyLocks
	generator ops.Generator
}

// NewHandlers creates a new Handlers instance. The generator may be nil
// when no API key is configured; draws then serve cache hits only.
func NewHandlers(db *sql.DB, cfg *config.Config, store *daily.Store, generator ops.Generator) *Handlers {
	return &Handlers{
		db:        db,
		cfg:       cfg,
		daily:     store,
		locks:     ops.NewKeyLocks(),
		generator: generator,
	}
}

// Request types for each tool

// DrawRequest represents the arguments for draw.
type DrawRequest struct {
	UserID string `json:"user_id"`
	Theme  string `json:"theme"`
	Level  string `json:"level,omitempty"`
}

// UserRequest represents the arguments for the user-addressed tools.
type UserRequest struct {
	UserID string `json:"user_id"`
}

// CorpusGetRequest represents the arguments for corpus_get.
type CorpusGetRequest struct {
	Level string `json:"level"`
	Theme string `json:"theme"`
}

// CorpusListRequest represents the arguments for corpus_list.
type CorpusListRequest struct {
	Level string `json:"level,omitempty"`
}

// DrawResponse is the draw tool payload. Text carries the rendered sign
// unless send_by_chat is set, in which case the host model re-renders the
// raw record itself.
type DrawResponse struct {
	*ops.DrawOutput
	Text string `json:"text,omitempty"`
}

// Handler implementations

// HandleDraw handles the draw tool call.
func (h *Handlers) HandleDraw(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DrawRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Draw(ctx, h.drawDeps(), ops.DrawInput{
		UserID: input.UserID,
		Theme:  input.Theme,
		Level:  input.Level,
	})
	if err != nil {
		return errorResult(err), nil
	}

	resp := &DrawResponse{DrawOutput: result}
	if !h.cfg.SendByChat {
		resp.Text = fortune.Format(result.Fortune, "")
	}
	return successResult(resp)
}

// HandleDailyGet handles the daily_get tool call.
func (h *Handlers) HandleDailyGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UserRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.DailyGet(h.daily, ops.DailyGetInput{UserID: input.UserID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleInvalidate handles the invalidate_daily tool call.
func (h *Handlers) HandleInvalidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UserRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Invalidate(h.daily, ops.InvalidateInput{UserID: input.UserID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCorpusGet handles the corpus_get tool call.
func (h *Handlers) HandleCorpusGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CorpusGetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.CorpusGet(ctx, h.db, h.cfg, ops.CorpusGetInput{
		Level: input.Level,
		Theme: input.Theme,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCorpusList handles the corpus_list tool call.
func (h *Handlers) HandleCorpusList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CorpusListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.CorpusList(ctx, h.db, h.cfg, ops.CorpusListInput{Level: input.Level})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSweep handles the sweep tool call.
func (h *Handlers) HandleSweep(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Sweep(ctx, h.db, h.cfg)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

func (h *Handlers) drawDeps() ops.DrawDeps {
	return ops.DrawDeps{
		DB:        h.db,
		Config:    h.cfg,
		Daily:     h.daily,
		Locks:     h.locks,
		Generator: h.generator,
	}
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if oErr, ok := err.(*errors.OmikujiError); ok {
		errorObj := map[string]any{
			"code":    oErr.Code,
			"message": oErr.Message,
			"status":  oErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if oErr.Code != errors.ErrInternal && oErr.Details != nil {
			errorObj["details"] = oErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
