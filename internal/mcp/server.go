// Package mcp exposes the fortune cache as MCP tools over stdio.
package mcp

import (
	"database/sql"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/litesuggar/omikuji/internal/config"
	"github.com/litesuggar/omikuji/internal/daily"
	"github.com/litesuggar/omikuji/internal/ops"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"omikuji_draw": {
		def:     drawToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDraw },
	},
	"omikuji_daily_get": {
		def:     dailyGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDailyGet },
	},
	"omikuji_invalidate_daily": {
		def:     invalidateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleInvalidate },
	},
	"omikuji_corpus_get": {
		def:     corpusGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCorpusGet },
	},
	"omikuji_corpus_list": {
		def:     corpusListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCorpusList },
	},
	"omikuji_sweep": {
		def:     sweepToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSweep },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with the omikuji tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(db *sql.DB, cfg *config.Config, store *daily.Store, generator ops.Generator, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"omikuji",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg, store, generator)

	disabled := make(map[string]bool)
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, store *daily.Store, generator ops.Generator, version string) error {
	s := NewServer(db, cfg, store, generator, version)
	return server.ServeStdio(s)
}
