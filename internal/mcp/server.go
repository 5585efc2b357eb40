package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nvalette/poeledger/internal/config"
	"github.com/nvalette/poeledger/internal/ops"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"ledger_overview": {
		def:     overviewToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleOverview },
	},
	"ledger_observations": {
		def:     observationsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleObservations },
	},
	"ledger_history": {
		def:     historyToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleHistory },
	},
	"ledger_milestones": {
		def:     milestonesToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMilestones },
	},
	"ledger_journal": {
		def:     journalToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleJournal },
	},
	"ledger_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"ledger_record_character": {
		def:     recordCharacterToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRecordCharacter },
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

// ValidateDisabledTools returns a list of unknown tool names from the given
// list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with the ledger tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(env ops.Env, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"poeledger",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(env, cfg)

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
func Run(env ops.Env, cfg *config.Config, version string) error {
	s := NewServer(env, cfg, version)
	return server.ServeStdio(s)
}
