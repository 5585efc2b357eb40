package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nvalette/poeledger/internal/config"
	"github.com/nvalette/poeledger/internal/errors"
	"github.com/nvalette/poeledger/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	env ops.Env
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(env ops.Env, cfg *config.Config) *Handlers {
	return &Handlers{env: env, cfg: cfg}
}

// Request types for each tool

// CharacterRequest addresses a character by name or slug.
type CharacterRequest struct {
	Character string `json:"character"`
}

// LimitedRequest addresses a character with an optional entry limit.
type LimitedRequest struct {
	Character string `json:"character"`
	Limit     int    `json:"limit,omitempty"`
}

// RecordCharacterRequest represents the arguments for record_character.
type RecordCharacterRequest struct {
	Character string `json:"character"`
	Account   string `json:"account,omitempty"`
	Realm     string `json:"realm,omitempty"`
	League    string `json:"league,omitempty"`
	Class     string `json:"class,omitempty"`
	Level     *int   `json:"level,omitempty"`
}

// Handler implementations

// HandleOverview handles the ledger_overview tool call.
func (h *Handlers) HandleOverview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CharacterRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Get(h.env, ops.GetInput{Character: input.Character})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleObservations handles the ledger_observations tool call.
func (h *Handlers) HandleObservations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CharacterRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Observations(h.env, ops.ObservationsInput{Character: input.Character})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleHistory handles the ledger_history tool call.
func (h *Handlers) HandleHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LimitedRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.History(h.env, ops.HistoryInput{
		Character: input.Character,
		Limit:     input.Limit,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleMilestones handles the ledger_milestones tool call.
func (h *Handlers) HandleMilestones(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CharacterRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Milestones(h.env, ops.MilestonesInput{Character: input.Character})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleJournal handles the ledger_journal tool call.
func (h *Handlers) HandleJournal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LimitedRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Journal(h.env, ops.JournalInput{
		Character: input.Character,
		Limit:     input.Limit,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleList handles the ledger_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.List(h.env)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRecordCharacter handles the ledger_record_character tool call.
func (h *Handlers) HandleRecordCharacter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RecordCharacterRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	account := input.Account
	if account == "" {
		account = h.cfg.DefaultAccount
	}
	realm := input.Realm
	if realm == "" {
		realm = h.cfg.DefaultRealm
	}

	result, err := ops.SyncCharacter(h.env, ops.SyncCharacterInput{
		Name:    input.Character,
		Account: account,
		Realm:   realm,
		League:  input.League,
		Class:   input.Class,
		Level:   input.Level,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: internal error details are not exposed to prevent leaking paths or
// SQL errors.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if lErr, ok := err.(*errors.LedgerError); ok {
		errorObj := map[string]any{
			"code":    lErr.Code,
			"message": lErr.Message,
			"status":  lErr.Status,
		}
		if lErr.Code != errors.ErrInternal && lErr.Details != nil {
			errorObj["details"] = lErr.Details
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
