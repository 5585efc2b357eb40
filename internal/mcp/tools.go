package mcp

import "github.com/mark3labs/mcp-go/mcp"

var overviewToolDef = mcp.NewTool("ledger_overview",
	mcp.WithDescription("Fetch the full materialized ledger document for a character: identity, active context, latest snapshot/market payloads, observations, history, and milestones."),
	mcp.WithString("character", mcp.Required(),
		mcp.Description("Character name or slug")),
)

var observationsToolDef = mcp.NewTool("ledger_observations",
	mcp.WithDescription("Fetch the current merged observation sentences for a character."),
	mcp.WithString("character", mcp.Required(),
		mcp.Description("Character name or slug")),
)

var historyToolDef = mcp.NewTool("ledger_history",
	mcp.WithDescription("Fetch retained snapshot history for a character, newest first."),
	mcp.WithString("character", mcp.Required(),
		mcp.Description("Character name or slug")),
	mcp.WithNumber("limit",
		mcp.Description("Maximum entries to return (default: all retained)")),
)

var milestonesToolDef = mcp.NewTool("ledger_milestones",
	mcp.WithDescription("Fetch retained milestones for a character, newest first."),
	mcp.WithString("character", mcp.Required(),
		mcp.Description("Character name or slug")),
)

var journalToolDef = mcp.NewTool("ledger_journal",
	mcp.WithDescription("Read the append-only journal for a character. The journal records every accepted update since the ledger was created."),
	mcp.WithString("character", mcp.Required(),
		mcp.Description("Character name or slug")),
	mcp.WithNumber("limit",
		mcp.Description("Return only the most recent N rows (default: all)")),
)

var listToolDef = mcp.NewTool("ledger_list",
	mcp.WithDescription("List every character with a ledger, most recently updated first."),
)

var recordCharacterToolDef = mcp.NewTool("ledger_record_character",
	mcp.WithDescription("Record a live identity confirmation for a character: level, league, and class as currently observed."),
	mcp.WithString("character", mcp.Required(),
		mcp.Description("Character display name")),
	mcp.WithString("account",
		mcp.Description("Account name")),
	mcp.WithString("realm",
		mcp.Description("Realm: pc, xbox, or sony")),
	mcp.WithString("league",
		mcp.Description("Current league")),
	mcp.WithString("class",
		mcp.Description("Character class")),
	mcp.WithNumber("level",
		mcp.Description("Current level")),
)
