package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvalette/poeledger/internal/config"
	"github.com/nvalette/poeledger/internal/ledger"
	"github.com/nvalette/poeledger/internal/mcp"
	"github.com/nvalette/poeledger/internal/ops"
	"github.com/nvalette/poeledger/internal/registry"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"sync-character": true, "capture": true, "sync-market": true,
	"show": true, "observations": true, "history": true,
	"milestones": true, "journal": true, "list": true,
	"rebuild": true, "help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version
// info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without
// args.
func printBanner() {
	fmt.Println(`
  poeledger — character progression ledger

  Per-character append-only journal + materialized summary document.

  Usage: poeledger <command> [options]
         poeledger --help

  MCP server mode requires piped input.`)
}

// baseDir resolves the ledger home: POELEDGER_HOME or ~/.poeledger.
func baseDir() (string, error) {
	if dir := os.Getenv("POELEDGER_HOME"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".poeledger"), nil
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before any initialization
	if isHelpOrVersion() {
		app := newCLIApp(ops.Env{}, nil, "")
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	base, err := baseDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	db, err := registry.Init(base)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize registry: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	cfg, err := config.Load(base)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		fmt.Fprintf(os.Stderr, "warning: unknown tool names in disabled_tools: %v (valid: %v)\n",
			unknown, mcp.AllToolNames())
	}

	env := ops.Env{
		Store:    ledger.NewStore(base),
		Registry: db,
	}

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(env, cfg, base)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'poeledger --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(env, cfg, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
