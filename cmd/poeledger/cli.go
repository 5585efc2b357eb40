package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/nvalette/poeledger/internal/config"
	"github.com/nvalette/poeledger/internal/errors"
	"github.com/nvalette/poeledger/internal/ops"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(env ops.Env, cfg *config.Config, base string) *cli.App {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	app := &cli.App{
		Name:    "poeledger",
		Usage:   "Character progression ledger",
		Version: Version,
		Commands: []*cli.Command{
			syncCharacterCmd(env, cfg),
			captureCmd(env, cfg, base),
			syncMarketCmd(env),
			showCmd(env),
			observationsCmd(env),
			historyCmd(env),
			milestonesCmd(env),
			journalCmd(env),
			listCmd(env),
			rebuildCmd(env),
		},
	}
	// Disable default exit error handler to allow proper error return in
	// tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// characterFlag is shared by every command addressing one character.
func characterFlag(cfg *config.Config) *cli.StringFlag {
	return &cli.StringFlag{
		Name: "character", Aliases: []string{"c"},
		Value: cfg.DefaultCharacter,
		Usage: "Character name",
	}
}

// syncCharacterCmd creates the sync-character command.
func syncCharacterCmd(env ops.Env, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "sync-character",
		Usage: "Record a live identity confirmation for a character",
		Flags: []cli.Flag{
			characterFlag(cfg),
			&cli.StringFlag{Name: "account", Aliases: []string{"a"}, Value: cfg.DefaultAccount, Usage: "Account name (Name#1234)"},
			&cli.StringFlag{Name: "realm", Aliases: []string{"r"}, Value: cfg.DefaultRealm, Usage: "Realm: pc|xbox|sony"},
			&cli.StringFlag{Name: "league", Usage: "Current league"},
			&cli.StringFlag{Name: "class", Usage: "Character class"},
			&cli.IntFlag{Name: "level", Usage: "Current level"},
			&cli.StringFlag{Name: "from", Usage: "Character JSON document to read identity fields from"},
		},
		Action: func(c *cli.Context) error {
			input := ops.SyncCharacterInput{
				Name:    c.String("character"),
				Account: c.String("account"),
				Realm:   c.String("realm"),
				League:  c.String("league"),
				Class:   c.String("class"),
			}
			if c.IsSet("level") {
				level := c.Int("level")
				input.Level = &level
			}

			if from := c.String("from"); from != "" {
				doc, err := loadJSONFile(from)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				applyCharacterDoc(&input, doc)
			}

			output, err := ops.SyncCharacter(env, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// applyCharacterDoc fills identity fields from a character JSON document
// without overriding explicit flags.
func applyCharacterDoc(input *ops.SyncCharacterInput, doc map[string]any) {
	if input.Name == "" {
		if name, ok := doc["name"].(string); ok {
			input.Name = name
		}
	}
	if input.League == "" {
		if league, ok := doc["league"].(string); ok {
			input.League = league
		}
	}
	if input.Class == "" {
		if class, ok := doc["class"].(string); ok {
			input.Class = class
		}
	}
	if input.Level == nil {
		if level, ok := doc["level"].(float64); ok {
			l := int(level)
			input.Level = &l
		}
	}
}

// captureCmd creates the capture command.
func captureCmd(env ops.Env, cfg *config.Config, base string) *cli.Command {
	return &cli.Command{
		Name:  "capture",
		Usage: "Diff a panel-stats capture against the stored baseline and record it",
		Flags: []cli.Flag{
			characterFlag(cfg),
			&cli.StringFlag{Name: "account", Aliases: []string{"a"}, Value: cfg.DefaultAccount, Usage: "Account name"},
			&cli.StringFlag{Name: "realm", Aliases: []string{"r"}, Value: cfg.DefaultRealm, Usage: "Realm: pc|xbox|sony"},
			&cli.StringFlag{Name: "snapshot", Required: true, Usage: "Snapshot JSON (character + items payload)"},
			&cli.StringFlag{Name: "panel-stats", Required: true, Usage: "Panel stats JSON for this capture"},
			&cli.StringFlag{Name: "state-dir", Usage: "Capture state directory (default from config)"},
			&cli.BoolFlag{Name: "reset-baseline", Usage: "Treat this run as the first snapshot"},
			&cli.BoolFlag{Name: "no-archive", Usage: "Skip archiving per-capture artifacts"},
		},
		Action: func(c *cli.Context) error {
			snapshot, err := loadJSONFile(c.String("snapshot"))
			if err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}
			panelStats, err := loadJSONFile(c.String("panel-stats"))
			if err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}

			stateDir := c.String("state-dir")
			if stateDir == "" {
				stateDir = cfg.ResolveStateDir(base)
			}

			output, err := ops.Capture(env, ops.CaptureInput{
				Character:      c.String("character"),
				Account:        c.String("account"),
				Realm:          c.String("realm"),
				Snapshot:       snapshot,
				PanelStats:     panelStats,
				StateDir:       stateDir,
				SnapshotPath:   c.String("snapshot"),
				PanelStatsPath: c.String("panel-stats"),
				ResetBaseline:  c.Bool("reset-baseline"),
				Archive:        !c.Bool("no-archive"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// syncMarketCmd creates the sync-market command.
func syncMarketCmd(env ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "sync-market",
		Usage: "Fold an external-value (market) snapshot into the ledger",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "snapshot", Required: true, Usage: "Market snapshot JSON"},
		},
		Action: func(c *cli.Context) error {
			raw, err := loadJSONFile(c.String("snapshot"))
			if err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}

			output, err := ops.SyncMarket(env, ops.SyncMarketInput{
				Doc:        ops.DecodeMarketDoc(raw),
				SourcePath: c.String("snapshot"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// showCmd creates the show command.
func showCmd(env ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print the full ledger document for a character",
		ArgsUsage: "<character>",
		Action: func(c *cli.Context) error {
			output, err := ops.Get(env, ops.GetInput{Character: firstArg(c)})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output.Document)
		},
	}
}

// observationsCmd creates the observations command.
func observationsCmd(env ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "observations",
		Usage:     "Print the current observation sentences for a character",
		ArgsUsage: "<character>",
		Action: func(c *cli.Context) error {
			output, err := ops.Observations(env, ops.ObservationsInput{Character: firstArg(c)})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// historyCmd creates the history command.
func historyCmd(env ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "Print retained snapshot history for a character, newest first",
		ArgsUsage: "<character>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum entries to print"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.History(env, ops.HistoryInput{
				Character: firstArg(c),
				Limit:     c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// milestonesCmd creates the milestones command.
func milestonesCmd(env ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "milestones",
		Usage:     "Print retained milestones for a character, newest first",
		ArgsUsage: "<character>",
		Action: func(c *cli.Context) error {
			output, err := ops.Milestones(env, ops.MilestonesInput{Character: firstArg(c)})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// journalCmd creates the journal command.
func journalCmd(env ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "journal",
		Usage:     "Print the append-only journal for a character",
		ArgsUsage: "<character>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Print only the most recent N rows"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Journal(env, ops.JournalInput{
				Character: firstArg(c),
				Limit:     c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(env ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List every character with a ledger",
		Action: func(c *cli.Context) error {
			output, err := ops.List(env)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// rebuildCmd creates the rebuild command.
func rebuildCmd(env ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "rebuild",
		Usage:     "Re-materialize the ledger document by replaying the journal",
		ArgsUsage: "<character>",
		Action: func(c *cli.Context) error {
			output, err := ops.Rebuild(env, ops.RebuildInput{Character: firstArg(c)})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// Helpers

// firstArg returns the first positional argument.
func firstArg(c *cli.Context) string {
	if c.NArg() > 0 {
		return c.Args().First()
	}
	return ""
}

// loadJSONFile reads a JSON object from a file.
func loadJSONFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// outputJSON prints a result as indented JSON.
func outputJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// outputError prints a structured error to stderr and returns it so the
// process exits non-zero.
func outputError(err error) error {
	if lErr, ok := err.(*errors.LedgerError); ok {
		payload, _ := json.MarshalIndent(map[string]any{
			"error": map[string]any{
				"code":    lErr.Code,
				"message": lErr.Message,
				"status":  lErr.Status,
			},
		}, "", "  ")
		fmt.Fprintln(os.Stderr, string(payload))
		return err
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	return err
}
