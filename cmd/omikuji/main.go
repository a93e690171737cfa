package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/litesuggar/omikuji/internal/config"
	"github.com/litesuggar/omikuji/internal/daily"
	"github.com/litesuggar/omikuji/internal/db"
	"github.com/litesuggar/omikuji/internal/llm"
	"github.com/litesuggar/omikuji/internal/mcp"
	"github.com/litesuggar/omikuji/internal/ops"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"draw": true, "daily": true, "invalidate": true,
	"corpus-get": true, "corpus-list": true, "sweep": true,
	"web":  true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	// Known subcommand → CLI
	if cliCommands[arg] {
		return true
	}
	// --help or --version → CLI
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
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

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
    ___  __  __ ___ _  ___   _    _ ___
   / _ \|  \/  |_ _| |/ / | | |  | |_ _|
  | (_) | |\/| || || ' <| |_| |__| || |
   \___/|_|  |_|___|_|\_\\___/\____/___|

  Fortune sign cache and generator

  Usage: omikuji <command> [options]
         omikuji --help

  MCP server mode requires piped input.`)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	baseDir := filepath.Join(homeDir, ".omikuji")

	database, err := db.Init(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	cfg, err := config.Load(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	db.ConfigurePool(database, cfg)

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		slog.Warn("config disables unknown tools", "tools", unknown)
	}

	store, err := daily.NewStore(baseDir, cfg.Location())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize daily cache: %v\n", err)
		os.Exit(1)
	}

	// Without an API key draws still serve cache hits; only generation
	// on a corpus miss fails.
	var generator ops.Generator
	if cfg.APIKey() != "" {
		generator, err = llm.NewClient(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: failed to initialize generator: %v\n", err)
			os.Exit(1)
		}
	} else {
		slog.Warn("no API key configured, generation disabled", "env", config.APIKeyEnv)
	}

	env := &appEnv{
		db:        database,
		cfg:       cfg,
		daily:     store,
		generator: generator,
	}

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(env)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'omikuji --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(database, cfg, store, generator, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
