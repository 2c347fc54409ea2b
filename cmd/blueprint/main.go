package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hpungsan/blueprint/internal/config"
	"github.com/hpungsan/blueprint/internal/db"
	"github.com/hpungsan/blueprint/internal/logger"
	"github.com/hpungsan/blueprint/internal/mcp"
	"github.com/hpungsan/blueprint/internal/ops"
	"github.com/hpungsan/blueprint/internal/recordstore"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"import": true, "files": true, "doc": true, "counts": true,
	"items": true, "apply": true, "wizard": true, "projects": true,
	"export": true, "serve": true,
	"help": true,
}

// env is everything a command needs. It is nil for --help and --version.
type env struct {
	o      *ops.Orchestrator
	cfg    *config.Config
	logger *zap.Logger
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
	// Global flags (--email, --project...) come before the subcommand.
	if len(arg) > 1 && arg[0] == '-' {
		return true
	}
	return false
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
   ___  _                     _       _
  | _ )| |_  _ ___ _ __ _ _(_)_ _ | |_
  | _ \| | || / -_) '_ \ '_| | ' \|  _|
  |___/|_|\_,_\___| .__/_| |_|_||_|\__|
                  |_|

  Business plan workspace

  Usage: blueprint <command> [options]
         blueprint --help

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

	cliMode := isCLIMode()

	// Unknown argument + terminal → show error (don't start MCP server)
	if !cliMode && len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'blueprint --help' for usage.\n")
		os.Exit(1)
	}

	e, database, err := setup(!cliMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()
	defer func() { _ = e.logger.Sync() }()

	if cliMode {
		app := newCLIApp(e)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// MCP server mode (default)
	if err := mcp.Run(context.Background(), e.o, e.cfg, Version); err != nil {
		e.logger.Error("mcp server stopped", zap.Error(err))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration, opens the database under ~/.blueprint and
// builds the orchestrator. quiet drops console logging for the MCP server.
func setup(quiet bool) (*env, *sql.DB, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, nil, fmt.Errorf("could not determine home directory: %w", err)
	}
	baseDir := filepath.Join(homeDir, config.DirName)

	cwd, err := os.Getwd()
	if err != nil {
		cwd = baseDir
	}
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	config.ApplyEnv(cfg)

	database, err := db.Init(baseDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	db.ConfigurePool(database, cfg)

	logFile := cfg.LogFile
	if logFile != "" && !filepath.IsAbs(logFile) {
		logFile = filepath.Join(baseDir, logFile)
	}
	l := logger.New(logger.Options{FilePath: logFile, Debug: cfg.Debug, Quiet: quiet})

	o, err := ops.New(ops.Options{
		Config: cfg,
		Store:  recordstore.NewSQLite(database),
		Logger: l,
	})
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to start: %w", err)
	}
	return &env{o: o, cfg: cfg, logger: l}, database, nil
}
