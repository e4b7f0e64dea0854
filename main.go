package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dpshade/coverdraft/internal/api"
	"github.com/dpshade/coverdraft/internal/cli"
	"github.com/dpshade/coverdraft/internal/config"
	"github.com/dpshade/coverdraft/internal/logger"
	"github.com/dpshade/coverdraft/internal/service"
	"github.com/dpshade/coverdraft/internal/ui"
)

var version = "0.1.0"

func printHelp() {
	fmt.Printf(`coverdraft - Terminal-based cover letter builder

USAGE:
    coverdraft [OPTIONS] [COMMAND]

OPTIONS:
    --help          Show this help information
    --version       Print version information
    --init          Create the library and add the starter templates
    --api-server    Start the HTTP API server
    --port          Port for the API server (default: server.port, 8080)
    --config        Path to a coverdraft.yaml file
    --verbose       Include error details and debug logging

COMMANDS:
    (no command)          Start interactive TUI mode
    templates, ls         List templates
    search <query>        Fuzzy-search templates
    template <id>         Show a template
    fields                List the placeholder tokens
    render <id>           Fill a template with --set field=value
    letters               List your saved letters
    letter <id>           Show a saved letter
    save <template-id>    Save a rendered template as a letter
    duplicate <id>        Copy a saved letter
    delete, rm <id>       Delete a saved letter
    export <id>           Export a saved letter (--png for images)
    copy <id>             Copy a saved letter to the clipboard
    filters               Manage saved template filters
    login <user>          Sign in
    logout                Sign out
    whoami                Show the signed-in user
    import-resume <file>  Extract contact details from a resume
    import-templates <src> Import templates from git or a directory
    help                  Show CLI command help

EXAMPLES:
    coverdraft                                          # Start interactive mode
    coverdraft --init                                   # Create library with starters
    coverdraft --api-server --port 9000                 # Serve the API on port 9000
    coverdraft templates --industry Technology          # Filter templates
    coverdraft render registered-nurse --set fullName="Ada Lovelace" --copy
    coverdraft login ada && coverdraft letters          # Work with saved letters

CONFIGURATION:
    coverdraft.yaml in . or ~/.coverdraft, .env files, and COVERDRAFT_* variables
    (e.g. COVERDRAFT_LIBRARY_DIR, COVERDRAFT_USER_ID, COVERDRAFT_AI_API_KEY).
`)
}

func main() {
	var showVersion bool
	var initLib bool
	var showHelp bool
	var apiServer bool
	var verbose bool
	var port int
	var configPath string

	flag.BoolVar(&showVersion, "version", false, "Print version information")
	flag.BoolVar(&initLib, "init", false, "Create the library and add the starter templates")
	flag.BoolVar(&showHelp, "help", false, "Show help information")
	flag.BoolVar(&apiServer, "api-server", false, "Start the HTTP API server")
	flag.BoolVar(&verbose, "verbose", false, "Include error details and debug logging")
	flag.IntVar(&port, "port", 0, "Port for the API server")
	flag.StringVar(&configPath, "config", "", "Path to a coverdraft.yaml file")
	flag.Parse()

	if showHelp {
		printHelp()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("coverdraft version %s\n", version)
		os.Exit(0)
	}

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	args := flag.Args()
	tuiMode := !initLib && !apiServer && len(args) == 0

	logOpts := logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}
	if tuiMode {
		logOpts.File = cfg.LogFile()
	}
	log, err := logger.New(logOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := service.NewService(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer svc.Close()

	if initLib {
		n, err := svc.InitLibrary(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing library: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Initialized coverdraft library at %s (%d starter templates added)\n", cfg.Library.Dir, n)
		return
	}

	if apiServer {
		if port == 0 {
			port = cfg.Server.Port
		}
		if err := runAPIServer(ctx, svc, port, log); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting API server: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if len(args) > 0 {
		cliHandler := cli.NewCLI(svc, log, cli.WithVerbose(verbose))
		if err := cliHandler.ExecuteCommand(ctx, args); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	model, err := ui.NewModel(ctx, svc, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		log.Error("tui exited with error", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runAPIServer serves until ctx is cancelled, then shuts down gracefully
func runAPIServer(ctx context.Context, svc *service.Service, port int, log *logger.Logger) error {
	srv := api.NewAPIServer(svc, port, version, log)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
