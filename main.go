// Package main provides the entry point for Tailtray, a system tray
// applet for controlling a Tailscale connection on Linux desktops.
//
// Features:
//   - Connection, SSH, and route toggles with confirmed-state rendering
//   - Exit node selection and self-advertisement
//   - Multi-account switching
//   - Taildrop file send and receive
//   - Terminal interface and scripting-friendly CLI modes
//
// Usage:
//
//	tailtray [options]
//
// Environment:
//
//	The application requires the tailscale CLI to be installed.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tailtray/tailtray/cli"
	"github.com/tailtray/tailtray/common"
	"github.com/tailtray/tailtray/config"
	"github.com/tailtray/tailtray/history"
	"github.com/tailtray/tailtray/keyring"
	"github.com/tailtray/tailtray/notify"
	"github.com/tailtray/tailtray/orchestrator"
	"github.com/tailtray/tailtray/tailscale"
	"github.com/tailtray/tailtray/tui"
	"github.com/tailtray/tailtray/ui"
)

// Build-time variables injected via ldflags (-X main.appVersion=x.y.z)
// Default values are used for local development builds
var (
	appVersion = "dev"
	buildTime  = "unknown"
	commitSHA  = "unknown"
)

var (
	// GUI/General flags
	showVersion = flag.Bool("version", false, "Show version and exit")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	showHelp    = flag.Bool("help", false, "Show help message")
	runTUI      = flag.Bool("tui", false, "Run the terminal interface")

	// CLI flags
	showStatus  = flag.Bool("status", false, "Show connection status")
	bringUp     = flag.Bool("up", false, "Bring the connection up")
	takeDown    = flag.Bool("down", false, "Take the connection down")
	exitNode    = flag.String("exit-node", "", "Route through an exit node (\"off\" to clear)")
	showHistory = flag.Bool("history", false, "Show recent operations")
	setAuthKey  = flag.Bool("set-auth-key", false, "Store an auth key for unattended login")
)

func main() {
	flag.Parse()

	if *showHelp {
		cli.PrintHelp()
		os.Exit(0)
	}

	if *showVersion {
		fmt.Printf("Tailtray v%s\n", appVersion)
		if buildTime != "unknown" {
			fmt.Printf("  Build:  %s\n", buildTime)
			fmt.Printf("  Commit: %s\n", commitSHA)
		}
		os.Exit(0)
	}

	logLevel := common.LevelInfo
	if *verbose {
		logLevel = common.LevelDebug
	}

	if err := common.InitLogger(common.LogConfig{
		Level:       logLevel,
		EnableFile:  true,
		MaxFileSize: 5 * 1024 * 1024, // 5MB
		MaxBackups:  5,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not initialize file logging: %v\n", err)
	}
	defer common.CloseLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandler(cancel)

	if !tailscale.Installed() {
		common.LogError("%v", common.ErrNotInstalled)
		fmt.Fprintf(os.Stderr, "Error: %v\n", common.ErrNotInstalled)
		os.Exit(1)
	}

	if *showStatus || *bringUp || *takeDown || *exitNode != "" || *showHistory || *setAuthKey {
		runCLI(ctx)
		return
	}

	if *runTUI {
		runTerminal(ctx)
		return
	}

	common.LogInfo("Starting %s v%s", common.AppName, appVersion)
	os.Exit(runGUI(ctx))
}

// buildOrchestrator wires the orchestrator with its production
// dependencies. Optional pieces degrade to nil with a log line rather
// than blocking startup.
func buildOrchestrator(cfg *config.Config, onRender func(orchestrator.View)) (*orchestrator.Orchestrator, func()) {
	runner := tailscale.NewCLIRunner()

	var recorder orchestrator.Recorder
	hist, err := history.Open()
	if err != nil {
		common.LogWarn("Operation history unavailable: %v", err)
	} else {
		if err := hist.Prune(common.HistoryRetention); err != nil {
			common.LogWarn("Failed to prune operation history: %v", err)
		}
		recorder = hist
	}

	var authKey func() string
	store, err := keyring.NewStore()
	if err != nil {
		common.LogWarn("Credential storage unavailable: %v", err)
	} else {
		authKey = store.AuthKey
	}

	var notifier common.Notifier = notify.Noop{}
	var closeNotifier func() error
	if cfg.ShowNotifications {
		if n, err := notify.New("network-vpn"); err != nil {
			common.LogWarn("Desktop notifications unavailable: %v", err)
		} else {
			notifier = n
			closeNotifier = n.Close
		}
	}

	orch := orchestrator.New(orchestrator.Options{
		Source:          tailscale.NewFetcher(runner),
		Backend:         tailscale.NewClient(runner),
		Config:          cfg,
		Recorder:        recorder,
		Notifier:        notifier,
		AuthKey:         authKey,
		OnRender:        onRender,
		InitialExitNode: cfg.ExitNodeIndex,
		InitialAllowLAN: cfg.AllowLAN,
	})

	cleanup := func() {
		if hist != nil {
			hist.Close()
		}
		if closeNotifier != nil {
			closeNotifier()
		}
	}
	return orch, cleanup
}

func runGUI(ctx context.Context) int {
	cfg, err := config.Load()
	if err != nil {
		common.LogWarn("Using default configuration: %v", err)
	}

	// The application and orchestrator reference each other; the render
	// callback resolves the application lazily, before the loop starts.
	var app *ui.Application
	orch, cleanup := buildOrchestrator(cfg, func(v orchestrator.View) {
		if app != nil {
			app.Render(v)
		}
	})
	defer cleanup()

	app = ui.NewApplication(orch, cfg, appVersion)

	code := app.Run(os.Args[:1])
	if code != 0 {
		common.LogWarn("Application exited with code %d", code)
	}
	return code
}

func runTerminal(ctx context.Context) {
	cfg, err := config.Load()
	if err != nil {
		common.LogWarn("Using default configuration: %v", err)
	}

	views := make(chan orchestrator.View, 64)
	orch, cleanup := buildOrchestrator(cfg, func(v orchestrator.View) {
		// Drop the oldest pending view rather than stall the loop.
		for {
			select {
			case views <- v:
				return
			default:
				select {
				case <-views:
				default:
				}
			}
		}
	})
	defer cleanup()

	go orch.Run(ctx)

	if err := tui.Run(ctx, orch, views); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runCLI handles command-line operations.
func runCLI(ctx context.Context) {
	cliApp, err := cli.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	select {
	case <-ctx.Done():
		common.LogInfo("Operation cancelled before execution")
		return
	default:
	}

	var cliErr error
	switch {
	case *showStatus:
		cliErr = cliApp.Status(ctx)
	case *bringUp:
		cliErr = cliApp.Up(ctx)
	case *takeDown:
		cliErr = cliApp.Down(ctx)
	case *exitNode != "":
		cliErr = cliApp.ExitNode(ctx, *exitNode)
	case *showHistory:
		cliErr = cliApp.History(50)
	case *setAuthKey:
		cliErr = cliApp.SetAuthKey()
	}

	if cliErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", cliErr)
		os.Exit(1)
	}
}

// setupSignalHandler configures graceful shutdown on SIGINT/SIGTERM.
func setupSignalHandler(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		common.LogInfo("Received signal %v, shutting down...", sig)
		cancel()
	}()
}
