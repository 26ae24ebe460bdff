// boardlink picks a serial port and connects a Firmata board on it, or
// flashes StandardFirmata onto the board first.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/acolita/boardlink/internal/adapters/realclock"
	"github.com/acolita/boardlink/internal/adapters/realdialog"
	"github.com/acolita/boardlink/internal/adapters/realexec"
	"github.com/acolita/boardlink/internal/adapters/realfs"
	"github.com/acolita/boardlink/internal/adapters/realserial"
	"github.com/acolita/boardlink/internal/config"
	"github.com/acolita/boardlink/internal/logging"
	"github.com/acolita/boardlink/internal/portscan"
	"github.com/acolita/boardlink/internal/selectdlg"
)

// Version information - set at build time.
var (
	Version   = "0.3.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run())
}

// run returns the exit code so deferred cleanup happens before os.Exit.
func run() int {
	var (
		configPath  string
		showVersion bool
		debug       bool
		accessible  bool
		listPorts   bool
		writeConfig bool
	)

	flag.StringVar(&configPath, "config", "", "Path to configuration file (default $XDG_CONFIG_HOME/boardlink/config.yaml)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging, including serial traffic")
	flag.BoolVar(&accessible, "accessible", false, "Use line-based prompts instead of full-screen forms")
	flag.BoolVar(&listPorts, "list", false, "List the serial ports the OS reports and exit")
	flag.BoolVar(&writeConfig, "write-config", false, "Write the effective configuration to the config path and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("boardlink version %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return 0
	}

	fsys := realfs.New()
	if configPath == "" {
		configPath = config.DefaultConfigPath(fsys)
	}

	// Load configuration
	cfg, err := config.Load(configPath, fsys)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}
	overrides := func(c *config.Config) {
		if debug {
			c.Logging.Level = "debug"
		}
		if accessible {
			c.UI.Accessible = true
		}
	}
	overrides(cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return 1
	}

	if writeConfig {
		if err := config.Save(cfg, configPath, fsys); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
			return 1
		}
		fmt.Printf("Configuration written to %s\n", configPath)
		return 0
	}

	logOut := logging.Setup(cfg.Logging)
	defer func() { logOut.Close() }()

	// Reloads may move the log file or change the level.
	reconfigure := func(c *config.Config) {
		next := logging.Setup(c.Logging)
		logOut.Close()
		logOut = next
	}

	slog.Info("starting boardlink",
		slog.String("version", Version),
		slog.String("config", configPath),
		slog.String("board", cfg.Board.Profile),
	)

	serials := realserial.New()

	if listPorts {
		scanner := portscan.New(fsys, serials, cfg.Ports, cfg.UI.RefreshLabel, runtime.GOOS, nil)
		details, err := scanner.Details()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
			return 1
		}
		portscan.RenderTable(os.Stdout, details)
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Set up config hot-reload; the dialog picks up new revisions between
	// interactions.
	var changes <-chan *config.Config
	if watcher, err := config.NewWatcher(configPath); err != nil {
		slog.Warn("config hot-reload disabled", slog.String("error", err.Error()))
	} else {
		defer watcher.Close()
		changes = config.Relay(ctx, watcher.Changes(), overrides)
		slog.Info("config hot-reload enabled", slog.String("path", configPath))
	}

	dlg, err := selectdlg.New(ctx, cfg, selectdlg.Deps{
		UI:          realdialog.New(realdialog.WithAccessible(cfg.UI.Accessible)),
		FS:          fsys,
		Serials:     serials,
		Runner:      realexec.New(),
		Clock:       realclock.New(),
		GOOS:        runtime.GOOS,
		Changes:     changes,
		Reconfigure: reconfigure,
	})
	if err != nil {
		slog.Error("dialog setup failed", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if err := dlg.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("dialog failed", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	board := dlg.Board()
	if dlg.Status() != selectdlg.StatusAccepted || board == nil {
		slog.Info("no board selected")
		return 1
	}

	fw := board.Firmware()
	if fw.Name != "" {
		fmt.Printf("Connected to %s: %s %s (Firmata %s)\n", board.Name(), fw.Name, fw.Version, fw.Protocol)
	} else {
		fmt.Printf("Connected to %s (no firmware report)\n", board.Name())
	}

	if err := board.Close(); err != nil {
		slog.Warn("board close failed", slog.String("error", err.Error()))
	}
	return 0
}
