package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mmcdole/seerrpad/internal/adapter"
	"github.com/mmcdole/seerrpad/internal/adapter/source"
	"github.com/mmcdole/seerrpad/internal/imagecache"
	"github.com/mmcdole/seerrpad/internal/input"
	"github.com/mmcdole/seerrpad/internal/kiosk"
	"github.com/mmcdole/seerrpad/internal/task"
	"github.com/mmcdole/seerrpad/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

// cliOptions are the persistent flags shared by every command
type cliOptions struct {
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:           "seerrpad",
		Short:         "Controller-driven kiosk for a Jellyseerr server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runKiosk(cmd.Context(), opts, stdin, stdout)
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file (default "+adapter.DefaultConfigFile()+")")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level (DEBUG, INFO, WARN, ERROR)")

	root.AddCommand(
		newCheckCmd(opts),
		newPadCmd(opts),
		newConfigCmd(opts),
		newCacheCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "seerrpad %s\n", Version)
		},
	}
}

// loadConfig reads the config file and applies flag overrides
func loadConfig(opts *cliOptions) (*adapter.Config, error) {
	cfg, err := adapter.LoadConfig(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	return cfg, nil
}

// setupLogger installs the file logger, falling back to a null logger
func setupLogger(cfg *adapter.Config) (*slog.Logger, io.Closer) {
	logger, closer, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		return adapter.NullLogger(), io.NopCloser(nil)
	}
	slog.SetDefault(logger)
	return logger, closer
}

// configFile is where setup and `config init` write
func (o *cliOptions) configFile() string {
	if o.configPath != "" {
		return o.configPath
	}
	return adapter.DefaultConfigFile()
}

func runKiosk(ctx context.Context, opts *cliOptions, stdin io.Reader, stdout io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if !cfg.IsConfigured() {
		if !isTerminal(stdout) {
			return fmt.Errorf("server.url and server.api_key are not set; run 'seerrpad config init' and edit %s", opts.configFile())
		}
		return runSetupFlow(ctx, cfg, opts.configFile(), stdin, stdout)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config:\n%w", err)
	}
	if !isTerminal(stdout) {
		return errors.New("seerrpad must run in a terminal")
	}

	logger, logCloser := setupLogger(cfg)
	defer logCloser.Close()
	logger.Info("starting seerrpad", "version", Version, "server", cfg.Server.URL)

	backend, err := source.NewBackend(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create backend: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// The kiosk still starts when the server is down; each call reports its own failure
	checkCtx, checkCancel := context.WithTimeout(ctx, cfg.Server.ConnectTimeout)
	if version, err := backend.Check(checkCtx); err != nil {
		logger.Warn("server status check failed", "error", err)
	} else {
		logger.Info("connected to server", "version", version)
	}
	checkCancel()

	coord := task.NewCoordinator(ctx, backend.Catalog, task.Options{Timeout: backend.CallTimeout()}, logger)
	posters := imagecache.New(
		cfg.Cache.MaxImages,
		imagecache.Placeholder(cfg.Cache.PosterWidth, cfg.Cache.PosterHeight),
		nil,
		logger,
	).WithDecoder(imagecache.NewDecoder(cfg.Cache.PosterWidth, cfg.Cache.PosterHeight))

	engine := kiosk.NewEngine(coord, posters, backend.Catalog, kiosk.Options{
		NavDelay:         cfg.Controller.NavDelay,
		MessageDuration:  cfg.UI.MessageDuration,
		RequestBackDelay: cfg.UI.RequestBackDelay,
		ImageRetryDelay:  cfg.UI.ImageRetryDelay,
		MaxVisibleItems:  cfg.UI.MaxVisibleItems,
		MaxTitleChars:    cfg.UI.MaxTitleChars,
		MaxWrappedLines:  cfg.UI.MaxWrappedLines,
	}, logger)

	var pad tui.Pad
	gamepad, err := input.OpenGamepad(cfg.Controller.Device, cfg.Controller.Profile, logger)
	if err != nil {
		logger.Warn("no controller, keyboard only", "device", cfg.Controller.Device, "error", err)
	} else {
		pad = gamepad
	}

	model := tui.NewModel(engine, pad, tui.Options{
		FPS:      cfg.Display.FPS,
		Deadzone: cfg.Controller.Deadzone,
	}, logger)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	logger.Info("starting TUI")
	_, runErr := p.Run()
	if errors.Is(runErr, tea.ErrProgramKilled) {
		runErr = nil
	}
	if runErr != nil {
		logger.Error("TUI error", "error", runErr)
		runErr = fmt.Errorf("TUI error: %w", runErr)
	}

	stats := posters.Stats()
	logger.Info("shutting down",
		"in_flight", coord.InFlight(),
		"poster_hits", stats.Hits,
		"poster_misses", stats.Misses,
		"poster_evictions", stats.Evictions,
	)
	cancel()
	coord.Wait()
	posters.Clear()
	if gamepad != nil {
		gamepad.Close()
	}
	if err := backend.Close(); err != nil {
		logger.Warn("backend close failed", "error", err)
	}
	return runErr
}

// isTerminal reports whether w is an interactive terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
