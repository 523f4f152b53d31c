package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"farmdash/internal/config"
	"farmdash/internal/farm"
	"farmdash/internal/inventory"
	"farmdash/internal/ui"
)

type App struct {
	ConfigPath string
	Mock       bool
	Server     string
	LogLevel   string
	LogFile    string

	cfg     config.Config
	log     *slog.Logger
	logFile io.Closer
	client  farm.Client
	label   string
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{})
}

// newRootCmd builds the command tree around app. A client already set on
// app is used as is.
func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "farmdash",
		Short:        "Farm inventory dashboard (TUI + CLI)",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		Example: strings.TrimSpace(`
  # Start the interactive dashboard
  farmdash --server http://localhost:8000

  # Try it without a server
  farmdash --mock

  # Scriptable commands
  farmdash crops --status available --sort price-desc
  farmdash orders --search bakery
  farmdash stats
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup()
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.logFile != nil {
			return app.logFile.Close()
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("FARMDASH_CONFIG", ""), "path to config file (optional)")
	cmd.PersistentFlags().BoolVar(&app.Mock, "mock", false, "use the in-memory mock API")
	cmd.PersistentFlags().StringVar(&app.Server, "server", "", "farm API base URL (overrides config + FARMDASH_SERVER)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", "", "append logs to this file (default: discard)")

	cmd.AddCommand(newCropsCmd(app))
	cmd.AddCommand(newOrdersCmd(app))
	cmd.AddCommand(newStatsCmd(app))
	cmd.AddCommand(newImportSampleCmd(app))
	cmd.AddCommand(newClearCmd(app))
	cmd.AddCommand(newPingCmd(app))

	return cmd
}

// setup resolves configuration (defaults, file, env, flags), then the
// logger and the API client.
func (app *App) setup() error {
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return err
	}
	if app.Server != "" {
		cfg.API.Server = app.Server
	}
	if app.LogLevel != "" {
		cfg.LogLevel = app.LogLevel
	}
	if app.LogFile != "" {
		cfg.LogFile = app.LogFile
	}
	app.cfg = cfg

	var w io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		app.logFile = f
		w = f
	}
	app.log = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	switch {
	case app.client != nil:
	case app.Mock || cfg.API.Server == "":
		app.client = farm.NewMockClient()
	default:
		h := farm.NewHTTPClient(cfg.API.Server)
		h.Timeout = cfg.API.Timeout
		h.Logger = app.log
		app.client = h
	}
	app.label = clientLabel(app.client)
	return nil
}

func (app *App) newService() (*inventory.Service, error) {
	cropMode, err := inventory.ParseMode(app.cfg.Sync.CropStatus)
	if err != nil {
		return nil, fmt.Errorf("sync.crop_status: %w", err)
	}
	orderMode, err := inventory.ParseMode(app.cfg.Sync.OrderStatus)
	if err != nil {
		return nil, fmt.Errorf("sync.order_status: %w", err)
	}
	return inventory.NewService(inventory.NewStore(), app.client, inventory.Options{
		CropStatusMode:   cropMode,
		OrderStatusMode:  orderMode,
		ClearConcurrency: app.cfg.Sync.ClearConcurrency,
		Logger:           app.log,
	}), nil
}

// loadedService returns a service whose mirror already holds both lists.
func (app *App) loadedService(ctx context.Context) (*inventory.Service, error) {
	svc, err := app.newService()
	if err != nil {
		return nil, err
	}
	if err := svc.Dispatcher().Dispatch(ctx, inventory.ActionReload, inventory.Request{}); err != nil {
		return nil, err
	}
	return svc, nil
}

func runTUI(app *App) error {
	svc, err := app.newService()
	if err != nil {
		return err
	}
	p := tea.NewProgram(ui.NewModel(app.cfg, svc, app.label), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func clientLabel(c farm.Client) string {
	switch c := c.(type) {
	case *farm.HTTPClient:
		return c.Server
	case fmt.Stringer:
		return c.String()
	}
	return "custom"
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
