// Stockdeck is a terminal client for the inventory REST backend.
//
// It signs in against the backend, lists the user's stocks, and manages
// products and categories inside each stock. All durable client state
// (session, stock snapshot, logs) lives under the configured state dir.
//
// Usage:
//
//	# Start the TUI with defaults
//	stockdeck
//
//	# Point at a different backend
//	stockdeck --server http://inventory.internal:8080
//
//	# Check backend health without starting the TUI
//	stockdeck health
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/stockdeck/internal/api"
	"github.com/fyrsmithlabs/stockdeck/internal/auth"
	"github.com/fyrsmithlabs/stockdeck/internal/config"
	"github.com/fyrsmithlabs/stockdeck/internal/logging"
	"github.com/fyrsmithlabs/stockdeck/internal/session"
	"github.com/fyrsmithlabs/stockdeck/internal/snapshot"
	"github.com/fyrsmithlabs/stockdeck/internal/ui"
)

var (
	// serverURL overrides the configured backend host when set.
	serverURL string
	// configPath points at an explicit YAML config file.
	configPath string
	// version information (set via ldflags during build)
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stockdeck",
	Short: "Terminal client for the stock inventory backend",
	Long: `stockdeck is a terminal UI for managing stocks, products, and categories
against the inventory REST backend.

Sessions persist between runs: log in once and stockdeck restores the
session on the next start. Log out from the account view to clear it.`,
	Version:      version,
	SilenceUsage: true,
	RunE:         runTUI,
}

// healthCmd checks backend health without starting the TUI
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check inventory backend health",
	Long: `Check the health endpoint of the inventory backend.

Examples:
  # Check the configured backend
  stockdeck health

  # Check a different backend
  stockdeck health --server http://localhost:8080`,
	RunE: runHealth,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "backend base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a stockdeck YAML config file")
	rootCmd.AddCommand(healthCmd)
}

// loadConfig resolves configuration from file, environment, and flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if serverURL != "" {
		cfg.Backend.Host = serverURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.EnsureStateDir(); err != nil {
		return err
	}

	// Logs go to a file: the TUI owns the terminal.
	logger, err := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.LogPath(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush on exit

	client, err := api.New(cfg.Backend.Host, cfg.Backend.Timeout.Duration(), logger)
	if err != nil {
		return err
	}

	sessions := session.NewFileStore(cfg.SessionPath())
	snapshots := snapshot.NewStore(cfg.SnapshotPath())
	gateway := auth.NewGateway(client, logger)

	logger.Info("starting stockdeck",
		zap.String("version", version),
		zap.String("backend", cfg.Backend.Host),
		zap.String("state_dir", cfg.State.Dir),
	)

	shell := ui.NewShell(client, gateway, sessions, snapshots, logger)
	program := tea.NewProgram(shell, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("stockdeck exited with an error: %w", err)
	}
	return nil
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := api.New(cfg.Backend.Host, cfg.Backend.Timeout.Duration(), logging.NewNop())
	if err != nil {
		return err
	}

	if err := client.Health(context.Background()); err != nil {
		return fmt.Errorf("backend unhealthy: %w", err)
	}
	fmt.Printf("Backend %s is healthy\n", cfg.Backend.Host)
	return nil
}
