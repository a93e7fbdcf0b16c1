// Package cli wires configuration, logging and the API client into the nerd
// command tree.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conorfennell/nerd/internal/api"
	"github.com/conorfennell/nerd/internal/config"
	"github.com/conorfennell/nerd/internal/tui"
)

// App is the state shared by every command once flags are parsed.
type App struct {
	ConfigPath string
	Config     *config.Config
	Logger     *slog.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "nerd",
		Short:         "Flashcards grouped by topic, kept on a REST server",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive client
  nerd

  # Run the reference server
  nerd serve --addr :8080 --db nerd.db

  # Scriptable commands
  nerd topics add History
  nerd cards add --topic 3 --title WWI --question "When did it start?" --answer 1914
  nerd import --topic 3 https://github.com/user/notes.git
  nerd export --out s3://backups/nerd.json
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive client.
			return runTUI(cmd, app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(app.ConfigPath, cmd.Flags())
		if err != nil {
			return err
		}
		app.Config = cfg
		app.Logger = cfg.Log.NewLogger(cmd.ErrOrStderr())
		slog.SetDefault(app.Logger)
		return nil
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&app.ConfigPath, "config", "", "Path to a YAML config file (default ./"+config.DefaultFile+" when present)")
	flags.String("api-url", config.Default.API.URL, "Base URL of the flashcard server")
	flags.String("log-level", config.Default.Log.Level, "Log level (debug|info|warn|error)")
	flags.String("log-format", config.Default.Log.Format, "Log format (text|json)")
	flags.String("log-file", "", "File receiving the log of the interactive client")

	cmd.AddCommand(newTUICmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newTopicsCmd(app))
	cmd.AddCommand(newCardsCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newExportCmd(app))

	return cmd
}

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}
}

// runTUI logs to the configured file since the terminal belongs to the
// client while it runs.
func runTUI(cmd *cobra.Command, app *App) error {
	var w io.Writer = io.Discard
	if path := app.Config.Log.File; path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		w = f
	}
	logger := app.Config.Log.NewLogger(w)
	slog.SetDefault(logger)

	client, err := api.NewClient(app.Config.API.URL, api.WithLogger(logger))
	if err != nil {
		return err
	}
	return tui.Run(cmd.Context(), client, logger)
}

func (app *App) client() (*api.Client, error) {
	return api.NewClient(app.Config.API.URL, api.WithLogger(app.Logger))
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
