package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/eggplant-lab/eggplant/internal/config"
	"github.com/eggplant-lab/eggplant/internal/logging"
	"github.com/eggplant-lab/eggplant/internal/selection"
	"github.com/eggplant-lab/eggplant/internal/session"
	"github.com/eggplant-lab/eggplant/internal/storage"
	"github.com/eggplant-lab/eggplant/internal/upload"
)

// rootOptions holds the persistent flags and the configuration resolved
// from them before any subcommand runs.
type rootOptions struct {
	configPath string
	overrides  config.Overrides

	cfg     *config.Config
	closers []io.Closer
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "eggplant",
		Short: "Eggplant color analysis client",
		Long: `Eggplant submits eggplant images to the color analysis service and keeps
a local history of completed analyses.

Each image is classified into Black, Dark Purple, Light Purple and Brown
percentages with an average color. Excel and PDF reports generated by the
service can be downloaded for any session in the history.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return opts.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			opts.close()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	flags.StringVar(&opts.overrides.APIURL, "api-url", "", "Analysis service base URL (env "+config.EnvAPIURL+")")
	flags.StringVar(&opts.overrides.DataDir, "data-dir", "", "Directory holding the analysis history (env "+config.EnvDataDir+")")
	flags.StringVar(&opts.overrides.Storage, "storage", "", "History storage backend: file or sqlite (env "+config.EnvStorage+")")
	flags.StringVar(&opts.overrides.LogLevel, "log-level", "", "Log level: debug, info, warn, error (env "+config.EnvLogLevel+")")
	flags.StringVar(&opts.overrides.LogFile, "log-file", "", "Write JSON logs to a rotating file instead of stderr (env "+config.EnvLogFile+")")

	cmd.AddCommand(newAnalyzeCmd(opts))
	cmd.AddCommand(newHistoryCmd(opts))
	cmd.AddCommand(newReportCmd(opts))
	cmd.AddCommand(newServeCmd(opts))

	return cmd
}

func (o *rootOptions) load() error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Apply(o.overrides); err != nil {
		return err
	}
	o.cfg = cfg

	logger, closer := logging.New(cfg.LogLevel, cfg.LogFile)
	slog.SetDefault(logger)
	o.closers = append(o.closers, closer)

	slog.Debug("Configuration loaded", "api_url", cfg.APIURL, "data_dir", cfg.DataDir, "storage", cfg.Storage)
	return nil
}

func (o *rootOptions) close() {
	for i := len(o.closers) - 1; i >= 0; i-- {
		if err := o.closers[i].Close(); err != nil {
			slog.Warn("Failed to close resource", "err", err)
		}
	}
	o.closers = nil
}

// openHistory loads the persisted history log from the configured backend
func (o *rootOptions) openHistory() (*storage.HistoryStore, error) {
	var slot storage.Slot
	switch o.cfg.Storage {
	case config.StorageSQLite:
		s, err := storage.NewSQLiteSlot(o.cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open history database: %w", err)
		}
		o.closers = append(o.closers, s)
		slot = s
	default:
		slot = storage.NewFileSlot(o.cfg.DataDir)
	}

	store := storage.NewHistoryStore(slot)
	store.Load()
	return store, nil
}

// orchestrator wires a fresh session against the configured service and
// history log.
func (o *rootOptions) orchestrator(listener session.Listener) (*session.Orchestrator, error) {
	history, err := o.openHistory()
	if err != nil {
		return nil, err
	}

	var sessionOpts []session.Option
	if listener != nil {
		sessionOpts = append(sessionOpts, session.WithListener(listener))
	}
	return session.New(selection.New(), upload.New(o.cfg.APIURL), history, sessionOpts...), nil
}
