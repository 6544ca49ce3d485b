package cmd

import (
	"context"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/malusev998/currency-quotes"
	appconfig "github.com/malusev998/currency-quotes/config"
	"github.com/malusev998/currency-quotes/storage"
)

type (
	// Builder creates the collaborators of a command from the loaded configuration.
	Builder interface {
		Fetcher(cfg *appconfig.Config) currency.Fetcher
		Sinks(ctx context.Context, cfg *appconfig.Config) ([]currency.Sink, error)
		Notifier(cfg *appconfig.Config) (currency.Notifier, error)
		Warehouse(cfg *appconfig.Config) (*storage.Warehouse, error)
	}

	Config struct {
		Ctx     context.Context
		Builder Builder

		app        *appconfig.Config
		configFile string
		debug      bool
	}
)

// NewRootCommand loads configuration and initializes logging before any subcommand runs.
func NewRootCommand(config *Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "currency-fetcher",
		Short:         "Banco Central do Brasil daily quote collector",
		Version:       "v2.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			app, err := appconfig.Load(config.configFile)
			if err != nil {
				return err
			}

			if config.debug {
				app.Log.Level = "debug"
			}

			if err := appconfig.InitLogger(app.Log); err != nil {
				return err
			}

			config.app = app

			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVar(&config.debug, "debug", false, "Debug flag")
	rootCmd.PersistentFlags().StringVar(&config.configFile, "config", "", "Path to config file (default ./config.yaml)")

	rootCmd.AddCommand(run(config))
	rootCmd.AddCommand(serve(config))
	rootCmd.AddCommand(fetch(config))

	return rootCmd
}

// Execute runs the command line until it finishes or SIGINT/SIGTERM arrives.
func Execute(config *Config) error {
	parent := config.Ctx
	if parent == nil {
		parent = context.Background()
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	defer zap.L().Sync() //nolint:errcheck

	return NewRootCommand(config).ExecuteContext(ctx)
}

func closeAll(items ...interface{}) {
	for _, item := range items {
		closer, ok := item.(io.Closer)
		if !ok {
			continue
		}

		if err := closer.Close(); err != nil {
			zap.L().Warn("close failed", zap.Error(err))
		}
	}
}
