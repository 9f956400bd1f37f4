package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bnc4vk/pap-data-population/internal/catalog"
	"github.com/bnc4vk/pap-data-population/internal/config"
	"github.com/bnc4vk/pap-data-population/internal/oracle"
	"github.com/bnc4vk/pap-data-population/internal/store"
)

var verbose bool

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "papsync",
		Short: "Substance access-status sync service",
		Long: `papsync maintains a substance-by-country access-status table.
It periodically queries a text-generation oracle for the legal access
status of each catalogued substance in each jurisdiction and reconciles
the answers into a persistent store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger()
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newSyncCommand())
	cmd.AddCommand(newCatalogCommand())

	return cmd
}

func setupLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	level, err := zerolog.ParseLevel(config.Load().LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
}

func setupSignalHandler(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

func initStore(cfg config.Config) (store.Store, error) {
	log.Info().
		Str("driver", cfg.Store.Driver).
		Str("path", cfg.Store.Path).
		Msg("initializing store")

	st, err := store.Open(cfg.Store)
	if err != nil {
		return nil, err
	}

	log.Info().Msg("store initialized")
	return st, nil
}

func initCatalog(cfg config.Config) (*catalog.Source, error) {
	cat := catalog.Default()

	if cfg.CatalogFile != "" {
		log.Info().Str("file", cfg.CatalogFile).Msg("loading catalog file")
		loaded, err := catalog.Load(cfg.CatalogFile)
		if err != nil {
			return nil, err
		}
		cat = loaded
	}

	log.Info().
		Int("substances", len(cat.Substances)).
		Int("countries", len(cat.Countries)).
		Msg("catalog ready")

	return catalog.NewSource(cat), nil
}

func initOracle(cfg config.Config) *oracle.Client {
	log.Info().
		Str("url", cfg.Oracle.BaseURL).
		Str("model", cfg.Oracle.Model).
		Msg("initializing oracle client")

	return oracle.NewClient(cfg.Oracle)
}
