package main

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bnc4vk/pap-data-population/internal/catalog"
	"github.com/bnc4vk/pap-data-population/internal/config"
	"github.com/bnc4vk/pap-data-population/internal/observability"
	"github.com/bnc4vk/pap-data-population/internal/server"
	"github.com/bnc4vk/pap-data-population/internal/syncer"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the periodic sync scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cfg := config.Load()
	observability.RegisterMetrics()

	st, err := initStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close store")
		}
	}()

	source, err := initCatalog(cfg)
	if err != nil {
		return err
	}

	oracleClient := initOracle(cfg)

	orch := syncer.New(cfg.Sync, oracleClient, st, source)
	sched := syncer.NewScheduler(orch, cfg.SyncInterval)
	srv := server.New(cfg.Server, oracleClient, st, source, sched)

	if cfg.CatalogFile != "" {
		watcher, err := catalog.NewWatcher(cfg.CatalogFile, func(path string) {
			reloaded, err := catalog.Load(path)
			if err != nil {
				log.Error().Err(err).Str("file", path).
					Msg("catalog reload failed, keeping active catalog")
				return
			}
			source.Swap(reloaded)
			log.Info().
				Int("substances", len(reloaded.Substances)).
				Int("countries", len(reloaded.Countries)).
				Msg("catalog reloaded")
		})
		if err != nil {
			return err
		}
		defer watcher.Close()
	}

	ctx, cancel := setupSignalHandler(parent)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sched.Start(gctx) })
	g.Go(func() error { return runServer(gctx, srv) })

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info().Msg("papsync stopped")
	return nil
}

func runServer(ctx context.Context, srv *server.Server) error {
	errChan := make(chan error, 1)

	go func() {
		if err := srv.Start(); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	}
}
