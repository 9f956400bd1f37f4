package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnc4vk/pap-data-population/internal/config"
	"github.com/bnc4vk/pap-data-population/internal/observability"
	"github.com/bnc4vk/pap-data-population/internal/syncer"
)

func newSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one full sync and exit",
		Long: `Run a single oracle-to-store sync over the whole catalog and exit.
Exits non-zero when the run aborts on an unrecoverable oracle failure.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd)
		},
	}
}

func runSync(cmd *cobra.Command) error {
	cfg := config.Load()
	observability.RegisterMetrics()

	st, err := initStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	source, err := initCatalog(cfg)
	if err != nil {
		return err
	}

	orch := syncer.New(cfg.Sync, initOracle(cfg), st, source)

	ctx, cancel := setupSignalHandler(cmd.Context())
	defer cancel()

	result, err := orch.Run(ctx)
	if err != nil {
		return fmt.Errorf("sync run %s: %w", result.Outcome, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"run %s: %s in %d batches, %d records (%d inserted, %d updated, %d unchanged, %d failed)\n",
		result.RunID, result.Outcome, result.Batches, result.Records,
		result.Summary.Inserted, result.Summary.Updated,
		result.Summary.Unchanged, result.Summary.Failed)

	return nil
}
