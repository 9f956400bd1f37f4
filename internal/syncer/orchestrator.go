// Package syncer drives the end-to-end sync run: plan country batches,
// query the oracle batch by batch, normalize the replies, then reconcile
// the accumulated records into the store in one pass.
package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bnc4vk/pap-data-population/internal/access"
	"github.com/bnc4vk/pap-data-population/internal/batch"
	"github.com/bnc4vk/pap-data-population/internal/catalog"
	"github.com/bnc4vk/pap-data-population/internal/observability"
	"github.com/bnc4vk/pap-data-population/internal/reconcile"
	"github.com/bnc4vk/pap-data-population/internal/store"
)

// Oracle is the query capability the orchestrator drives. Satisfied by
// oracle.Client.
type Oracle interface {
	Query(ctx context.Context, substances, countries []string) ([]json.RawMessage, error)
}

type Outcome string

const (
	// OutcomeCompleted means every batch was queried and reconciliation ran.
	OutcomeCompleted Outcome = "completed"

	// OutcomeFatalAborted means an unrecoverable oracle failure ended the
	// run before any reconciliation.
	OutcomeFatalAborted Outcome = "fatal_aborted"
)

type Config struct {
	BatchSize  int
	BatchPause time.Duration
}

func DefaultConfig() Config {
	return Config{
		BatchSize:  25,
		BatchPause: 2 * time.Second,
	}
}

// Result reports one sync run.
type Result struct {
	RunID    string            `json:"run_id"`
	Outcome  Outcome           `json:"outcome"`
	Batches  int               `json:"batches"`
	Records  int               `json:"records"`
	Summary  reconcile.Summary `json:"summary"`
	Started  time.Time         `json:"started"`
	Finished time.Time         `json:"finished"`
}

type Orchestrator struct {
	cfg        Config
	oracle     Oracle
	normalizer *access.Normalizer
	reconciler *reconcile.Reconciler
	source     *catalog.Source

	sleep func(ctx context.Context, d time.Duration) error
}

func New(cfg Config, o Oracle, st store.Store, source *catalog.Source) *Orchestrator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 25
	}
	return &Orchestrator{
		cfg:        cfg,
		oracle:     o,
		normalizer: access.NewNormalizer(),
		reconciler: reconcile.New(st),
		source:     source,
		sleep:      sleepContext,
	}
}

// Run executes one full sync. Batches are queried sequentially with the
// configured pause between them. Any oracle failure that survives its
// retries aborts the run before reconciliation: partially collected
// records are discarded, never half-applied.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	result := Result{
		RunID:   uuid.New().String(),
		Started: time.Now().UTC(),
	}
	logger := log.With().Str("run_id", result.RunID).Logger()

	cat := o.source.Snapshot()
	batches := batch.Split(cat.Countries, o.cfg.BatchSize)

	logger.Info().
		Int("substances", len(cat.Substances)).
		Int("countries", len(cat.Countries)).
		Int("batches", len(batches)).
		Msg("sync run started")

	var collected []access.Record
	for i, countries := range batches {
		if i > 0 {
			if err := o.sleep(ctx, o.cfg.BatchPause); err != nil {
				return o.abort(logger, result, i, collected,
					fmt.Errorf("inter-batch pause: %w", err))
			}
		}

		raw, err := o.oracle.Query(ctx, cat.Substances, countries)
		if err != nil {
			return o.abort(logger, result, i, collected,
				fmt.Errorf("query batch %d/%d: %w", i+1, len(batches), err))
		}

		recs := o.normalizer.Normalize(raw)
		collected = append(collected, recs...)
		result.Batches = i + 1

		logger.Debug().
			Int("batch", i+1).
			Int("raw", len(raw)).
			Int("normalized", len(recs)).
			Msg("batch collected")
	}

	result.Records = len(collected)
	result.Summary = o.reconciler.Reconcile(ctx, collected)
	result.Outcome = OutcomeCompleted
	result.Finished = time.Now().UTC()

	observability.RecordSyncRun(observability.OutcomeOK)
	logger.Info().
		Int("batches", result.Batches).
		Int("records", result.Records).
		Int("writes", result.Summary.Writes()).
		Dur("elapsed", result.Finished.Sub(result.Started)).
		Msg("sync run completed")

	return result, nil
}

func (o *Orchestrator) abort(logger zerolog.Logger, result Result, batchIndex int, collected []access.Record, err error) (Result, error) {
	result.Outcome = OutcomeFatalAborted
	result.Records = len(collected)
	result.Finished = time.Now().UTC()

	observability.RecordSyncRun(observability.OutcomeFatal)
	logger.Error().Err(err).
		Int("batches_done", batchIndex).
		Int("records_discarded", len(collected)).
		Msg("sync run aborted, collected records discarded")

	return result, err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
