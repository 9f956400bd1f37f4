// Package reconcile converges oracle-derived access records into the
// store: insert rows that are missing, update rows whose status changed,
// leave matching rows alone. Every decision is logged.
package reconcile

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bnc4vk/pap-data-population/internal/access"
	"github.com/bnc4vk/pap-data-population/internal/observability"
	"github.com/bnc4vk/pap-data-population/internal/store"
)

// Summary counts the decisions of one reconciliation pass.
type Summary struct {
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}

// Writes reports how many records changed persisted state. A repeat run
// over identical input reports zero.
func (s Summary) Writes() int {
	return s.Inserted + s.Updated
}

type Reconciler struct {
	store store.Store
	now   func() time.Time
}

func New(s store.Store) *Reconciler {
	return &Reconciler{store: s, now: time.Now}
}

// Reconcile applies records one at a time. Each (substance, country) key
// is an independent unit: a store failure on one key is logged, counted,
// and skipped without touching the rest.
func (r *Reconciler) Reconcile(ctx context.Context, recs []access.Record) Summary {
	var summary Summary

	for _, rec := range recs {
		if ctx.Err() != nil {
			log.Warn().Err(ctx.Err()).Int("remaining", len(recs)-summary.total()).
				Msg("reconciliation interrupted")
			break
		}
		r.reconcileOne(ctx, rec, &summary)
	}

	log.Info().
		Int("inserted", summary.Inserted).
		Int("updated", summary.Updated).
		Int("unchanged", summary.Unchanged).
		Int("failed", summary.Failed).
		Msg("reconciliation complete")

	return summary
}

func (r *Reconciler) reconcileOne(ctx context.Context, rec access.Record, summary *Summary) {
	row, found, err := r.store.Find(ctx, rec.Substance, rec.CountryCode)
	if err != nil {
		summary.Failed++
		observability.RecordReconcileDecision(observability.DecisionError)
		log.Error().Err(err).
			Str("substance", rec.Substance).
			Str("country", rec.CountryCode).
			Msg("store lookup failed, skipping record")
		return
	}

	switch {
	case !found:
		rec.ObservedAt = r.now()
		if err := r.store.Insert(ctx, rec); err != nil {
			summary.Failed++
			observability.RecordReconcileDecision(observability.DecisionError)
			log.Error().Err(err).
				Str("substance", rec.Substance).
				Str("country", rec.CountryCode).
				Msg("insert failed, skipping record")
			return
		}
		summary.Inserted++
		observability.RecordReconcileDecision(observability.DecisionInsert)
		log.Info().
			Str("substance", rec.Substance).
			Str("country", rec.CountryCode).
			Str("status", string(rec.Status)).
			Msg("inserted access record")

	case row.Status != string(rec.Status):
		if err := r.store.Update(ctx, row.ID, string(rec.Status), r.now()); err != nil {
			summary.Failed++
			observability.RecordReconcileDecision(observability.DecisionError)
			log.Error().Err(err).
				Str("substance", rec.Substance).
				Str("country", rec.CountryCode).
				Msg("update failed, skipping record")
			return
		}
		summary.Updated++
		observability.RecordReconcileDecision(observability.DecisionUpdate)
		log.Info().
			Str("substance", rec.Substance).
			Str("country", rec.CountryCode).
			Str("old_status", row.Status).
			Str("new_status", string(rec.Status)).
			Msg("updated access record")

	default:
		summary.Unchanged++
		observability.RecordReconcileDecision(observability.DecisionSkip)
		log.Debug().
			Str("substance", rec.Substance).
			Str("country", rec.CountryCode).
			Str("status", row.Status).
			Msg("access record unchanged")
	}
}

func (s *Summary) total() int {
	return s.Inserted + s.Updated + s.Unchanged + s.Failed
}
