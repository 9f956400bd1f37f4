package integration

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/bnc4vk/pap-data-population/internal/catalog"
	"github.com/bnc4vk/pap-data-population/internal/oracle"
	"github.com/bnc4vk/pap-data-population/internal/syncer"
)

// TestSyncFlowE2E drives the full pipeline against a scripted oracle:
// one substance, two countries, one batch. The first run inserts the
// discovered row; an identical second run converges with zero writes.
func TestSyncFlowE2E(t *testing.T) {
	reply := `{"results":[{"substance":"Ketamine","country_code":"US","access_status":"Banned"}]}`
	env := SetupTestEnvironment(t, oracleStep{status: http.StatusOK, content: reply})

	cat := catalog.Catalog{
		Substances: []string{"Ketamine"},
		Countries:  []string{"US", "CA"},
	}
	orch := env.Orchestrator(cat, 25)
	ctx := context.Background()

	result, err := orch.Run(ctx)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	if result.Outcome != syncer.OutcomeCompleted {
		t.Errorf("outcome = %s, want %s", result.Outcome, syncer.OutcomeCompleted)
	}
	if result.Batches != 1 {
		t.Errorf("batches = %d, want 1", result.Batches)
	}
	if env.Oracle.requestCount() != 1 {
		t.Errorf("oracle requests = %d, want 1", env.Oracle.requestCount())
	}
	if result.Summary.Inserted != 1 {
		t.Errorf("inserted = %d, want 1", result.Summary.Inserted)
	}

	rows, err := env.Store.List(ctx, "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("store holds %d rows, want 1", len(rows))
	}
	if rows[0].Substance != "Ketamine" || rows[0].CountryCode != "US" || rows[0].Status != "Banned" {
		t.Errorf("unexpected row: %+v", rows[0])
	}

	// Feeding the oracle the identical reply again must write nothing.
	second, err := orch.Run(ctx)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if second.Summary.Writes() != 0 {
		t.Errorf("second run wrote %d rows, want 0", second.Summary.Writes())
	}
	if second.Summary.Unchanged != 1 {
		t.Errorf("second run unchanged = %d, want 1", second.Summary.Unchanged)
	}
}

// TestSyncFlowShapeTolerance feeds the same records once as a bare
// array and once object-wrapped; both runs converge to the same rows.
func TestSyncFlowShapeTolerance(t *testing.T) {
	bare := `[{"substance":"MDMA","country_code":"AU","access_status":"ApprovedMedicalUse"}]`
	wrapped := `{"data":[{"substance":"MDMA","country_code":"AU","access_status":"ApprovedMedicalUse"}]}`

	cat := catalog.Catalog{
		Substances: []string{"MDMA"},
		Countries:  []string{"AU"},
	}
	ctx := context.Background()

	for _, tt := range []struct {
		name    string
		content string
	}{
		{"bare array", bare},
		{"object wrapped", wrapped},
	} {
		t.Run(tt.name, func(t *testing.T) {
			env := SetupTestEnvironment(t, oracleStep{status: http.StatusOK, content: tt.content})

			if _, err := env.Orchestrator(cat, 25).Run(ctx); err != nil {
				t.Fatalf("run failed: %v", err)
			}

			rows, err := env.Store.List(ctx, "MDMA")
			if err != nil {
				t.Fatalf("list failed: %v", err)
			}
			if len(rows) != 1 {
				t.Fatalf("store holds %d rows, want 1", len(rows))
			}
			if rows[0].CountryCode != "AU" || rows[0].Status != "ApprovedMedicalUse" {
				t.Errorf("unexpected row: %+v", rows[0])
			}
		})
	}
}

// TestSyncFlowRecoversFromRateLimit hits a 429 on the first attempt;
// the retrier absorbs it and the run still completes.
func TestSyncFlowRecoversFromRateLimit(t *testing.T) {
	reply := `[{"substance":"Psilocybin","country_code":"NL","access_status":"LimitedAccessTrials"}]`
	env := SetupTestEnvironment(t,
		oracleStep{status: http.StatusTooManyRequests},
		oracleStep{status: http.StatusOK, content: reply},
	)

	cat := catalog.Catalog{
		Substances: []string{"Psilocybin"},
		Countries:  []string{"NL"},
	}

	result, err := env.Orchestrator(cat, 25).Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if env.Oracle.requestCount() != 2 {
		t.Errorf("oracle requests = %d, want 2 (one retry)", env.Oracle.requestCount())
	}
	if result.Summary.Inserted != 1 {
		t.Errorf("inserted = %d, want 1", result.Summary.Inserted)
	}
}

// TestSyncFlowFatalAbort exhausts retries on a persistent 503: the run
// aborts and nothing reaches the store.
func TestSyncFlowFatalAbort(t *testing.T) {
	env := SetupTestEnvironment(t, oracleStep{status: http.StatusServiceUnavailable})

	cat := catalog.Catalog{
		Substances: []string{"Psilocybin"},
		Countries:  []string{"NL"},
	}

	result, err := env.Orchestrator(cat, 25).Run(context.Background())
	if err == nil {
		t.Fatal("expected run to fail")
	}

	var apiErr *oracle.APIError
	if !errors.As(err, &apiErr) {
		t.Errorf("expected APIError in chain, got %v", err)
	}
	if result.Outcome != syncer.OutcomeFatalAborted {
		t.Errorf("outcome = %s, want %s", result.Outcome, syncer.OutcomeFatalAborted)
	}

	rows, listErr := env.Store.List(context.Background(), "")
	if listErr != nil {
		t.Fatalf("list failed: %v", listErr)
	}
	if len(rows) != 0 {
		t.Errorf("store holds %d rows after abort, want 0", len(rows))
	}
}
