package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bnc4vk/pap-data-population/internal/catalog"
	"github.com/bnc4vk/pap-data-population/internal/oracle"
	"github.com/bnc4vk/pap-data-population/internal/retry"
	"github.com/bnc4vk/pap-data-population/internal/store"
	"github.com/bnc4vk/pap-data-population/internal/syncer"
)

// oracleStep is one scripted oracle response: an HTTP status and, for
// 200s, the completion content.
type oracleStep struct {
	status  int
	content string
}

// scriptedOracle plays a chat-completions endpoint that answers from a
// script. The last step repeats once the script runs out.
type scriptedOracle struct {
	mu       sync.Mutex
	requests int
	script   []oracleStep
	server   *httptest.Server
}

func newScriptedOracle(script ...oracleStep) *scriptedOracle {
	o := &scriptedOracle{script: script}
	o.server = httptest.NewServer(http.HandlerFunc(o.handle))
	return o
}

func (o *scriptedOracle) handle(w http.ResponseWriter, r *http.Request) {
	o.mu.Lock()
	i := o.requests
	o.requests++
	if i >= len(o.script) {
		i = len(o.script) - 1
	}
	step := o.script[i]
	o.mu.Unlock()

	if step.status != http.StatusOK {
		w.WriteHeader(step.status)
		w.Write([]byte(`{"error":{"message":"scripted failure"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": step.content}},
		},
	})
}

func (o *scriptedOracle) requestCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.requests
}

// TestEnvironment wires a real SQLite store and oracle client against
// the scripted oracle server.
type TestEnvironment struct {
	Store  *store.SQLiteStore
	Oracle *scriptedOracle
	Client *oracle.Client
}

func SetupTestEnvironment(t *testing.T, script ...oracleStep) *TestEnvironment {
	t.Helper()

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	scripted := newScriptedOracle(script...)

	cfg := oracle.DefaultConfig()
	cfg.BaseURL = scripted.server.URL
	cfg.APIKey = "test-key"
	cfg.Timeout = 5 * time.Second
	cfg.Retry = retry.Config{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
	}

	env := &TestEnvironment{
		Store:  st,
		Oracle: scripted,
		Client: oracle.NewClient(cfg),
	}

	t.Cleanup(func() {
		env.Store.Close()
		scripted.server.Close()
	})

	return env
}

// Orchestrator builds a sync orchestrator over the environment with
// test-friendly pacing.
func (e *TestEnvironment) Orchestrator(cat catalog.Catalog, batchSize int) *syncer.Orchestrator {
	return syncer.New(syncer.Config{
		BatchSize:  batchSize,
		BatchPause: time.Millisecond,
	}, e.Client, e.Store, catalog.NewSource(cat))
}
