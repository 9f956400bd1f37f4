package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/bnc4vk/pap-data-population/internal/catalog"
	"github.com/bnc4vk/pap-data-population/internal/server"
)

const testPort = 18173

// TestQueryEndpointE2E runs the ad-hoc path over real HTTP: query one
// substance, persist the answer, read it back.
func TestQueryEndpointE2E(t *testing.T) {
	reply := `[{"substance":"Ibogaine","country_code":"MX","access_status":"ApprovedMedicalUse"}]`
	env := SetupTestEnvironment(t, oracleStep{status: http.StatusOK, content: reply})

	source := catalog.NewSource(catalog.Catalog{
		Substances: []string{"Ibogaine"},
		Countries:  []string{"MX", "US"},
	})

	srv := server.New(server.Config{
		Port:            testPort,
		ReadTimeout:     5,
		WriteTimeout:    5,
		ShutdownTimeout: 2,
	}, env.Client, env.Store, source, nil)

	go srv.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})

	time.Sleep(100 * time.Millisecond)
	base := fmt.Sprintf("http://localhost:%d", testPort)

	// Health first.
	resp, err := http.Get(base + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d, want 200", resp.StatusCode)
	}

	// Ad-hoc query for one substance in one country.
	body := `{"substance":"Ibogaine","countries":["MX"]}`
	resp, err = http.Post(base+"/v1/query", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("query request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("query status = %d, want 200", resp.StatusCode)
	}

	var queryResp struct {
		Total int `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&queryResp); err != nil {
		t.Fatalf("failed to parse query response: %v", err)
	}
	if queryResp.Total != 1 {
		t.Errorf("query total = %d, want 1", queryResp.Total)
	}

	// The row is now readable through the records endpoint.
	resp, err = http.Get(base + "/v1/records?substance=Ibogaine")
	if err != nil {
		t.Fatalf("records request failed: %v", err)
	}
	defer resp.Body.Close()

	var recordsResp struct {
		Total   int `json:"total"`
		Records []struct {
			Substance   string `json:"substance"`
			CountryCode string `json:"country_code"`
			Status      string `json:"access_status"`
		} `json:"records"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&recordsResp); err != nil {
		t.Fatalf("failed to parse records response: %v", err)
	}

	if recordsResp.Total != 1 {
		t.Fatalf("records total = %d, want 1", recordsResp.Total)
	}
	row := recordsResp.Records[0]
	if row.Substance != "Ibogaine" || row.CountryCode != "MX" || row.Status != "ApprovedMedicalUse" {
		t.Errorf("unexpected record: %+v", row)
	}
}
