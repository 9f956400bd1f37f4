package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	cat := Default()

	if len(cat.Countries) != 193 {
		t.Errorf("expected 193 country codes, got %d", len(cat.Countries))
	}
	if len(cat.Substances) == 0 {
		t.Fatal("expected non-empty substance list")
	}

	seen := make(map[string]bool)
	for _, code := range cat.Countries {
		if !isCountryCode(code) {
			t.Errorf("invalid country code %q", code)
		}
		if seen[code] {
			t.Errorf("duplicate country code %q", code)
		}
		seen[code] = true
	}
}

func TestDefaultReturnsCopies(t *testing.T) {
	first := Default()
	first.Substances[0] = "mutated"
	first.Countries[0] = "??"

	second := Default()
	if second.Substances[0] == "mutated" {
		t.Error("default substance list shared between calls")
	}
	if second.Countries[0] == "??" {
		t.Error("default country list shared between calls")
	}
}

func TestSourceSnapshotIsolation(t *testing.T) {
	source := NewSource(Default())

	snap := source.Snapshot()
	snap.Substances[0] = "mutated"

	if source.Snapshot().Substances[0] == "mutated" {
		t.Error("snapshot mutation leaked into source")
	}
}

func TestSourceSwap(t *testing.T) {
	source := NewSource(Default())

	source.Swap(Catalog{
		Substances: []string{"Ketamine"},
		Countries:  []string{"US", "CA"},
	})

	snap := source.Snapshot()
	if len(snap.Substances) != 1 || snap.Substances[0] != "Ketamine" {
		t.Errorf("unexpected substances after swap: %v", snap.Substances)
	}
	if len(snap.Countries) != 2 {
		t.Errorf("unexpected countries after swap: %v", snap.Countries)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeCatalogFile(t, `substances = ["Ketamine", "Psilocybin"]`)

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if len(cat.Substances) != 2 {
		t.Errorf("expected 2 substances, got %d", len(cat.Substances))
	}
	// Countries not defined in the file keep the embedded default.
	if len(cat.Countries) != 193 {
		t.Errorf("expected default 193 countries, got %d", len(cat.Countries))
	}
}

func TestLoadFullOverride(t *testing.T) {
	path := writeCatalogFile(t, `
substances = ["Ketamine"]
countries = ["US", "CA", "GB"]
`)

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if len(cat.Substances) != 1 || len(cat.Countries) != 3 {
		t.Errorf("unexpected catalog: %d substances, %d countries",
			len(cat.Substances), len(cat.Countries))
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty substances", `substances = []`},
		{"empty countries", `countries = []`},
		{"lowercase code", `countries = ["us"]`},
		{"long code", `countries = ["USA"]`},
		{"duplicate code", `countries = ["US", "US"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCatalogFile(t, tt.body)
			if _, err := Load(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func writeCatalogFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write catalog file: %v", err)
	}
	return path
}
