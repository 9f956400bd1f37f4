package catalog

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

type fileCatalog struct {
	Substances []string `toml:"substances"`
	Countries  []string `toml:"countries"`
}

// Load reads a TOML catalog file and overlays it on the defaults: a list
// the file omits keeps its built-in value.
func Load(path string) (Catalog, error) {
	cat := Default()

	var raw fileCatalog
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Catalog{}, fmt.Errorf("load catalog: %w", err)
	}

	if meta.IsDefined("substances") {
		cat.Substances = raw.Substances
	}
	if meta.IsDefined("countries") {
		cat.Countries = raw.Countries
	}

	if err := validate(cat); err != nil {
		return Catalog{}, fmt.Errorf("load catalog: %w", err)
	}

	return cat, nil
}

func validate(cat Catalog) error {
	if len(cat.Substances) == 0 {
		return fmt.Errorf("substance list is empty")
	}
	if len(cat.Countries) == 0 {
		return fmt.Errorf("country list is empty")
	}

	seen := make(map[string]bool, len(cat.Countries))
	for _, code := range cat.Countries {
		if !isCountryCode(code) {
			return fmt.Errorf("invalid country code %q: want two uppercase letters", code)
		}
		if seen[code] {
			return fmt.Errorf("duplicate country code %q", code)
		}
		seen[code] = true
	}

	return nil
}

func isCountryCode(code string) bool {
	if len(code) != 2 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}
