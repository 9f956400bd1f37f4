// Package catalog supplies the fixed substance and country lists a sync
// run asks the oracle about. The lists are static configuration: embedded
// defaults, optionally overridden from a TOML file, never derived at
// runtime.
package catalog

import "sync"

// Catalog is one immutable pairing of study substances and jurisdiction
// codes. Runs operate on a snapshot and never see mid-run edits.
type Catalog struct {
	Substances []string
	Countries  []string
}

// Default returns the embedded catalog: the study substances and the 193
// ISO alpha-2 country codes.
func Default() Catalog {
	return Catalog{
		Substances: append([]string(nil), defaultSubstances...),
		Countries:  append([]string(nil), countryCodes...),
	}
}

// Source holds the active catalog behind a read lock so the watcher can
// swap in a reloaded file while sync runs keep reading.
type Source struct {
	mu  sync.RWMutex
	cat Catalog
}

func NewSource(cat Catalog) *Source {
	return &Source{cat: cat}
}

// Snapshot returns an independent copy of the active catalog.
func (s *Source) Snapshot() Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Catalog{
		Substances: append([]string(nil), s.cat.Substances...),
		Countries:  append([]string(nil), s.cat.Countries...),
	}
}

// Swap replaces the active catalog. Runs already holding a snapshot are
// unaffected.
func (s *Source) Swap(cat Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cat = cat
}
