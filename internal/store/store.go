// Package store persists the access-status table. Two backends implement
// the same contract: SQLite (default) and Postgres.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/bnc4vk/pap-data-population/internal/access"
)

// Row is the persisted view of an access record: the canonical fields
// plus the store-owned identity and last-updated timestamp.
type Row struct {
	ID          int64     `json:"id"`
	Substance   string    `json:"substance"`
	CountryCode string    `json:"country_code"`
	Status      string    `json:"access_status"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store is the persistence capability the reconciler and the ad-hoc
// query path write through. At most one row exists per
// (substance, country_code) pair.
type Store interface {
	// Find returns the row for the pair, reporting absence without error.
	Find(ctx context.Context, substance, countryCode string) (Row, bool, error)

	// Insert adds a new row for a pair that has none.
	Insert(ctx context.Context, rec access.Record) error

	// Update rewrites status and timestamp of an existing row.
	Update(ctx context.Context, id int64, status string, updatedAt time.Time) error

	// Upsert applies records as one batched merge-duplicates write:
	// new pairs are inserted, existing pairs overwritten, keyed on
	// (substance, country_code).
	Upsert(ctx context.Context, recs []access.Record) error

	// List returns rows, optionally filtered to one substance.
	List(ctx context.Context, substance string) ([]Row, error)

	Close() error
}

type Config struct {
	Driver string // "sqlite" or "postgres"
	Path   string // sqlite database file
	DSN    string // postgres connection string
}

// Open constructs the backend named by cfg.Driver.
func Open(cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return NewSQLiteStore(cfg.Path)
	case "postgres":
		return NewPostgresStore(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
