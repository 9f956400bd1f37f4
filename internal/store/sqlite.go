package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bnc4vk/pap-data-population/internal/access"
)

var _ Store = (*SQLiteStore)(nil)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}

	if err := store.initializeSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Find(ctx context.Context, substance, countryCode string) (Row, bool, error) {
	var row Row
	var updatedAt string

	err := s.db.QueryRowContext(ctx, queryFind, substance, countryCode).
		Scan(&row.ID, &row.Substance, &row.CountryCode, &row.Status, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Row{}, false, nil
	}
	if err != nil {
		return Row{}, false, fmt.Errorf("find row: %w", err)
	}

	row.UpdatedAt, err = parseTimestamp(updatedAt)
	if err != nil {
		return Row{}, false, err
	}
	return row, true, nil
}

func (s *SQLiteStore) Insert(ctx context.Context, rec access.Record) error {
	return s.execWithBusyRetry(ctx, "insert row", queryInsert,
		rec.Substance, rec.CountryCode, string(rec.Status), formatTimestamp(rec.ObservedAt))
}

func (s *SQLiteStore) Update(ctx context.Context, id int64, status string, updatedAt time.Time) error {
	return s.execWithBusyRetry(ctx, "update row", queryUpdate,
		status, formatTimestamp(updatedAt), id)
}

func (s *SQLiteStore) Upsert(ctx context.Context, recs []access.Record) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range recs {
		_, err := tx.ExecContext(ctx, queryUpsert,
			rec.Substance, rec.CountryCode, string(rec.Status), formatTimestamp(rec.ObservedAt))
		if err != nil {
			return fmt.Errorf("upsert %s/%s: %w", rec.Substance, rec.CountryCode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, substance string) ([]Row, error) {
	var rows *sql.Rows
	var err error

	if substance == "" {
		rows, err = s.db.QueryContext(ctx, querySelectAll)
	} else {
		rows, err = s.db.QueryContext(ctx, querySelectBySubstance, substance)
	}
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initializeSchema() error {
	for _, stmt := range sqliteSchemaStatements() {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("execute schema: %w", err)
		}
	}
	return nil
}

// execWithBusyRetry absorbs brief writer contention beyond the
// busy_timeout pragma.
func (s *SQLiteStore) execWithBusyRetry(ctx context.Context, op, query string, args ...any) error {
	const maxRetries = 3
	var err error

	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err = s.db.ExecContext(ctx, query, args...)
		if err == nil {
			return nil
		}

		if strings.Contains(err.Error(), "database is locked") || strings.Contains(err.Error(), "SQLITE_BUSY") {
			time.Sleep(time.Duration(attempt+1) * 10 * time.Millisecond)
			continue
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return fmt.Errorf("%s after %d retries: %w", op, maxRetries, err)
}
