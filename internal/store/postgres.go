package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"github.com/bnc4vk/pap-data-population/internal/access"
)

var _ Store = (*PostgresStore)(nil)

const defaultPostgresDSN = "postgres://localhost/pap_data_population?sslmode=disable"

const pgSchema = `
	CREATE TABLE IF NOT EXISTS access_records (
		id BIGSERIAL PRIMARY KEY,
		substance TEXT NOT NULL,
		country_code TEXT NOT NULL,
		status TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		UNIQUE (substance, country_code)
	)`

const (
	pgQueryFind = `
		SELECT id, substance, country_code, status, updated_at
		FROM access_records
		WHERE substance = $1 AND country_code = $2`

	pgQueryInsert = `
		INSERT INTO access_records (substance, country_code, status, updated_at)
		VALUES ($1, $2, $3, $4)`

	pgQueryUpdate = `
		UPDATE access_records
		SET status = $1, updated_at = $2
		WHERE id = $3`

	pgQueryUpsert = `
		INSERT INTO access_records (substance, country_code, status, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (substance, country_code)
		DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`

	pgQuerySelectAll = `
		SELECT id, substance, country_code, status, updated_at
		FROM access_records
		ORDER BY substance, country_code`

	pgQuerySelectBySubstance = `
		SELECT id, substance, country_code, status, updated_at
		FROM access_records
		WHERE substance = $1
		ORDER BY country_code`
)

// PostgresStore persists access records in Postgres through the pgx
// database/sql driver.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	if dsn == "" {
		dsn = defaultPostgresDSN
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.Exec(pgSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Find(ctx context.Context, substance, countryCode string) (Row, bool, error) {
	var row Row
	err := s.db.QueryRowContext(ctx, pgQueryFind, substance, countryCode).
		Scan(&row.ID, &row.Substance, &row.CountryCode, &row.Status, &row.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Row{}, false, nil
	}
	if err != nil {
		return Row{}, false, fmt.Errorf("find row: %w", err)
	}
	return row, true, nil
}

func (s *PostgresStore) Insert(ctx context.Context, rec access.Record) error {
	_, err := s.db.ExecContext(ctx, pgQueryInsert,
		rec.Substance, rec.CountryCode, string(rec.Status), rec.ObservedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert row: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, id int64, status string, updatedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, pgQueryUpdate, status, updatedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("update row: %w", err)
	}
	return nil
}

func (s *PostgresStore) Upsert(ctx context.Context, recs []access.Record) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range recs {
		_, err := tx.ExecContext(ctx, pgQueryUpsert,
			rec.Substance, rec.CountryCode, string(rec.Status), rec.ObservedAt.UTC())
		if err != nil {
			return fmt.Errorf("upsert %s/%s: %w", rec.Substance, rec.CountryCode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, substance string) ([]Row, error) {
	var rows *sql.Rows
	var err error

	if substance == "" {
		rows, err = s.db.QueryContext(ctx, pgQuerySelectAll)
	} else {
		rows, err = s.db.QueryContext(ctx, pgQuerySelectBySubstance, substance)
	}
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	var result []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.Substance, &r.CountryCode, &r.Status, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
