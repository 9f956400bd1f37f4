package store

import (
	"database/sql"
	"fmt"
	"time"
)

func scanRows(rows *sql.Rows) ([]Row, error) {
	var result []Row

	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

func scanRow(rows *sql.Rows) (Row, error) {
	var r Row
	var updatedAt string

	if err := rows.Scan(&r.ID, &r.Substance, &r.CountryCode, &r.Status, &updatedAt); err != nil {
		return Row{}, fmt.Errorf("scan row: %w", err)
	}

	parsed, err := parseTimestamp(updatedAt)
	if err != nil {
		return Row{}, err
	}
	r.UpdatedAt = parsed

	return r, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(timestamp string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, timestamp)
	if err == nil {
		return t, nil
	}

	// Fallback for SQLite's CURRENT_TIMESTAMP layout.
	t, err = time.Parse("2006-01-02 15:04:05", timestamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp: %w", err)
	}

	return t, nil
}
