package store

const (
	queryFind = `
		SELECT id, substance, country_code, status, updated_at
		FROM access_records
		WHERE substance = ? AND country_code = ?`

	queryInsert = `
		INSERT INTO access_records (substance, country_code, status, updated_at)
		VALUES (?, ?, ?, ?)`

	queryUpdate = `
		UPDATE access_records
		SET status = ?, updated_at = ?
		WHERE id = ?`

	queryUpsert = `
		INSERT INTO access_records (substance, country_code, status, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(substance, country_code)
		DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at`

	querySelectAll = `
		SELECT id, substance, country_code, status, updated_at
		FROM access_records
		ORDER BY substance, country_code`

	querySelectBySubstance = `
		SELECT id, substance, country_code, status, updated_at
		FROM access_records
		WHERE substance = ?
		ORDER BY country_code`
)
