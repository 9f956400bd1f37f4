package store

const (
	sqliteSchema = `
		CREATE TABLE IF NOT EXISTS access_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			substance TEXT NOT NULL,
			country_code TEXT NOT NULL,
			status TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			UNIQUE(substance, country_code)
		)`

	sqliteIndexSubstance = `
		CREATE INDEX IF NOT EXISTS idx_access_records_substance
		ON access_records(substance)`
)

func sqliteSchemaStatements() []string {
	return []string{
		sqliteSchema,
		sqliteIndexSubstance,
	}
}
