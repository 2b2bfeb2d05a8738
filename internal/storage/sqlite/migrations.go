package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// The primary key enforces one selection per (environment, date, person).
const schema = `
CREATE TABLE IF NOT EXISTS selections (
    environment TEXT NOT NULL,
    date TEXT NOT NULL,
    person TEXT NOT NULL,
    starter TEXT,
    main TEXT,
    updated_at INTEGER NOT NULL,
    PRIMARY KEY (environment, date, person)
);

CREATE INDEX IF NOT EXISTS idx_selections_env_date ON selections(environment, date);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
