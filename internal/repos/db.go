package repos

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	applog "apiadventures/internal/log"
)

const schemaVersion = 1

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection: SQLite serializes writers anyway, and ":memory:"
	// databases are per connection.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	var version int
	if err := db.Get(&version, `PRAGMA user_version`); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, schemaVersion)
	}

	schema := `
-- Last known product records, kept for offline viewing
CREATE TABLE IF NOT EXISTS products(
  id          INTEGER PRIMARY KEY AUTOINCREMENT,
  name        TEXT,
  type        TEXT,
  expiry_date TEXT,
  price       REAL
);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	if version < schemaVersion {
		if _, err := db.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, schemaVersion)); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
		applog.Info(nil, "db.schema.created", map[string]any{"version": schemaVersion})
	}
	return nil
}
