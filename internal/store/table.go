package store

import (
	"database/sql"
	"fmt"
)

// Migrate brings the schema up to the current version, tracked through
// PRAGMA user_version.
func (s *Store) Migrate() error {
	tx, err := s.Pool.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= 1 {
		return tx.Commit()
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS offers (
  offer_id TEXT PRIMARY KEY,
  title TEXT NOT NULL DEFAULT '',
  company TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  department TEXT NOT NULL DEFAULT '',
  postal_code TEXT NOT NULL DEFAULT '',
  latitude REAL,
  longitude REAL,
  description TEXT NOT NULL DEFAULT '',
  rome_codes TEXT NOT NULL DEFAULT '',
  keywords TEXT NOT NULL DEFAULT '',
  contract_type TEXT NOT NULL DEFAULT '',
  published_at TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL DEFAULT 'offres_v2',
  url TEXT NOT NULL DEFAULT '',
  apply_url TEXT NOT NULL DEFAULT '',
  salary TEXT NOT NULL DEFAULT '',
  origin_code TEXT NOT NULL DEFAULT '',
  offres_manque_candidats INTEGER,
  salary_min_monthly REAL,
  score REAL NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'new',
  followup1_due TEXT,
  followup2_due TEXT,
  last_notified_at TEXT,
  inserted_at TEXT NOT NULL,
  last_seen_at TEXT NOT NULL,
  raw_json TEXT
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_offers_status ON offers(status);
`); err != nil {
		return err
	}
	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_offers_inserted_at ON offers(inserted_at);
`); err != nil {
		return err
	}
	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_offers_score ON offers(score);
`); err != nil {
		return err
	}

	// Back-compat for DBs that predate the salary column.
	if !columnExists(tx, "offers", "salary_min_monthly") {
		if _, err := tx.Exec(`ALTER TABLE offers ADD COLUMN salary_min_monthly REAL;`); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}
	return tx.Commit()
}

func columnExists(q interface {
	QueryRow(query string, args ...any) *sql.Row
}, table, col string) bool {
	query := fmt.Sprintf(`
SELECT 1
FROM pragma_table_info('%s')
WHERE name = ?
LIMIT 1;
`, table)

	var one int
	err := q.QueryRow(query, col).Scan(&one)
	return err == nil
}
