package export

import (
	"database/sql"
	"fmt"
)

// SchemaVersion tracks the layout of exported databases.
const SchemaVersion = 1

// CreateSchema creates every table and index of an export database.
func CreateSchema(db *sql.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"poles", `
			CREATE TABLE IF NOT EXISTS poles (
				pole TEXT PRIMARY KEY,
				n_sequences INTEGER NOT NULL,
				n_states INTEGER NOT NULL,
				mean_entropy REAL,
				mean_loop REAL
			)`},
		{"states", `
			CREATE TABLE IF NOT EXISTS states (
				pole TEXT NOT NULL,
				actor TEXT NOT NULL DEFAULT '',
				idx INTEGER NOT NULL,
				state TEXT NOT NULL,
				entropy REAL,
				loop_strength REAL,
				PRIMARY KEY (pole, actor, idx)
			)`},
		{"transitions", `
			CREATE TABLE IF NOT EXISTS transitions (
				pole TEXT NOT NULL,
				actor TEXT NOT NULL DEFAULT '',
				from_state TEXT NOT NULL,
				to_state TEXT NOT NULL,
				probability REAL NOT NULL,
				rank INTEGER NOT NULL,
				PRIMARY KEY (pole, actor, from_state, to_state)
			)`},
		{"actor_stats", `
			CREATE TABLE IF NOT EXISTS actor_stats (
				pole TEXT NOT NULL,
				actor TEXT NOT NULL,
				n_sequences INTEGER NOT NULL,
				mean_entropy REAL,
				mean_loop REAL,
				has_matrix INTEGER NOT NULL DEFAULT 0,
				position INTEGER NOT NULL
			)`},
		{"divergence", `
			CREATE TABLE IF NOT EXISTS divergence (
				label TEXT PRIMARY KEY,
				value REAL
			)`},
		{"export_meta", `
			CREATE TABLE IF NOT EXISTS export_meta (
				key TEXT PRIMARY KEY,
				value TEXT
			)`},
		{"idx_transitions_rank", `CREATE INDEX IF NOT EXISTS idx_transitions_rank ON transitions(pole, actor, rank)`},
		{"idx_actor_stats_pole", `CREATE INDEX IF NOT EXISTS idx_actor_stats_pole ON actor_stats(pole, actor)`},
	}
	for _, s := range stmts {
		if _, err := db.Exec(s.sql); err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return nil
}

// InsertMetaValue inserts or updates a metadata key-value pair.
func InsertMetaValue(db *sql.DB, key, value string) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO export_meta (key, value) VALUES (?, ?)`, key, value)
	return err
}
