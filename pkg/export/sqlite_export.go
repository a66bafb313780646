package export

import (
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/polarview/pkg/analysis"
	"github.com/vanderheijden86/polarview/pkg/debug"
	"github.com/vanderheijden86/polarview/pkg/model"
	"github.com/vanderheijden86/polarview/pkg/version"
)

// SQLiteExporter writes a dataset into a queryable SQLite file. Transition
// rows carry their rank in the top-transition ordering, so "top k" is a
// plain WHERE rank <= k.
type SQLiteExporter struct {
	Dataset *model.AnalysisDataset
	Source  string // where the dataset was loaded from, stored in export_meta
	Now     func() time.Time
}

// NewSQLiteExporter creates an exporter for ds.
func NewSQLiteExporter(ds *model.AnalysisDataset, source string) *SQLiteExporter {
	return &SQLiteExporter{Dataset: ds, Source: source, Now: time.Now}
}

// Export writes the database to path, replacing any existing file.
func (e *SQLiteExporter) Export(path string) error {
	if e.Dataset == nil || len(e.Dataset.Poles) == 0 {
		return fmt.Errorf("no dataset to export")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := CreateSchema(db); err != nil {
		return err
	}

	steps := []struct {
		name string
		fn   func(*sql.DB) error
	}{
		{"poles", e.insertPoles},
		{"matrices", e.insertMatrices},
		{"actor stats", e.insertActorStats},
		{"divergence", e.insertDivergence},
		{"meta", e.insertMeta},
	}
	for _, s := range steps {
		if err := s.fn(db); err != nil {
			return fmt.Errorf("insert %s: %w", s.name, err)
		}
	}

	debug.Log("sqlite export written to %s", path)
	return nil
}

// nullable maps non-finite values to NULL.
func nullable(v float64, ok bool) any {
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func (e *SQLiteExporter) insertPoles(db *sql.DB) error {
	for _, pole := range model.CanonicalPoles {
		block, ok := e.Dataset.Pole(pole)
		if !ok {
			continue
		}
		entropy, eok := analysis.Mean(block.Entropy)
		loop, lok := analysis.Mean(block.LoopStrength)
		if _, err := db.Exec(
			`INSERT INTO poles (pole, n_sequences, n_states, mean_entropy, mean_loop) VALUES (?, ?, ?, ?, ?)`,
			pole, block.NSequences, block.Size(), nullable(entropy, eok), nullable(loop, lok),
		); err != nil {
			return fmt.Errorf("pole %s: %w", pole, err)
		}
	}
	return nil
}

type matrixRef struct {
	pole, actor string
	block       model.MatrixBlock
}

// matrices lists the pole aggregates then saved actor matrices in key order.
func (e *SQLiteExporter) matrices() []matrixRef {
	var refs []matrixRef
	for _, pole := range model.CanonicalPoles {
		if block, ok := e.Dataset.Pole(pole); ok {
			refs = append(refs, matrixRef{pole: pole, block: block.MatrixBlock})
		}
	}
	keys := make([]string, 0, len(e.Dataset.Actors))
	for k := range e.Dataset.Actors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		a := e.Dataset.Actors[k]
		refs = append(refs, matrixRef{pole: a.Pole, actor: a.Actor, block: a.MatrixBlock})
	}
	return refs
}

func (e *SQLiteExporter) insertMatrices(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stateStmt, err := tx.Prepare(`INSERT OR REPLACE INTO states (pole, actor, idx, state, entropy, loop_strength) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stateStmt.Close()

	transStmt, err := tx.Prepare(`INSERT OR REPLACE INTO transitions (pole, actor, from_state, to_state, probability, rank) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer transStmt.Close()

	for _, m := range e.matrices() {
		for i, s := range m.block.States {
			var entropy, loop any
			if i < len(m.block.Entropy) {
				entropy = nullable(m.block.Entropy[i], true)
			}
			if i < len(m.block.LoopStrength) {
				loop = nullable(m.block.LoopStrength[i], true)
			}
			if _, err := stateStmt.Exec(m.pole, m.actor, i, s, entropy, loop); err != nil {
				return fmt.Errorf("state %s/%s/%s: %w", m.pole, m.actor, s, err)
			}
		}

		n := m.block.Size()
		ranked := analysis.DeriveTopTransitions(m.block.States, m.block.P, n*n)
		for rank, t := range ranked {
			if _, err := transStmt.Exec(m.pole, m.actor, t.From, t.To, nullable(t.Probability, true), rank+1); err != nil {
				return fmt.Errorf("transition %s/%s %s->%s: %w", m.pole, m.actor, t.From, t.To, err)
			}
		}
	}

	return tx.Commit()
}

func (e *SQLiteExporter) insertActorStats(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO actor_stats (pole, actor, n_sequences, mean_entropy, mean_loop, has_matrix, position) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range e.Dataset.ActorStats {
		hasMatrix := 0
		if analysis.FindActorMatrix(e.Dataset, r.Pole, r.Actor) != nil {
			hasMatrix = 1
		}
		if _, err := stmt.Exec(r.Pole, r.Actor, r.NSequences,
			nullable(r.MeanEntropy, true), nullable(r.MeanLoop, true), hasMatrix, i); err != nil {
			return fmt.Errorf("actor %s/%s: %w", r.Pole, r.Actor, err)
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertDivergence(db *sql.DB) error {
	for label, v := range e.Dataset.Divergence {
		if _, err := db.Exec(`INSERT OR REPLACE INTO divergence (label, value) VALUES (?, ?)`, label, nullable(v, true)); err != nil {
			return fmt.Errorf("divergence %s: %w", label, err)
		}
	}
	return nil
}

func (e *SQLiteExporter) insertMeta(db *sql.DB) error {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	meta := map[string]string{
		"schema_version":  strconv.Itoa(SchemaVersion),
		"generator":       "polarview " + version.Version,
		"exported_at":     now().UTC().Format(time.RFC3339),
		"source":          e.Source,
		"actors_min_seqs": strconv.Itoa(e.Dataset.ActorsMinSeqs),
		"actor_matrices":  strconv.Itoa(e.Dataset.SavedActorCount()),
	}
	for k, v := range meta {
		if err := InsertMetaValue(db, k, v); err != nil {
			return fmt.Errorf("meta %s: %w", k, err)
		}
	}
	return nil
}
