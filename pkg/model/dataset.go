// Package model defines the in-memory form of a Markov analysis artifact:
// per-pole transition matrices, per-actor matrices and statistics, and the
// divergence values between poles.
package model

import (
	"math"

	"github.com/goccy/go-json"
)

// Pole names used by the upstream pipeline.
const (
	PoleConservative = "conservative"
	PoleLiberal      = "liberal"
)

// CanonicalPoles is the fixed display order of poles. It does not depend on
// the order keys appear in the artifact.
var CanonicalPoles = []string{PoleConservative, PoleLiberal}

// MatrixBlock is the part shared by pole and actor blocks: an ordered list of
// states and the square transition matrix over them. P[i][j] is the
// probability of moving from States[i] to States[j].
type MatrixBlock struct {
	States       []string    `json:"states"`
	P            [][]float64 `json:"P"`
	NSequences   int         `json:"n_sequences"`
	Entropy      Series      `json:"entropy"`
	LoopStrength Series      `json:"loop_strength"`
}

// Size returns the number of states.
func (b MatrixBlock) Size() int {
	return len(b.States)
}

// At returns P[i][j], or 0 when the cell is out of range.
func (b MatrixBlock) At(i, j int) float64 {
	if i < 0 || i >= len(b.P) {
		return 0
	}
	row := b.P[i]
	if j < 0 || j >= len(row) {
		return 0
	}
	return row[j]
}

// PoleBlock is the aggregate matrix for every sequence in one pole.
type PoleBlock struct {
	MatrixBlock
}

// ActorBlock is a matrix saved for a single actor. Only actors with at least
// AnalysisDataset.ActorsMinSeqs sequences get one.
type ActorBlock struct {
	MatrixBlock
	Pole  string `json:"pole"`
	Actor string `json:"actor"`
}

// ActorStatRow is the precomputed summary for one (pole, actor) pair. Rows
// exist whether or not a matrix was saved for the actor.
type ActorStatRow struct {
	Pole        string  `json:"pole"`
	Actor       string  `json:"actor"`
	NSequences  int     `json:"n_sequences"`
	MeanEntropy float64 `json:"mean_entropy"` // NaN when the artifact has null
	MeanLoop    float64 `json:"mean_loop"`    // NaN when the artifact has null
}

// UnmarshalJSON decodes a row, turning null means into NaN so they are shown
// as missing rather than as zero.
func (r *ActorStatRow) UnmarshalJSON(data []byte) error {
	var aux struct {
		Pole        string   `json:"pole"`
		Actor       string   `json:"actor"`
		NSequences  int      `json:"n_sequences"`
		MeanEntropy *float64 `json:"mean_entropy"`
		MeanLoop    *float64 `json:"mean_loop"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = ActorStatRow{
		Pole:        aux.Pole,
		Actor:       aux.Actor,
		NSequences:  aux.NSequences,
		MeanEntropy: NullToNaN(aux.MeanEntropy),
		MeanLoop:    NullToNaN(aux.MeanLoop),
	}
	return nil
}

// Series is a per-state value list. The upstream writer emits null for NaN
// and Inf; those entries decode as NaN.
type Series []float64

// UnmarshalJSON decodes a list whose entries may be null.
func (s *Series) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*s = nil
		return nil
	}
	out := make(Series, len(raw))
	for i, v := range raw {
		out[i] = NullToNaN(v)
	}
	*s = out
	return nil
}

// MarshalJSON writes non-finite entries back as null.
func (s Series) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	out := make([]*float64, len(s))
	for i := range s {
		out[i] = FiniteOrNil(s[i])
	}
	return json.Marshal(out)
}

// NullToNaN maps a decoded JSON null to NaN.
func NullToNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// FiniteOrNil returns nil for NaN and Inf, so the value encodes as null.
func FiniteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// AnalysisDataset is one loaded artifact. It is treated as immutable once
// decoded; a refresh replaces the whole value.
type AnalysisDataset struct {
	Poles         map[string]PoleBlock  `json:"-"`
	Actors        map[string]ActorBlock `json:"actors"`
	ActorStats    []ActorStatRow        `json:"actor_stats"`
	ActorsMinSeqs int                   `json:"actors_min_seqs"`
	Divergence    map[string]float64    `json:"divergence"` // null values decode as NaN
}

// Pole returns the block for pole and whether it exists.
func (d *AnalysisDataset) Pole(pole string) (PoleBlock, bool) {
	if d == nil {
		return PoleBlock{}, false
	}
	b, ok := d.Poles[pole]
	return b, ok
}

// SavedActorCount returns how many actor matrices the artifact carries.
func (d *AnalysisDataset) SavedActorCount() int {
	if d == nil {
		return 0
	}
	return len(d.Actors)
}
