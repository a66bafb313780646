// Package loader decodes a Markov analysis artifact into a typed
// model.AnalysisDataset, rejecting documents whose shape does not match.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/floats"

	"github.com/vanderheijden86/polarview/pkg/debug"
	"github.com/vanderheijden86/polarview/pkg/metrics"
	"github.com/vanderheijden86/polarview/pkg/model"
)

// ErrMalformed is wrapped by every error caused by a document that is not a
// valid analysis artifact.
var ErrMalformed = errors.New("malformed analysis dataset")

// rowSumTolerance bounds how far a row may drift from 1 before it is logged.
const rowSumTolerance = 1e-6

// Decode parses an analysis artifact.
func Decode(data []byte) (*model.AnalysisDataset, error) {
	defer metrics.Timer(metrics.JSONParsing)()

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if top == nil {
		return nil, fmt.Errorf("%w: document is not an object", ErrMalformed)
	}

	ds := &model.AnalysisDataset{
		Poles:      make(map[string]model.PoleBlock, len(model.CanonicalPoles)),
		Actors:     map[string]model.ActorBlock{},
		Divergence: map[string]float64{},
	}

	for _, pole := range model.CanonicalPoles {
		raw, ok := top[pole]
		if !ok || isNull(raw) {
			continue
		}
		var block model.PoleBlock
		if err := json.Unmarshal(raw, &block); err != nil {
			return nil, fmt.Errorf("%w: pole %q: %v", ErrMalformed, pole, err)
		}
		if err := validateMatrix(block.MatrixBlock); err != nil {
			return nil, fmt.Errorf("%w: pole %q: %v", ErrMalformed, pole, err)
		}
		logRowSums(pole, block.MatrixBlock)
		ds.Poles[pole] = block
	}
	if len(ds.Poles) == 0 {
		return nil, fmt.Errorf("%w: no pole block found (want one of %v)", ErrMalformed, model.CanonicalPoles)
	}

	if err := decodeOptional(top, "actors", &ds.Actors); err != nil {
		return nil, err
	}
	for key, actor := range ds.Actors {
		if err := validateMatrix(actor.MatrixBlock); err != nil {
			return nil, fmt.Errorf("%w: actor %q: %v", ErrMalformed, key, err)
		}
	}
	if err := decodeOptional(top, "actor_stats", &ds.ActorStats); err != nil {
		return nil, err
	}
	if err := decodeOptional(top, "actors_min_seqs", &ds.ActorsMinSeqs); err != nil {
		return nil, err
	}
	var divergence map[string]*float64
	if err := decodeOptional(top, "divergence", &divergence); err != nil {
		return nil, err
	}
	for label, v := range divergence {
		ds.Divergence[label] = model.NullToNaN(v)
	}

	if ds.Actors == nil {
		ds.Actors = map[string]model.ActorBlock{}
	}
	if ds.Divergence == nil {
		ds.Divergence = map[string]float64{}
	}

	debug.Log("decoded dataset: poles=%d actors=%d actor_stats=%d min_seqs=%d",
		len(ds.Poles), len(ds.Actors), len(ds.ActorStats), ds.ActorsMinSeqs)
	return ds, nil
}

// LoadFile decodes the artifact stored at path.
func LoadFile(path string) (*model.AnalysisDataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	return Decode(data)
}

func decodeOptional(top map[string]json.RawMessage, key string, dst any) error {
	raw, ok := top[key]
	if !ok || isNull(raw) {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, key, err)
	}
	return nil
}

func validateMatrix(b model.MatrixBlock) error {
	n := len(b.States)
	if len(b.P) != n {
		return fmt.Errorf("P has %d rows, want %d (one per state)", len(b.P), n)
	}
	for i, row := range b.P {
		if len(row) != n {
			return fmt.Errorf("P row %d has %d columns, want %d", i, len(row), n)
		}
	}
	seen := make(map[string]struct{}, n)
	for _, s := range b.States {
		if _, dup := seen[s]; dup {
			return fmt.Errorf("duplicate state %q", s)
		}
		seen[s] = struct{}{}
	}
	return nil
}

// logRowSums reports rows that are not stochastic. The values are trusted
// upstream output, so this never rejects the document.
func logRowSums(name string, b model.MatrixBlock) {
	if !debug.Enabled() {
		return
	}
	for i, row := range b.P {
		if sum := floats.Sum(row); math.Abs(sum-1) > rowSumTolerance {
			debug.Log("%s: row %d (%s) sums to %.6f", name, i, b.States[i], sum)
		}
	}
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
