package analysis

import (
	"fmt"
	"sort"

	"github.com/vanderheijden86/polarview/pkg/model"
)

// UnavailableReason explains why a MatrixView carries no matrix.
type UnavailableReason int

const (
	ReasonNone           UnavailableReason = iota
	ReasonPoleMissing                      // the pole has no block in the dataset
	ReasonBelowThreshold                   // actor has stats but fewer sequences than actors_min_seqs
	ReasonNotComputed                      // no matrix was saved and no threshold explains it
)

// String returns a short machine-friendly name.
func (r UnavailableReason) String() string {
	switch r {
	case ReasonNone:
		return "available"
	case ReasonPoleMissing:
		return "pole_missing"
	case ReasonBelowThreshold:
		return "below_threshold"
	case ReasonNotComputed:
		return "not_computed"
	default:
		return "unknown"
	}
}

// MarshalText lets the reason appear by name in JSON output.
func (r UnavailableReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// MatrixView is the payload of the matrix view. When Available is false the
// matrix fields are empty and Reason says why.
type MatrixView struct {
	Pole          string            `json:"pole"`
	Actor         string            `json:"actor,omitempty"`
	Available     bool              `json:"available"`
	Reason        UnavailableReason `json:"reason"`
	States        []string          `json:"states,omitempty"`
	P             [][]float64       `json:"P,omitempty"`
	NSequences    int               `json:"n_sequences"`
	ActorsMinSeqs int               `json:"actors_min_seqs,omitempty"`
}

// Message is a one-line human explanation of an unavailable matrix.
func (v MatrixView) Message() string {
	switch v.Reason {
	case ReasonNone:
		return ""
	case ReasonPoleMissing:
		return fmt.Sprintf("No data for pole %q in this dataset.", v.Pole)
	case ReasonBelowThreshold:
		return fmt.Sprintf("No matrix for %s: %d sequences, below the %d-sequence threshold.",
			v.Actor, v.NSequences, v.ActorsMinSeqs)
	default:
		return fmt.Sprintf("No matrix was saved for %s (%s).", v.Actor, v.Pole)
	}
}

// Label names the source of the view, e.g. "CONSERVATIVE" or "LIBERAL / Senator Z".
func (v MatrixView) Label() string {
	return SelectionLabel(v.Pole, v.Actor)
}

// SelectionLabel formats a (pole, actor) pair for headings.
func SelectionLabel(pole, actor string) string {
	label := upper(pole)
	if actor != "" {
		label += " / " + actor
	}
	return label
}

// FindActorMatrix returns the saved matrix for (pole, actor), or nil when none
// exists. Actor keys are opaque, so values are matched on their pole and
// actor fields. Keys are scanned in sorted order so the result is stable.
func FindActorMatrix(ds *model.AnalysisDataset, pole, actor string) *model.ActorBlock {
	if ds == nil || len(ds.Actors) == 0 {
		return nil
	}
	keys := make([]string, 0, len(ds.Actors))
	for k := range ds.Actors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		block := ds.Actors[k]
		if block.Pole == pole && block.Actor == actor {
			return &block
		}
	}
	return nil
}

// FindActorStats returns the first actor_stats row for (pole, actor).
func FindActorStats(ds *model.AnalysisDataset, pole, actor string) (model.ActorStatRow, bool) {
	if ds == nil {
		return model.ActorStatRow{}, false
	}
	for _, row := range ds.ActorStats {
		if row.Pole == pole && row.Actor == actor {
			return row, true
		}
	}
	return model.ActorStatRow{}, false
}

// DeriveMatrix selects the matrix for a selection. An empty actor selects the
// pole aggregate. States and P are passed through unchanged.
func DeriveMatrix(ds *model.AnalysisDataset, pole, actor string) MatrixView {
	view := MatrixView{Pole: pole, Actor: actor}
	if ds != nil {
		view.ActorsMinSeqs = ds.ActorsMinSeqs
	}

	if actor == "" {
		block, ok := ds.Pole(pole)
		if !ok {
			view.Reason = ReasonPoleMissing
			return view
		}
		return fill(view, block.MatrixBlock)
	}

	if block := FindActorMatrix(ds, pole, actor); block != nil {
		return fill(view, block.MatrixBlock)
	}

	view.Reason = ReasonNotComputed
	if row, ok := FindActorStats(ds, pole, actor); ok {
		view.NSequences = row.NSequences
		if row.NSequences < ds.ActorsMinSeqs {
			view.Reason = ReasonBelowThreshold
		}
	}
	return view
}

func fill(view MatrixView, block model.MatrixBlock) MatrixView {
	view.Available = true
	view.Reason = ReasonNone
	view.States = block.States
	view.P = block.P
	view.NSequences = block.NSequences
	return view
}

// Cell returns P[i][j] of an available view, or 0 out of range.
func (v MatrixView) Cell(i, j int) float64 {
	return model.MatrixBlock{States: v.States, P: v.P}.At(i, j)
}
