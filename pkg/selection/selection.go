// Package selection holds the (pole, actor, view) state of an explorer
// session and the option lists derived from a dataset.
package selection

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vanderheijden86/polarview/pkg/model"
)

// View is one of the derived representations of a selection.
type View string

const (
	ViewSummary View = "summary"
	ViewMatrix  View = "matrix"
	ViewTop     View = "top"
)

// Views lists every view in display order.
var Views = []View{ViewSummary, ViewMatrix, ViewTop}

// ParseView converts a name into a View.
func ParseView(s string) (View, error) {
	for _, v := range Views {
		if strings.EqualFold(s, string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown view %q (want summary, matrix or top)", s)
}

// Next returns the view after v, wrapping around.
func (v View) Next() View {
	for i, candidate := range Views {
		if candidate == v {
			return Views[(i+1)%len(Views)]
		}
	}
	return ViewSummary
}

// State is the current selection. An empty Actor means the pole aggregate.
// State is a value type; every operation returns a new State.
type State struct {
	Pole  string `json:"pole"`
	Actor string `json:"actor,omitempty"`
	View  View   `json:"view"`
}

// AvailablePoles returns the poles present in ds in canonical order.
func AvailablePoles(ds *model.AnalysisDataset) []string {
	var out []string
	for _, pole := range model.CanonicalPoles {
		if _, ok := ds.Pole(pole); ok {
			out = append(out, pole)
		}
	}
	return out
}

// AvailableActors returns the distinct actor names listed in actor_stats for
// pole, sorted case-insensitively. Names whose matrix was not saved are
// included.
func AvailableActors(ds *model.AnalysisDataset, pole string) []string {
	if ds == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, row := range ds.ActorStats {
		if row.Pole != pole {
			continue
		}
		if _, dup := seen[row.Actor]; dup {
			continue
		}
		seen[row.Actor] = struct{}{}
		out = append(out, row.Actor)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

// Initial returns the starting selection: preferredPole when present,
// otherwise the first available pole, with the pole aggregate selected.
func Initial(ds *model.AnalysisDataset, preferredPole string, view View) State {
	poles := AvailablePoles(ds)
	pole := preferredPole
	if !contains(poles, pole) {
		pole = ""
		if len(poles) > 0 {
			pole = poles[0]
		}
	}
	if view == "" {
		view = ViewSummary
	}
	return State{Pole: pole, View: view}
}

// SetPole switches to pole. The pole aggregate stays selected across the
// switch; an actor is kept when the new pole lists the same name, and
// otherwise replaced by the new pole's first actor, or the aggregate when the
// new pole has none.
func (s State) SetPole(ds *model.AnalysisDataset, pole string) State {
	s.Pole = pole
	if s.Actor == "" {
		return s
	}
	actors := AvailableActors(ds, pole)
	switch {
	case contains(actors, s.Actor):
	case len(actors) > 0:
		s.Actor = actors[0]
	default:
		s.Actor = ""
	}
	return s
}

// SetActor selects actor; an empty name selects the pole aggregate.
func (s State) SetActor(actor string) State {
	s.Actor = actor
	return s
}

// SetView selects a view.
func (s State) SetView(v View) State {
	s.View = v
	return s
}

// Reconcile re-validates a selection against a freshly loaded dataset. The
// pole falls back to the first available one, the actor to the aggregate.
func (s State) Reconcile(ds *model.AnalysisDataset) State {
	poles := AvailablePoles(ds)
	if !contains(poles, s.Pole) {
		return Initial(ds, "", s.View)
	}
	if s.Actor != "" && !contains(AvailableActors(ds, s.Pole), s.Actor) {
		s.Actor = ""
	}
	return s
}

// CyclePole moves to the next (delta > 0) or previous available pole.
func (s State) CyclePole(ds *model.AnalysisDataset, delta int) State {
	poles := AvailablePoles(ds)
	if len(poles) == 0 {
		return s
	}
	return s.SetPole(ds, poles[step(indexOf(poles, s.Pole), delta, len(poles))])
}

// CycleActor moves through "aggregate, actor1, actor2, ..." for the current pole.
func (s State) CycleActor(ds *model.AnalysisDataset, delta int) State {
	options := append([]string{""}, AvailableActors(ds, s.Pole)...)
	return s.SetActor(options[step(indexOf(options, s.Actor), delta, len(options))])
}

func step(cur, delta, n int) int {
	if cur < 0 {
		cur = 0
		if delta > 0 {
			return 0
		}
	}
	return ((cur+delta)%n + n) % n
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func contains(list []string, s string) bool {
	return indexOf(list, s) >= 0
}
