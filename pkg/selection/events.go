package selection

import "github.com/vanderheijden86/polarview/pkg/model"

// Event is a user interaction reported by a renderer.
type Event interface {
	isEvent()
}

// PoleChanged selects a pole.
type PoleChanged struct{ Pole string }

// ActorChanged selects an actor; an empty Actor selects the pole aggregate.
type ActorChanged struct{ Actor string }

// ViewChanged selects a view.
type ViewChanged struct{ View View }

// RefreshRequested asks the session to reload both artifacts.
type RefreshRequested struct{}

func (PoleChanged) isEvent()      {}
func (ActorChanged) isEvent()     {}
func (ViewChanged) isEvent()      {}
func (RefreshRequested) isEvent() {}

// Apply folds ev into s. The second result is true when ev asks for a reload,
// which the selection itself cannot perform.
func (s State) Apply(ds *model.AnalysisDataset, ev Event) (State, bool) {
	switch e := ev.(type) {
	case PoleChanged:
		return s.SetPole(ds, e.Pole), false
	case ActorChanged:
		return s.SetActor(e.Actor), false
	case ViewChanged:
		return s.SetView(e.View), false
	case RefreshRequested:
		return s, true
	default:
		return s, false
	}
}
