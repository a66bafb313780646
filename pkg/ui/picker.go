package ui

import (
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/polarview/pkg/model"
	"github.com/vanderheijden86/polarview/pkg/selection"
)

// aggregateLabel is how the pole aggregate is offered in the actor picker.
const aggregateLabel = "(pole aggregate)"

// PoleOptions lists the poles present in ds.
func PoleOptions(ds *model.AnalysisDataset) []huh.Option[string] {
	poles := selection.AvailablePoles(ds)
	opts := make([]huh.Option[string], 0, len(poles))
	for _, p := range poles {
		opts = append(opts, huh.NewOption(p, p))
	}
	return opts
}

// ActorOptions lists the aggregate followed by every actor of pole.
func ActorOptions(ds *model.AnalysisDataset, pole string) []huh.Option[string] {
	actors := selection.AvailableActors(ds, pole)
	opts := make([]huh.Option[string], 0, len(actors)+1)
	opts = append(opts, huh.NewOption(aggregateLabel, ""))
	for _, a := range actors {
		opts = append(opts, huh.NewOption(a, a))
	}
	return opts
}

// ViewOptions lists the views.
func ViewOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(selection.Views))
	for _, v := range selection.Views {
		opts = append(opts, huh.NewOption(string(v), string(v)))
	}
	return opts
}

// Pick holds the answers of the pick form.
type Pick struct {
	Pole  string
	Actor string
	View  string
}

// State turns the answers into a selection valid for ds.
func (p Pick) State(ds *model.AnalysisDataset) selection.State {
	view, err := selection.ParseView(p.View)
	if err != nil {
		view = selection.ViewSummary
	}
	return selection.Initial(ds, p.Pole, view).SetActor(p.Actor).Reconcile(ds)
}

// NewPickForm builds an interactive form that chooses the starting pole,
// actor and view. The actor list follows the chosen pole.
func NewPickForm(ds *model.AnalysisDataset, p *Pick) *huh.Form {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Pole").
				Options(PoleOptions(ds)...).
				Value(&p.Pole),
			huh.NewSelect[string]().
				Title("Actor").
				Description("Actors below the sequence threshold have stats but no matrix").
				OptionsFunc(func() []huh.Option[string] {
					return ActorOptions(ds, p.Pole)
				}, &p.Pole).
				Value(&p.Actor),
			huh.NewSelect[string]().
				Title("View").
				Options(ViewOptions()...).
				Value(&p.View),
		),
	).WithTheme(huh.ThemeDracula())
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		form = form.WithAccessible(true)
	}
	return form
}
