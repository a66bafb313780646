package main

import (
	"fmt"
	"io"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/polarview/internal/datasource"
	"github.com/vanderheijden86/polarview/pkg/analysis"
	"github.com/vanderheijden86/polarview/pkg/config"
	"github.com/vanderheijden86/polarview/pkg/export"
	"github.com/vanderheijden86/polarview/pkg/model"
	"github.com/vanderheijden86/polarview/pkg/selection"
	"github.com/vanderheijden86/polarview/pkg/version"
)

// robotMeta is embedded in every robot payload.
type robotMeta struct {
	GeneratedAt string `json:"generated_at"`
	Version     string `json:"version"`
	Source      string `json:"source"`
}

type robotSummary struct {
	robotMeta
	Pole   string         `json:"pole"`
	Actor  string         `json:"actor,omitempty"`
	Digest string         `json:"digest"`
	Rows   []analysis.Row `json:"rows"`
}

type robotMatrix struct {
	robotMeta
	analysis.MatrixView
	Message string `json:"message,omitempty"`
}

type robotTop struct {
	robotMeta
	Pole        string                `json:"pole"`
	Actor       string                `json:"actor,omitempty"`
	K           int                   `json:"k"`
	Available   bool                  `json:"available"`
	Message     string                `json:"message,omitempty"`
	Transitions []analysis.Transition `json:"transitions"`
}

type robotPole struct {
	Pole        string   `json:"pole"`
	NSequences  int      `json:"n_sequences"`
	States      []string `json:"states"`
	MeanEntropy *float64 `json:"mean_entropy"`
	MeanLoop    *float64 `json:"mean_loop"`
	Actors      int      `json:"actors"`
}

type robotPoles struct {
	robotMeta
	ActorsMinSeqs int                 `json:"actors_min_seqs"`
	Poles         []robotPole         `json:"poles"`
	Divergence    map[string]*float64 `json:"divergence"`
}

// robotActor mirrors model.ActorStatRow with missing means as null.
type robotActor struct {
	Pole        string   `json:"pole"`
	Actor       string   `json:"actor"`
	NSequences  int      `json:"n_sequences"`
	MeanEntropy *float64 `json:"mean_entropy"`
	MeanLoop    *float64 `json:"mean_loop"`
	HasMatrix   bool     `json:"has_matrix"`
}

type robotActors struct {
	robotMeta
	Pole   string       `json:"pole,omitempty"`
	Actors []robotActor `json:"actors"`
}

func newRobotMeta(res *datasource.Result, now time.Time) robotMeta {
	return robotMeta{
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Version:     version.Version,
		Source:      res.DatasetLocation,
	}
}

// resolveSelection picks the (pole, actor) the headless modes report on. An
// explicit --pole is kept as given so a missing pole is reported instead of
// silently replaced.
func resolveSelection(ds *model.AnalysisDataset, opts cliOptions, cfg config.Config) selection.State {
	view, _ := selection.ParseView(cfg.UI.DefaultView)
	st := selection.Initial(ds, cfg.UI.DefaultPole, view)
	if opts.pole != "" {
		st.Pole = opts.pole
	}
	return st.SetActor(opts.actor)
}

func buildRobotSummary(res *datasource.Result, st selection.State, now time.Time) robotSummary {
	return robotSummary{
		robotMeta: newRobotMeta(res, now),
		Pole:      st.Pole,
		Actor:     st.Actor,
		Digest:    analysis.Digest(res.Dataset, selection.AvailablePoles(res.Dataset), nil),
		Rows:      analysis.DeriveSummary(res.Dataset, st.Pole, st.Actor),
	}
}

func buildRobotMatrix(res *datasource.Result, st selection.State, now time.Time) robotMatrix {
	v := analysis.DeriveMatrix(res.Dataset, st.Pole, st.Actor)
	return robotMatrix{robotMeta: newRobotMeta(res, now), MatrixView: v, Message: v.Message()}
}

func buildRobotTop(res *datasource.Result, st selection.State, k int, now time.Time) robotTop {
	v := analysis.DeriveMatrix(res.Dataset, st.Pole, st.Actor)
	top := analysis.TopForView(v, k)
	if top == nil {
		top = []analysis.Transition{}
	}
	return robotTop{
		robotMeta:   newRobotMeta(res, now),
		Pole:        st.Pole,
		Actor:       st.Actor,
		K:           k,
		Available:   v.Available,
		Message:     v.Message(),
		Transitions: top,
	}
}

func buildRobotPoles(res *datasource.Result, now time.Time) robotPoles {
	ds := res.Dataset
	out := robotPoles{
		robotMeta:     newRobotMeta(res, now),
		ActorsMinSeqs: ds.ActorsMinSeqs,
		Poles:         []robotPole{},
		Divergence:    make(map[string]*float64, len(ds.Divergence)),
	}
	for label, v := range ds.Divergence {
		out.Divergence[label] = model.FiniteOrNil(v)
	}
	for _, pole := range selection.AvailablePoles(ds) {
		block, _ := ds.Pole(pole)
		p := robotPole{
			Pole:       pole,
			NSequences: block.NSequences,
			States:     block.States,
			Actors:     len(selection.AvailableActors(ds, pole)),
		}
		if v, ok := analysis.Mean(block.Entropy); ok {
			p.MeanEntropy = &v
		}
		if v, ok := analysis.Mean(block.LoopStrength); ok {
			p.MeanLoop = &v
		}
		out.Poles = append(out.Poles, p)
	}
	return out
}

func buildRobotActors(res *datasource.Result, pole string, now time.Time) robotActors {
	out := robotActors{robotMeta: newRobotMeta(res, now), Pole: pole, Actors: []robotActor{}}
	for _, row := range res.Dataset.ActorStats {
		if pole != "" && row.Pole != pole {
			continue
		}
		out.Actors = append(out.Actors, robotActor{
			Pole:        row.Pole,
			Actor:       row.Actor,
			NSequences:  row.NSequences,
			MeanEntropy: model.FiniteOrNil(row.MeanEntropy),
			MeanLoop:    model.FiniteOrNil(row.MeanLoop),
			HasMatrix:   analysis.FindActorMatrix(res.Dataset, row.Pole, row.Actor) != nil,
		})
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// runHeadless loads once and runs every requested robot and export mode in
// a fixed order. The first failure stops the run.
func runHeadless(opts cliOptions, cfg config.Config, src *datasource.Source, stdout, stderr io.Writer) int {
	res, err := loadOnce(src)
	if opts.diagnostics {
		printAttempts(stdout, src.Log())
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	if opts.diagnostics {
		fmt.Fprintf(stdout, "dataset: %s\nreport: %s\n", res.DatasetLocation, res.ReportLocation)
	}

	now := time.Now()
	st := resolveSelection(res.Dataset, opts, cfg)
	k := cfg.UI.TopK

	var payloads []any
	if opts.robotSummary {
		payloads = append(payloads, buildRobotSummary(res, st, now))
	}
	if opts.robotMatrix {
		payloads = append(payloads, buildRobotMatrix(res, st, now))
	}
	if opts.robotTop {
		payloads = append(payloads, buildRobotTop(res, st, k, now))
	}
	if opts.robotPoles {
		payloads = append(payloads, buildRobotPoles(res, now))
	}
	if opts.robotActors {
		payloads = append(payloads, buildRobotActors(res, opts.pole, now))
	}
	for _, p := range payloads {
		if err := writeJSON(stdout, p); err != nil {
			fmt.Fprintf(stderr, "Error encoding JSON: %v\n", err)
			return exitError
		}
	}

	if err := runExports(opts, res, st, k, now, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}

func runExports(opts cliOptions, res *datasource.Result, st selection.State, k int, now time.Time, stdout, stderr io.Writer) error {
	if opts.exportReport != "" {
		ropts := export.ReportOptions{TopK: k, Now: now}
		if opts.exportReport == "-" {
			if err := export.WriteReport(stdout, res.Dataset, ropts); err != nil {
				return err
			}
		} else {
			if err := export.SaveReport(opts.exportReport, res.Dataset, ropts); err != nil {
				return err
			}
			fmt.Fprintf(stderr, "Wrote report to %s\n", opts.exportReport)
		}
	}

	if opts.exportHeatmap != "" {
		err := export.SaveHeatmap(export.HeatmapOptions{
			Path: opts.exportHeatmap,
			View: analysis.DeriveMatrix(res.Dataset, st.Pole, st.Actor),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Wrote heatmap to %s\n", opts.exportHeatmap)
	}

	if opts.exportSQLite != "" {
		if err := export.NewSQLiteExporter(res.Dataset, res.DatasetLocation).Export(opts.exportSQLite); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Wrote SQLite database to %s\n", opts.exportSQLite)
	}
	return nil
}

func printAttempts(w io.Writer, attempts []datasource.Attempt) {
	if len(attempts) == 0 {
		fmt.Fprintln(w, "no load attempts")
		return
	}
	for _, a := range attempts {
		fmt.Fprintln(w, a.String())
	}
}
