package analysis

import (
	"sort"
	"strconv"
	"strings"

	"github.com/vanderheijden86/polarview/pkg/model"
)

// Row is one (label, value) line of the summary view. Key is stable across
// releases and used for machine output.
type Row struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Summary row keys.
const (
	KeyPoleSequences     = "pole_sequences"
	KeyStates            = "states"
	KeyPoleMeanEntropy   = "pole_mean_entropy"
	KeyPoleMeanLoop      = "pole_mean_loop"
	KeyActor             = "actor"
	KeyActorSequences    = "actor_sequences"
	KeyActorMeanEntropy  = "actor_mean_entropy"
	KeyActorMeanLoop     = "actor_mean_loop"
	KeyActorStatsMissing = "actor_stats"
	KeyMinSeqs           = "actors_min_seqs"
	KeySavedActors       = "actor_matrices_saved"
	keyDivergencePrefix  = "divergence:"
)

// DeriveSummary builds the summary rows for a selection. With an empty actor
// it describes the pole aggregate; otherwise it adds the actor's precomputed
// stats, or an explanation of why they are missing.
func DeriveSummary(ds *model.AnalysisDataset, pole, actor string) []Row {
	block, hasPole := ds.Pole(pole)

	poleSeqs := Placeholder
	states := Placeholder
	if hasPole {
		poleSeqs = strconv.Itoa(block.NSequences)
		if len(block.States) > 0 {
			states = strings.Join(block.States, ", ")
		}
	}

	rows := []Row{
		{Key: KeyPoleSequences, Label: "Sequences (" + pole + ")", Value: poleSeqs},
		{Key: KeyStates, Label: "States", Value: states},
	}

	if actor == "" {
		rows = append(rows,
			Row{Key: KeyPoleMeanEntropy, Label: "Mean entropy", Value: FormatMean(block.Entropy)},
			Row{Key: KeyPoleMeanLoop, Label: "Mean loop", Value: FormatMean(block.LoopStrength)},
		)
	} else {
		rows = append(rows, Row{Key: KeyActor, Label: "Actor", Value: actor})
		if stats, ok := FindActorStats(ds, pole, actor); ok {
			rows = append(rows,
				Row{Key: KeyActorSequences, Label: "Sequences (actor)", Value: strconv.Itoa(stats.NSequences)},
				Row{Key: KeyActorMeanEntropy, Label: "Mean entropy (actor)", Value: FormatFloat(stats.MeanEntropy, true, CellPrecision)},
				Row{Key: KeyActorMeanLoop, Label: "Mean loop (actor)", Value: FormatFloat(stats.MeanLoop, true, CellPrecision)},
			)
		} else {
			minSeqs, saved := 0, 0
			if ds != nil {
				minSeqs, saved = ds.ActorsMinSeqs, ds.SavedActorCount()
			}
			rows = append(rows,
				Row{Key: KeyActorStatsMissing, Label: "Actor stats", Value: "no stats for this actor"},
				Row{Key: KeyMinSeqs, Label: "Min sequences per actor matrix", Value: strconv.Itoa(minSeqs)},
				Row{Key: KeySavedActors, Label: "Actor matrices saved", Value: strconv.Itoa(saved)},
			)
		}
	}

	return append(rows, divergenceRows(ds, pole)...)
}

// divergenceRows lists every divergence entry whose label mentions pole.
func divergenceRows(ds *model.AnalysisDataset, pole string) []Row {
	if ds == nil || pole == "" {
		return nil
	}
	var labels []string
	for label := range ds.Divergence {
		if strings.Contains(label, pole) {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)

	rows := make([]Row, 0, len(labels))
	for _, label := range labels {
		rows = append(rows, Row{
			Key:   keyDivergencePrefix + label,
			Label: label,
			Value: FormatFloat(ds.Divergence[label], true, DivergencePrecision),
		})
	}
	return rows
}

// Digest is the one-line status shown after a successful load, e.g.
// "conservative 1,204 seqs · liberal 988 seqs · 14 actor matrices (min 3 seqs)".
// count formats integers; pass strconv.Itoa when no grouping is wanted.
func Digest(ds *model.AnalysisDataset, poles []string, count func(int) string) string {
	if ds == nil {
		return ""
	}
	if count == nil {
		count = strconv.Itoa
	}
	parts := make([]string, 0, len(poles)+1)
	for _, pole := range poles {
		if block, ok := ds.Pole(pole); ok {
			parts = append(parts, pole+" "+count(block.NSequences)+" seqs")
		}
	}
	parts = append(parts, count(ds.SavedActorCount())+" actor matrices (min "+strconv.Itoa(ds.ActorsMinSeqs)+" seqs)")
	return strings.Join(parts, " · ")
}

func upper(s string) string {
	return strings.ToUpper(s)
}
