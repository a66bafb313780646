// Package export writes a loaded analysis dataset to files outside the
// terminal: a markdown report, matrix heatmaps and a SQLite database.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vanderheijden86/polarview/pkg/analysis"
	"github.com/vanderheijden86/polarview/pkg/model"
)

// RigidActorLimit bounds the "most rigid actors" list of the report.
const RigidActorLimit = 12

// ReportOptions controls GenerateReport.
type ReportOptions struct {
	Title string
	TopK  int       // transitions listed per pole; <= 0 selects analysis.DefaultTopK
	Now   time.Time // zero omits the generated-at line
}

// canonicalDivergence lists the KL labels the report always prints, in order.
var canonicalDivergence = []string{
	"KL_" + model.PoleConservative + "||" + model.PoleLiberal,
	"KL_" + model.PoleLiberal + "||" + model.PoleConservative,
}

// GenerateReport renders the dataset as a markdown report: divergence, a
// section per pole with its top transitions, and the most rigid actors.
func GenerateReport(ds *model.AnalysisDataset, opts ReportOptions) (string, error) {
	if ds == nil || len(ds.Poles) == 0 {
		return "", fmt.Errorf("no dataset to report on")
	}
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "Polar Markov Report"
	}
	k := opts.TopK
	if k <= 0 {
		k = analysis.DefaultTopK
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if !opts.Now.IsZero() {
		fmt.Fprintf(&sb, "*Generated: %s*\n\n", opts.Now.Format(time.RFC1123))
	}

	sb.WriteString("## Divergence (KL)\n")
	for _, label := range divergenceLabels(ds) {
		v, ok := ds.Divergence[label]
		fmt.Fprintf(&sb, "- %s: %s\n", klHeading(label), analysis.FormatFloat(v, ok, analysis.DivergencePrecision))
	}
	sb.WriteString("\n")

	for _, pole := range model.CanonicalPoles {
		block, ok := ds.Pole(pole)
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "## %s\n", strings.ToUpper(pole))
		fmt.Fprintf(&sb, "- Sequences: %d\n", block.NSequences)
		fmt.Fprintf(&sb, "- Mean entropy: %s\n", analysis.FormatMean(block.Entropy))
		fmt.Fprintf(&sb, "- Mean loop: %s\n\n", analysis.FormatMean(block.LoopStrength))

		sb.WriteString("### Top transitions\n")
		for _, t := range analysis.DeriveTopTransitions(block.States, block.P, k) {
			fmt.Fprintf(&sb, "- %s → %s: %s\n", t.From, t.To, analysis.FormatCell(t.Probability))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Most rigid actors (low mean entropy)\n")
	rows := ds.ActorStats
	if len(rows) > RigidActorLimit {
		rows = rows[:RigidActorLimit]
	}
	if len(rows) == 0 {
		sb.WriteString("- none\n")
	}
	for _, r := range rows {
		fmt.Fprintf(&sb, "- [%s] %s | seqs=%d | mean_entropy=%s | mean_loop=%s\n",
			r.Pole, r.Actor, r.NSequences,
			analysis.FormatFloat(r.MeanEntropy, true, analysis.CellPrecision),
			analysis.FormatFloat(r.MeanLoop, true, analysis.CellPrecision))
	}

	return sb.String(), nil
}

// divergenceLabels returns the canonical KL labels followed by any others
// present in the dataset, sorted.
func divergenceLabels(ds *model.AnalysisDataset) []string {
	labels := append([]string(nil), canonicalDivergence...)
	var extra []string
	for label := range ds.Divergence {
		if !contains(canonicalDivergence, label) {
			extra = append(extra, label)
		}
	}
	sort.Strings(extra)
	return append(labels, extra...)
}

// klHeading turns "KL_a||b" into "KL(a || b)".
func klHeading(label string) string {
	rest, ok := strings.CutPrefix(label, "KL_")
	if !ok {
		return label
	}
	a, b, ok := strings.Cut(rest, "||")
	if !ok {
		return label
	}
	return fmt.Sprintf("KL(%s || %s)", a, b)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// WriteReport writes GenerateReport's output to w.
func WriteReport(w io.Writer, ds *model.AnalysisDataset, opts ReportOptions) error {
	text, err := GenerateReport(ds, opts)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, text)
	return err
}

// SaveReport writes the report to path, creating parent directories.
func SaveReport(path string, ds *model.AnalysisDataset, opts ReportOptions) error {
	text, err := GenerateReport(ds, opts)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create parent dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
