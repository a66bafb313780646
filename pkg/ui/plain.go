package ui

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/polarview/pkg/analysis"
)

// PlainSummary renders summary rows as "label: value" lines.
func PlainSummary(rows []analysis.Row) string {
	var sb strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&sb, "%s: %s\n", r.Label, r.Value)
	}
	return sb.String()
}

// PlainMatrix renders an available matrix as tab-separated values with a
// header row; an unavailable one as its message.
func PlainMatrix(v analysis.MatrixView) string {
	if !v.Available {
		return v.Message() + "\n"
	}
	var sb strings.Builder
	sb.WriteString("from\\to")
	for _, s := range v.States {
		sb.WriteString("\t" + s)
	}
	sb.WriteByte('\n')
	for i, from := range v.States {
		sb.WriteString(from)
		for j := range v.States {
			sb.WriteString("\t" + analysis.FormatCellDetail(v.Cell(i, j)))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// PlainTop renders a ranked transition list.
func PlainTop(v analysis.MatrixView, top []analysis.Transition) string {
	if !v.Available {
		return v.Message() + "\n"
	}
	var sb strings.Builder
	for i, t := range top {
		fmt.Fprintf(&sb, "%d. %s → %s: %s\n", i+1, t.From, t.To, analysis.FormatCell(t.Probability))
	}
	return sb.String()
}
