package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/vanderheijden86/polarview/internal/datasource"
	"github.com/vanderheijden86/polarview/pkg/metrics"
)

// renderDiagnostics lists every load attempt, newest last, followed by the
// timing metrics collected so far.
func renderDiagnostics(t Theme, attempts []datasource.Attempt, loadErr error) string {
	var sb strings.Builder
	sb.WriteString(t.Title.Render("Diagnostics"))
	sb.WriteString("\n\n")

	if loadErr != nil {
		sb.WriteString(t.Danger.Render("Last load failed: "))
		sb.WriteString(loadErr.Error())
		sb.WriteString("\n\n")
	}

	sb.WriteString(t.Label.Render("Load attempts"))
	sb.WriteString("\n")
	if len(attempts) == 0 {
		sb.WriteString(t.MutedText.Render("  none yet"))
		sb.WriteString("\n")
	}
	for _, a := range attempts {
		mark := t.Success.Render("  ok   ")
		detail := fmt.Sprintf("%d bytes, %v", a.Bytes, a.Duration.Round(time.Millisecond))
		if !a.OK {
			mark = t.Danger.Render("  FAIL ")
			detail = a.Error
		}
		fmt.Fprintf(&sb, "%s%-7s %s  %s\n", mark, a.Artifact, a.Location, t.MutedText.Render(detail))
	}

	if stats := metrics.AllTimingStats(); len(stats) > 0 {
		sb.WriteString("\n")
		sb.WriteString(t.Label.Render("Timings"))
		sb.WriteString("\n")
		for _, s := range stats {
			fmt.Fprintf(&sb, "  %-14s n=%-4d avg=%.2fms max=%.2fms\n", s.Name, s.Count, s.AvgMs, s.MaxMs)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
