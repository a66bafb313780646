package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// FormatTimeRel returns a relative time string (e.g., "2h ago", "3d ago")
func FormatTimeRel(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// truncate shortens s to maxWidth terminal cells, ending in "…" when cut.
func truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth == 1 {
		return "…"
	}
	return runewidth.Truncate(s, maxWidth-1, "") + "…"
}

// padRight pads s with spaces to width terminal cells.
func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// padLeft right-aligns s in width terminal cells.
func padLeft(s string, width int) string {
	return runewidth.FillLeft(s, width)
}

// maxWidth returns the widest entry, in terminal cells.
func maxWidth(items []string) int {
	w := 0
	for _, s := range items {
		if n := runewidth.StringWidth(s); n > w {
			w = n
		}
	}
	return w
}

// bar draws a proportional bar of up to width cells for v in [0, 1].
func bar(v float64, width int) string {
	if !(v > 0) || width <= 0 {
		return ""
	}
	if v > 1 {
		v = 1
	}
	n := int(v*float64(width) + 0.5)
	return strings.Repeat("█", n)
}
