package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/polarview/pkg/analysis"
	"github.com/vanderheijden86/polarview/pkg/debug"
)

// Renderer turns derived view payloads into display text. Implementations
// never look at the dataset directly.
type Renderer interface {
	RenderSummary(rows []analysis.Row) string
	RenderMatrix(v analysis.MatrixView, cur Cursor) string
	RenderTop(v analysis.MatrixView, top []analysis.Transition) string
	RenderReport(markdown string) string
	RenderStatus(s Status) string
}

// Cursor is the highlighted matrix cell.
type Cursor struct {
	Row, Col int
}

// Clamp keeps the cursor inside an n x n matrix.
func (c Cursor) Clamp(n int) Cursor {
	clampOne := func(v int) int {
		if v >= n {
			v = n - 1
		}
		if v < 0 {
			v = 0
		}
		return v
	}
	return Cursor{Row: clampOne(c.Row), Col: clampOne(c.Col)}
}

// StatusKind classifies the status line.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusLoading
	StatusReady
	StatusError
)

// Status is the one-line message shown under the body.
type Status struct {
	Kind   StatusKind
	Text   string
	Detail string // secondary text, e.g. the dataset location
}

// TermRenderer renders for a terminal with lipgloss styles.
type TermRenderer struct {
	theme Theme
	width int

	// ReportStyle is passed to glamour; empty selects auto detection.
	ReportStyle string

	md      *glamour.TermRenderer
	mdWidth int
	mdStyle string
}

// NewTermRenderer creates a renderer with the given theme.
func NewTermRenderer(theme Theme) *TermRenderer {
	return &TermRenderer{theme: theme, width: 80}
}

// SetWidth sets the available width in cells.
func (r *TermRenderer) SetWidth(w int) {
	if w > 0 {
		r.width = w
	}
}

// RenderSummary renders label/value rows as an aligned two-column block.
func (r *TermRenderer) RenderSummary(rows []analysis.Row) string {
	if len(rows) == 0 {
		return r.theme.MutedText.Render("Nothing to summarize.")
	}
	labels := make([]string, len(rows))
	for i, row := range rows {
		labels[i] = row.Label
	}
	lw := maxWidth(labels)

	var sb strings.Builder
	for i, row := range rows {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(r.theme.Label.Render(padRight(row.Label, lw)))
		sb.WriteString("  ")
		sb.WriteString(r.theme.Value.Render(row.Value))
	}
	return sb.String()
}

// RenderMatrix lays out P as a labeled table: rows are "from" states,
// columns are "to" states. The cursor cell is highlighted and its full
// precision value is shown below the table.
func (r *TermRenderer) RenderMatrix(v analysis.MatrixView, cur Cursor) string {
	if !v.Available {
		return r.unavailable(v)
	}
	n := len(v.States)
	if n == 0 {
		return r.theme.MutedText.Render("Matrix has no states.")
	}
	cur = cur.Clamp(n)

	labelW := maxWidth(v.States)
	// Column width fits "0.000" and the longest label, capped so wide
	// state names do not push the table off screen.
	cellW := labelW
	if cellW < 5 {
		cellW = 5
	}
	if limit := (r.width - labelW - 2) / n; limit >= 5 && cellW > limit-1 {
		cellW = limit - 1
	}

	var sb strings.Builder
	sb.WriteString(r.theme.Title.Render(fmt.Sprintf("Transition matrix · %s", v.Label())))
	sb.WriteString("\n")
	sb.WriteString(r.theme.MutedText.Render(fmt.Sprintf("%d states · %d sequences · rows: from, columns: to", n, v.NSequences)))
	sb.WriteString("\n\n")

	sb.WriteString(padRight("", labelW+1))
	for j, s := range v.States {
		head := padLeft(truncate(s, cellW), cellW)
		if j == cur.Col {
			head = r.theme.Title.Render(head)
		} else {
			head = r.theme.Label.Render(head)
		}
		sb.WriteString(" " + head)
	}
	sb.WriteString("\n")

	for i, from := range v.States {
		label := padRight(truncate(from, labelW), labelW)
		if i == cur.Row {
			label = r.theme.Title.Render(label)
		} else {
			label = r.theme.Label.Render(label)
		}
		sb.WriteString(label + " ")
		for j := range v.States {
			p := v.Cell(i, j)
			cell := padLeft(analysis.FormatCell(p), cellW)
			style := r.theme.HeatStyle(p)
			if i == cur.Row && j == cur.Col {
				style = r.theme.Cursor
			}
			sb.WriteString(" " + style.Render(cell))
		}
		sb.WriteString("\n")
	}

	from, to := v.States[cur.Row], v.States[cur.Col]
	sb.WriteString("\n")
	sb.WriteString(r.theme.Label.Render(fmt.Sprintf("P(%s → %s) = ", from, to)))
	sb.WriteString(r.theme.Value.Render(analysis.FormatCellDetail(v.Cell(cur.Row, cur.Col))))
	return sb.String()
}

// RenderTop renders a ranked transition list with proportional bars.
func (r *TermRenderer) RenderTop(v analysis.MatrixView, top []analysis.Transition) string {
	if !v.Available {
		return r.unavailable(v)
	}

	var sb strings.Builder
	sb.WriteString(r.theme.Title.Render(fmt.Sprintf("Top transitions · %s", v.Label())))
	sb.WriteString("\n\n")
	if len(top) == 0 {
		sb.WriteString(r.theme.MutedText.Render("No transitions."))
		return sb.String()
	}

	names := make([]string, len(top))
	for i, t := range top {
		names[i] = t.From + " → " + t.To
	}
	nameW := maxWidth(names)
	rankW := len(fmt.Sprint(len(top)))
	barW := r.width - nameW - rankW - 20
	if barW > 30 {
		barW = 30
	}

	for i, t := range top {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(r.theme.MutedText.Render(padLeft(fmt.Sprint(i+1), rankW) + ". "))
		sb.WriteString(padRight(names[i], nameW))
		sb.WriteString("  ")
		sb.WriteString(r.theme.Value.Render(analysis.FormatCell(t.Probability)))
		sb.WriteString(" ")
		sb.WriteString(r.theme.Title.Render(bar(t.Probability, barW)))
		if t.SelfLoop() {
			sb.WriteString(r.theme.MutedText.Render(" (self-loop)"))
		}
	}
	return sb.String()
}

// RenderReport renders markdown with glamour, falling back to the raw text
// when rendering fails.
func (r *TermRenderer) RenderReport(markdown string) string {
	if strings.TrimSpace(markdown) == "" {
		return r.theme.MutedText.Render("The report is empty.")
	}
	md, err := r.markdownRenderer()
	if err != nil {
		debug.Log("glamour renderer unavailable: %v", err)
		return markdown
	}
	out, err := md.Render(markdown)
	if err != nil {
		debug.Log("glamour render failed: %v", err)
		return markdown
	}
	return strings.TrimRight(out, "\n")
}

func (r *TermRenderer) markdownRenderer() (*glamour.TermRenderer, error) {
	wrap := r.width - 4
	if wrap < 20 {
		wrap = 20
	}
	if r.md != nil && r.mdWidth == wrap && r.mdStyle == r.ReportStyle {
		return r.md, nil
	}
	style := glamour.WithAutoStyle()
	if r.ReportStyle != "" {
		style = glamour.WithStandardStyle(r.ReportStyle)
	}
	md, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(wrap))
	if err != nil {
		return nil, err
	}
	r.md, r.mdWidth, r.mdStyle = md, wrap, r.ReportStyle
	return md, nil
}

// RenderStatus renders the status line.
func (r *TermRenderer) RenderStatus(s Status) string {
	var style lipgloss.Style
	prefix := ""
	switch s.Kind {
	case StatusLoading:
		style = r.theme.Warning
	case StatusReady:
		style = r.theme.Success
		prefix = "✓ "
	case StatusError:
		style = r.theme.Danger
		prefix = "✗ "
	default:
		style = r.theme.Info
	}
	out := style.Render(prefix + s.Text)
	if s.Detail != "" {
		out += r.theme.MutedText.Render("  " + s.Detail)
	}
	return truncateStyled(out, r.width)
}

func (r *TermRenderer) unavailable(v analysis.MatrixView) string {
	msg := v.Message()
	if msg == "" {
		msg = "Matrix unavailable."
	}
	body := r.theme.Title.Render("Matrix unavailable · "+v.Label()) + "\n\n" + r.theme.MutedText.Render(msg)
	if v.Reason == analysis.ReasonBelowThreshold || v.Reason == analysis.ReasonNotComputed {
		body += "\n" + r.theme.MutedText.Render("Select the pole aggregate to see the full matrix.")
	}
	return r.theme.Panel.Render(body)
}

// truncateStyled cuts a styled line to width cells.
func truncateStyled(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
