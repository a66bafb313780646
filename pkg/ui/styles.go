package ui

import "github.com/charmbracelet/lipgloss"

// ══════════════════════════════════════════════════════════════════════════════
// COLOR PALETTE - Adaptive colors for light and dark terminals
// ══════════════════════════════════════════════════════════════════════════════

var (
	ColorBgHighlight = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}
	ColorText        = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext     = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted       = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}

	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorSecondary = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}
	ColorInfo      = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorSuccess   = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorWarning   = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorDanger    = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}
)

// heatRamp shades matrix cells from near-zero to near-one probability.
var heatRamp = [heatLevels]lipgloss.AdaptiveColor{
	{Light: "#F7FBFF", Dark: "#1E1F29"},
	{Light: "#C6DBEF", Dark: "#263859"},
	{Light: "#6BAED6", Dark: "#2F5D8A"},
	{Light: "#2171B5", Dark: "#3C82C4"},
	{Light: "#08306B", Dark: "#6BAED6"},
}

var heatText = [heatLevels]lipgloss.AdaptiveColor{
	{Light: "#1A1A1A", Dark: "#BFBFBF"},
	{Light: "#1A1A1A", Dark: "#F8F8F2"},
	{Light: "#1A1A1A", Dark: "#F8F8F2"},
	{Light: "#FFFFFF", Dark: "#F8F8F2"},
	{Light: "#FFFFFF", Dark: "#1A1A1A"},
}

// 16-color fallbacks for the ramp above, one distinct background per band.
var heatRampANSI = [heatLevels]lipgloss.ANSIColor{0, 4, 12, 6, 14}

var heatTextANSI = [heatLevels]lipgloss.ANSIColor{7, 15, 15, 0, 0}
