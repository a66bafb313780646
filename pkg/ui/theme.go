package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// themeColor returns c for ANSI256+ profiles and fallback below that. Hex
// colors degrade to nearby ANSI codes that can make adjacent shades collide.
func themeColor(p colorprofile.Profile, c, fallback lipgloss.TerminalColor) lipgloss.TerminalColor {
	if p < colorprofile.ANSI256 {
		return fallback
	}
	return c
}

// heatLevels is the number of shades used for matrix cells.
const heatLevels = 5

type Theme struct {
	Renderer *lipgloss.Renderer

	// Colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor

	// Styles
	Base      lipgloss.Style
	Header    lipgloss.Style
	Title     lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	MutedText lipgloss.Style
	Cursor    lipgloss.Style
	Tab       lipgloss.Style
	TabActive lipgloss.Style
	Panel     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Danger    lipgloss.Style
	Info      lipgloss.Style

	// Heat holds one cell style per probability band, low to high.
	Heat [heatLevels]lipgloss.Style
}

// DefaultTheme returns the Dracula-inspired adaptive theme for the detected
// terminal profile.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	return themeFor(r, TermProfile)
}

func themeFor(r *lipgloss.Renderer, profile colorprofile.Profile) Theme {
	t := Theme{
		Renderer: r,

		Primary:   ColorPrimary,
		Secondary: ColorSecondary,
		Subtext:   ColorSubtext,
		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Highlight: ColorBgHighlight,
		Muted:     ColorMuted,
	}

	t.Base = r.NewStyle().Foreground(ColorText)
	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)
	t.Title = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.Label = r.NewStyle().Foreground(t.Subtext)
	t.Value = r.NewStyle().Foreground(ColorText).Bold(true)
	t.MutedText = r.NewStyle().Foreground(ColorMuted)
	t.Cursor = r.NewStyle().
		Background(themeColor(profile, t.Highlight, lipgloss.ANSIColor(7))).
		Foreground(themeColor(profile, ColorText, lipgloss.ANSIColor(0))).
		Bold(true).
		Underline(true)
	t.Tab = r.NewStyle().Foreground(t.Secondary).Padding(0, 1)
	t.TabActive = r.NewStyle().Foreground(t.Primary).Bold(true).Underline(true).Padding(0, 1)
	t.Panel = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)
	t.Success = r.NewStyle().Foreground(ColorSuccess)
	t.Warning = r.NewStyle().Foreground(ColorWarning)
	t.Danger = r.NewStyle().Foreground(ColorDanger).Bold(true)
	t.Info = r.NewStyle().Foreground(ColorInfo)

	for i := range heatRamp {
		bg := themeColor(profile, heatRamp[i], heatRampANSI[i])
		fg := themeColor(profile, heatText[i], heatTextANSI[i])
		t.Heat[i] = r.NewStyle().Background(bg).Foreground(fg)
	}

	return t
}

// HeatStyle returns the cell style for probability p.
func (t Theme) HeatStyle(p float64) lipgloss.Style {
	return t.Heat[heatBand(p)]
}

// heatBand maps p onto [0, heatLevels). Non-finite values land in band 0.
func heatBand(p float64) int {
	if !(p > 0) {
		return 0
	}
	if p >= 1 {
		return heatLevels - 1
	}
	return int(p * heatLevels)
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
