package export

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/polarview/pkg/analysis"
)

// HeatmapOptions controls heatmap export behaviour.
type HeatmapOptions struct {
	Path   string              // Output path; format inferred from extension when Format empty
	Format string              // "svg" or "png" (case-insensitive). If empty, inferred from Path.
	Title  string              // Optional heading; defaults to the view label
	View   analysis.MatrixView // Matrix to draw; must be available
}

// SaveHeatmap renders a transition matrix as an SVG or PNG heatmap.
func SaveHeatmap(opts HeatmapOptions) error {
	if !opts.View.Available {
		msg := opts.View.Message()
		if msg == "" {
			msg = "matrix unavailable"
		}
		return fmt.Errorf("cannot export heatmap: %s", msg)
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".png":
			format = "png"
		case ".svg":
			format = "svg"
		default:
			format = "svg"
			if filepath.Ext(opts.Path) == "" {
				opts.Path += ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	layout := buildHeatmapLayout(opts)
	if format == "png" {
		return renderHeatmapPNG(opts.Path, layout)
	}

	file, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	if err := RenderHeatmapSVG(file, layout); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// --- layout ----------------------------------------------------------------

const (
	heatCell    = 56.0
	heatPadding = 24.0
	heatHeader  = 64.0
	glyphWidth  = 7.0 // basicfont.Face7x13 advance
)

// HeatmapLayout is the resolved geometry of a heatmap.
type HeatmapLayout struct {
	Title    string
	Subtitle string
	States   []string
	P        [][]float64
	LabelW   float64
	Width    int
	Height   int
}

func buildHeatmapLayout(opts HeatmapOptions) HeatmapLayout {
	v := opts.View
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "Transition matrix: " + v.Label()
	}

	longest := 0
	for _, s := range v.States {
		if n := len([]rune(s)); n > longest {
			longest = n
		}
	}
	labelW := math.Max(float64(longest)*glyphWidth+12, 48)
	n := float64(len(v.States))

	width := int(heatPadding*2 + labelW + n*heatCell)
	if minW := int(heatPadding*2) + len(title)*int(glyphWidth); width < minW {
		width = minW
	}
	height := int(heatPadding*2 + heatHeader + labelW + n*heatCell)

	return HeatmapLayout{
		Title:    title,
		Subtitle: fmt.Sprintf("%d states · %d sequences", len(v.States), v.NSequences),
		States:   v.States,
		P:        v.P,
		LabelW:   labelW,
		Width:    width,
		Height:   height,
	}
}

// cellOrigin returns the top-left corner of cell (i, j).
func (l HeatmapLayout) cellOrigin(i, j int) (float64, float64) {
	x := heatPadding + l.LabelW + float64(j)*heatCell
	y := heatPadding + heatHeader + l.LabelW + float64(i)*heatCell
	return x, y
}

func (l HeatmapLayout) cell(i, j int) float64 {
	if i < len(l.P) && j < len(l.P[i]) {
		return l.P[i][j]
	}
	return 0
}

// --- colors ----------------------------------------------------------------

var (
	heatBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	heatLow      = color.RGBA{0xf7, 0xfb, 0xff, 0xff}
	heatHigh     = color.RGBA{0x08, 0x30, 0x6b, 0xff}
	heatText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	heatTextInv  = color.RGBA{0xff, 0xff, 0xff, 0xff}
	heatSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	heatGrid     = color.RGBA{0xdd, 0xdd, 0xdd, 0xff}
	heatInvalid  = color.RGBA{0xee, 0xee, 0xee, 0xff}
)

// HeatColor maps a probability onto the low-high ramp. Non-finite values get
// a neutral grey.
func HeatColor(p float64) color.RGBA {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return heatInvalid
	}
	t := math.Min(math.Max(p, 0), 1)
	lerp := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
	}
	return color.RGBA{lerp(heatLow.R, heatHigh.R), lerp(heatLow.G, heatHigh.G), lerp(heatLow.B, heatHigh.B), 0xff}
}

func textOn(p float64) color.RGBA {
	if p >= 0.5 && !math.IsNaN(p) {
		return heatTextInv
	}
	return heatText
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// --- rendering -------------------------------------------------------------

func renderHeatmapPNG(path string, l HeatmapLayout) error {
	dc := gg.NewContext(l.Width, l.Height)
	dc.SetColor(heatBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetColor(heatText)
	dc.DrawStringAnchored(l.Title, heatPadding, heatPadding+14, 0, 0.5)
	dc.SetColor(heatSubtle)
	dc.DrawStringAnchored(l.Subtitle, heatPadding, heatPadding+34, 0, 0.5)

	for i, from := range l.States {
		x0, y0 := l.cellOrigin(i, 0)
		dc.SetColor(heatText)
		dc.DrawStringAnchored(from, x0-6, y0+heatCell/2, 1, 0.5)

		// Column labels are drawn rotated above the grid.
		cx, cy := l.cellOrigin(0, i)
		dc.Push()
		dc.RotateAbout(-math.Pi/2, cx+heatCell/2, cy-6)
		dc.DrawStringAnchored(from, cx+heatCell/2, cy-6, 0, 0.5)
		dc.Pop()

		for j := range l.States {
			p := l.cell(i, j)
			x, y := l.cellOrigin(i, j)
			dc.SetColor(HeatColor(p))
			dc.DrawRectangle(x, y, heatCell, heatCell)
			dc.Fill()
			dc.SetColor(heatGrid)
			dc.SetLineWidth(1)
			dc.DrawRectangle(x, y, heatCell, heatCell)
			dc.Stroke()
			dc.SetColor(textOn(p))
			dc.DrawStringAnchored(analysis.FormatCell(p), x+heatCell/2, y+heatCell/2, 0.5, 0.5)
		}
	}

	return dc.SavePNG(path)
}

// RenderHeatmapSVG writes the heatmap as SVG to w. Each cell carries a
// <title> with the full-precision value.
func RenderHeatmapSVG(w io.Writer, l HeatmapLayout) error {
	canvas := svg.New(w)
	canvas.Start(l.Width, l.Height)
	canvas.Rect(0, 0, l.Width, l.Height, "fill:"+css(heatBackdrop))
	canvas.Text(int(heatPadding), int(heatPadding+18), l.Title,
		fmt.Sprintf("fill:%s;font-size:15px;font-family:monospace;font-weight:bold", css(heatText)))
	canvas.Text(int(heatPadding), int(heatPadding+38), l.Subtitle,
		fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(heatSubtle)))

	labelStyle := fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(heatText))
	for i, from := range l.States {
		x0, y0 := l.cellOrigin(i, 0)
		canvas.Text(int(x0-6), int(y0+heatCell/2+4), from, labelStyle+";text-anchor:end")

		cx, cy := l.cellOrigin(0, i)
		lx, ly := int(cx+heatCell/2+4), int(cy-6)
		canvas.Text(lx, ly, from, labelStyle, fmt.Sprintf(`transform="rotate(-90 %d %d)"`, lx, ly))

		for j, to := range l.States {
			p := l.cell(i, j)
			x, y := l.cellOrigin(i, j)
			canvas.Group()
			canvas.Title(fmt.Sprintf("%s → %s: %s", from, to, analysis.FormatCellDetail(p)))
			canvas.Rect(int(x), int(y), int(heatCell), int(heatCell),
				fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(HeatColor(p)), css(heatGrid)))
			canvas.Text(int(x+heatCell/2), int(y+heatCell/2+4), analysis.FormatCell(p),
				fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace;text-anchor:middle", css(textOn(p))))
			canvas.Gend()
		}
	}

	canvas.End()
	return nil
}

// BuildHeatmapLayout exposes the layout used by SaveHeatmap, for callers that
// render to their own writer.
func BuildHeatmapLayout(v analysis.MatrixView, title string) HeatmapLayout {
	return buildHeatmapLayout(HeatmapOptions{View: v, Title: title})
}
