package export_test

import (
	"bytes"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/polarview/pkg/analysis"
	"github.com/vanderheijden86/polarview/pkg/export"
	"github.com/vanderheijden86/polarview/pkg/testutil"
)

func TestRenderHeatmapSVG(t *testing.T) {
	ds := testutil.SampleDataset(t)
	view := analysis.DeriveMatrix(ds, "conservative", "")

	var buf bytes.Buffer
	if err := export.RenderHeatmapSVG(&buf, export.BuildHeatmapLayout(view, "")); err != nil {
		t.Fatal(err)
	}
	svg := buf.String()
	for _, want := range []string{
		"<svg",
		"Transition matrix: CONSERVATIVE",
		"2 states · 40 sequences",
		"A → B: 0.10000",
		">0.900<",
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q", want)
		}
	}
	if strings.Count(svg, "<rect") != 1+4 {
		t.Errorf("expected backdrop + 4 cells, got %d rects", strings.Count(svg, "<rect"))
	}
}

func TestSaveHeatmap_Formats(t *testing.T) {
	ds := testutil.SampleDataset(t)
	view := analysis.DeriveMatrix(ds, "liberal", "Senator Z")
	dir := t.TempDir()

	t.Run("png", func(t *testing.T) {
		path := filepath.Join(dir, "out", "liberal.png")
		if err := export.SaveHeatmap(export.HeatmapOptions{Path: path, View: view}); err != nil {
			t.Fatalf("SaveHeatmap: %v", err)
		}
		f, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()
		img, err := png.Decode(f)
		if err != nil {
			t.Fatalf("not a PNG: %v", err)
		}
		if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
			t.Error("empty image")
		}
	})

	t.Run("extension added", func(t *testing.T) {
		path := filepath.Join(dir, "noext")
		if err := export.SaveHeatmap(export.HeatmapOptions{Path: path, View: view}); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(path + ".svg"); err != nil {
			t.Errorf("expected .svg file: %v", err)
		}
	})

	t.Run("explicit format", func(t *testing.T) {
		path := filepath.Join(dir, "explicit.out")
		if err := export.SaveHeatmap(export.HeatmapOptions{Path: path, Format: "SVG", View: view}); err != nil {
			t.Fatal(err)
		}
		data, _ := os.ReadFile(path)
		if !strings.Contains(string(data), "LIBERAL / Senator Z") {
			t.Error("svg should carry the actor label")
		}
	})

	t.Run("bad format", func(t *testing.T) {
		err := export.SaveHeatmap(export.HeatmapOptions{Path: filepath.Join(dir, "x.gif"), Format: "gif", View: view})
		if err == nil {
			t.Error("expected unsupported format error")
		}
	})
}

func TestSaveHeatmap_Unavailable(t *testing.T) {
	ds := testutil.SampleDataset(t)
	view := analysis.DeriveMatrix(ds, "liberal", "alice")
	err := export.SaveHeatmap(export.HeatmapOptions{Path: filepath.Join(t.TempDir(), "a.svg"), View: view})
	if err == nil || !strings.Contains(err.Error(), "threshold") {
		t.Errorf("expected below-threshold error, got %v", err)
	}
}

func TestHeatColor(t *testing.T) {
	low := export.HeatColor(0)
	high := export.HeatColor(1)
	if low == high {
		t.Fatal("ramp endpoints should differ")
	}
	if export.HeatColor(-3) != low || export.HeatColor(7) != high {
		t.Error("values outside [0,1] should clamp")
	}
	if export.HeatColor(math.NaN()) == low {
		t.Error("NaN should not look like zero")
	}
	mid := export.HeatColor(0.5)
	if !(mid.B < low.B && mid.B > high.B) {
		t.Errorf("mid color %v not between endpoints", mid)
	}
}
