package analysis_test

import (
	"math"
	"testing"

	"github.com/vanderheijden86/polarview/pkg/analysis"
)

func TestMean(t *testing.T) {
	if _, ok := analysis.Mean(nil); ok {
		t.Error("Mean(nil) should report no value")
	}
	if _, ok := analysis.Mean([]float64{}); ok {
		t.Error("Mean([]) should report no value")
	}
	m, ok := analysis.Mean([]float64{2, 4, 6})
	if !ok || m != 4 {
		t.Errorf("Mean([2,4,6]) = %v, %v; want 4, true", m, ok)
	}
	m, ok = analysis.Mean([]float64{math.NaN(), 2, math.Inf(1), 6})
	if !ok || m != 4 {
		t.Errorf("Mean skips non-finite entries: got %v, %v; want 4, true", m, ok)
	}
	if _, ok := analysis.Mean([]float64{math.NaN()}); ok {
		t.Error("Mean of only NaN should report no value")
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		v    float64
		ok   bool
		prec int
		want string
	}{
		{0.12345, true, 3, "0.123"},
		{0.12345, true, 5, "0.12345"},
		{0, true, 3, "0.000"},
		{1, false, 3, analysis.Placeholder},
		{math.NaN(), true, 3, analysis.Placeholder},
		{math.Inf(1), true, 3, analysis.Placeholder},
	}
	for _, tt := range tests {
		if got := analysis.FormatFloat(tt.v, tt.ok, tt.prec); got != tt.want {
			t.Errorf("FormatFloat(%v, %v, %d) = %q, want %q", tt.v, tt.ok, tt.prec, got, tt.want)
		}
	}
}

func TestFormatMeanNeverNaNOrZero(t *testing.T) {
	if got := analysis.FormatMean(nil); got != analysis.Placeholder {
		t.Errorf("FormatMean(nil) = %q, want placeholder", got)
	}
	if got := analysis.FormatMean([]float64{0.5, 0.7}); got != "0.600" {
		t.Errorf("FormatMean = %q, want 0.600", got)
	}
}

func TestFormatCell(t *testing.T) {
	if got := analysis.FormatCell(0.333333); got != "0.333" {
		t.Errorf("FormatCell = %q", got)
	}
	if got := analysis.FormatCellDetail(0.333333); got != "0.33333" {
		t.Errorf("FormatCellDetail = %q", got)
	}
}
