// Package analysis derives view payloads from a loaded AnalysisDataset.
//
// Every function here is pure and total: missing poles, actors or matrices
// come back as explicit "unavailable" values, never as errors or panics.
package analysis

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// Placeholder is shown wherever a value is absent or not a finite number.
const Placeholder = "—"

// Display precisions.
const (
	CellPrecision       = 3 // matrix cells, means
	DetailPrecision     = 5 // hover/detail value of a cell
	DivergencePrecision = 4
)

// Mean returns the arithmetic mean of the finite entries of values. The
// second result is false when there are none.
func Mean(values []float64) (float64, bool) {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return 0, false
	}
	return stat.Mean(finite, nil), true
}

// FormatFloat renders v with prec decimals, or Placeholder when ok is false
// or v is NaN/Inf.
func FormatFloat(v float64, ok bool, prec int) string {
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return Placeholder
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// FormatMean is FormatFloat applied to Mean(values).
func FormatMean(values []float64) string {
	m, ok := Mean(values)
	return FormatFloat(m, ok, CellPrecision)
}

// FormatCell renders a matrix probability for the table.
func FormatCell(p float64) string {
	return FormatFloat(p, true, CellPrecision)
}

// FormatCellDetail renders a matrix probability at full detail precision.
func FormatCellDetail(p float64) string {
	return FormatFloat(p, true, DetailPrecision)
}
