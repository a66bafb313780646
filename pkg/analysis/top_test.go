package analysis_test

import (
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/polarview/pkg/analysis"
	"github.com/vanderheijden86/polarview/pkg/testutil"
)

func TestDeriveTopTransitions_TwoStates(t *testing.T) {
	states := []string{"A", "B"}
	p := [][]float64{{0.9, 0.1}, {0.3, 0.7}}

	got := analysis.DeriveTopTransitions(states, p, 3)
	want := []analysis.Transition{
		{From: "A", To: "A", Probability: 0.9},
		{From: "B", To: "B", Probability: 0.7},
		{From: "B", To: "A", Probability: 0.3},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DeriveTopTransitions = %+v, want %+v", got, want)
	}
}

func TestDeriveTopTransitions_TiesKeepRowMajorOrder(t *testing.T) {
	states := []string{"A", "B", "C"}
	p := [][]float64{
		{0.2, 0.4, 0.4},
		{0.4, 0.2, 0.4},
		{0.2, 0.2, 0.6},
	}
	got := analysis.DeriveTopTransitions(states, p, 5)
	want := []analysis.Transition{
		{From: "C", To: "C", Probability: 0.6},
		{From: "A", To: "B", Probability: 0.4},
		{From: "A", To: "C", Probability: 0.4},
		{From: "B", To: "A", Probability: 0.4},
		{From: "B", To: "C", Probability: 0.4},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tie order:\n got %+v\nwant %+v", got, want)
	}
}

func TestDeriveTopTransitions_Edges(t *testing.T) {
	tests := []struct {
		name   string
		states []string
		p      [][]float64
		k      int
		want   int
	}{
		{"k zero", []string{"A"}, [][]float64{{1}}, 0, 0},
		{"k negative", []string{"A"}, [][]float64{{1}}, -3, 0},
		{"no states", nil, nil, 12, 0},
		{"k larger than cells", []string{"A", "B"}, [][]float64{{0.5, 0.5}, {0.5, 0.5}}, 12, 4},
		{"default k", testutil.States(5), testutil.NewGenerator(1).Block(5, false).P, analysis.DefaultTopK, 12},
		{"short rows read as zero", []string{"A", "B"}, [][]float64{{1}}, 4, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analysis.DeriveTopTransitions(tt.states, tt.p, tt.k)
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestTopForView_Unavailable(t *testing.T) {
	ds := testutil.SampleDataset(t)
	view := analysis.DeriveMatrix(ds, "liberal", "Senator Y")
	if got := analysis.TopForView(view, 12); got != nil {
		t.Errorf("expected nil for unavailable view, got %+v", got)
	}
	view = analysis.DeriveMatrix(ds, "liberal", "Senator Z")
	if got := analysis.TopForView(view, 1); len(got) != 1 || got[0].From != "B" || got[0].To != "B" {
		t.Errorf("unexpected top for Senator Z: %+v", got)
	}
}

// =============================================================================
// Properties
// =============================================================================

func drawMatrix(t *rapid.T) ([]string, [][]float64) {
	n := rapid.IntRange(0, 7).Draw(t, "n")
	states := testutil.States(n)
	p := make([][]float64, n)
	for i := range p {
		// Quarter steps make ties common.
		steps := rapid.SliceOfN(rapid.IntRange(0, 4), n, n).Draw(t, "row")
		row := make([]float64, n)
		for j, s := range steps {
			row[j] = float64(s) / 4
		}
		p[i] = row
	}
	return states, p
}

func TestTopTransitionsProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		states, p := drawMatrix(t)
		k := rapid.IntRange(0, 60).Draw(t, "k")

		got := analysis.DeriveTopTransitions(states, p, k)

		want := k
		if cells := len(states) * len(states); cells < want {
			want = cells
		}
		if len(got) != want {
			t.Fatalf("len = %d, want min(k, n^2) = %d", len(got), want)
		}

		seen := make(map[[2]string]bool, len(got))
		for i, tr := range got {
			if i > 0 && got[i-1].Probability < tr.Probability {
				t.Fatalf("not sorted at %d: %v then %v", i, got[i-1].Probability, tr.Probability)
			}
			key := [2]string{tr.From, tr.To}
			if seen[key] {
				t.Fatalf("duplicate pair %v", key)
			}
			seen[key] = true
		}

		again := analysis.DeriveTopTransitions(states, p, k)
		if !reflect.DeepEqual(got, again) {
			t.Fatalf("not idempotent:\n%v\n%v", got, again)
		}
	})
}

func TestTopTransitionsTiesFollowRowMajor(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		states, p := drawMatrix(t)
		index := make(map[string]int, len(states))
		for i, s := range states {
			index[s] = i
		}
		n := len(states)

		got := analysis.DeriveTopTransitions(states, p, n*n)
		for i := 1; i < len(got); i++ {
			prev, cur := got[i-1], got[i]
			if prev.Probability != cur.Probability {
				continue
			}
			prevPos := index[prev.From]*n + index[prev.To]
			curPos := index[cur.From]*n + index[cur.To]
			if prevPos > curPos {
				t.Fatalf("tie broken out of row-major order: %+v before %+v", prev, cur)
			}
		}
	})
}

func BenchmarkDeriveTopTransitions20(b *testing.B) {
	block := testutil.NewGenerator(3).Block(20, true)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		analysis.DeriveTopTransitions(block.States, block.P, analysis.DefaultTopK)
	}
}
