package testutil_test

import (
	"math"
	"reflect"
	"testing"

	"github.com/vanderheijden86/polarview/pkg/testutil"
)

func TestGeneratorDeterministic(t *testing.T) {
	a := testutil.NewGenerator(42).Block(5, false)
	b := testutil.NewGenerator(42).Block(5, false)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed should produce identical blocks")
	}
}

func TestGeneratorRowsAreStochastic(t *testing.T) {
	block := testutil.NewGenerator(7).Block(6, true)
	if block.Size() != 6 || len(block.P) != 6 {
		t.Fatalf("unexpected shape: %d states, %d rows", block.Size(), len(block.P))
	}
	for i, row := range block.P {
		var sum float64
		for _, v := range row {
			sum += v
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("row %d sums to %f", i, sum)
		}
	}
}

func TestSampleDatasetDecodes(t *testing.T) {
	ds := testutil.SampleDataset(t)
	if len(ds.Poles) != 2 || len(ds.Actors) != 2 || len(ds.ActorStats) != 6 {
		t.Errorf("unexpected sample shape: poles=%d actors=%d stats=%d", len(ds.Poles), len(ds.Actors), len(ds.ActorStats))
	}
}
