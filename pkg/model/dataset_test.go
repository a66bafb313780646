package model_test

import (
	"testing"

	"github.com/vanderheijden86/polarview/pkg/model"
)

func TestMatrixBlockAt(t *testing.T) {
	b := model.MatrixBlock{
		States: []string{"A", "B"},
		P:      [][]float64{{0.9, 0.1}, {0.3}},
	}
	tests := []struct {
		i, j int
		want float64
	}{
		{0, 0, 0.9},
		{0, 1, 0.1},
		{1, 0, 0.3},
		{1, 1, 0}, // short row
		{2, 0, 0},
		{-1, 0, 0},
		{0, -1, 0},
	}
	for _, tt := range tests {
		if got := b.At(tt.i, tt.j); got != tt.want {
			t.Errorf("At(%d, %d) = %v, want %v", tt.i, tt.j, got, tt.want)
		}
	}
	if b.Size() != 2 {
		t.Errorf("Size() = %d, want 2", b.Size())
	}
}

func TestAnalysisDatasetNil(t *testing.T) {
	var ds *model.AnalysisDataset
	if _, ok := ds.Pole(model.PoleLiberal); ok {
		t.Error("nil dataset should have no poles")
	}
	if ds.SavedActorCount() != 0 {
		t.Error("nil dataset should have no actor matrices")
	}
}

func TestAnalysisDatasetPole(t *testing.T) {
	ds := &model.AnalysisDataset{
		Poles: map[string]model.PoleBlock{
			model.PoleConservative: {MatrixBlock: model.MatrixBlock{NSequences: 7}},
		},
		Actors: map[string]model.ActorBlock{"conservative::x": {Pole: model.PoleConservative, Actor: "x"}},
	}
	b, ok := ds.Pole(model.PoleConservative)
	if !ok || b.NSequences != 7 {
		t.Errorf("Pole(conservative) = %+v, %v", b, ok)
	}
	if _, ok := ds.Pole(model.PoleLiberal); ok {
		t.Error("liberal should be missing")
	}
	if ds.SavedActorCount() != 1 {
		t.Errorf("SavedActorCount() = %d, want 1", ds.SavedActorCount())
	}
}
