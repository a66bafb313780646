package testutil

import (
	"fmt"
	"math/rand"

	"github.com/vanderheijden86/polarview/pkg/model"
)

// Generator creates random but reproducible matrix blocks.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a Generator seeded with seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// States returns n labels S0..S(n-1).
func States(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("S%d", i)
	}
	return out
}

// Block returns an n x n row-stochastic block. When quantize is true the
// probabilities are rounded to tenths before normalising, which produces many
// ties.
func (g *Generator) Block(n int, quantize bool) model.MatrixBlock {
	p := make([][]float64, n)
	for i := range p {
		row := make([]float64, n)
		var sum float64
		for j := range row {
			v := g.rng.Float64() + 0.01
			if quantize {
				v = float64(int(v*10)+1) / 10
			}
			row[j] = v
			sum += v
		}
		for j := range row {
			row[j] /= sum
		}
		p[i] = row
	}
	return model.MatrixBlock{
		States:     States(n),
		P:          p,
		NSequences: g.rng.Intn(100),
	}
}
