//go:build ignore

// generate_testdata.go creates synthetic artifacts for benchmarking the explorer.
// Usage: go run scripts/generate_testdata.go
//
// Creates, under data/benchmark/<name>/data/:
//
//	small   (4 states, 12 actors per pole)
//	medium  (8 states, 120 actors per pole)
//	large   (16 states, 1200 actors per pole)
//
// Each directory holds markov_results.json and report.md, so
// `polarview --base data/benchmark/medium` opens it directly.
package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/polarview/pkg/export"
	"github.com/vanderheijden86/polarview/pkg/loader"
	"github.com/vanderheijden86/polarview/pkg/model"
	"github.com/vanderheijden86/polarview/pkg/testutil"
)

type datasetSpec struct {
	name   string
	states int
	actors int
}

var datasets = []datasetSpec{
	{"small", 4, 12},
	{"medium", 8, 120},
	{"large", 16, 1200},
}

const minSeqs = 3

func main() {
	for _, ds := range datasets {
		fmt.Printf("Generating %s dataset (%d states, %d actors per pole)...\n", ds.name, ds.states, ds.actors)

		payload := build(ds)
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			fail("encode %s: %v", ds.name, err)
		}

		dir := filepath.Join("data", "benchmark", ds.name, "data")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fail("create %s: %v", dir, err)
		}
		path := filepath.Join(dir, "markov_results.json")
		write(path, data)

		// Read the file back through the loader so a broken generator fails here.
		parsed, err := loader.LoadFile(path)
		if err != nil {
			fail("generated %s does not load: %v", ds.name, err)
		}
		report, err := export.GenerateReport(parsed, export.ReportOptions{})
		if err != nil {
			fail("report for %s: %v", ds.name, err)
		}
		write(filepath.Join(dir, "report.md"), []byte(report))

		fmt.Printf("  Written %s (%d bytes, %d actor matrices)\n", dir, len(data), parsed.SavedActorCount())
	}
	fmt.Println("\nDone! Benchmark artifacts created in data/benchmark")
}

func build(d datasetSpec) map[string]any {
	gen := testutil.NewGenerator(int64(d.states*1000 + d.actors))
	out := map[string]any{
		"actors_min_seqs": minSeqs,
	}
	actors := map[string]any{}
	var stats []map[string]any
	poleBlocks := map[string]model.MatrixBlock{}

	for _, pole := range model.CanonicalPoles {
		block := withStats(gen.Block(d.states, false))
		block.NSequences = 0
		for i := 0; i < d.actors; i++ {
			name := fmt.Sprintf("Actor %s %04d", strings.ToUpper(pole[:1]), i)
			actor := withStats(gen.Block(d.states, i%3 == 0))
			actor.NSequences = 1 + i%9
			block.NSequences += actor.NSequences
			if actor.NSequences >= minSeqs {
				actors[pole+"::"+safeKey(name)] = map[string]any{
					"pole":          pole,
					"actor":         name,
					"states":        actor.States,
					"P":             actor.P,
					"n_sequences":   actor.NSequences,
					"entropy":       actor.Entropy,
					"loop_strength": actor.LoopStrength,
				}
			}
			stats = append(stats, map[string]any{
				"pole":         pole,
				"actor":        name,
				"n_sequences":  actor.NSequences,
				"mean_entropy": mean(actor.Entropy),
				"mean_loop":    mean(actor.LoopStrength),
			})
		}
		poleBlocks[pole] = block
		out[pole] = block
	}

	c, l := poleBlocks[model.PoleConservative], poleBlocks[model.PoleLiberal]
	out["divergence"] = map[string]float64{
		"KL_" + model.PoleConservative + "||" + model.PoleLiberal: kl(c.P, l.P),
		"KL_" + model.PoleLiberal + "||" + model.PoleConservative: kl(l.P, c.P),
	}
	out["actors"] = actors
	out["actor_stats"] = stats
	return out
}

// withStats fills the per-state entropy (nats) and self-loop probability.
func withStats(b model.MatrixBlock) model.MatrixBlock {
	b.Entropy = make([]float64, len(b.P))
	b.LoopStrength = make([]float64, len(b.P))
	for i, row := range b.P {
		var h float64
		for _, p := range row {
			if p > 0 {
				h -= p * math.Log(p)
			}
		}
		b.Entropy[i] = h
		b.LoopStrength[i] = row[i]
	}
	return b
}

// kl is the mean row-wise KL divergence of p from q.
func kl(p, q [][]float64) float64 {
	var total float64
	for i := range p {
		for j := range p[i] {
			if p[i][j] > 0 && q[i][j] > 0 {
				total += p[i][j] * math.Log(p[i][j]/q[i][j])
			}
		}
	}
	return total / float64(len(p))
}

func mean(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

func safeKey(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '/' {
			return '_'
		}
		return r
	}, s)
}

func write(path string, data []byte) {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fail("write %s: %v", path, err)
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
