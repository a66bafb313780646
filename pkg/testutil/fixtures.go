// Package testutil provides dataset fixtures shared by tests across packages.
// All fixtures are deterministic.
package testutil

import (
	"testing"

	"github.com/vanderheijden86/polarview/pkg/loader"
	"github.com/vanderheijden86/polarview/pkg/model"
)

// SampleJSON is a small but complete analysis artifact.
//
// Notable rows:
//   - ("liberal", "Senator Y") has stats (15 sequences) but no saved matrix.
//   - ("liberal", "alice") is below the 3-sequence threshold.
//   - "Rep X" appears in both poles' stats but only has a conservative matrix.
const SampleJSON = `{
  "conservative": {
    "states": ["A", "B"],
    "P": [[0.9, 0.1], [0.3, 0.7]],
    "n_sequences": 40,
    "entropy": [0.325, 0.611],
    "loop_strength": [0.9, 0.7]
  },
  "liberal": {
    "states": ["A", "B"],
    "P": [[0.5, 0.5], [0.2, 0.8]],
    "n_sequences": 25,
    "entropy": [0.693, 0.5],
    "loop_strength": [0.5, 0.8]
  },
  "divergence": {
    "KL_conservative||liberal": 0.1234,
    "KL_liberal||conservative": 0.0987
  },
  "actors_min_seqs": 3,
  "actors": {
    "conservative::Rep_X": {
      "pole": "conservative",
      "actor": "Rep X",
      "n_sequences": 5,
      "states": ["A", "B"],
      "P": [[0.8, 0.2], [0.4, 0.6]],
      "entropy": [0.5, 0.673],
      "loop_strength": [0.8, 0.6]
    },
    "liberal::Senator_Z": {
      "pole": "liberal",
      "actor": "Senator Z",
      "n_sequences": 4,
      "states": ["A", "B"],
      "P": [[0.6, 0.4], [0.1, 0.9]],
      "entropy": [0.673, 0.325],
      "loop_strength": [0.6, 0.9]
    }
  },
  "actor_stats": [
    {"pole": "liberal", "actor": "Senator Z", "n_sequences": 4, "mean_entropy": 0.499, "mean_loop": 0.75},
    {"pole": "conservative", "actor": "Rep X", "n_sequences": 5, "mean_entropy": 0.5865, "mean_loop": 0.7},
    {"pole": "liberal", "actor": "Senator Y", "n_sequences": 15, "mean_entropy": 0.61, "mean_loop": 0.66},
    {"pole": "liberal", "actor": "alice", "n_sequences": 1, "mean_entropy": 0.69, "mean_loop": 0.5},
    {"pole": "liberal", "actor": "Rep X", "n_sequences": 2, "mean_entropy": 0.7, "mean_loop": 0.45},
    {"pole": "conservative", "actor": "bob", "n_sequences": 2, "mean_entropy": 0.72, "mean_loop": 0.4}
  ]
}`

// SampleReport is a report artifact matching SampleJSON.
const SampleReport = "# Polar Markov Report\n\n## Divergence (KL)\n- KL(conservative || liberal): 0.1234\n"

// SampleDataset decodes SampleJSON, failing the test on error.
func SampleDataset(t testing.TB) *model.AnalysisDataset {
	t.Helper()
	ds, err := loader.Decode([]byte(SampleJSON))
	if err != nil {
		t.Fatalf("decode sample dataset: %v", err)
	}
	return ds
}
