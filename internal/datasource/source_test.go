package datasource

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestKindOf(t *testing.T) {
	tests := map[string]Kind{
		"https://example.org/data.json": KindHTTP,
		"HTTP://example.org/data.json":  KindHTTP,
		"file:///tmp/data.json":         KindFile,
		"data/markov_results.json":      KindFile,
		"/abs/path.json":                KindFile,
	}
	for loc, want := range tests {
		if got := KindOf(loc); got != want {
			t.Errorf("KindOf(%q) = %q, want %q", loc, got, want)
		}
	}
}

func TestFilePath(t *testing.T) {
	if got := FilePath("file:///tmp/x.json"); got != filepath.FromSlash("/tmp/x.json") {
		t.Errorf("FilePath = %q", got)
	}
	if got := FilePath("data/x.json"); got != "data/x.json" {
		t.Errorf("FilePath = %q", got)
	}
}

func TestResolveCandidates(t *testing.T) {
	rel := []string{"data/markov_results.json", "./docs/data/markov_results.json", "data/markov_results.json", " "}

	t.Run("no base", func(t *testing.T) {
		got := ResolveCandidates("", rel)
		want := []string{"data/markov_results.json", "./docs/data/markov_results.json"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("url base without trailing slash", func(t *testing.T) {
		got := ResolveCandidates("https://example.org/polar", rel)
		want := []string{
			"https://example.org/polar/data/markov_results.json",
			"https://example.org/polar/docs/data/markov_results.json",
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("directory base", func(t *testing.T) {
		got := ResolveCandidates("/srv/site", rel[:1])
		if want := filepath.Join("/srv/site", "data/markov_results.json"); got[0] != want {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("absolute entries kept", func(t *testing.T) {
		got := ResolveCandidates("https://example.org/", []string{"https://cdn.example.org/x.json", "/abs/x.json"})
		want := []string{"https://cdn.example.org/x.json", "/abs/x.json"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}

func TestAttemptString(t *testing.T) {
	ok := Attempt{Artifact: ArtifactDataset, Location: "a.json", OK: true, Bytes: 10, Duration: 2 * time.Millisecond}
	if s := ok.String(); !strings.Contains(s, "ok a.json") || !strings.Contains(s, "10 bytes") {
		t.Errorf("String = %q", s)
	}
	failed := Attempt{Artifact: ArtifactReport, Location: "r.md", Error: "HTTP 404 for r.md"}
	if s := failed.String(); !strings.Contains(s, "report FAIL r.md") {
		t.Errorf("String = %q", s)
	}
}

func TestFetchErrorMessages(t *testing.T) {
	e := &FetchError{Location: "x", StatusCode: 503}
	if e.Error() != "HTTP 503 for x" {
		t.Errorf("Error = %q", e.Error())
	}
}
