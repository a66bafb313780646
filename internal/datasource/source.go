// Package datasource locates and loads the two artifacts an explorer session
// needs: the analysis dataset (JSON) and the companion report (text). Each
// artifact has an ordered list of candidate locations, either URLs or local
// paths. The first candidate that answers successfully wins; failures are
// recorded and the next candidate is tried.
package datasource

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// Artifact names one of the two loaded documents.
type Artifact string

const (
	ArtifactDataset Artifact = "dataset"
	ArtifactReport  Artifact = "report"
)

// Kind is how a location is fetched.
type Kind string

const (
	KindHTTP Kind = "http"
	KindFile Kind = "file"
)

// KindOf classifies a location. file:// URLs are treated as paths.
func KindOf(location string) Kind {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return KindHTTP
	}
	return KindFile
}

// FilePath returns the local path for a file location.
func FilePath(location string) string {
	if strings.HasPrefix(strings.ToLower(location), "file://") {
		if u, err := url.Parse(location); err == nil {
			return filepath.FromSlash(u.Path)
		}
		return location[len("file://"):]
	}
	return location
}

// ResolveCandidates turns relative candidate paths into concrete locations.
// base may be empty (paths stay relative to the working directory), a URL
// (paths are resolved as relative references, base treated as a directory),
// or a directory. Absolute URLs and absolute paths are kept as they are.
// Duplicates are dropped, first occurrence wins.
func ResolveCandidates(base string, candidates []string) []string {
	var baseURL *url.URL
	if KindOf(base) == KindHTTP {
		if u, err := url.Parse(base); err == nil {
			if !strings.HasSuffix(u.Path, "/") {
				u.Path += "/"
			}
			baseURL = u
		}
	}

	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		loc := resolveOne(base, baseURL, c)
		if _, dup := seen[loc]; dup {
			continue
		}
		seen[loc] = struct{}{}
		out = append(out, loc)
	}
	return out
}

func resolveOne(base string, baseURL *url.URL, c string) string {
	if KindOf(c) == KindHTTP || strings.HasPrefix(strings.ToLower(c), "file://") || filepath.IsAbs(c) {
		return c
	}
	switch {
	case baseURL != nil:
		ref, err := url.Parse(strings.TrimPrefix(c, "./"))
		if err != nil {
			return c
		}
		return baseURL.ResolveReference(ref).String()
	case base != "":
		return filepath.Join(FilePath(base), c)
	default:
		return c
	}
}

// Attempt is one entry of the diagnostic log: a single candidate tried for
// one artifact.
type Attempt struct {
	Artifact Artifact      `json:"artifact"`
	Location string        `json:"location"`
	OK       bool          `json:"ok"`
	Status   int           `json:"status,omitempty"` // HTTP status, 0 for files/transport errors
	Error    string        `json:"error,omitempty"`
	Bytes    int           `json:"bytes,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// String renders the attempt for logs and the diagnostics panel.
func (a Attempt) String() string {
	if a.OK {
		return fmt.Sprintf("%s ok %s (%d bytes, %v)", a.Artifact, a.Location, a.Bytes, a.Duration.Round(time.Millisecond))
	}
	return fmt.Sprintf("%s FAIL %s: %s", a.Artifact, a.Location, a.Error)
}
