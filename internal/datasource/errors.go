package datasource

import (
	"fmt"
	"strings"
)

// FetchError is a failure for a single candidate location: a transport error
// or a non-success HTTP status. It is recoverable; the next candidate is
// tried.
type FetchError struct {
	Location   string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.Location)
	}
	return fmt.Sprintf("fetch %s: %v", e.Location, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// LoadError is fatal for one load attempt. Either every candidate for an
// artifact failed (Parse is false and Attempts names each location), or the
// first successful response could not be parsed (Parse is true and Location
// names the offending document).
type LoadError struct {
	Artifact Artifact
	Attempts []Attempt
	Location string
	Parse    bool
	Err      error
}

func (e *LoadError) Error() string {
	if e.Parse {
		return fmt.Sprintf("load %s: parse %s: %v", e.Artifact, e.Location, e.Err)
	}
	if len(e.Attempts) == 0 {
		if e.Err != nil {
			return fmt.Sprintf("load %s: %v", e.Artifact, e.Err)
		}
		return fmt.Sprintf("load %s: no candidate locations configured", e.Artifact)
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s (%s)", a.Location, a.Error))
	}
	return fmt.Sprintf("load %s: all %d candidates failed: %s", e.Artifact, len(e.Attempts), strings.Join(parts, "; "))
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Locations returns every location attempted for the artifact.
func (e *LoadError) Locations() []string {
	out := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		out = append(out, a.Location)
	}
	return out
}
