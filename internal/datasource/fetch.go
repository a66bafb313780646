package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/vanderheijden86/polarview/pkg/version"
)

// MaxArtifactSize caps how much of a response body is read.
const MaxArtifactSize = 64 << 20

// Fetcher retrieves the bytes stored at a location. A failure should be a
// *FetchError so the caller can record it and move on.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, location string) ([]byte, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, location string) ([]byte, error) {
	return f(ctx, location)
}

// HTTPFetcher fetches http(s) locations.
type HTTPFetcher struct {
	Client *http.Client
}

// Fetch issues a GET and fails on any non-2xx status.
func (f HTTPFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, &FetchError{Location: location, Err: err}
	}
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("User-Agent", "polarview/"+version.Version)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{Location: location, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{Location: location, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxArtifactSize+1))
	if err != nil {
		return nil, &FetchError{Location: location, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(data) > MaxArtifactSize {
		return nil, &FetchError{Location: location, Err: fmt.Errorf("response larger than %d bytes", MaxArtifactSize)}
	}
	return data, nil
}

// FileFetcher reads local paths and file:// URLs.
type FileFetcher struct{}

// Fetch reads the whole file.
func (FileFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Location: location, Err: err}
	}
	data, err := os.ReadFile(FilePath(location))
	if err != nil {
		return nil, &FetchError{Location: location, Err: err}
	}
	return data, nil
}

// Router dispatches on the location kind.
type Router struct {
	HTTP Fetcher
	File Fetcher
}

// NewFetcher returns a Router with an HTTP client bounded by timeout.
func NewFetcher(timeout time.Duration) Router {
	return Router{
		HTTP: HTTPFetcher{Client: &http.Client{Timeout: timeout}},
		File: FileFetcher{},
	}
}

// Fetch forwards to the fetcher for the location's kind.
func (r Router) Fetch(ctx context.Context, location string) ([]byte, error) {
	if KindOf(location) == KindHTTP {
		if r.HTTP == nil {
			return HTTPFetcher{}.Fetch(ctx, location)
		}
		return r.HTTP.Fetch(ctx, location)
	}
	if r.File == nil {
		return FileFetcher{}.Fetch(ctx, location)
	}
	return r.File.Fetch(ctx, location)
}
