package datasource

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/polarview/pkg/config"
	"github.com/vanderheijden86/polarview/pkg/debug"
	"github.com/vanderheijden86/polarview/pkg/loader"
	"github.com/vanderheijden86/polarview/pkg/metrics"
	"github.com/vanderheijden86/polarview/pkg/model"
)

// maxLogEntries bounds the diagnostic log kept by a Source.
const maxLogEntries = 200

// Result is one successful load.
type Result struct {
	Dataset         *model.AnalysisDataset
	Report          string
	DatasetLocation string
	ReportLocation  string
	Attempts        []Attempt
	LoadedAt        time.Time
}

// Local reports whether both artifacts came from the local filesystem.
func (r *Result) Local() bool {
	return r != nil && KindOf(r.DatasetLocation) == KindFile && KindOf(r.ReportLocation) == KindFile
}

// Source loads the dataset and report from ordered candidate lists.
type Source struct {
	Fetcher Fetcher
	Dataset []string
	Report  []string

	mu  sync.Mutex
	log []Attempt
}

// New builds a Source from configuration, resolving candidates against
// cfg.Base.
func New(cfg config.SourcesConfig, f Fetcher) *Source {
	if f == nil {
		f = NewFetcher(cfg.Timeout)
	}
	return &Source{
		Fetcher: f,
		Dataset: ResolveCandidates(cfg.Base, cfg.Dataset),
		Report:  ResolveCandidates(cfg.Base, cfg.Report),
	}
}

// Load fetches both artifacts concurrently. It fails with a *LoadError when
// every candidate for either artifact fails or the dataset cannot be parsed.
func (s *Source) Load(ctx context.Context) (*Result, error) {
	defer debug.LogEnterExit("datasource.Load")()

	var (
		res        = &Result{}
		dsAttempts []Attempt
		rpAttempts []Attempt
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, loc, attempts, err := s.fetchFirst(gctx, ArtifactDataset, s.Dataset, metrics.DatasetFetch)
		dsAttempts = attempts
		if err != nil {
			return err
		}
		ds, err := loader.Decode(data)
		if err != nil {
			debug.Log("dataset parse failed at %s: %v", loc, err)
			return &LoadError{Artifact: ArtifactDataset, Attempts: attempts, Location: loc, Parse: true, Err: err}
		}
		res.Dataset = ds
		res.DatasetLocation = loc
		return nil
	})
	g.Go(func() error {
		data, loc, attempts, err := s.fetchFirst(gctx, ArtifactReport, s.Report, metrics.ReportFetch)
		rpAttempts = attempts
		if err != nil {
			return err
		}
		res.Report = strings.ToValidUTF8(string(data), "�")
		res.ReportLocation = loc
		return nil
	})

	err := g.Wait()
	res.Attempts = append(dsAttempts, rpAttempts...)
	if err != nil {
		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			err = &LoadError{Artifact: ArtifactDataset, Attempts: dsAttempts, Err: err}
		}
		return nil, err
	}
	res.LoadedAt = time.Now()
	return res, nil
}

// fetchFirst tries candidates in order and returns the first success.
func (s *Source) fetchFirst(ctx context.Context, artifact Artifact, candidates []string, timer *metrics.TimingMetric) ([]byte, string, []Attempt, error) {
	defer metrics.Timer(timer)()

	attempts := make([]Attempt, 0, len(candidates))
	for _, loc := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, "", attempts, &LoadError{Artifact: artifact, Attempts: attempts, Err: err}
		}

		start := time.Now()
		data, err := s.Fetcher.Fetch(ctx, loc)
		a := Attempt{Artifact: artifact, Location: loc, Duration: time.Since(start)}
		if err != nil {
			a.Error = err.Error()
			var fe *FetchError
			if errors.As(err, &fe) {
				a.Status = fe.StatusCode
			}
			attempts = append(attempts, a)
			s.record(a)
			continue
		}

		a.OK = true
		a.Bytes = len(data)
		attempts = append(attempts, a)
		s.record(a)
		return data, loc, attempts, nil
	}
	return nil, "", attempts, &LoadError{Artifact: artifact, Attempts: attempts}
}

func (s *Source) record(a Attempt) {
	debug.Log("%s", a.String())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, a)
	if over := len(s.log) - maxLogEntries; over > 0 {
		s.log = append([]Attempt(nil), s.log[over:]...)
	}
}

// Log returns every attempt recorded by this Source, oldest first, across
// loads.
func (s *Source) Log() []Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Attempt(nil), s.log...)
}
