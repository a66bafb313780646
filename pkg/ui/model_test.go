package ui

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/polarview/internal/datasource"
	"github.com/vanderheijden86/polarview/pkg/selection"
	"github.com/vanderheijden86/polarview/pkg/testutil"
)

// fakeLoader returns a fixed result or error and counts calls.
type fakeLoader struct {
	result *datasource.Result
	err    error
	calls  atomic.Int32
}

func (f *fakeLoader) Load(ctx context.Context) (*datasource.Result, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeLoader) Log() []datasource.Attempt {
	if f.result == nil {
		return nil
	}
	return f.result.Attempts
}

func sampleResult(t *testing.T) *datasource.Result {
	t.Helper()
	return &datasource.Result{
		Dataset:         testutil.SampleDataset(t),
		Report:          testutil.SampleReport,
		DatasetLocation: "docs/data/markov_results.json",
		ReportLocation:  "docs/data/report.md",
		Attempts: []datasource.Attempt{
			{Artifact: datasource.ArtifactDataset, Location: "data/markov_results.json", Error: "fetch data/markov_results.json: not found"},
			{Artifact: datasource.ArtifactDataset, Location: "docs/data/markov_results.json", OK: true, Bytes: 100},
		},
		LoadedAt: time.Now(),
	}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var updated tea.Model
		updated, cmd = m.Update(msg)
		m = updated.(Model)
	}
	return m, cmd
}

func loadedModel(t *testing.T, opts Options) Model {
	t.Helper()
	if opts.Loader == nil {
		opts.Loader = &fakeLoader{result: sampleResult(t)}
	}
	if opts.Clipboard == nil {
		opts.Clipboard = func(string) error { return nil }
	}
	opts.Initial = sampleResult(t)
	m := NewModel(opts)
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

// =============================================================================
// Loading lifecycle
// =============================================================================

func TestModel_FirstLoad(t *testing.T) {
	loader := &fakeLoader{result: sampleResult(t)}
	m := NewModel(Options{Loader: loader, Clipboard: func(string) error { return nil }})

	if !m.Loading() {
		t.Fatal("model should start loading")
	}
	if m.Init() == nil {
		t.Fatal("Init should return the load command")
	}

	msg := LoadCmd(loader, time.Second)()
	if _, ok := msg.(loadedMsg); !ok {
		t.Fatalf("LoadCmd returned %T", msg)
	}
	m, _ = send(t, m, msg)

	if m.Loading() {
		t.Error("loading flag should clear")
	}
	if m.Dataset() == nil {
		t.Fatal("dataset should be installed")
	}
	st := m.Status()
	if st.Kind != StatusReady {
		t.Errorf("status kind = %v", st.Kind)
	}
	want := "conservative 40 seqs · liberal 25 seqs · 2 actor matrices (min 3 seqs)"
	if st.Text != want {
		t.Errorf("status = %q, want %q", st.Text, want)
	}
	if got := m.Selection(); got.Pole != "conservative" || got.Actor != "" || got.View != selection.ViewSummary {
		t.Errorf("initial selection = %+v", got)
	}
}

func TestModel_RefreshIgnoredWhileLoading(t *testing.T) {
	loader := &fakeLoader{result: sampleResult(t)}
	m := NewModel(Options{Loader: loader})

	m, cmd := send(t, m, keyPress("r"))
	if cmd != nil {
		t.Error("refresh during a load should not start another one")
	}
	if !m.Loading() {
		t.Error("still loading")
	}

	_, cmd = send(t, m, FileChangedMsg{})
	if cmd != nil {
		t.Error("a file change during a load should be ignored too")
	}
	if loader.calls.Load() != 0 {
		t.Errorf("loader called %d times by Update", loader.calls.Load())
	}
}

func TestModel_RefreshAfterLoad(t *testing.T) {
	m := loadedModel(t, Options{})
	if m.Loading() {
		t.Fatal("preloaded model should not be loading")
	}

	m, cmd := send(t, m, keyPress("r"))
	if cmd == nil || !m.Loading() {
		t.Fatal("refresh should start a load")
	}
	if m.Status().Kind != StatusLoading {
		t.Errorf("status kind = %v", m.Status().Kind)
	}

	// Selection survives a reload.
	m.state = m.state.SetPole(m.Dataset(), "liberal").SetActor("Senator Z")
	m, _ = send(t, m, loadedMsg{result: sampleResult(t)})
	if got := m.Selection(); got.Pole != "liberal" || got.Actor != "Senator Z" {
		t.Errorf("selection after reload = %+v", got)
	}
}

func TestModel_LoadFailureKeepsSession(t *testing.T) {
	m := loadedModel(t, Options{})
	m, _ = send(t, m, keyPress("r"))

	loadErr := &datasource.LoadError{
		Artifact: datasource.ArtifactDataset,
		Attempts: []datasource.Attempt{{Location: "a"}, {Location: "b"}, {Location: "c"}},
	}
	m, _ = send(t, m, loadFailedMsg{err: loadErr})

	if m.Loading() {
		t.Error("loading flag should clear on failure")
	}
	if m.Dataset() == nil {
		t.Error("previous dataset should be kept")
	}
	st := m.Status()
	if st.Kind != StatusError || !strings.Contains(st.Text, "any of 3 locations") {
		t.Errorf("status = %+v", st)
	}
	if st.Detail != "showing previously loaded data" {
		t.Errorf("detail = %q", st.Detail)
	}
}

func TestModel_LoadFailureWithoutSession(t *testing.T) {
	parseErr := &datasource.LoadError{Artifact: datasource.ArtifactDataset, Location: "x.json", Parse: true, Err: errors.New("bad")}
	m := NewModel(Options{Loader: &fakeLoader{err: parseErr}})
	msg := LoadCmd(m.loader, 0)()
	m, _ = send(t, m, msg)

	if m.Dataset() != nil {
		t.Error("no dataset expected")
	}
	if !strings.Contains(m.Status().Text, "Could not parse x.json") {
		t.Errorf("status = %q", m.Status().Text)
	}
	if !strings.Contains(m.renderBody(), "Press r to retry") {
		t.Error("body should offer a retry")
	}
}

// =============================================================================
// Selection events
// =============================================================================

func TestModel_PoleAndActorKeys(t *testing.T) {
	m := loadedModel(t, Options{})

	m, _ = send(t, m, keyPress("a"))
	if got := m.Selection().Actor; got != "bob" {
		t.Fatalf("first conservative actor = %q, want bob", got)
	}
	m, _ = send(t, m, keyPress("a"))
	if got := m.Selection().Actor; got != "Rep X" {
		t.Fatalf("second actor = %q, want Rep X", got)
	}

	// Rep X also exists on the liberal side, so it is kept.
	m, _ = send(t, m, keyPress("p"))
	if got := m.Selection(); got.Pole != "liberal" || got.Actor != "Rep X" {
		t.Fatalf("after pole switch = %+v", got)
	}

	m, _ = send(t, m, keyPress("A"))
	if got := m.Selection().Actor; got != "alice" {
		t.Errorf("previous actor = %q, want alice", got)
	}
	m, _ = send(t, m, keyPress("0"))
	if got := m.Selection().Actor; got != "" {
		t.Errorf("aggregate key should clear the actor, got %q", got)
	}
	m, _ = send(t, m, keyPress("P"))
	if got := m.Selection().Pole; got != "conservative" {
		t.Errorf("previous pole = %q", got)
	}
}

func TestModel_ViewKeys(t *testing.T) {
	m := loadedModel(t, Options{})

	m, _ = send(t, m, keyPress("tab"))
	if m.Selection().View != selection.ViewMatrix {
		t.Errorf("tab from summary = %v", m.Selection().View)
	}
	m, _ = send(t, m, keyPress("3"))
	if m.Selection().View != selection.ViewTop {
		t.Errorf("3 = %v", m.Selection().View)
	}
	if !strings.Contains(m.renderBody(), "Top transitions") {
		t.Error("top view not rendered")
	}
	m, _ = send(t, m, keyPress("1"))
	if m.Selection().View != selection.ViewSummary {
		t.Errorf("1 = %v", m.Selection().View)
	}
}

func TestModel_MatrixCursor(t *testing.T) {
	m := loadedModel(t, Options{View: selection.ViewMatrix})

	m, _ = send(t, m, keyPress("j"), keyPress("l"))
	if m.cursor != (Cursor{Row: 1, Col: 1}) {
		t.Fatalf("cursor = %+v", m.cursor)
	}
	m, _ = send(t, m, keyPress("j"), keyPress("l"))
	if m.cursor != (Cursor{Row: 1, Col: 1}) {
		t.Errorf("cursor should clamp to the 2x2 matrix, got %+v", m.cursor)
	}
	if !strings.Contains(m.renderBody(), "P(B → B) = 0.70000") {
		t.Error("detail line should show the cursor cell at full precision")
	}

	m, _ = send(t, m, keyPress("p"))
	if m.cursor != (Cursor{}) {
		t.Errorf("cursor should reset on selection change, got %+v", m.cursor)
	}
}

func TestModel_UnavailableActorMatrix(t *testing.T) {
	m := loadedModel(t, Options{Pole: "liberal", Actor: "alice", View: selection.ViewMatrix})
	if got := m.Selection(); got.Pole != "liberal" || got.Actor != "alice" {
		t.Fatalf("preferred selection not applied: %+v", got)
	}
	body := m.renderBody()
	if !strings.Contains(body, "below the 3-sequence threshold") {
		t.Errorf("expected threshold message, got:\n%s", body)
	}
}

func TestModel_UnknownPreferredActorFallsBack(t *testing.T) {
	m := loadedModel(t, Options{Pole: "liberal", Actor: "Nobody"})
	if got := m.Selection(); got.Pole != "liberal" || got.Actor != "" {
		t.Errorf("selection = %+v", got)
	}
}

// =============================================================================
// Panels and clipboard
// =============================================================================

func TestModel_ReportAndDiagnostics(t *testing.T) {
	m := loadedModel(t, Options{})
	if tr, ok := m.renderer.(*TermRenderer); ok {
		tr.ReportStyle = "notty"
	}

	m, _ = send(t, m, keyPress("R"))
	if !strings.Contains(m.renderBody(), "Polar Markov Report") {
		t.Error("report should be shown")
	}
	m, _ = send(t, m, keyPress("R"), keyPress("d"))
	body := m.renderBody()
	if !strings.Contains(body, "Load attempts") || !strings.Contains(body, "FAIL") {
		t.Errorf("diagnostics missing attempts:\n%s", body)
	}
	if !strings.Contains(body, "docs/data/markov_results.json") {
		t.Error("diagnostics should list the winning location")
	}
}

func TestModel_CopyView(t *testing.T) {
	var copied string
	m := loadedModel(t, Options{Clipboard: func(s string) error {
		copied = s
		return nil
	}})

	m, _ = send(t, m, keyPress("y"))
	if !strings.HasPrefix(copied, "CONSERVATIVE · summary\n") {
		t.Errorf("copied = %q", copied)
	}
	if !strings.Contains(copied, "0.468") {
		t.Error("copied summary should include the mean entropy")
	}
	if m.Status().Kind != StatusInfo {
		t.Errorf("status = %+v", m.Status())
	}

	m, _ = send(t, m, keyPress("2"), keyPress("y"))
	if !strings.Contains(copied, "from\\to\tA\tB") || !strings.Contains(copied, "A\t0.90000\t0.10000") {
		t.Errorf("matrix copy = %q", copied)
	}
}

func TestModel_CopyError(t *testing.T) {
	m := loadedModel(t, Options{Clipboard: func(string) error { return errors.New("no display") }})
	m, _ = send(t, m, keyPress("y"))
	if m.Status().Kind != StatusError || !strings.Contains(m.Status().Text, "no display") {
		t.Errorf("status = %+v", m.Status())
	}
}

func TestModel_QuitAndView(t *testing.T) {
	m := loadedModel(t, Options{})
	if out := m.View(); !strings.Contains(out, "polarview · CONSERVATIVE") {
		t.Errorf("header missing from view:\n%s", out)
	}
	_, cmd := send(t, m, keyPress("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestModel_KeysIgnoredWithoutDataset(t *testing.T) {
	m := NewModel(Options{Loader: &fakeLoader{err: errors.New("x")}})
	before := m.Selection()
	m, _ = send(t, m, keyPress("p"), keyPress("a"), keyPress("2"))
	if m.Selection() != before {
		t.Errorf("selection changed without a dataset: %+v", m.Selection())
	}
}
