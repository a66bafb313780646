// Package ui is the terminal explorer: a bubbletea model that owns the
// loaded session, applies selection events and renders derived views.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/vanderheijden86/polarview/internal/datasource"
	"github.com/vanderheijden86/polarview/pkg/analysis"
	"github.com/vanderheijden86/polarview/pkg/debug"
	"github.com/vanderheijden86/polarview/pkg/metrics"
	"github.com/vanderheijden86/polarview/pkg/model"
	"github.com/vanderheijden86/polarview/pkg/selection"
	"github.com/vanderheijden86/polarview/pkg/watcher"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
)

// Loader loads a session. *datasource.Source implements it.
type Loader interface {
	Load(ctx context.Context) (*datasource.Result, error)
	Log() []datasource.Attempt
}

// loadedMsg carries a successful load.
type loadedMsg struct {
	result *datasource.Result
}

// loadFailedMsg carries a failed load.
type loadFailedMsg struct {
	err error
}

// FileChangedMsg is sent when a watched artifact changes on disk.
type FileChangedMsg struct{}

// LoadCmd runs one load in the background.
func LoadCmd(l Loader, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		res, err := l.Load(ctx)
		if err != nil {
			return loadFailedMsg{err: err}
		}
		return loadedMsg{result: res}
	}
}

// WatchFileCmd returns a command that waits for file changes and sends FileChangedMsg
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// Options configures NewModel.
type Options struct {
	Loader      Loader
	Renderer    Renderer // nil selects a TermRenderer with the default theme
	Pole        string
	Actor       string
	View        selection.View
	TopK        int
	LoadTimeout time.Duration
	Watcher     *watcher.Watcher
	Clipboard   func(string) error // nil selects the system clipboard
	Initial     *datasource.Result // already-loaded session; skips the first load
}

// Model is the explorer. It is the only owner of the loaded session; a
// reload swaps the whole result at once.
type Model struct {
	loader      Loader
	renderer    Renderer
	theme       Theme
	keys        keyMap
	help        help.Model
	spinner     spinner.Model
	viewport    viewport.Model
	watcher     *watcher.Watcher
	writeClip   func(string) error
	loadTimeout time.Duration
	topK        int

	session *datasource.Result
	state   selection.State
	cursor  Cursor

	preferredPole  string
	preferredActor string

	loading         bool
	loadErr         error
	status          Status
	showReport      bool
	showDiagnostics bool
	showHelp        bool
	width           int
	height          int
}

// NewModel creates the explorer. Without opts.Initial the first load starts
// from Init.
func NewModel(opts Options) Model {
	theme := DefaultTheme(lipgloss.DefaultRenderer())
	r := opts.Renderer
	if r == nil {
		r = NewTermRenderer(theme)
	}
	copyFn := opts.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = analysis.DefaultTopK
	}
	view := opts.View
	if view == "" {
		view = selection.ViewSummary
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = theme.Warning

	m := Model{
		loader:         opts.Loader,
		renderer:       r,
		theme:          theme,
		keys:           defaultKeyMap(),
		help:           help.New(),
		spinner:        sp,
		viewport:       viewport.New(defaultWidth, defaultHeight-4),
		watcher:        opts.Watcher,
		writeClip:      copyFn,
		loadTimeout:    opts.LoadTimeout,
		topK:           topK,
		state:          selection.State{Pole: opts.Pole, View: view},
		preferredPole:  opts.Pole,
		preferredActor: opts.Actor,
		width:          defaultWidth,
		height:         defaultHeight,
	}

	if opts.Initial != nil {
		m = m.applyResult(opts.Initial)
	} else if m.loader != nil {
		m.loading = true
		m.status = Status{Kind: StatusLoading, Text: "Loading analysis…"}
	}
	m.refreshContent()
	return m
}

// Init starts the first load and the file watcher.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.loading {
		cmds = append(cmds, LoadCmd(m.loader, m.loadTimeout), m.spinner.Tick)
	}
	if m.watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.watcher))
	}
	return tea.Batch(cmds...)
}

// Dataset returns the current dataset, or nil before the first load.
func (m Model) Dataset() *model.AnalysisDataset {
	if m.session == nil {
		return nil
	}
	return m.session.Dataset
}

// Selection returns the current selection.
func (m Model) Selection() selection.State {
	return m.state
}

// Loading reports whether a load is in flight.
func (m Model) Loading() bool {
	return m.loading
}

// Status returns the current status line.
func (m Model) Status() Status {
	return m.status
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		if sz, ok := m.renderer.(interface{ SetWidth(int) }); ok {
			sz.SetWidth(msg.Width)
		}
		m.viewport.Width = msg.Width
		m.viewport.Height = m.bodyHeight()
		m.refreshContent()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		m.loading = false
		m = m.applyResult(msg.result)
		m.refreshContent()
		return m, nil

	case loadFailedMsg:
		m.loading = false
		m.loadErr = msg.err
		m.status = Status{Kind: StatusError, Text: loadErrorText(msg.err)}
		if m.session != nil {
			m.status.Detail = "showing previously loaded data"
		}
		debug.Log("load failed: %v", msg.err)
		m.refreshContent()
		return m, nil

	case FileChangedMsg:
		debug.Log("artifact changed on disk, refreshing")
		var cmd tea.Cmd
		m, cmd = m.apply(selection.RefreshRequested{})
		cmds = append(cmds, cmd)
		if m.watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.watcher))
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ds := m.Dataset()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		m.viewport.Height = m.bodyHeight()
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m.apply(selection.RefreshRequested{})
	case key.Matches(msg, m.keys.Diagnostics):
		m.showDiagnostics = !m.showDiagnostics
		m.refreshContent()
		m.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Report):
		m.showReport = !m.showReport
		m.refreshContent()
		m.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		m.copyView()
		return m, nil
	}

	if ds == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.NextView):
		return m.apply(selection.ViewChanged{View: m.state.View.Next()})
	case key.Matches(msg, m.keys.Summary):
		return m.apply(selection.ViewChanged{View: selection.ViewSummary})
	case key.Matches(msg, m.keys.Matrix):
		return m.apply(selection.ViewChanged{View: selection.ViewMatrix})
	case key.Matches(msg, m.keys.Top):
		return m.apply(selection.ViewChanged{View: selection.ViewTop})
	case key.Matches(msg, m.keys.NextPole):
		return m.apply(selection.PoleChanged{Pole: m.state.CyclePole(ds, 1).Pole})
	case key.Matches(msg, m.keys.PrevPole):
		return m.apply(selection.PoleChanged{Pole: m.state.CyclePole(ds, -1).Pole})
	case key.Matches(msg, m.keys.NextActor):
		return m.apply(selection.ActorChanged{Actor: m.state.CycleActor(ds, 1).Actor})
	case key.Matches(msg, m.keys.PrevActor):
		return m.apply(selection.ActorChanged{Actor: m.state.CycleActor(ds, -1).Actor})
	case key.Matches(msg, m.keys.Aggregate):
		return m.apply(selection.ActorChanged{Actor: ""})
	}

	if m.state.View == selection.ViewMatrix && !m.showReport && !m.showDiagnostics {
		moved := true
		switch {
		case key.Matches(msg, m.keys.Up):
			m.cursor.Row--
		case key.Matches(msg, m.keys.Down):
			m.cursor.Row++
		case key.Matches(msg, m.keys.Left):
			m.cursor.Col--
		case key.Matches(msg, m.keys.Right):
			m.cursor.Col++
		default:
			moved = false
		}
		if moved {
			m.cursor = m.cursor.Clamp(len(analysis.DeriveMatrix(ds, m.state.Pole, m.state.Actor).States))
			m.refreshContent()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// apply folds a selection event into the model. A refresh while a load is
// already in flight is ignored.
func (m Model) apply(ev selection.Event) (Model, tea.Cmd) {
	next, refresh := m.state.Apply(m.Dataset(), ev)
	if refresh {
		return m.startLoad()
	}
	if next.Pole != m.state.Pole || next.Actor != m.state.Actor {
		m.cursor = Cursor{}
	}
	m.state = next
	m.refreshContent()
	m.viewport.GotoTop()
	return m, nil
}

func (m Model) startLoad() (Model, tea.Cmd) {
	if m.loader == nil {
		return m, nil
	}
	if m.loading {
		debug.Log("refresh ignored: load already in flight")
		return m, nil
	}
	m.loading = true
	m.status = Status{Kind: StatusLoading, Text: "Refreshing…"}
	return m, tea.Batch(LoadCmd(m.loader, m.loadTimeout), m.spinner.Tick)
}

// applyResult installs a freshly loaded session and re-validates the
// selection against it.
func (m Model) applyResult(res *datasource.Result) Model {
	first := m.session == nil
	m.session = res
	m.loadErr = nil

	ds := res.Dataset
	if first {
		m.state = selection.Initial(ds, m.preferredPole, m.state.View).
			SetActor(m.preferredActor).
			Reconcile(ds)
	} else {
		m.state = m.state.Reconcile(ds)
	}

	digest := analysis.Digest(ds, selection.AvailablePoles(ds), func(n int) string {
		return humanize.Comma(int64(n))
	})
	m.status = Status{Kind: StatusReady, Text: digest, Detail: res.DatasetLocation}
	return m
}

// loadErrorText shortens a load error for the status line.
func loadErrorText(err error) string {
	var le *datasource.LoadError
	if errors.As(err, &le) {
		if le.Parse {
			return fmt.Sprintf("Could not parse %s (press d for details)", le.Location)
		}
		if n := len(le.Attempts); n > 0 {
			return fmt.Sprintf("Could not load the %s from any of %d locations (press d for details)", le.Artifact, n)
		}
	}
	return "Load failed: " + err.Error()
}

func (m Model) bodyHeight() int {
	h := m.height - 4 // header, tabs, status, help
	if m.showHelp {
		h -= 4
	}
	if h < 3 {
		h = 3
	}
	return h
}

// refreshContent recomputes the body for the current selection.
func (m *Model) refreshContent() {
	m.viewport.SetContent(m.renderBody())
}

func (m Model) renderBody() string {
	if m.showDiagnostics {
		var attempts []datasource.Attempt
		if m.loader != nil {
			attempts = m.loader.Log()
		} else if m.session != nil {
			attempts = m.session.Attempts
		}
		return renderDiagnostics(m.theme, attempts, m.loadErr)
	}

	ds := m.Dataset()
	if ds == nil {
		if m.loadErr != nil {
			return m.theme.Danger.Render(m.loadErr.Error()) + "\n\n" +
				m.theme.MutedText.Render("Press r to retry or d for the attempt log.")
		}
		return m.theme.MutedText.Render("Waiting for data…")
	}

	if m.showReport {
		return m.renderer.RenderReport(m.session.Report)
	}

	defer metrics.Timer(metrics.Projection)()
	switch m.state.View {
	case selection.ViewMatrix:
		return m.renderer.RenderMatrix(analysis.DeriveMatrix(ds, m.state.Pole, m.state.Actor), m.cursor)
	case selection.ViewTop:
		v := analysis.DeriveMatrix(ds, m.state.Pole, m.state.Actor)
		return m.renderer.RenderTop(v, analysis.TopForView(v, m.topK))
	default:
		return m.renderer.RenderSummary(analysis.DeriveSummary(ds, m.state.Pole, m.state.Actor))
	}
}

// plainView is the current view as unstyled text.
func (m Model) plainView() string {
	ds := m.Dataset()
	if ds == nil {
		return ""
	}
	if m.showReport {
		return m.session.Report
	}
	heading := analysis.SelectionLabel(m.state.Pole, m.state.Actor) + " · " + string(m.state.View) + "\n"
	v := analysis.DeriveMatrix(ds, m.state.Pole, m.state.Actor)
	switch m.state.View {
	case selection.ViewMatrix:
		return heading + PlainMatrix(v)
	case selection.ViewTop:
		return heading + PlainTop(v, analysis.TopForView(v, m.topK))
	default:
		return heading + PlainSummary(analysis.DeriveSummary(ds, m.state.Pole, m.state.Actor))
	}
}

func (m *Model) copyView() {
	text := m.plainView()
	if text == "" {
		m.status = Status{Kind: StatusInfo, Text: "Nothing to copy yet"}
		return
	}
	if err := m.writeClip(text); err != nil {
		m.status = Status{Kind: StatusError, Text: fmt.Sprintf("Clipboard error: %v", err)}
		return
	}
	m.status = Status{Kind: StatusInfo, Text: fmt.Sprintf("Copied %s view to clipboard", m.state.View)}
}

// View implements tea.Model.
func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()

	var sb strings.Builder
	sb.WriteString(m.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(m.renderTabs())
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")
	sb.WriteString(m.renderStatusLine())
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

func (m Model) renderHeader() string {
	title := "polarview"
	if m.Dataset() != nil {
		title += " · " + analysis.SelectionLabel(m.state.Pole, m.state.Actor)
	}
	right := ""
	if m.session != nil {
		right = "loaded " + FormatTimeRel(m.session.LoadedAt)
	}
	left := m.theme.Header.Render(title)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + m.theme.MutedText.Render(right)
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, len(selection.Views)+2)
	for i, v := range selection.Views {
		label := fmt.Sprintf("%d %s", i+1, v)
		if v == m.state.View && !m.showReport && !m.showDiagnostics {
			tabs = append(tabs, m.theme.TabActive.Render(label))
		} else {
			tabs = append(tabs, m.theme.Tab.Render(label))
		}
	}
	if m.showReport {
		tabs = append(tabs, m.theme.TabActive.Render("report"))
	}
	if m.showDiagnostics {
		tabs = append(tabs, m.theme.TabActive.Render("diagnostics"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderStatusLine() string {
	if m.loading {
		return m.spinner.View() + " " + m.renderer.RenderStatus(m.status)
	}
	return m.renderer.RenderStatus(m.status)
}
