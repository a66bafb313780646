package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/vanderheijden86/polarview/internal/datasource"
	"github.com/vanderheijden86/polarview/pkg/config"
	"github.com/vanderheijden86/polarview/pkg/debug"
	"github.com/vanderheijden86/polarview/pkg/selection"
	_ "github.com/vanderheijden86/polarview/pkg/ttyguard"
	"github.com/vanderheijden86/polarview/pkg/ui"
	"github.com/vanderheijden86/polarview/pkg/version"
	"github.com/vanderheijden86/polarview/pkg/watcher"

	tea "github.com/charmbracelet/bubbletea"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// cliOptions holds every command line flag.
type cliOptions struct {
	cpuProfile string
	help       bool
	version    bool
	configPath string
	saveConfig bool
	base       string
	pole       string
	actor      string
	view       string
	topK       int
	timeout    time.Duration

	robotSummary bool
	robotMatrix  bool
	robotTop     bool
	robotPoles   bool
	robotActors  bool
	diagnostics  bool

	exportReport  string
	exportHeatmap string
	exportSQLite  string

	pick    bool
	noWatch bool
}

// headless reports whether the run prints or writes something and exits
// instead of starting the explorer.
func (o cliOptions) headless() bool {
	return o.robotSummary || o.robotMatrix || o.robotTop || o.robotPoles || o.robotActors ||
		o.diagnostics || o.exportReport != "" || o.exportHeatmap != "" || o.exportSQLite != ""
}

func newFlagSet(opts *cliOptions, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("polarview", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.cpuProfile, "cpu-profile", "", "Write CPU profile to file")
	fs.BoolVar(&opts.help, "help", false, "Show help")
	fs.BoolVar(&opts.version, "version", false, "Show version")
	fs.StringVar(&opts.configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/polarview/config.yaml)")
	fs.BoolVar(&opts.saveConfig, "save-config", false, "Write the config with flag overrides applied to the config file and exit")
	fs.StringVar(&opts.base, "base", "", "Directory or URL the artifact candidates are resolved against (overrides "+config.BaseEnvVar+")")
	fs.StringVar(&opts.pole, "pole", "", "Starting pole (e.g. 'conservative')")
	fs.StringVar(&opts.actor, "actor", "", "Starting actor; empty selects the pole aggregate")
	fs.StringVar(&opts.view, "view", "", "Starting view: summary, matrix or top")
	fs.IntVar(&opts.topK, "k", 0, "Number of transitions in the top view and report")
	fs.DurationVar(&opts.timeout, "timeout", 0, "Per-location fetch timeout (e.g. 5s)")

	fs.BoolVar(&opts.robotSummary, "robot-summary", false, "Print the summary of the selection as JSON and exit")
	fs.BoolVar(&opts.robotMatrix, "robot-matrix", false, "Print the transition matrix of the selection as JSON and exit")
	fs.BoolVar(&opts.robotTop, "robot-top", false, "Print the top transitions of the selection as JSON and exit")
	fs.BoolVar(&opts.robotPoles, "robot-poles", false, "Print the poles in the dataset as JSON and exit")
	fs.BoolVar(&opts.robotActors, "robot-actors", false, "Print the actor statistics (filtered by --pole) as JSON and exit")
	fs.BoolVar(&opts.diagnostics, "diagnostics", false, "Load once, print every attempted location and exit")

	fs.StringVar(&opts.exportReport, "export-report", "", "Write the markdown report to a file ('-' for stdout) and exit")
	fs.StringVar(&opts.exportHeatmap, "export-heatmap", "", "Write the selection's matrix as an .svg or .png heatmap and exit")
	fs.StringVar(&opts.exportSQLite, "export-sqlite", "", "Write the dataset to a SQLite database and exit")

	fs.BoolVar(&opts.pick, "pick", false, "Choose the starting pole, actor and view with a form")
	fs.BoolVar(&opts.noWatch, "no-watch", false, "Do not reload when local artifacts change")
	return fs
}

func parseFlags(args []string, stderr io.Writer) (cliOptions, *flag.FlagSet, error) {
	var opts cliOptions
	fs := newFlagSet(&opts, stderr)
	if err := fs.Parse(args); err != nil {
		return opts, fs, err
	}
	if fs.NArg() > 0 {
		return opts, fs, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if opts.view != "" {
		if _, err := selection.ParseView(opts.view); err != nil {
			return opts, fs, err
		}
	}
	if opts.topK < 0 {
		return opts, fs, fmt.Errorf("-k must not be negative")
	}
	return opts, fs, nil
}

// resolveConfig loads the config file and applies flag overrides. Flags win
// over the environment, which wins over the file.
func resolveConfig(opts cliOptions, stderr io.Writer) config.Config {
	var (
		cfg config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFrom(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(stderr, "Warning: %v (using defaults)\n", err)
	}

	if opts.base != "" {
		cfg.Sources.Base = opts.base
	}
	if opts.timeout > 0 {
		cfg.Sources.Timeout = opts.timeout
	}
	if opts.pole != "" {
		cfg.UI.DefaultPole = opts.pole
	}
	if opts.view != "" {
		cfg.UI.DefaultView = opts.view
	}
	if opts.topK > 0 {
		cfg.UI.TopK = opts.topK
	}
	return cfg
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, fs, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	if opts.cpuProfile != "" {
		f, err := os.Create(opts.cpuProfile)
		if err != nil {
			fmt.Fprintf(stderr, "Could not create CPU profile: %v\n", err)
			return exitError
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(stderr, "Could not start CPU profile: %v\n", err)
			return exitError
		}
		defer pprof.StopCPUProfile()
	}

	if opts.help {
		fmt.Fprintln(stdout, "Usage: polarview [options]")
		fmt.Fprintln(stdout, "\nExplore precomputed Markov-chain analyses of political actors.")
		fs.SetOutput(stdout)
		fs.PrintDefaults()
		return exitOK
	}

	if opts.version {
		fmt.Fprintf(stdout, "polarview %s\n", version.Version)
		return exitOK
	}

	cfg := resolveConfig(opts, stderr)
	if opts.saveConfig {
		return writeConfig(opts, cfg, stderr)
	}

	src := datasource.New(cfg.Sources, nil)
	debug.Log("dataset candidates: %v", src.Dataset)
	debug.Log("report candidates: %v", src.Report)

	if opts.headless() {
		return runHeadless(opts, cfg, src, stdout, stderr)
	}
	return runExplorer(opts, cfg, src, stderr)
}

// writeConfig persists cfg to --config, or the XDG location when unset.
func writeConfig(opts cliOptions, cfg config.Config, stderr io.Writer) int {
	var err error
	path := opts.configPath
	if path != "" {
		err = config.SaveTo(cfg, path)
	} else {
		path = config.ConfigPath()
		err = config.Save(cfg)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	fmt.Fprintf(stderr, "Wrote config to %s\n", path)
	return exitOK
}

// loadOnce loads both artifacts, honouring Ctrl+C.
func loadOnce(src *datasource.Source) (*datasource.Result, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return src.Load(ctx)
}

func runExplorer(opts cliOptions, cfg config.Config, src *datasource.Source, stderr io.Writer) int {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(stderr, "Error: stdout is not a terminal; use the --robot-* or --export-* flags for non-interactive output")
		return exitUsage
	}

	view, _ := selection.ParseView(cfg.UI.DefaultView)
	mopts := ui.Options{
		Loader: src,
		Pole:   cfg.UI.DefaultPole,
		Actor:  opts.actor,
		View:   view,
		TopK:   cfg.UI.TopK,
	}

	if opts.pick {
		res, err := loadOnce(src)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
		pick := ui.Pick{Pole: cfg.UI.DefaultPole, Actor: opts.actor, View: string(view)}
		if err := ui.NewPickForm(res.Dataset, &pick).Run(); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
		st := pick.State(res.Dataset)
		mopts.Pole, mopts.Actor, mopts.View = st.Pole, st.Actor, st.View
		mopts.Initial = res
	}

	if cfg.WatchEnabled() && !opts.noWatch {
		if w := startWatcher(src); w != nil {
			defer w.Stop()
			mopts.Watcher = w
		}
	}

	if err := runTUIProgram(ui.NewModel(mopts)); err != nil {
		fmt.Fprintf(stderr, "Error running explorer: %v\n", err)
		return exitError
	}
	return exitOK
}

// watchPaths returns the local candidate files worth watching: those whose
// directory exists. A candidate that appears later is picked up on refresh.
func watchPaths(src *datasource.Source) []string {
	var paths []string
	for _, list := range [][]string{src.Dataset, src.Report} {
		for _, loc := range list {
			if datasource.KindOf(loc) != datasource.KindFile {
				continue
			}
			p := datasource.FilePath(loc)
			if info, err := os.Stat(filepath.Dir(p)); err == nil && info.IsDir() {
				paths = append(paths, p)
			}
		}
	}
	return paths
}

func startWatcher(src *datasource.Source) *watcher.Watcher {
	paths := watchPaths(src)
	if len(paths) == 0 {
		return nil
	}
	w, err := watcher.New(paths, watcher.WithOnError(func(err error) {
		debug.Log("watcher: %v", err)
	}))
	if err != nil {
		debug.Log("watcher disabled: %v", err)
		return nil
	}
	if err := w.Start(); err != nil {
		debug.Log("watcher disabled: %v", err)
		return nil
	}
	return w
}

// runTUIProgram runs the explorer until it quits. SIGINT/SIGTERM ask the
// program to quit and kill it if it has not stopped after 5s.
func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set POLARVIEW_TUI_AUTOCLOSE_MS.
	if ms := autoCloseDelay(os.Getenv("POLARVIEW_TUI_AUTOCLOSE_MS")); ms > 0 {
		go func() {
			timer := time.NewTimer(ms)
			defer timer.Stop()

			select {
			case <-runDone:
				return
			case <-timer.C:
			}

			p.Quit()

			select {
			case <-runDone:
				return
			case <-time.After(2 * time.Second):
			}

			p.Kill()
		}()
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}

func autoCloseDelay(v string) time.Duration {
	if v == "" {
		return 0
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}
