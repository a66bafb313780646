// Package ttyguard keeps terminal capability queries out of machine output.
// Import it for its side effect before any package that touches lipgloss.
package ttyguard

import (
	"os"
	"strings"
)

// RobotEnvVar forces the non-interactive behaviour when set to "1".
const RobotEnvVar = "POLARVIEW_ROBOT"

// init runs before Bubble Tea acquires the terminal.
//
// Lipgloss/Termenv background detection can write OSC/DSR control sequences to
// stdout. They are harmless in a real terminal but corrupt JSON and markdown
// written by the robot and export modes, so those invocations set CI=1, which
// makes Termenv skip the query.
func init() {
	if os.Getenv("CI") != "" {
		return
	}
	if !ShouldSuppress(os.Args[1:], os.Getenv(RobotEnvVar) == "1") {
		return
	}
	_ = os.Setenv("CI", "1")
}

// ShouldSuppress reports whether args describe a run that must not query the
// terminal.
func ShouldSuppress(args []string, envRobot bool) bool {
	if envRobot {
		return true
	}

	for _, arg := range args {
		name := strings.TrimLeft(arg, "-")
		if name == arg {
			continue
		}
		if i := strings.IndexByte(name, '='); i >= 0 {
			name = name[:i]
		}
		if strings.HasPrefix(name, "robot-") || strings.HasPrefix(name, "export-") {
			return true
		}
		switch name {
		case "version", "help", "diagnostics", "save-config":
			return true
		}
	}

	return false
}
