package debug_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/polarview/pkg/debug"
)

func TestLogWritesOnlyWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	debug.SetOutput(&buf)
	defer debug.SetEnabled(false)

	debug.SetEnabled(false)
	debug.Log("hidden %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("expected no output while disabled, got %q", buf.String())
	}

	debug.SetEnabled(true)
	debug.Log("visible %d", 2)
	debug.LogIf(false, "skipped")
	debug.LogTiming("fetch", 3*time.Millisecond)

	out := buf.String()
	if !strings.Contains(out, "[PV_DEBUG]") || !strings.Contains(out, "visible 2") {
		t.Errorf("missing debug line, got %q", out)
	}
	if strings.Contains(out, "skipped") {
		t.Errorf("LogIf(false) should not write, got %q", out)
	}
	if !strings.Contains(out, "fetch took 3ms") {
		t.Errorf("missing timing line, got %q", out)
	}
}

func TestLogEnterExit(t *testing.T) {
	var buf bytes.Buffer
	debug.SetOutput(&buf)
	debug.SetEnabled(true)
	defer debug.SetEnabled(false)

	func() {
		defer debug.LogEnterExit("project")()
	}()

	out := buf.String()
	if !strings.Contains(out, "-> project") || !strings.Contains(out, "<- project") {
		t.Errorf("expected entry and exit lines, got %q", out)
	}
}
