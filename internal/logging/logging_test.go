package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		" WARN ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"loud":    LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q): got %v want %v", in, got, want)
		}
	}
}

func TestCLILoggingFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelWarn, &buf)
	t.Cleanup(func() { _ = Close() })

	Info("sync", "dropped %d", 1)
	Error("sync", errors.New("boom"), "load %s", "general")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info line should be filtered: %q", out)
	}
	for _, want := range []string{"load general", "subsystem=sync", "error=boom"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}

func TestTUILoggingWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tern.log")
	if err := InitForTUI(LevelDebug, path); err != nil {
		t.Fatalf("init: %v", err)
	}
	Debug("nav", "expanded %s", "local:general")
	if err := Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "expanded local:general") {
		t.Fatalf("log file missing entry: %q", data)
	}

	// Logging after close is a no-op rather than a panic.
	Info("nav", "after close")
}
