package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		in   string
		want slog.Level
	}{
		{"trace", LevelTrace},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"crit", LevelCrit},
	}
	for _, tc := range testCases {
		lvl, err := ParseLevel(tc.in)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", tc.in, err)
		}
		if lvl != tc.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tc.in, lvl, tc.want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestModuleGating(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(NewLogger(NewTerminalHandlerWithLevel(&buf, LevelTrace, false)))
	defer SetDefault(NewLogger(DiscardHandler()))

	DisableModule(MatchMod)
	Debug(MatchMod, "hidden")
	if buf.Len() != 0 {
		t.Fatalf("disabled module leaked output: %q", buf.String())
	}

	EnableModule(MatchMod)
	Debug(MatchMod, "visible", "k", "v")
	out := buf.String()
	if !strings.Contains(out, "visible") || !strings.Contains(out, "k=v") {
		t.Fatalf("enabled module output missing: %q", out)
	}
	if !strings.Contains(out, "module="+MatchMod) {
		t.Fatalf("module attribute missing: %q", out)
	}
}

func TestWarnIgnoresGating(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(NewLogger(NewTerminalHandlerWithLevel(&buf, LevelTrace, false)))
	defer SetDefault(NewLogger(DiscardHandler()))

	DisableModule(RegistryMod)
	Warn(RegistryMod, "always shown")
	if !strings.Contains(buf.String(), "always shown") {
		t.Fatalf("warn should not be module-gated: %q", buf.String())
	}
	EnableModule(RegistryMod)
}
