package config

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// observeGlobal swaps the global zap logger for an observer and restores it
// when the test ends.
func observeGlobal(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)
	return logs
}

func TestLevelFilter(t *testing.T) {
	cases := map[string]Severity{
		"error":   SeverityError,
		"WARN":    SeverityWarn,
		"warning": SeverityWarn,
		"INFO":    SeverityInfo,
		"info":    SeverityInfo,
		"Info":    SeverityInfo,
		" debug ": SeverityDebug,
		"Trace":   SeverityTrace,
	}
	logs := observeGlobal(t)
	for in, want := range cases {
		if got := (Logging{Level: in}).LevelFilter(); got != want {
			t.Errorf("LevelFilter(%q) = %s, want %s", in, got, want)
		}
	}
	if logs.Len() != 0 {
		t.Fatalf("known levels must not warn, got %d entries", logs.Len())
	}
}

func TestLevelFilterFallback(t *testing.T) {
	logs := observeGlobal(t)

	if got := (Logging{Level: "verbose"}).LevelFilter(); got != SeverityInfo {
		t.Fatalf("unknown level should fall back to info, got %s", got)
	}
	entries := logs.FilterMessage("unknown logging level, falling back to info").All()
	if len(entries) != 1 {
		t.Fatalf("expected one warning, got %d", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("fallback must log at warn, got %s", entries[0].Level)
	}
	if entries[0].ContextMap()["level"] != "verbose" {
		t.Fatalf("warning should carry the offending value: %v", entries[0].ContextMap())
	}
}

func TestSeverityZapLevel(t *testing.T) {
	want := map[Severity]zapcore.Level{
		SeverityError: zapcore.ErrorLevel,
		SeverityWarn:  zapcore.WarnLevel,
		SeverityInfo:  zapcore.InfoLevel,
		SeverityDebug: zapcore.DebugLevel,
		SeverityTrace: zapcore.DebugLevel,
	}
	for s, lvl := range want {
		if got := s.ZapLevel(); got != lvl {
			t.Errorf("%s.ZapLevel() = %s, want %s", s, got, lvl)
		}
	}
}

func TestIsStructuredFormat(t *testing.T) {
	cases := map[string]bool{
		"json":       true,
		"JSON":       true,
		"Structured": true,
		"ndjson":     true,
		" json ":     true,
		"plain":      false,
		"pretty":     false,
		"text":       false,
		"":           false,
		"jsonx":      false,
	}
	for in, want := range cases {
		if got := (Logging{Format: in}).IsStructuredFormat(); got != want {
			t.Errorf("IsStructuredFormat(%q) = %v, want %v", in, got, want)
		}
	}
}
