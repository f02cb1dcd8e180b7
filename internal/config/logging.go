// internal/config/logging.go
//
// Interpretation of the logging section.

package config

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Severity is the minimum level the process logs at.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarn
	SeverityInfo
	SeverityDebug
	SeverityTrace
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarn:
		return "warn"
	case SeverityDebug:
		return "debug"
	case SeverityTrace:
		return "trace"
	default:
		return "info"
	}
}

// ZapLevel maps s onto zap.  zap has no trace level, so trace and debug both
// enable debug output.
func (s Severity) ZapLevel() zapcore.Level {
	switch s {
	case SeverityError:
		return zapcore.ErrorLevel
	case SeverityWarn:
		return zapcore.WarnLevel
	case SeverityDebug, SeverityTrace:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// structuredFormats are the accepted spellings for JSON output.
var structuredFormats = map[string]struct{}{
	"json":       {},
	"structured": {},
	"ndjson":     {},
}

// LevelFilter parses Level case-insensitively.  An unknown value logs a
// warning and falls back to info; it never fails.
func (l Logging) LevelFilter() Severity {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "error":
		return SeverityError
	case "warn", "warning":
		return SeverityWarn
	case "info":
		return SeverityInfo
	case "debug":
		return SeverityDebug
	case "trace":
		return SeverityTrace
	default:
		zap.L().Warn("unknown logging level, falling back to info",
			zap.String("level", l.Level))
		return SeverityInfo
	}
}

// IsStructuredFormat reports whether Format selects JSON output.  Any other
// value, the empty string included, selects the console encoder.
func (l Logging) IsStructuredFormat() bool {
	_, ok := structuredFormats[strings.ToLower(strings.TrimSpace(l.Format))]
	return ok
}
