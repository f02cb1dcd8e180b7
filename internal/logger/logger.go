// internal/logger/logger.go
//
// Structured logger (Zap + Lumberjack) driven by the logging section.
//
// Context
// -------
// The service writes lifecycle and error events to stdout.  `logging.format`
// picks the encoder: JSON for the structured synonyms, colorized console
// otherwise.  When `logging.file` is set the same events are teed, always as
// JSON, to a rotating file managed by Lumberjack; no external log-rotate job
// is required.
//
// Usage
// -----
//
//	log, err := logger.New(cfg.Logging)
//	if err != nil { … }
//	log.Info("db online", zap.String("url", cfg.Database.MaskedConnectionURL()))
//
// Notes
// -----
// • Zap core uses ISO-8601 timestamps and lowercase levels.
// • Bootstrap() gives cmd/web a console logger before config exists.
// • Oxford commas, two spaces after periods.
package logger

import (
	"os"
	"path/filepath"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yanizio/adept-api/internal/config"
)

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// New returns a *zap.Logger built from cfg and installs it as the
// process-wide default via zap.ReplaceGlobals.
func New(cfg config.Logging) (*zap.Logger, error) {
	return build(cfg, zapcore.Lock(os.Stdout))
}

// build is New with an injectable console sink.
func build(cfg config.Logging, out zapcore.WriteSyncer) (*zap.Logger, error) {
	// LevelFilter may warn through the current global, which is the
	// bootstrap logger at this point.
	level := zap.NewAtomicLevelAt(cfg.LevelFilter().ZapLevel())

	enc := encoderConfig()
	var primary zapcore.Encoder
	if cfg.IsStructuredFormat() {
		primary = zapcore.NewJSONEncoder(enc)
	} else {
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		primary = zapcore.NewConsoleEncoder(enc)
	}

	cores := []zapcore.Core{zapcore.NewCore(primary, out, level)}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, err
		}
		fileSink := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    50, // MB
			MaxBackups: 7,  // keep last seven files
			MaxAge:     14, // days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig()),
			zapcore.AddSync(fileSink),
			level,
		))
	}

	z := zap.New(
		zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(out),
	)

	// Make this the global logger so zap.L() works everywhere after startup.
	zap.ReplaceGlobals(z)

	z.Info("logger online",
		zap.String("level", level.String()),
		zap.Bool("json", cfg.IsStructuredFormat()),
		zap.String("file", cfg.File),
	)
	return z, nil
}

// Bootstrap installs a console logger at info level for the window before
// configuration is loaded, and returns it.
func Bootstrap() *zap.Logger {
	enc := encoderConfig()
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	z := zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(enc),
		zapcore.Lock(os.Stderr),
		zapcore.InfoLevel,
	))
	zap.ReplaceGlobals(z)
	return z
}
