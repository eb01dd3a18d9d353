// internal/logger/logger.go
//
// Structured JSON logger (Zap + Lumberjack).
//
// Context
// -------
// Resolution and pool lifecycle events go to one JSON log per day under
// `<dir>/dbconf-YYYY-MM-DD.log`.  When running in an interactive TTY the
// same events are teed, human-readable, to stdout.  Rotation, compression,
// and retention are handled by Lumberjack.
//
// Before the file logger exists, Bootstrap installs a console-only logger
// so configuration errors during boot still surface.
//
// Usage
// -----
//
//	log, err := logger.New(logger.Options{Dir: "logs", Tee: isTTY})
//	if err != nil { … }
//	log.Infow("config loaded", d.Fields()...)
//
// Notes
// -----
//   - Zap core uses ISO-8601 timestamps and lowercase levels.
//   - Errors are written to the same sink via `ErrorOutput`.
//   - Every constructor installs its result with zap.ReplaceGlobals, so
//     packages log through zap.S().
package logger

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures New.
type Options struct {
	Dir   string        // log directory; required
	Tee   bool          // also write to stdout
	Level zapcore.Level // minimum level; zero value is Info
}

var encCfg = zapcore.EncoderConfig{
	TimeKey:      "ts",
	LevelKey:     "level",
	MessageKey:   "msg",
	CallerKey:    "caller",
	EncodeTime:   zapcore.ISO8601TimeEncoder,
	EncodeLevel:  zapcore.LowercaseLevelEncoder,
	EncodeCaller: zapcore.ShortCallerEncoder,
}

// Bootstrap installs a stdout-only logger for the time before New.
func Bootstrap() *zap.SugaredLogger {
	z := zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stdout),
		zap.InfoLevel,
	)).Sugar()
	zap.ReplaceGlobals(z.Desugar())
	return z
}

// New returns a *zap.SugaredLogger writing JSON to the day's log file.
func New(opts Options) (*zap.SugaredLogger, error) {
	if opts.Dir == "" {
		return nil, errors.New("logger: empty log directory")
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, err
	}

	fileSink := &lumberjack.Logger{
		Filename:   FileName(opts.Dir, time.Now()),
		MaxSize:    50, // MB
		MaxBackups: 7,
		MaxAge:     14, // days
		Compress:   true,
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(fileSink), opts.Level),
	}
	if opts.Tee {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.Lock(os.Stdout),
			opts.Level,
		))
	}

	z := zap.New(
		zapcore.NewTee(cores...),
		zap.ErrorOutput(zapcore.AddSync(fileSink)),
	).Sugar()

	zap.ReplaceGlobals(z.Desugar())

	z.Infow("logger online", "dir", opts.Dir, "tee", opts.Tee, "level", opts.Level.String())
	return z, nil
}

// FileName is the day's log path inside dir.
func FileName(dir string, day time.Time) string {
	return filepath.Join(dir, "dbconf-"+day.Format("2006-01-02")+".log")
}
