package database

import (
	"context"

	"github.com/jackc/pgx/v5/tracelog"
	"go.uber.org/zap"
)

// newTracer routes pgx query traces to log.  Only attached when the
// descriptor's Debug flag is set.
func newTracer(log *zap.SugaredLogger) *tracelog.TraceLog {
	return &tracelog.TraceLog{
		Logger:   zapTraceLogger(log),
		LogLevel: tracelog.LogLevelDebug,
	}
}

func zapTraceLogger(log *zap.SugaredLogger) tracelog.Logger {
	return tracelog.LoggerFunc(func(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
		kv := make([]any, 0, len(data)*2)
		for k, v := range data {
			kv = append(kv, k, v)
		}
		switch level {
		case tracelog.LogLevelError:
			log.Errorw(msg, kv...)
		case tracelog.LogLevelWarn:
			log.Warnw(msg, kv...)
		case tracelog.LogLevelInfo:
			log.Infow(msg, kv...)
		default:
			log.Debugw(msg, kv...)
		}
	})
}
