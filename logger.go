package deltadb

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/deltadb/model"
)

// Logger wraps slog.Logger with deltadb-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithDatabase adds the database id to every record.
func (l *Logger) WithDatabase(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("db", id),
	}
}

// WithTable adds a table field to the logger.
func (l *Logger) WithTable(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("table", name),
	}
}

// LogCommit logs a transaction commit.
// records and deleted count the appended records and tombstones the commit
// published.
func (l *Logger) LogCommit(ctx context.Context, txn model.TxnID, extended bool, records, deleted int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "commit failed",
			"txn", txn,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "commit completed",
			"txn", txn,
			"chain_extended", extended,
			"records", records,
			"deleted", deleted,
		)
	}
}

// LogRollback logs a transaction rollback.
func (l *Logger) LogRollback(ctx context.Context, txn model.TxnID, err error) {
	if err != nil {
		l.ErrorContext(ctx, "rollback failed",
			"txn", txn,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "rollback completed",
			"txn", txn,
		)
	}
}

// LogQuery logs a query operation.
func (l *Logger) LogQuery(ctx context.Context, predicate string, results int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query failed",
			"predicate", predicate,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "query completed",
			"predicate", predicate,
			"results", results,
		)
	}
}

// LogAppend logs an append operation.
func (l *Logger) LogAppend(ctx context.Context, id model.RecordID, replaced int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "append failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "append completed",
			"id", uint64(id),
			"replaced", replaced,
		)
	}
}

// LogDelete logs a delete operation.
func (l *Logger) LogDelete(ctx context.Context, predicate string, deleted int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete failed",
			"predicate", predicate,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "delete completed",
			"predicate", predicate,
			"deleted", deleted,
		)
	}
}
