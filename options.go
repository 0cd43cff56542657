package deltadb

import (
	"context"
	"log/slog"
	"time"

	"github.com/hupe1980/deltadb/codec"
	"github.com/hupe1980/deltadb/model"
)

// MaintenanceFunc is invoked at transaction boundaries with the current
// database statistics. It runs on the caller's goroutine; long work should
// be handed off.
type MaintenanceFunc func(ctx context.Context, stats Stats)

type options struct {
	codec            codec.Codec
	metricsCollector MetricsCollector
	logger           *Logger
	compression      model.Compression
	memoryLimit      int64
	maintenance      MaintenanceFunc
	maintenanceEvery time.Duration
}

// Option configures Open.
type Option func(*options)

// WithCodec configures the codec used to encode documents.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression configures payload compression for document tables.
// Columnar tables always store payloads uncompressed.
func WithCompression(c model.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithMemoryLimit caps the payload bytes held by committed deltas.
// A commit that would exceed the limit fails with ErrMemoryLimitExceeded and
// leaves its transaction active. Zero disables the limit.
//
// The limit counts history: deltas are never compacted, so deleted and
// replaced records keep their bytes reserved for the life of the database.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithMaintenance installs a hook invoked at transaction boundaries, at most
// once per every. A zero interval invokes it at every boundary.
//
// Example:
//
//	db, _ := deltadb.Open(defs, deltadb.WithMaintenance(func(ctx context.Context, s deltadb.Stats) {
//	    if s.ChainLength > 1024 {
//	        log.Println("chain is getting long")
//	    }
//	}, time.Second))
func WithMaintenance(hook MaintenanceFunc, every time.Duration) Option {
	return func(o *options) {
		o.maintenance = hook
		o.maintenanceEvery = every
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &deltadb.BasicMetricsCollector{}
//	db, _ := deltadb.Open(defs, deltadb.WithMetricsCollector(metrics))
//	// ... use db ...
//	stats := metrics.GetStats()
//	fmt.Printf("Queries: %d, Avg latency: %dns\n", stats.QueryCount, stats.QueryAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := deltadb.NewJSONLogger(slog.LevelInfo)
//	db, _ := deltadb.Open(defs, deltadb.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:            codec.Default,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
