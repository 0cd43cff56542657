package deltadb

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    commitCounter  prometheus.Counter
//	    queryHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordCommit(extended bool, duration time.Duration, err error) {
//	    p.commitCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordQuery is called after each query or count.
	// results is the number of matching records.
	RecordQuery(results int, duration time.Duration, err error)

	// RecordAppend is called after each append.
	RecordAppend(duration time.Duration, err error)

	// RecordDelete is called after each delete.
	// deleted is the number of removed records.
	RecordDelete(deleted int, duration time.Duration, err error)

	// RecordCommit is called after each commit attempt.
	// extended reports whether the committed chain grew.
	RecordCommit(extended bool, duration time.Duration, err error)

	// RecordRollback is called after each rollback.
	RecordRollback(err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordQuery(int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordAppend(time.Duration, error)       {}
func (NoopMetricsCollector) RecordDelete(int, time.Duration, error)  {}
func (NoopMetricsCollector) RecordCommit(bool, time.Duration, error) {}
func (NoopMetricsCollector) RecordRollback(error)                    {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	QueryCount       atomic.Int64
	QueryErrors      atomic.Int64
	QueryResults     atomic.Int64
	QueryTotalNanos  atomic.Int64
	AppendCount      atomic.Int64
	AppendErrors     atomic.Int64
	AppendTotalNanos atomic.Int64
	DeleteCount      atomic.Int64
	DeleteErrors     atomic.Int64
	DeletedRecords   atomic.Int64
	CommitCount      atomic.Int64
	CommitErrors     atomic.Int64
	EmptyCommits     atomic.Int64
	RollbackCount    atomic.Int64
	RollbackErrors   atomic.Int64
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(results int, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QueryErrors.Add(1)
		return
	}
	b.QueryResults.Add(int64(results))
}

// RecordAppend implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAppend(duration time.Duration, err error) {
	b.AppendCount.Add(1)
	b.AppendTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AppendErrors.Add(1)
	}
}

// RecordDelete implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDelete(deleted int, duration time.Duration, err error) {
	b.DeleteCount.Add(1)
	if err != nil {
		b.DeleteErrors.Add(1)
		return
	}
	b.DeletedRecords.Add(int64(deleted))
}

// RecordCommit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCommit(extended bool, duration time.Duration, err error) {
	b.CommitCount.Add(1)
	if err != nil {
		b.CommitErrors.Add(1)
		return
	}
	if !extended {
		b.EmptyCommits.Add(1)
	}
}

// RecordRollback implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRollback(err error) {
	b.RollbackCount.Add(1)
	if err != nil {
		b.RollbackErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		QueryCount:     b.QueryCount.Load(),
		QueryErrors:    b.QueryErrors.Load(),
		QueryResults:   b.QueryResults.Load(),
		QueryAvgNanos:  avg(b.QueryTotalNanos.Load(), b.QueryCount.Load()),
		AppendCount:    b.AppendCount.Load(),
		AppendErrors:   b.AppendErrors.Load(),
		AppendAvgNanos: avg(b.AppendTotalNanos.Load(), b.AppendCount.Load()),
		DeleteCount:    b.DeleteCount.Load(),
		DeleteErrors:   b.DeleteErrors.Load(),
		DeletedRecords: b.DeletedRecords.Load(),
		CommitCount:    b.CommitCount.Load(),
		CommitErrors:   b.CommitErrors.Load(),
		EmptyCommits:   b.EmptyCommits.Load(),
		RollbackCount:  b.RollbackCount.Load(),
		RollbackErrors: b.RollbackErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	QueryCount     int64
	QueryErrors    int64
	QueryResults   int64
	QueryAvgNanos  int64
	AppendCount    int64
	AppendErrors   int64
	AppendAvgNanos int64
	DeleteCount    int64
	DeleteErrors   int64
	DeletedRecords int64
	CommitCount    int64
	CommitErrors   int64
	EmptyCommits   int64
	RollbackCount  int64
	RollbackErrors int64
}
