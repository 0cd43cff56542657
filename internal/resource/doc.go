// Package resource implements the resource Controller for global limits.
//
// The Controller governs two resources:
//
//   - Memory: committed payload bytes, optionally capped (non-blocking, fail-fast)
//   - Maintenance: a bounded number of concurrent maintenance hook runs,
//     throttled by a token bucket
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for the hard limit and an atomic
// counter for usage. AcquireMemory never blocks:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 64 << 20,
//	})
//
//	if err := rc.AcquireMemory(n); err != nil {
//	    // ErrMemoryLimitExceeded - the commit is aborted
//	}
//
// # Maintenance
//
// TryAcquireMaintenance succeeds when the rate limiter has a token and a
// maintenance slot is free; callers that fail simply skip this round:
//
//	if rc.TryAcquireMaintenance() {
//	    defer rc.ReleaseMaintenance()
//	    hook(ctx, stats)
//	}
//
// # Nil Safety
//
// All methods handle a nil Controller: memory is unlimited and maintenance
// is always granted.
package resource
