package resource

import (
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/hupe1980/deltadb/model"
)

// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
var ErrMemoryLimitExceeded = model.ErrMemoryLimitExceeded

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for committed payload bytes.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxMaintenanceWorkers is the maximum number of concurrent maintenance runs.
	// If 0, defaults to 1.
	MaxMaintenanceWorkers int64

	// MaintenanceInterval is the minimum spacing between maintenance runs.
	// If 0, runs are not throttled.
	MaintenanceInterval time.Duration
}

// Controller manages global resources (memory, maintenance).
type Controller struct {
	cfg Config

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	// Maintenance
	maintSem     *semaphore.Weighted
	maintLimiter *rate.Limiter // nil if unthrottled
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxMaintenanceWorkers <= 0 {
		cfg.MaxMaintenanceWorkers = 1
	}

	c := &Controller{
		cfg:      cfg,
		maintSem: semaphore.NewWeighted(cfg.MaxMaintenanceWorkers),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.MaintenanceInterval > 0 {
		c.maintLimiter = rate.NewLimiter(rate.Every(cfg.MaintenanceInterval), 1)
	}

	return c
}

// AcquireMemory attempts to reserve memory.
// Returns ErrMemoryLimitExceeded if limit would be exceeded.
// Non-blocking - callers control retry/backoff policy.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil {
		return nil
	}
	if bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return ErrMemoryLimitExceeded
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil {
		return
	}
	if bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// TryAcquireMaintenance reserves a maintenance slot without blocking.
// It fails if the previous run was too recent or all slots are busy.
func (c *Controller) TryAcquireMaintenance() bool {
	if c == nil {
		return true
	}
	if !c.maintSem.TryAcquire(1) {
		return false
	}
	if c.maintLimiter != nil && !c.maintLimiter.Allow() {
		c.maintSem.Release(1)
		return false
	}
	return true
}

// ReleaseMaintenance releases a maintenance slot.
func (c *Controller) ReleaseMaintenance() {
	if c == nil {
		return
	}
	c.maintSem.Release(1)
}
