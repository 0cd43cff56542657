// Package mvcc manages the global database state: the committed chain plus
// the caches of all active transactions.
//
// # State Transitions
//
// State values are immutable. Every transition computes a new State from the
// current one and publishes it with a single compare-and-swap on an
// atomic.Pointer. If another goroutine published first, the transition is
// recomputed from the fresh state and retried. No locks are taken, so no
// deadlock is possible; the retry loop is unbounded and assumes low
// contention.
//
// Retries only absorb benign races. A missing transaction id fails with
// ErrInvalidState and is never retried.
//
// # Snapshot Isolation
//
// A TransactionCache captures the chain current at Create. Commits landing
// later extend newer State values only and stay invisible to it.
//
// # Conflicts
//
// Concurrent writers are not checked against each other: commits are
// appended in CAS order and the last committer wins.
package mvcc
