// Package delta implements per-transaction delta logs and the committed chain.
//
// # Layers
//
// A Log is the mutable delta of one active transaction. Freezing it yields a
// Frozen delta with the same read contract; both implement Layer. The Chain
// is the ordered, append-only sequence of frozen deltas shared by every
// transaction.
//
// # Merge Order
//
// Every read merges layers oldest committed layer first, through to the
// current transaction's own log last. For each layer, ids deleted by that
// layer are removed from the running set before the layer's own additions
// are unioned in:
//
//	candidates = ((candidates - deleted[k]) - deletedIndex[k][key]) | index[k][key]
//
// A deletion therefore overrides every earlier addition, and is itself
// overridden only by a later addition.
//
// # Thread Safety
//
// Frozen deltas and chains are immutable and safe for concurrent readers. A
// Log is confined to the goroutine owning its transaction.
package delta
