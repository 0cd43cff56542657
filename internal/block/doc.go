// Package block implements the storage blocks that hold the records of one
// table inside one delta.
//
// # Variants
//
// Two interchangeable variants implement Block:
//
//	Columnar: record ids + payloads + one typed Column per declared column
//	Document: record ids + (optionally compressed) payloads + hash indexes
//
// Columnar blocks answer every comparison operator by scanning a typed slice.
// Document blocks answer equality on indexed properties from hash → id maps
// kept in lockstep with Append and DeleteRecords.
//
// # Slots
//
// A slot is the physical position of a record inside a block. Slots shift on
// DeleteRecords; the record id is the only stable identity.
//
// # Growth
//
// Appends grow backing arrays by doubling from minCapacity, so Append is
// amortized O(1). DeleteRecords compacts in place in a single pass.
//
// # Thread Safety
//
// Blocks are not synchronized. A block owned by an active delta is confined
// to the goroutine holding the transaction; a cloned block owned by a frozen
// delta is never mutated again and may be read concurrently.
package block
