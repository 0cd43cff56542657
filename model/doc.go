// Package model defines core types shared by every deltadb layer.
//
// # Identity Types
//
//   - RecordID: Globally unique, monotonically increasing record identifier (uint64)
//   - TxnID: Identifier of an in-flight transaction (uint64)
//
// Record ids are never reused. A replaced record gets a fresh id; the old one
// is tombstoned in the delta that replaced it.
//
// # Storage Types
//
//   - Layout: storage block variant of a table (document or columnar)
//   - Kind: element type of a columnar column
//   - Operator: comparison operator shared by predicates and block filters
//   - Compression: payload compression of document blocks
package model
