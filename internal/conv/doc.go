// Package conv provides checked integer conversions between block slots,
// bitmap keys and cardinalities.
//
// Slots are ints on the block API, while slot bitmaps are 32-bit roaring
// bitmaps and id sets report 64-bit cardinalities. The helpers fail with
// model.ErrOutOfRange instead of silently truncating.
package conv
