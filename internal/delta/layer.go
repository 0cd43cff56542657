package delta

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/deltadb/internal/block"
)

// IndexKey addresses the index entries of one hashed property value.
type IndexKey struct {
	Table    string
	Property string
	Hash     uint64
}

// String returns a string representation of the IndexKey.
func (k IndexKey) String() string {
	return fmt.Sprintf("%s.%s#%016x", k.Table, k.Property, k.Hash)
}

// Layer is the read contract shared by Log and Frozen.
// Returned bitmaps and blocks must not be modified.
type Layer interface {
	// Block returns the records the layer added to table, or nil.
	Block(table string) block.Block
	// IDs returns the ids of the records the layer added to table, or nil.
	IDs(table string) *roaring64.Bitmap
	// Deleted returns the ids tombstoned by the layer.
	Deleted() *roaring64.Bitmap
	// Index returns the ids the layer added under key, or nil.
	Index(key IndexKey) *roaring64.Bitmap
	// DeletedIndex returns the ids the layer removed from key, or nil.
	DeletedIndex(key IndexKey) *roaring64.Bitmap
	// IsEmpty reports whether the layer carries no mutation.
	IsEmpty() bool
}

// BlockFactory creates an empty block for table.
type BlockFactory func(table string) (block.Block, error)

type tableDelta struct {
	block block.Block
	ids   *roaring64.Bitmap
}
