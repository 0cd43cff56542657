package delta

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/deltadb/internal/block"
)

// Frozen is an immutable delta, safe to share across goroutines.
type Frozen struct {
	tables       map[string]tableDelta
	deleted      *roaring64.Bitmap
	index        map[IndexKey]*roaring64.Bitmap
	deletedIndex map[IndexKey]*roaring64.Bitmap
	bytes        int64
}

var _ Layer = (*Frozen)(nil)

// Block implements Layer.
func (f *Frozen) Block(table string) block.Block {
	if t, ok := f.tables[table]; ok {
		return t.block
	}
	return nil
}

// IDs implements Layer.
func (f *Frozen) IDs(table string) *roaring64.Bitmap {
	if t, ok := f.tables[table]; ok {
		return t.ids
	}
	return nil
}

// Deleted implements Layer.
func (f *Frozen) Deleted() *roaring64.Bitmap { return f.deleted }

// Index implements Layer.
func (f *Frozen) Index(key IndexKey) *roaring64.Bitmap { return f.index[key] }

// DeletedIndex implements Layer.
func (f *Frozen) DeletedIndex(key IndexKey) *roaring64.Bitmap { return f.deletedIndex[key] }

// IsEmpty implements Layer.
func (f *Frozen) IsEmpty() bool {
	return len(f.tables) == 0 && f.deleted.IsEmpty() && len(f.index) == 0 && len(f.deletedIndex) == 0
}

// RecordCount returns the number of records the delta added.
func (f *Frozen) RecordCount() int {
	n := 0
	for _, t := range f.tables {
		n += t.block.RecordCount()
	}
	return n
}

// DeletedCount returns the number of tombstones in the delta.
func (f *Frozen) DeletedCount() int {
	return int(f.deleted.GetCardinality())
}

// PayloadBytes returns the payload bytes the delta added.
func (f *Frozen) PayloadBytes() int64 { return f.bytes }
