package delta

import (
	"fmt"
	"maps"
	"slices"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/deltadb/internal/block"
	"github.com/hupe1980/deltadb/model"
)

// Log is the mutable delta of one active transaction.
//
// Deleting a record or index entry the log itself added removes it in place
// instead of writing a tombstone, so a log whose additions were all undone is
// empty again.
type Log struct {
	newBlock     BlockFactory
	tables       map[string]*tableDelta
	deleted      *roaring64.Bitmap
	index        map[IndexKey]*roaring64.Bitmap
	deletedIndex map[IndexKey]*roaring64.Bitmap
	bytes        int64
	frozen       *Frozen
}

var _ Layer = (*Log)(nil)

// NewLog returns an empty log creating table blocks with newBlock.
func NewLog(newBlock BlockFactory) *Log {
	return &Log{
		newBlock:     newBlock,
		tables:       make(map[string]*tableDelta),
		deleted:      roaring64.New(),
		index:        make(map[IndexKey]*roaring64.Bitmap),
		deletedIndex: make(map[IndexKey]*roaring64.Bitmap),
	}
}

func (l *Log) checkActive() error {
	if l.frozen != nil {
		return fmt.Errorf("%w: delta log is frozen", model.ErrInvalidState)
	}
	return nil
}

// AppendRecord adds rec to table. On error the log is unchanged.
func (l *Log) AppendRecord(table string, rec block.Record) error {
	if err := l.checkActive(); err != nil {
		return err
	}
	t, ok := l.tables[table]
	if !ok {
		b, err := l.newBlock(table)
		if err != nil {
			return err
		}
		t = &tableDelta{block: b, ids: roaring64.New()}
	}
	if err := t.block.Append(rec); err != nil {
		return err
	}
	l.tables[table] = t
	t.ids.Add(uint64(rec.ID))
	l.bytes += int64(len(rec.Payload))
	return nil
}

// DeleteRecord removes id from table.
func (l *Log) DeleteRecord(table string, id model.RecordID) error {
	return l.DeleteRecords(table, []model.RecordID{id})
}

// DeleteRecords removes ids from table. Records this log added are compacted
// out of its block in one pass; all others are tombstoned.
func (l *Log) DeleteRecords(table string, ids []model.RecordID) error {
	if err := l.checkActive(); err != nil {
		return err
	}
	t := l.tables[table]

	var slots []int
	for _, id := range ids {
		if t != nil && t.ids.Contains(uint64(id)) {
			if slot, ok := t.block.Slot(id); ok {
				if p, err := t.block.Get(slot); err == nil {
					l.bytes -= int64(len(p))
				}
				slots = append(slots, slot)
			}
			t.ids.Remove(uint64(id))
			continue
		}
		l.deleted.Add(uint64(id))
	}
	if len(slots) == 0 {
		return nil
	}

	slices.Sort(slots)
	slots = slices.Compact(slots)
	t.block.DeleteRecords(slots)
	if t.block.RecordCount() == 0 {
		delete(l.tables, table)
	}
	return nil
}

// AppendIndexEntry adds id under key.
func (l *Log) AppendIndexEntry(key IndexKey, id model.RecordID) error {
	if err := l.checkActive(); err != nil {
		return err
	}
	addTo(l.index, key, id)
	return nil
}

// DeleteIndexEntry removes id from key.
func (l *Log) DeleteIndexEntry(key IndexKey, id model.RecordID) error {
	if err := l.checkActive(); err != nil {
		return err
	}
	if removeFrom(l.index, key, id) {
		return nil
	}
	addTo(l.deletedIndex, key, id)
	return nil
}

func addTo(m map[IndexKey]*roaring64.Bitmap, key IndexKey, id model.RecordID) {
	bm, ok := m[key]
	if !ok {
		bm = roaring64.New()
		m[key] = bm
	}
	bm.Add(uint64(id))
}

func removeFrom(m map[IndexKey]*roaring64.Bitmap, key IndexKey, id model.RecordID) bool {
	bm, ok := m[key]
	if !ok || !bm.CheckedRemove(uint64(id)) {
		return false
	}
	if bm.IsEmpty() {
		delete(m, key)
	}
	return true
}

// Block implements Layer.
func (l *Log) Block(table string) block.Block {
	if t, ok := l.tables[table]; ok {
		return t.block
	}
	return nil
}

// IDs implements Layer.
func (l *Log) IDs(table string) *roaring64.Bitmap {
	if t, ok := l.tables[table]; ok {
		return t.ids
	}
	return nil
}

// Deleted implements Layer.
func (l *Log) Deleted() *roaring64.Bitmap { return l.deleted }

// Index implements Layer.
func (l *Log) Index(key IndexKey) *roaring64.Bitmap { return l.index[key] }

// DeletedIndex implements Layer.
func (l *Log) DeletedIndex(key IndexKey) *roaring64.Bitmap { return l.deletedIndex[key] }

// IsEmpty implements Layer.
func (l *Log) IsEmpty() bool {
	return len(l.tables) == 0 && l.deleted.IsEmpty() && len(l.index) == 0 && len(l.deletedIndex) == 0
}

// Freeze returns the immutable snapshot of the log. The first call freezes
// the log; later calls return the same snapshot and further mutations fail
// with ErrInvalidState.
func (l *Log) Freeze() *Frozen {
	if l.frozen != nil {
		return l.frozen
	}
	f := &Frozen{
		tables:       make(map[string]tableDelta, len(l.tables)),
		deleted:      l.deleted.Clone(),
		index:        cloneBitmaps(l.index),
		deletedIndex: cloneBitmaps(l.deletedIndex),
		bytes:        l.bytes,
	}
	for name, t := range l.tables {
		ids := t.ids.Clone()
		ids.RunOptimize()
		f.tables[name] = tableDelta{block: t.block.Clone(), ids: ids}
	}
	f.deleted.RunOptimize()
	l.frozen = f
	return f
}

func cloneBitmaps(m map[IndexKey]*roaring64.Bitmap) map[IndexKey]*roaring64.Bitmap {
	out := maps.Clone(m)
	for k, bm := range out {
		out[k] = bm.Clone()
	}
	return out
}
