package block

import (
	"fmt"

	"github.com/hupe1980/deltadb/model"
)

// minCapacity is the initial capacity of every growable array in a block.
const minCapacity = 10

// Record is the input of Block.Append.
type Record struct {
	ID      model.RecordID
	Payload []byte
	// Values holds per-property values: typed column values for columnar
	// blocks, uint64 index hashes for document blocks. Missing columns are
	// stored as null.
	Values map[string]any
}

// Entry is a materialized record.
type Entry struct {
	ID      model.RecordID
	Payload []byte
}

// Block holds the records of one table within one delta.
type Block interface {
	// Layout returns the variant of the block.
	Layout() model.Layout
	// RecordCount returns the number of live records.
	RecordCount() int
	// ID returns the record id stored at slot.
	ID(slot int) (model.RecordID, error)
	// Slot returns the slot of id, if present.
	Slot(id model.RecordID) (int, bool)
	// Get returns the payload stored at slot.
	Get(slot int) ([]byte, error)
	// Filter returns the ascending slots whose property value satisfies op.
	Filter(property string, op model.Operator, value any) ([]int, error)
	// Append adds a record. Ids must be appended in ascending order.
	Append(rec Record) error
	// DeleteRecords removes the records at the given ascending, distinct slots.
	DeleteRecords(slots []int)
	// Clone returns an independent copy.
	Clone() Block
}

// grow returns s with room for one more element, doubling capacity from
// minCapacity.
func grow[E any](s []E) []E {
	if len(s) < cap(s) {
		return s
	}
	next := make([]E, len(s), max(minCapacity, cap(s)*2))
	copy(next, s)
	return next
}

// compact removes the elements at the ascending, distinct slots in one
// left-to-right pass. Each survivor shifts down by the number of deletions
// seen so far.
func compact[E any](s []E, slots []int) []E {
	offset := 0
	next := 0
	for i := range s {
		if next < len(slots) && slots[next] == i {
			offset++
			next++
			continue
		}
		if offset != 0 {
			s[i-offset] = s[i]
		}
	}
	var zero E
	for i := len(s) - offset; i < len(s); i++ {
		s[i] = zero
	}
	return s[:len(s)-offset]
}

// ids is the ascending record id column shared by both variants.
type ids []model.RecordID

func (s ids) at(slot int) (model.RecordID, error) {
	if slot < 0 || slot >= len(s) {
		return 0, fmt.Errorf("%w: slot %d, count %d", model.ErrOutOfRange, slot, len(s))
	}
	return s[slot], nil
}

// slot binary-searches id; ids within a block ascend and compaction keeps
// their order.
func (s ids) slot(id model.RecordID) (int, bool) {
	lo, hi := 0, len(s)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if s[mid] < id {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(s) && s[lo] == id {
		return lo, true
	}
	return 0, false
}

func (s ids) checkNext(id model.RecordID) error {
	if len(s) > 0 && s[len(s)-1] >= id {
		return fmt.Errorf("record id %d appended after %d", id, s[len(s)-1])
	}
	return nil
}

// New returns an empty block for the given layout.
//
// For LayoutColumnar, columns declares the typed columns; for LayoutDocument,
// properties lists the indexed properties.
func New(layout model.Layout, columns map[string]model.Kind, properties []string, compression model.Compression) (Block, error) {
	switch layout {
	case model.LayoutColumnar:
		return NewColumnar(columns)
	case model.LayoutDocument:
		return NewDocument(properties, compression), nil
	default:
		return nil, fmt.Errorf("%w: layout %s", model.ErrNotSupported, layout)
	}
}
