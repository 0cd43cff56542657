package block

import (
	"fmt"
	"slices"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/deltadb/model"
)

// Document stores opaque serialized payloads keyed by record id.
//
// Every indexed property keeps a hash → id-set map updated in lockstep with
// Append and DeleteRecords, so equality filters never scan payloads.
type Document struct {
	ids         ids
	payloads    [][]byte
	hashes      [][]uint64 // per slot, aligned with properties
	properties  []string
	position    map[string]int
	indexes     []map[uint64]*roaring64.Bitmap // aligned with properties
	compression model.Compression
}

// NewDocument returns an empty document block indexing the given properties.
func NewDocument(properties []string, compression model.Compression) *Document {
	b := &Document{
		properties:  slices.Clone(properties),
		position:    make(map[string]int, len(properties)),
		indexes:     make([]map[uint64]*roaring64.Bitmap, len(properties)),
		compression: compression,
	}
	for i, p := range properties {
		b.position[p] = i
		b.indexes[i] = make(map[uint64]*roaring64.Bitmap)
	}
	return b
}

// Layout implements Block.
func (b *Document) Layout() model.Layout { return model.LayoutDocument }

// RecordCount implements Block.
func (b *Document) RecordCount() int { return len(b.ids) }

// ID implements Block.
func (b *Document) ID(slot int) (model.RecordID, error) { return b.ids.at(slot) }

// Slot implements Block.
func (b *Document) Slot(id model.RecordID) (int, bool) { return b.ids.slot(id) }

// Get implements Block. Compressed payloads are decompressed.
func (b *Document) Get(slot int) ([]byte, error) {
	if _, err := b.ids.at(slot); err != nil {
		return nil, err
	}
	return decompressPayload(b.payloads[slot], b.compression)
}

// Lookup returns the ids whose property hashes to hash. The result must not
// be modified.
func (b *Document) Lookup(property string, hash uint64) *roaring64.Bitmap {
	i, ok := b.position[property]
	if !ok {
		return nil
	}
	return b.indexes[i][hash]
}

// Filter implements Block for OpEqual and OpNotEqual on index hashes.
func (b *Document) Filter(property string, op model.Operator, value any) ([]int, error) {
	i, ok := b.position[property]
	if !ok {
		return nil, fmt.Errorf("%w: property %q is not indexed", model.ErrNotSupported, property)
	}
	hash, ok := value.(uint64)
	if !ok {
		return nil, fmt.Errorf("%w: index hash must be uint64, got %T", model.ErrTypeMismatch, value)
	}

	switch op {
	case model.OpEqual:
		matches := []int{}
		if bm := b.Lookup(property, hash); bm != nil {
			matches = make([]int, 0, bm.GetCardinality())
			it := bm.Iterator()
			for it.HasNext() {
				// Ids ascend with slots, so bitmap order is slot order.
				if slot, ok := b.ids.slot(model.RecordID(it.Next())); ok {
					matches = append(matches, slot)
				}
			}
		}
		return matches, nil
	case model.OpNotEqual:
		matches := make([]int, 0, len(b.ids))
		for slot, h := range b.hashes {
			if h[i] != hash {
				matches = append(matches, slot)
			}
		}
		return matches, nil
	default:
		return nil, fmt.Errorf("%w: operator %s on document block", model.ErrNotSupported, op)
	}
}

// Append implements Block. Every indexed property must carry a uint64 hash.
func (b *Document) Append(rec Record) error {
	if err := b.ids.checkNext(rec.ID); err != nil {
		return err
	}
	hashes := make([]uint64, len(b.properties))
	for i, p := range b.properties {
		h, ok := rec.Values[p].(uint64)
		if !ok {
			return fmt.Errorf("%w: property %q hash must be uint64, got %T", model.ErrTypeMismatch, p, rec.Values[p])
		}
		hashes[i] = h
	}
	payload, err := compressPayload(rec.Payload, b.compression)
	if err != nil {
		return err
	}

	for i, h := range hashes {
		bm, ok := b.indexes[i][h]
		if !ok {
			bm = roaring64.New()
			b.indexes[i][h] = bm
		}
		bm.Add(uint64(rec.ID))
	}
	b.ids = append(grow(b.ids), rec.ID)
	b.payloads = append(grow(b.payloads), payload)
	b.hashes = append(grow(b.hashes), hashes)
	return nil
}

// DeleteRecords implements Block.
func (b *Document) DeleteRecords(slots []int) {
	if len(slots) == 0 {
		return
	}
	for _, slot := range slots {
		id := uint64(b.ids[slot])
		for i, h := range b.hashes[slot] {
			bm := b.indexes[i][h]
			bm.Remove(id)
			if bm.IsEmpty() {
				delete(b.indexes[i], h)
			}
		}
	}
	b.ids = compact(b.ids, slots)
	b.payloads = compact(b.payloads, slots)
	b.hashes = compact(b.hashes, slots)
}

// Clone implements Block.
func (b *Document) Clone() Block {
	c := &Document{
		ids:         slices.Clone(b.ids),
		payloads:    slices.Clone(b.payloads),
		hashes:      slices.Clone(b.hashes),
		properties:  b.properties,
		position:    b.position,
		indexes:     make([]map[uint64]*roaring64.Bitmap, len(b.indexes)),
		compression: b.compression,
	}
	for i, index := range b.indexes {
		c.indexes[i] = make(map[uint64]*roaring64.Bitmap, len(index))
		for h, bm := range index {
			c.indexes[i][h] = bm.Clone()
		}
	}
	return c
}
