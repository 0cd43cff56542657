package delta

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/deltadb/internal/block"
	"github.com/hupe1980/deltadb/internal/conv"
	"github.com/hupe1980/deltadb/model"
)

// Chain is the ordered, append-only history of committed deltas.
// A Chain value is immutable; Append returns a new chain.
type Chain struct {
	layers []*Frozen
}

// EmptyChain is the chain of a fresh database.
var EmptyChain = &Chain{}

// Len returns the number of committed deltas.
func (c *Chain) Len() int { return len(c.layers) }

// Layer returns the i-th committed delta, oldest first.
func (c *Chain) Layer(i int) *Frozen { return c.layers[i] }

// Append returns a new chain extended by f. The receiver's backing array is
// never written, so concurrent appends from the same base cannot clobber a
// published chain.
func (c *Chain) Append(f *Frozen) *Chain {
	layers := make([]*Frozen, len(c.layers)+1)
	copy(layers, c.layers)
	layers[len(c.layers)] = f
	return &Chain{layers: layers}
}

// each visits the committed layers oldest first, then current (if any).
func (c *Chain) each(current Layer, fn func(Layer) bool) {
	for _, l := range c.layers {
		if !fn(l) {
			return
		}
	}
	if current != nil {
		fn(current)
	}
}

// ResolveEqual returns the ids indexed under key as seen through the chain
// followed by current.
func (c *Chain) ResolveEqual(current Layer, key IndexKey) *roaring64.Bitmap {
	candidates := roaring64.New()
	c.each(current, func(l Layer) bool {
		// Remove ids deleted by this layer before adding its own entries.
		candidates.AndNot(l.Deleted())
		if del := l.DeletedIndex(key); del != nil {
			candidates.AndNot(del)
		}
		if add := l.Index(key); add != nil {
			candidates.Or(add)
		}
		return true
	})
	return candidates
}

// Universe returns the ids of every live record of table.
func (c *Chain) Universe(current Layer, table string) *roaring64.Bitmap {
	all := roaring64.New()
	c.each(current, func(l Layer) bool {
		all.AndNot(l.Deleted())
		if add := l.IDs(table); add != nil {
			all.Or(add)
		}
		return true
	})
	return all
}

// Fetch materializes the records ids of table, scanning layers in merge
// order for the first layer holding each id.
//
// conds are pushed down into each layer's block: conditions a block cannot
// evaluate are skipped, the rest prune records before they are returned. Ids
// no layer holds yield ErrDataIntegrity.
func (c *Chain) Fetch(current Layer, table string, ids *roaring64.Bitmap, conds []model.Condition) ([]block.Entry, error) {
	remaining := ids.Clone()
	n, err := conv.Cardinality(remaining.GetCardinality())
	if err != nil {
		return nil, err
	}
	entries := make([]block.Entry, 0, n)

	c.each(current, func(l Layer) bool {
		if remaining.IsEmpty() {
			return false
		}
		layerIDs := l.IDs(table)
		if layerIDs == nil {
			return true
		}
		found := roaring64.And(remaining, layerIDs)
		if found.IsEmpty() {
			return true
		}
		remaining.AndNot(found)
		entries, err = fetchLayer(entries, l.Block(table), found, conds)
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	if !remaining.IsEmpty() {
		return nil, fmt.Errorf("%w: %d record(s) of table %q referenced but not materialized (first id %d)",
			model.ErrDataIntegrity, remaining.GetCardinality(), table, remaining.Minimum())
	}
	return entries, nil
}

func fetchLayer(entries []block.Entry, b block.Block, found *roaring64.Bitmap, conds []model.Condition) ([]block.Entry, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: layer lists ids without a block", model.ErrDataIntegrity)
	}

	slots := roaring.New()
	it := found.Iterator()
	for it.HasNext() {
		id := model.RecordID(it.Next())
		slot, ok := b.Slot(id)
		if !ok {
			return nil, fmt.Errorf("%w: record %d missing from its block", model.ErrDataIntegrity, id)
		}
		key, err := conv.SlotKey(slot)
		if err != nil {
			return nil, err
		}
		slots.Add(key)
	}

	for _, cond := range conds {
		if !pushable(b, cond) {
			continue
		}
		matches, err := b.Filter(cond.Property, cond.Op, cond.Value)
		if errors.Is(err, model.ErrNotSupported) {
			continue
		}
		if err != nil {
			return nil, err
		}
		m := roaring.New()
		for _, slot := range matches {
			key, err := conv.SlotKey(slot)
			if err != nil {
				return nil, err
			}
			m.Add(key)
		}
		slots.And(m)
		if slots.IsEmpty() {
			return entries, nil
		}
	}

	sit := slots.Iterator()
	for sit.HasNext() {
		slot, err := conv.Slot(sit.Next())
		if err != nil {
			return nil, err
		}
		id, err := b.ID(slot)
		if err != nil {
			return nil, err
		}
		payload, err := b.Get(slot)
		if err != nil {
			return nil, err
		}
		entries = append(entries, block.Entry{ID: id, Payload: payload})
	}
	return entries, nil
}

// pushable reports whether b can answer cond: hashed conditions go to
// document blocks, typed conditions to columnar blocks.
func pushable(b block.Block, cond model.Condition) bool {
	if cond.Hashed {
		return b.Layout() == model.LayoutDocument
	}
	return b.Layout() == model.LayoutColumnar
}
