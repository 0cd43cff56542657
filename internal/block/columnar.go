package block

import (
	"fmt"
	"slices"

	"github.com/hupe1980/deltadb/model"
)

// Columnar stores record ids and payloads next to one typed Column per
// declared property.
type Columnar struct {
	ids      ids
	payloads [][]byte
	names    []string // sorted column names
	columns  map[string]Column
}

// NewColumnar returns an empty columnar block with the given columns.
func NewColumnar(columns map[string]model.Kind) (*Columnar, error) {
	b := &Columnar{
		names:   make([]string, 0, len(columns)),
		columns: make(map[string]Column, len(columns)),
	}
	for name, kind := range columns {
		col, err := NewColumn(kind)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		b.names = append(b.names, name)
		b.columns[name] = col
	}
	slices.Sort(b.names)
	return b, nil
}

// Layout implements Block.
func (b *Columnar) Layout() model.Layout { return model.LayoutColumnar }

// RecordCount implements Block.
func (b *Columnar) RecordCount() int { return len(b.ids) }

// ID implements Block.
func (b *Columnar) ID(slot int) (model.RecordID, error) { return b.ids.at(slot) }

// Slot implements Block.
func (b *Columnar) Slot(id model.RecordID) (int, bool) { return b.ids.slot(id) }

// Get implements Block.
func (b *Columnar) Get(slot int) ([]byte, error) {
	if _, err := b.ids.at(slot); err != nil {
		return nil, err
	}
	return b.payloads[slot], nil
}

// Column returns the named column.
func (b *Columnar) Column(name string) (Column, bool) {
	col, ok := b.columns[name]
	return col, ok
}

// Filter implements Block by delegating to the typed column.
func (b *Columnar) Filter(property string, op model.Operator, value any) ([]int, error) {
	col, ok := b.Column(property)
	if !ok {
		return nil, fmt.Errorf("%w: no column %q", model.ErrNotSupported, property)
	}
	return col.Filter(op, value)
}

// Append implements Block. All values are validated before any column is
// touched, so a failed append leaves the block unchanged.
func (b *Columnar) Append(rec Record) error {
	if err := b.ids.checkNext(rec.ID); err != nil {
		return err
	}
	for name, v := range rec.Values {
		col, ok := b.columns[name]
		if !ok {
			return fmt.Errorf("%w: no column %q", model.ErrNotSupported, name)
		}
		if err := col.check(v); err != nil {
			return fmt.Errorf("column %q: %w", name, err)
		}
	}
	for _, name := range b.names {
		// Checked above; nil stores the null sentinel.
		_ = b.columns[name].Append(rec.Values[name])
	}
	b.ids = append(grow(b.ids), rec.ID)
	b.payloads = append(grow(b.payloads), rec.Payload)
	return nil
}

// DeleteRecords implements Block.
func (b *Columnar) DeleteRecords(slots []int) {
	if len(slots) == 0 {
		return
	}
	b.ids = compact(b.ids, slots)
	b.payloads = compact(b.payloads, slots)
	for _, name := range b.names {
		b.columns[name].DeleteRecords(slots)
	}
}

// Clone implements Block.
func (b *Columnar) Clone() Block {
	c := &Columnar{
		ids:      slices.Clone(b.ids),
		payloads: slices.Clone(b.payloads),
		names:    slices.Clone(b.names),
		columns:  make(map[string]Column, len(b.columns)),
	}
	for name, col := range b.columns {
		c.columns[name] = col.Clone()
	}
	return c
}
