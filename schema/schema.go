package schema

import (
	"fmt"
	"slices"

	"golang.org/x/text/unicode/norm"

	"github.com/hupe1980/deltadb/model"
)

// Index declares a hash index over one document property.
type Index[T any] struct {
	// Property names the index. It is unique within the table.
	Property string
	// Key extracts the indexed key from a document.
	Key func(T) any
	// Hash reduces a key to its index hash. Defaults to HashKey.
	Hash func(any) uint64
}

// HashOf returns the hash of key.
func (ix Index[T]) HashOf(key any) uint64 {
	if ix.Hash != nil {
		return ix.Hash(key)
	}
	return HashKey(key)
}

// DocHash returns the hash of doc's key.
func (ix Index[T]) DocHash(doc T) uint64 {
	return ix.HashOf(ix.Key(doc))
}

// Column declares a typed column of a columnar table.
type Column[T any] struct {
	Name string
	Kind model.Kind
	// Value extracts the column value. It must return a value of the
	// column's Go type (int32, int64, float32, float64) or nil for null.
	Value func(T) any
}

// Table is the schema of one table.
type Table[T any] struct {
	Name    string
	Indexes []Index[T]
	Layout  model.Layout
	Columns []Column[T]
}

// Validate checks the schema and returns a copy with all names in Unicode
// normalization form C.
func (t Table[T]) Validate() (Table[T], error) {
	out := Table[T]{
		Name:    norm.NFC.String(t.Name),
		Indexes: slices.Clone(t.Indexes),
		Layout:  t.Layout,
		Columns: slices.Clone(t.Columns),
	}
	if out.Name == "" {
		return out, fmt.Errorf("%w: table name is empty", model.ErrInvalidSchema)
	}
	if len(out.Indexes) == 0 {
		return out, fmt.Errorf("%w: table %q needs at least one index", model.ErrInvalidSchema, out.Name)
	}

	seen := make(map[string]struct{}, len(out.Indexes))
	for i := range out.Indexes {
		ix := &out.Indexes[i]
		ix.Property = norm.NFC.String(ix.Property)
		if ix.Property == "" {
			return out, fmt.Errorf("%w: table %q: index %d has no property", model.ErrInvalidSchema, out.Name, i)
		}
		if ix.Key == nil {
			return out, fmt.Errorf("%w: table %q: index %q has no key function", model.ErrInvalidSchema, out.Name, ix.Property)
		}
		if _, dup := seen[ix.Property]; dup {
			return out, fmt.Errorf("%w: table %q: duplicate index %q", model.ErrInvalidSchema, out.Name, ix.Property)
		}
		seen[ix.Property] = struct{}{}
	}

	switch out.Layout {
	case model.LayoutDocument:
		if len(out.Columns) > 0 {
			return out, fmt.Errorf("%w: table %q: columns require the columnar layout", model.ErrInvalidSchema, out.Name)
		}
	case model.LayoutColumnar:
		cols := make(map[string]struct{}, len(out.Columns))
		for i := range out.Columns {
			c := &out.Columns[i]
			c.Name = norm.NFC.String(c.Name)
			if c.Name == "" {
				return out, fmt.Errorf("%w: table %q: column %d has no name", model.ErrInvalidSchema, out.Name, i)
			}
			if c.Value == nil {
				return out, fmt.Errorf("%w: table %q: column %q has no value function", model.ErrInvalidSchema, out.Name, c.Name)
			}
			if c.Kind == model.KindInvalid || c.Kind > model.KindFloat64 {
				return out, fmt.Errorf("%w: table %q: column %q has invalid kind", model.ErrInvalidSchema, out.Name, c.Name)
			}
			if _, dup := cols[c.Name]; dup {
				return out, fmt.Errorf("%w: table %q: duplicate column %q", model.ErrInvalidSchema, out.Name, c.Name)
			}
			cols[c.Name] = struct{}{}
		}
	default:
		return out, fmt.Errorf("%w: table %q: unknown layout %s", model.ErrInvalidSchema, out.Name, out.Layout)
	}
	return out, nil
}

// PrimaryKey returns the first index.
func (t Table[T]) PrimaryKey() Index[T] { return t.Indexes[0] }

// Index returns the index named property.
func (t Table[T]) Index(property string) (Index[T], bool) {
	for _, ix := range t.Indexes {
		if ix.Property == property {
			return ix, true
		}
	}
	return Index[T]{}, false
}

// Properties returns the indexed property names in declaration order.
func (t Table[T]) Properties() []string {
	out := make([]string, len(t.Indexes))
	for i, ix := range t.Indexes {
		out[i] = ix.Property
	}
	return out
}

// ColumnKinds returns the declared columns by name.
func (t Table[T]) ColumnKinds() map[string]model.Kind {
	out := make(map[string]model.Kind, len(t.Columns))
	for _, c := range t.Columns {
		out[c.Name] = c.Kind
	}
	return out
}

// Values extracts the block values of doc: column values for columnar
// tables, index hashes for document tables.
func (t Table[T]) Values(doc T) map[string]any {
	if t.Layout == model.LayoutColumnar {
		out := make(map[string]any, len(t.Columns))
		for _, c := range t.Columns {
			out[c.Name] = c.Value(doc)
		}
		return out
	}
	out := make(map[string]any, len(t.Indexes))
	for _, ix := range t.Indexes {
		out[ix.Property] = ix.DocHash(doc)
	}
	return out
}
