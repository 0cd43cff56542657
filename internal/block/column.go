package block

import (
	"fmt"
	"math"

	"github.com/hupe1980/deltadb/model"
)

// Column is a type-erased columnar block of one primitive element type.
type Column interface {
	// Kind returns the element type.
	Kind() model.Kind
	// RecordCount returns the number of stored elements.
	RecordCount() int
	// Get returns the element at slot, or nil for null.
	Get(slot int) (any, error)
	// Filter returns the ascending slots whose element satisfies op against value.
	// A nil value compares against the null sentinel.
	Filter(op model.Operator, value any) ([]int, error)
	// Append adds value (nil for null).
	Append(value any) error
	// DeleteRecords removes the elements at the ascending, distinct slots.
	DeleteRecords(slots []int)
	// Clone returns an independent copy.
	Clone() Column

	check(value any) error
}

// primitive lists the element types a column can hold.
type primitive interface {
	~int32 | ~int64 | ~float32 | ~float64
}

// PrimitiveColumn stores a single primitive element type contiguously.
// Null is represented by a reserved sentinel (the type's minimum value).
type PrimitiveColumn[V primitive] struct {
	kind model.Kind
	null V
	data []V
}

// NewColumn returns an empty column of the given kind.
func NewColumn(kind model.Kind) (Column, error) {
	switch kind {
	case model.KindInt32:
		return &PrimitiveColumn[int32]{kind: kind, null: math.MinInt32}, nil
	case model.KindInt64:
		return &PrimitiveColumn[int64]{kind: kind, null: math.MinInt64}, nil
	case model.KindFloat32:
		return &PrimitiveColumn[float32]{kind: kind, null: -math.MaxFloat32}, nil
	case model.KindFloat64:
		return &PrimitiveColumn[float64]{kind: kind, null: -math.MaxFloat64}, nil
	default:
		return nil, fmt.Errorf("%w: column kind %s", model.ErrNotSupported, kind)
	}
}

// Kind implements Column.
func (c *PrimitiveColumn[V]) Kind() model.Kind { return c.kind }

// RecordCount implements Column.
func (c *PrimitiveColumn[V]) RecordCount() int { return len(c.data) }

// At returns the raw element at slot, including the null sentinel.
func (c *PrimitiveColumn[V]) At(slot int) (V, error) {
	if slot < 0 || slot >= len(c.data) {
		var zero V
		return zero, fmt.Errorf("%w: slot %d, count %d", model.ErrOutOfRange, slot, len(c.data))
	}
	return c.data[slot], nil
}

// Get implements Column.
func (c *PrimitiveColumn[V]) Get(slot int) (any, error) {
	v, err := c.At(slot)
	if err != nil {
		return nil, err
	}
	if v == c.null {
		return nil, nil
	}
	return v, nil
}

func (c *PrimitiveColumn[V]) typed(value any) (V, error) {
	if value == nil {
		return c.null, nil
	}
	v, ok := value.(V)
	if !ok {
		var zero V
		return zero, fmt.Errorf("%w: column type is %s while value type is %T", model.ErrTypeMismatch, c.kind, value)
	}
	return v, nil
}

func (c *PrimitiveColumn[V]) check(value any) error {
	_, err := c.typed(value)
	return err
}

// Filter implements Column.
func (c *PrimitiveColumn[V]) Filter(op model.Operator, value any) ([]int, error) {
	v, err := c.typed(value)
	if err != nil {
		return nil, err
	}
	if !op.Valid() {
		return nil, fmt.Errorf("%w: operator %d", model.ErrNotSupported, op)
	}
	return filterSpan(c.data, op, v), nil
}

// filterSpan scans values with the ordering model.Compare uses, so NaN sorts
// below every number and equals itself.
func filterSpan[V primitive](values []V, op model.Operator, v V) []int {
	matches := make([]int, 0, len(values))
	for i, x := range values {
		if model.Compare(op, x, v) {
			matches = append(matches, i)
		}
	}
	return matches
}

// Append implements Column.
func (c *PrimitiveColumn[V]) Append(value any) error {
	v, err := c.typed(value)
	if err != nil {
		return err
	}
	c.data = append(grow(c.data), v)
	return nil
}

// DeleteRecords implements Column.
func (c *PrimitiveColumn[V]) DeleteRecords(slots []int) {
	c.data = compact(c.data, slots)
}

// Clone implements Column.
func (c *PrimitiveColumn[V]) Clone() Column {
	data := make([]V, len(c.data))
	copy(data, c.data)
	return &PrimitiveColumn[V]{kind: c.kind, null: c.null, data: data}
}
