package predicate

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/deltadb/model"
	"github.com/hupe1980/deltadb/schema"
)

// Entry is a decoded record presented to Matches.
type Entry struct {
	ID  model.RecordID
	Doc any
}

// Predicate is a node of the predicate tree.
type Predicate interface {
	fmt.Stringer
	// Matches reports whether e satisfies the predicate.
	Matches(e Entry) (bool, error)
}

// Primitive is a leaf that can be resolved to a candidate id set.
// Implementations must be comparable; Simplify locates them by identity.
type Primitive interface {
	Predicate
	// Property names the property the primitive constrains.
	Property() string
}

// IndexEqual matches documents whose index key equals Key.
type IndexEqual[T any] struct {
	index schema.Index[T]
	key   any
	hash  uint64
}

var _ Primitive = (*IndexEqual[struct{}])(nil)

// Eq returns the primitive index.Key(doc) == key.
func Eq[T any](index schema.Index[T], key any) *IndexEqual[T] {
	return &IndexEqual[T]{index: index, key: key, hash: index.HashOf(key)}
}

// Property implements Primitive.
func (p *IndexEqual[T]) Property() string { return p.index.Property }

// Hash returns the index hash of the key.
func (p *IndexEqual[T]) Hash() uint64 { return p.hash }

// Matches implements Predicate.
func (p *IndexEqual[T]) Matches(e Entry) (bool, error) {
	doc, err := docOf[T](e)
	if err != nil {
		return false, err
	}
	return schema.KeyEqual(p.index.Key(doc), p.key), nil
}

func (p *IndexEqual[T]) String() string {
	return fmt.Sprintf("%s == %s", p.index.Property, formatValue(p.key))
}

// Compare is a verification leaf comparing an extracted field to a value.
// Conditions exposes it for pushdown into columnar blocks holding a column
// named like the property.
type Compare struct {
	property string
	op       model.Operator
	value    any
	match    func(doc any) (bool, error)
}

// Field returns the verification leaf get(doc) op value.
func Field[T any, V cmp.Ordered](property string, get func(T) V, op model.Operator, value V) *Compare {
	return &Compare{
		property: property,
		op:       op,
		value:    value,
		match: func(doc any) (bool, error) {
			d, ok := doc.(T)
			if !ok {
				return false, fmt.Errorf("%w: %s: document is %T", model.ErrTypeMismatch, property, doc)
			}
			return model.Compare(op, get(d), value), nil
		},
	}
}

// Property returns the compared property.
func (c *Compare) Property() string { return c.property }

// Op returns the comparison operator.
func (c *Compare) Op() model.Operator { return c.op }

// Value returns the compared value.
func (c *Compare) Value() any { return c.value }

// Matches implements Predicate.
func (c *Compare) Matches(e Entry) (bool, error) {
	if !c.op.Valid() {
		return false, fmt.Errorf("%w: operator %d", model.ErrNotSupported, c.op)
	}
	return c.match(e.Doc)
}

func (c *Compare) String() string {
	return fmt.Sprintf("%s %s %s", c.property, c.op, formatValue(c.value))
}

// And matches when every child matches. An And without children matches
// everything.
type And struct {
	children []Predicate
}

// NewAnd returns the conjunction of children.
func NewAnd(children ...Predicate) *And {
	return &And{children: children}
}

// All returns the predicate matching every record.
func All() *And { return &And{} }

// Children returns the operands.
func (a *And) Children() []Predicate { return a.children }

// Matches implements Predicate.
func (a *And) Matches(e Entry) (bool, error) {
	for _, c := range a.children {
		ok, err := c.Matches(e)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (a *And) String() string {
	if len(a.children) == 0 {
		return "TRUE"
	}
	return join(a.children, " AND ")
}

// Or matches when any child matches. An Or without children matches
// nothing.
type Or struct {
	children []Predicate
}

// NewOr returns the disjunction of children.
func NewOr(children ...Predicate) *Or {
	return &Or{children: children}
}

// Children returns the operands.
func (o *Or) Children() []Predicate { return o.children }

// Matches implements Predicate.
func (o *Or) Matches(e Entry) (bool, error) {
	for _, c := range o.children {
		ok, err := c.Matches(e)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (o *Or) String() string {
	if len(o.children) == 0 {
		return "FALSE"
	}
	return join(o.children, " OR ")
}

// Not negates its child.
type Not struct {
	child Predicate
}

// NewNot returns the negation of child.
func NewNot(child Predicate) *Not {
	return &Not{child: child}
}

// Child returns the operand.
func (n *Not) Child() Predicate { return n.child }

// Matches implements Predicate.
func (n *Not) Matches(e Entry) (bool, error) {
	ok, err := n.child.Matches(e)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (n *Not) String() string {
	return "NOT " + n.child.String()
}

// Result is a resolved candidate set.
type Result struct {
	ids *roaring64.Bitmap
}

// NewResult wraps ids. The bitmap must not be modified afterwards.
func NewResult(ids *roaring64.Bitmap) *Result {
	if ids == nil {
		ids = roaring64.New()
	}
	return &Result{ids: ids}
}

// IDs returns the candidate set.
func (r *Result) IDs() *roaring64.Bitmap { return r.ids }

// Matches implements Predicate.
func (r *Result) Matches(e Entry) (bool, error) {
	return r.ids.Contains(uint64(e.ID)), nil
}

func (r *Result) String() string {
	return fmt.Sprintf("RESULT[%d]", r.ids.GetCardinality())
}

func docOf[T any](e Entry) (T, error) {
	doc, ok := e.Doc.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: want %T, got %T", model.ErrTypeMismatch, zero, e.Doc)
	}
	return doc, nil
}

func join(children []Predicate, sep string) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

func formatValue(v any) string {
	switch v := v.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case []byte:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
