package predicate

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/deltadb/model"
)

// FirstPrimitive returns the left-most unresolved primitive of p, or nil.
func FirstPrimitive(p Predicate) Primitive {
	switch n := p.(type) {
	case *Compare, *Result:
		return nil
	case *And:
		return firstOf(n.children)
	case *Or:
		return firstOf(n.children)
	case *Not:
		return FirstPrimitive(n.child)
	case Primitive:
		return n
	}
	return nil
}

func firstOf(children []Predicate) Primitive {
	for _, c := range children {
		if prim := FirstPrimitive(c); prim != nil {
			return prim
		}
	}
	return nil
}

// HasResult reports whether p contains a Result node.
func HasResult(p Predicate) bool {
	switch n := p.(type) {
	case *Result:
		return true
	case *And:
		return anyResult(n.children)
	case *Or:
		return anyResult(n.children)
	case *Not:
		return HasResult(n.child)
	}
	return false
}

func anyResult(children []Predicate) bool {
	for _, c := range children {
		if HasResult(c) {
			return true
		}
	}
	return false
}

// Simplify returns p with prim replaced by a Result over ids, collapsing
// composites whose children are now resolved. It fails with ErrNotSupported
// if prim is not a node of p.
func Simplify(p Predicate, prim Primitive, ids *roaring64.Bitmap) (Predicate, error) {
	out, found := replace(p, prim, NewResult(ids))
	if !found {
		return nil, fmt.Errorf("%w: primitive %s is not part of %s", model.ErrNotSupported, prim, p)
	}
	return out, nil
}

func replace(p Predicate, target Primitive, r *Result) (Predicate, bool) {
	if prim, ok := p.(Primitive); ok && prim == target {
		return r, true
	}
	switch n := p.(type) {
	case *And:
		children, found := replaceIn(n.children, target, r)
		if !found {
			return p, false
		}
		return collapseAnd(children), true
	case *Or:
		children, found := replaceIn(n.children, target, r)
		if !found {
			return p, false
		}
		return collapseOr(children), true
	case *Not:
		child, found := replace(n.child, target, r)
		if !found {
			return p, false
		}
		return &Not{child: child}, true
	}
	return p, false
}

func replaceIn(children []Predicate, target Primitive, r *Result) ([]Predicate, bool) {
	for i, c := range children {
		next, found := replace(c, target, r)
		if !found {
			continue
		}
		out := make([]Predicate, len(children))
		copy(out, children)
		out[i] = next
		return out, true
	}
	return children, false
}

// Reduce collapses every resolvable composite of p bottom-up.
func Reduce(p Predicate) Predicate {
	switch n := p.(type) {
	case *And:
		children := make([]Predicate, len(n.children))
		for i, c := range n.children {
			children[i] = Reduce(c)
		}
		return collapseAnd(children)
	case *Or:
		children := make([]Predicate, len(n.children))
		for i, c := range n.children {
			children[i] = Reduce(c)
		}
		return collapseOr(children)
	case *Not:
		return &Not{child: Reduce(n.child)}
	}
	return p
}

// collapseAnd intersects the Results of children when every other child is
// verification only. Verification leaves are re-checked after fetch, so
// dropping them here only widens the candidate set.
func collapseAnd(children []Predicate) Predicate {
	var results []*Result
	for _, c := range children {
		if r, ok := c.(*Result); ok {
			results = append(results, r)
			continue
		}
		if FirstPrimitive(c) != nil || HasResult(c) {
			return &And{children: children}
		}
	}
	if len(results) == 0 {
		return &And{children: children}
	}
	ids := results[0].ids.Clone()
	for _, r := range results[1:] {
		ids.And(r.ids)
	}
	return &Result{ids: ids}
}

// collapseOr unions children when all of them are Results.
func collapseOr(children []Predicate) Predicate {
	if len(children) == 0 {
		return &Or{children: children}
	}
	ids := roaring64.New()
	for _, c := range children {
		r, ok := c.(*Result)
		if !ok {
			return &Or{children: children}
		}
		ids.Or(r.ids)
	}
	return &Result{ids: ids}
}

// Conditions returns the top-level conjuncts of p that storage blocks may
// evaluate. Conjuncts under Or or Not are never returned.
func Conditions(p Predicate) []model.Condition {
	var out []model.Condition
	var walk func(Predicate)
	walk = func(p Predicate) {
		switch n := p.(type) {
		case *And:
			for _, c := range n.children {
				walk(c)
			}
		case *Compare:
			if n.op.Valid() {
				out = append(out, model.Condition{Property: n.property, Op: n.op, Value: n.value})
			}
		case hashed:
			out = append(out, model.Condition{Property: n.Property(), Op: model.OpEqual, Value: n.Hash(), Hashed: true})
		}
	}
	walk(p)
	return out
}

// hashed is implemented by IndexEqual for every document type.
type hashed interface {
	Primitive
	Hash() uint64
}
