package model

import (
	"cmp"
	"fmt"
)

// Operator is a binary comparison operator.
type Operator uint8

const (
	// OpEqual matches values equal to the operand.
	OpEqual Operator = iota
	// OpNotEqual matches values different from the operand.
	OpNotEqual
	// OpLessThan matches values smaller than the operand.
	OpLessThan
	// OpLessEqual matches values smaller than or equal to the operand.
	OpLessEqual
	// OpGreaterThan matches values greater than the operand.
	OpGreaterThan
	// OpGreaterEqual matches values greater than or equal to the operand.
	OpGreaterEqual
)

// String returns the operator symbol.
func (op Operator) String() string {
	switch op {
	case OpEqual:
		return "=="
	case OpNotEqual:
		return "!="
	case OpLessThan:
		return "<"
	case OpLessEqual:
		return "<="
	case OpGreaterThan:
		return ">"
	case OpGreaterEqual:
		return ">="
	default:
		return "?"
	}
}

// Valid reports whether op is a known operator.
func (op Operator) Valid() bool {
	return op <= OpGreaterEqual
}

// Compare applies op to a and b using their natural ordering.
// Unknown operators never match.
func Compare[V cmp.Ordered](op Operator, a, b V) bool {
	c := cmp.Compare(a, b)
	switch op {
	case OpEqual:
		return c == 0
	case OpNotEqual:
		return c != 0
	case OpLessThan:
		return c < 0
	case OpLessEqual:
		return c <= 0
	case OpGreaterThan:
		return c > 0
	case OpGreaterEqual:
		return c >= 0
	default:
		return false
	}
}

// ParseOperator parses an operator symbol as produced by Operator.String.
func ParseOperator(s string) (Operator, error) {
	switch s {
	case "==", "=":
		return OpEqual, nil
	case "!=":
		return OpNotEqual, nil
	case "<":
		return OpLessThan, nil
	case "<=":
		return OpLessEqual, nil
	case ">":
		return OpGreaterThan, nil
	case ">=":
		return OpGreaterEqual, nil
	default:
		return 0, fmt.Errorf("unknown operator %q", s)
	}
}
