package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		op   Operator
		a, b int
		want bool
	}{
		{OpEqual, 1, 1, true},
		{OpEqual, 1, 2, false},
		{OpNotEqual, 1, 2, true},
		{OpLessThan, 1, 2, true},
		{OpLessThan, 2, 2, false},
		{OpLessEqual, 2, 2, true},
		{OpGreaterThan, 3, 2, true},
		{OpGreaterEqual, 2, 2, true},
		{OpGreaterEqual, 1, 2, false},
		{Operator(99), 1, 1, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Compare(tt.op, tt.a, tt.b), "%d %s %d", tt.a, tt.op, tt.b)
	}
}

func TestParseRoundTrip(t *testing.T) {
	for op := OpEqual; op <= OpGreaterEqual; op++ {
		got, err := ParseOperator(op.String())
		require.NoError(t, err)
		assert.Equal(t, op, got)
	}
	for _, l := range []Layout{LayoutDocument, LayoutColumnar} {
		got, err := ParseLayout(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, got)
	}
	for _, k := range []Kind{KindInt32, KindInt64, KindFloat32, KindFloat64} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseOperator("~")
	assert.Error(t, err)
	_, err = ParseLayout("rows")
	assert.Error(t, err)
	_, err = ParseKind("int8")
	assert.Error(t, err)
	_, err = ParseCompression("brotli")
	assert.Error(t, err)
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "txn-7", TxnID(7).String())
	assert.Equal(t, "Layout(9)", Layout(9).String())
	assert.Equal(t, "invalid", KindInvalid.String())
	assert.Equal(t, "?", Operator(99).String())
	assert.False(t, Operator(99).Valid())
}
