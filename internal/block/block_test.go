package block

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/deltadb/model"
)

func TestCompact(t *testing.T) {
	s := []int{0, 1, 2, 3, 4, 5}
	s = compact(s, []int{0, 3, 5})
	assert.Equal(t, []int{1, 2, 4}, s)

	s = compact(s, nil)
	assert.Equal(t, []int{1, 2, 4}, s)
}

func TestColumnar_AppendGetFilter(t *testing.T) {
	b, err := NewColumnar(map[string]model.Kind{"age": model.KindInt32})
	require.NoError(t, err)

	for i, age := range []int32{1, 5, 5, 9} {
		require.NoError(t, b.Append(Record{
			ID:      model.RecordID(i + 1),
			Payload: []byte{byte(i)},
			Values:  map[string]any{"age": age},
		}))
	}

	assert.Equal(t, 4, b.RecordCount())

	slots, err := b.Filter("age", model.OpGreaterEqual, int32(5))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, slots)

	_, err = b.Filter("missing", model.OpEqual, int32(5))
	assert.ErrorIs(t, err, model.ErrNotSupported)

	payload, err := b.Get(3)
	require.NoError(t, err)
	assert.Equal(t, []byte{3}, payload)

	_, err = b.Get(4)
	assert.ErrorIs(t, err, model.ErrOutOfRange)
}

func TestColumnar_AppendFailureLeavesBlockUnchanged(t *testing.T) {
	b, err := NewColumnar(map[string]model.Kind{
		"a": model.KindInt64,
		"b": model.KindFloat64,
	})
	require.NoError(t, err)
	require.NoError(t, b.Append(Record{ID: 1, Values: map[string]any{"a": int64(1), "b": 1.5}}))

	err = b.Append(Record{ID: 2, Values: map[string]any{"a": int64(2), "b": "oops"}})
	require.ErrorIs(t, err, model.ErrTypeMismatch)

	assert.Equal(t, 1, b.RecordCount())
	col, _ := b.Column("a")
	assert.Equal(t, 1, col.RecordCount())
}

func TestColumnar_DeleteRecordsPreservesIdentity(t *testing.T) {
	b, err := NewColumnar(map[string]model.Kind{"v": model.KindInt64})
	require.NoError(t, err)
	for i := range 4 {
		require.NoError(t, b.Append(Record{
			ID:      model.RecordID(100 + i),
			Payload: []byte{byte(i)},
			Values:  map[string]any{"v": int64(i)},
		}))
	}

	b.DeleteRecords([]int{0, 2})

	require.Equal(t, 2, b.RecordCount())
	id0, err := b.ID(0)
	require.NoError(t, err)
	id1, err := b.ID(1)
	require.NoError(t, err)
	assert.Equal(t, model.RecordID(101), id0)
	assert.Equal(t, model.RecordID(103), id1)

	slot, ok := b.Slot(103)
	assert.True(t, ok)
	assert.Equal(t, 1, slot)
	_, ok = b.Slot(100)
	assert.False(t, ok)

	p, err := b.Get(1)
	require.NoError(t, err)
	assert.Equal(t, []byte{3}, p)
}

func TestColumnar_RejectsDescendingIDs(t *testing.T) {
	b, err := NewColumnar(nil)
	require.NoError(t, err)
	require.NoError(t, b.Append(Record{ID: 5}))
	assert.Error(t, b.Append(Record{ID: 5}))
}

func TestDocument_FilterAndDelete(t *testing.T) {
	b := NewDocument([]string{"name", "city"}, model.CompressionNone)

	add := func(id model.RecordID, name, city uint64) {
		require.NoError(t, b.Append(Record{
			ID:      id,
			Payload: []byte{byte(id)},
			Values:  map[string]any{"name": name, "city": city},
		}))
	}
	add(1, 10, 7)
	add(2, 20, 7)
	add(3, 30, 8)
	add(4, 20, 8)

	slots, err := b.Filter("name", model.OpEqual, uint64(20))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, slots)

	slots, err = b.Filter("city", model.OpNotEqual, uint64(7))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, slots)

	_, err = b.Filter("city", model.OpLessThan, uint64(7))
	assert.ErrorIs(t, err, model.ErrNotSupported)
	_, err = b.Filter("city", model.OpEqual, 7)
	assert.ErrorIs(t, err, model.ErrTypeMismatch)
	_, err = b.Filter("zip", model.OpEqual, uint64(7))
	assert.ErrorIs(t, err, model.ErrNotSupported)

	b.DeleteRecords([]int{1})

	slots, err = b.Filter("name", model.OpEqual, uint64(20))
	require.NoError(t, err)
	assert.Equal(t, []int{2}, slots)
	assert.Equal(t, uint64(1), b.Lookup("name", 20).GetCardinality())

	b.DeleteRecords([]int{2})
	assert.Nil(t, b.Lookup("name", 20))
}

func TestDocument_AppendRequiresHashes(t *testing.T) {
	b := NewDocument([]string{"name"}, model.CompressionNone)

	err := b.Append(Record{ID: 1, Values: map[string]any{}})
	assert.ErrorIs(t, err, model.ErrTypeMismatch)
	assert.Equal(t, 0, b.RecordCount())
}

func TestDocument_Compression(t *testing.T) {
	payload := bytes.Repeat([]byte(`{"name":"deltadb","tags":["a","b"]}`), 64)
	small := []byte(`{}`)

	for _, c := range []model.Compression{model.CompressionNone, model.CompressionLZ4, model.CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			b := NewDocument(nil, c)
			require.NoError(t, b.Append(Record{ID: 1, Payload: payload}))
			require.NoError(t, b.Append(Record{ID: 2, Payload: small}))

			got, err := b.Get(0)
			require.NoError(t, err)
			assert.Equal(t, payload, got)

			got, err = b.Get(1)
			require.NoError(t, err)
			assert.Equal(t, small, got)

			if c != model.CompressionNone {
				assert.Less(t, len(b.payloads[0]), len(payload))
			}
		})
	}
}

func TestDocument_CloneIsIndependent(t *testing.T) {
	b := NewDocument([]string{"k"}, model.CompressionNone)
	require.NoError(t, b.Append(Record{ID: 1, Values: map[string]any{"k": uint64(1)}}))
	require.NoError(t, b.Append(Record{ID: 2, Values: map[string]any{"k": uint64(1)}}))

	clone := b.Clone().(*Document)
	b.DeleteRecords([]int{0})

	assert.Equal(t, 2, clone.RecordCount())
	assert.Equal(t, uint64(2), clone.Lookup("k", 1).GetCardinality())
	assert.Equal(t, uint64(1), b.Lookup("k", 1).GetCardinality())
}

func TestNew(t *testing.T) {
	b, err := New(model.LayoutColumnar, map[string]model.Kind{"x": model.KindInt32}, nil, model.CompressionNone)
	require.NoError(t, err)
	assert.Equal(t, model.LayoutColumnar, b.Layout())

	b, err = New(model.LayoutDocument, nil, []string{"x"}, model.CompressionLZ4)
	require.NoError(t, err)
	assert.Equal(t, model.LayoutDocument, b.Layout())

	_, err = New(model.Layout(9), nil, nil, model.CompressionNone)
	assert.ErrorIs(t, err, model.ErrNotSupported)
}
