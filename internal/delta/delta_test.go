package delta

import (
	"testing"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/deltadb/internal/block"
	"github.com/hupe1980/deltadb/model"
)

const table = "users"

func documentFactory(string) (block.Block, error) {
	return block.NewDocument([]string{"name"}, model.CompressionNone), nil
}

func columnarFactory(string) (block.Block, error) {
	return block.NewColumnar(map[string]model.Kind{"age": model.KindInt64})
}

func nameKey(hash uint64) IndexKey {
	return IndexKey{Table: table, Property: "name", Hash: hash}
}

// put appends a record with its name index entry, the way a table does.
func put(t *testing.T, l *Log, id model.RecordID, hash uint64) {
	t.Helper()
	require.NoError(t, l.AppendRecord(table, block.Record{
		ID:      id,
		Payload: []byte{byte(id)},
		Values:  map[string]any{"name": hash},
	}))
	require.NoError(t, l.AppendIndexEntry(nameKey(hash), id))
}

// remove deletes a record with its name index entry, the way a table does.
func remove(t *testing.T, l *Log, id model.RecordID, hash uint64) {
	t.Helper()
	require.NoError(t, l.DeleteRecord(table, id))
	require.NoError(t, l.DeleteIndexEntry(nameKey(hash), id))
}

func ids(bm *roaring64.Bitmap) []uint64 {
	return bm.ToArray()
}

func TestLog_EmptyFreeze(t *testing.T) {
	l := NewLog(documentFactory)
	assert.True(t, l.IsEmpty())

	f := l.Freeze()
	assert.True(t, f.IsEmpty())
	assert.Same(t, f, l.Freeze())
}

func TestLog_FrozenRejectsMutation(t *testing.T) {
	l := NewLog(documentFactory)
	put(t, l, 1, 7)
	f := l.Freeze()

	err := l.AppendRecord(table, block.Record{ID: 2, Values: map[string]any{"name": uint64(7)}})
	assert.ErrorIs(t, err, model.ErrInvalidState)
	assert.ErrorIs(t, l.DeleteRecord(table, 1), model.ErrInvalidState)
	assert.ErrorIs(t, l.AppendIndexEntry(nameKey(7), 2), model.ErrInvalidState)
	assert.ErrorIs(t, l.DeleteIndexEntry(nameKey(7), 1), model.ErrInvalidState)

	assert.Equal(t, 1, f.RecordCount())
	assert.Equal(t, int64(1), f.PayloadBytes())
}

func TestLog_DeleteOwnRecordCompacts(t *testing.T) {
	l := NewLog(documentFactory)
	put(t, l, 1, 7)
	put(t, l, 2, 7)
	put(t, l, 3, 8)

	require.NoError(t, l.DeleteRecords(table, []model.RecordID{3, 1}))
	require.NoError(t, l.DeleteIndexEntry(nameKey(7), 1))
	require.NoError(t, l.DeleteIndexEntry(nameKey(8), 3))

	b := l.Block(table)
	require.NotNil(t, b)
	assert.Equal(t, 1, b.RecordCount())
	id, err := b.ID(0)
	require.NoError(t, err)
	assert.Equal(t, model.RecordID(2), id)

	assert.True(t, l.Deleted().IsEmpty(), "own records are not tombstoned")
	assert.Nil(t, l.DeletedIndex(nameKey(7)))
	assert.Equal(t, []uint64{2}, ids(l.Index(nameKey(7))))
}

func TestLog_UndoneAdditionsLeaveLogEmpty(t *testing.T) {
	l := NewLog(documentFactory)
	put(t, l, 1, 7)
	remove(t, l, 1, 7)

	assert.True(t, l.IsEmpty())
	assert.True(t, l.Freeze().IsEmpty())
}

func TestLog_DeleteForeignRecordTombstones(t *testing.T) {
	l := NewLog(documentFactory)
	remove(t, l, 42, 7)

	assert.False(t, l.IsEmpty())
	assert.Equal(t, []uint64{42}, ids(l.Deleted()))
	assert.Equal(t, []uint64{42}, ids(l.DeletedIndex(nameKey(7))))
}

func TestLog_AppendFailureLeavesLogUnchanged(t *testing.T) {
	l := NewLog(documentFactory)
	err := l.AppendRecord(table, block.Record{ID: 1, Values: map[string]any{"name": "not-a-hash"}})
	require.ErrorIs(t, err, model.ErrTypeMismatch)
	assert.True(t, l.IsEmpty())
}

func TestLog_FreezeDecouplesBlocks(t *testing.T) {
	l := NewLog(documentFactory)
	put(t, l, 1, 7)
	f := l.Freeze()

	// The live block is private to the log; the frozen copy must not follow it.
	l.Block(table).DeleteRecords([]int{0})
	assert.Equal(t, 1, f.Block(table).RecordCount())
}

func commit(c *Chain, l *Log) *Chain {
	return c.Append(l.Freeze())
}

func TestChain_AppendDoesNotAlias(t *testing.T) {
	base := EmptyChain
	a := NewLog(documentFactory)
	b := NewLog(documentFactory)
	put(t, a, 1, 7)
	put(t, b, 2, 7)

	ca := commit(base, a)
	cb := commit(base, b)

	assert.Equal(t, 0, base.Len())
	require.Equal(t, 1, ca.Len())
	require.Equal(t, 1, cb.Len())
	assert.NotSame(t, ca.Layer(0), cb.Layer(0))
}

func TestChain_ResolveEqualMergeOrder(t *testing.T) {
	chain := EmptyChain

	// Layer 0 adds record 1 under hash 7.
	l0 := NewLog(documentFactory)
	put(t, l0, 1, 7)
	chain = commit(chain, l0)

	// Layer 1 deletes record 1.
	l1 := NewLog(documentFactory)
	remove(t, l1, 1, 7)
	chain = commit(chain, l1)

	// Layer 2 re-adds the same hash with a new record.
	l2 := NewLog(documentFactory)
	put(t, l2, 2, 7)
	chain = commit(chain, l2)

	got := chain.ResolveEqual(nil, nameKey(7))
	assert.Equal(t, []uint64{2}, ids(got), "record deleted in layer 1 must not resurface")

	assert.Equal(t, []uint64{2}, ids(chain.Universe(nil, table)))
}

func TestChain_CurrentLogConsultedLast(t *testing.T) {
	chain := EmptyChain
	l0 := NewLog(documentFactory)
	put(t, l0, 1, 7)
	put(t, l0, 2, 7)
	chain = commit(chain, l0)

	current := NewLog(documentFactory)
	remove(t, current, 1, 7)
	put(t, current, 3, 7)

	assert.Equal(t, []uint64{2, 3}, ids(chain.ResolveEqual(current, nameKey(7))))
	assert.Equal(t, []uint64{1, 2}, ids(chain.ResolveEqual(nil, nameKey(7))))
}

func TestChain_Fetch(t *testing.T) {
	chain := EmptyChain
	l0 := NewLog(documentFactory)
	put(t, l0, 1, 7)
	put(t, l0, 2, 8)
	chain = commit(chain, l0)

	current := NewLog(documentFactory)
	put(t, current, 3, 7)

	entries, err := chain.Fetch(current, table, roaring64.BitmapOf(1, 3), nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.RecordID(1), entries[0].ID)
	assert.Equal(t, []byte{1}, entries[0].Payload)
	assert.Equal(t, model.RecordID(3), entries[1].ID)
}

func TestChain_FetchDataIntegrity(t *testing.T) {
	chain := EmptyChain
	l0 := NewLog(documentFactory)
	put(t, l0, 1, 7)
	chain = commit(chain, l0)

	_, err := chain.Fetch(nil, table, roaring64.BitmapOf(1, 99), nil)
	assert.ErrorIs(t, err, model.ErrDataIntegrity)
}

func TestChain_FetchPushdown(t *testing.T) {
	l := NewLog(columnarFactory)
	for i, age := range []int64{10, 20, 30} {
		require.NoError(t, l.AppendRecord(table, block.Record{
			ID:      model.RecordID(i + 1),
			Payload: []byte{byte(age)},
			Values:  map[string]any{"age": age},
		}))
	}
	chain := commit(EmptyChain, l)
	all := chain.Universe(nil, table)

	entries, err := chain.Fetch(nil, table, all, []model.Condition{
		{Property: "age", Op: model.OpGreaterThan, Value: int64(15)},
		{Property: "name", Op: model.OpEqual, Value: uint64(1), Hashed: true}, // not answerable by columnar
		{Property: "unknown", Op: model.OpEqual, Value: int64(1)},            // skipped
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.RecordID(2), entries[0].ID)
	assert.Equal(t, model.RecordID(3), entries[1].ID)

	_, err = chain.Fetch(nil, table, all, []model.Condition{
		{Property: "age", Op: model.OpGreaterThan, Value: 15},
	})
	assert.ErrorIs(t, err, model.ErrTypeMismatch)
}
