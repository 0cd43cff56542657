package deltadb

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"golang.org/x/text/unicode/norm"

	"github.com/hupe1980/deltadb/internal/block"
	"github.com/hupe1980/deltadb/internal/delta"
	"github.com/hupe1980/deltadb/internal/mvcc"
	"github.com/hupe1980/deltadb/model"
	"github.com/hupe1980/deltadb/predicate"
	"github.com/hupe1980/deltadb/schema"
)

// Table is a typed table of documents of type T.
type Table[T any] struct {
	db     *DB
	schema schema.Table[T]
	logger *Logger

	columns    map[string]model.Kind
	properties []string
}

func newTable[T any](db *DB, s schema.Table[T]) *Table[T] {
	return &Table[T]{
		db:         db,
		schema:     s,
		logger:     db.logger.WithTable(s.Name),
		columns:    s.ColumnKinds(),
		properties: s.Properties(),
	}
}

// Name returns the table name.
func (t *Table[T]) Name() string { return t.schema.Name }

// Layout returns the storage layout of the table.
func (t *Table[T]) Layout() model.Layout { return t.schema.Layout }

// Index returns the declared index named property, for use with
// predicate.Eq.
func (t *Table[T]) Index(property string) (schema.Index[T], bool) {
	return t.schema.Index(norm.NFC.String(property))
}

// PrimaryKey returns the primary key index.
func (t *Table[T]) PrimaryKey() schema.Index[T] { return t.schema.PrimaryKey() }

func (t *Table[T]) docType() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}

func (t *Table[T]) newBlock() (block.Block, error) {
	compression := t.db.opts.compression
	if t.schema.Layout == model.LayoutColumnar {
		compression = model.CompressionNone
	}
	return block.New(t.schema.Layout, t.columns, t.properties, compression)
}

// Query returns the documents matching p in record id order. A nil p
// matches every document.
func (t *Table[T]) Query(ctx context.Context, p predicate.Predicate, tx *Tx) ([]T, error) {
	start := time.Now()
	var docs []T
	err := t.run(ctx, tx, func(tx *Tx) error {
		recs, err := t.query(ctx, p, tx.cache)
		if err != nil {
			return err
		}
		docs = make([]T, len(recs))
		for i, r := range recs {
			docs[i] = r.doc
		}
		return nil
	})
	t.db.metrics.RecordQuery(len(docs), time.Since(start), err)
	t.logger.LogQuery(ctx, describe(p), len(docs), err)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// Count returns the number of documents matching p.
func (t *Table[T]) Count(ctx context.Context, p predicate.Predicate, tx *Tx) (int, error) {
	start := time.Now()
	n := 0
	err := t.run(ctx, tx, func(tx *Tx) error {
		recs, err := t.query(ctx, p, tx.cache)
		n = len(recs)
		return err
	})
	t.db.metrics.RecordQuery(n, time.Since(start), err)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Append stores doc, replacing any document with the same primary key.
func (t *Table[T]) Append(ctx context.Context, doc T, tx *Tx) error {
	start := time.Now()
	var (
		id       model.RecordID
		replaced int
	)
	err := t.run(ctx, tx, func(tx *Tx) error {
		var err error
		id, replaced, err = t.append(ctx, doc, tx.cache)
		return err
	})
	t.db.metrics.RecordAppend(time.Since(start), err)
	t.logger.LogAppend(ctx, id, replaced, err)
	return err
}

// Delete removes the documents matching p and returns how many it removed.
func (t *Table[T]) Delete(ctx context.Context, p predicate.Predicate, tx *Tx) (int, error) {
	start := time.Now()
	n := 0
	err := t.run(ctx, tx, func(tx *Tx) error {
		recs, err := t.query(ctx, p, tx.cache)
		if err != nil {
			return err
		}
		if err := t.remove(tx.cache.Log, recs); err != nil {
			return err
		}
		n = len(recs)
		return nil
	})
	t.db.metrics.RecordDelete(n, time.Since(start), err)
	t.logger.LogDelete(ctx, describe(p), n, err)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// run executes fn in tx, or in an implicit transaction if tx is nil. The
// implicit transaction commits if fn succeeds and rolls back on error or
// panic.
func (t *Table[T]) run(ctx context.Context, tx *Tx, fn func(tx *Tx) error) (err error) {
	if tx != nil {
		if tx.db != t.db {
			return fmt.Errorf("%w: %s belongs to another database", ErrInvalidState, tx.id)
		}
		if err := tx.check(); err != nil {
			return err
		}
		if err := t.db.checkOpen(ctx); err != nil {
			return err
		}
		t.db.observe(ctx)
		return fn(tx)
	}

	tx, err = t.db.CreateTransaction(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Close()
			panic(r)
		}
		if err == nil {
			err = tx.Complete(ctx)
		}
		if err != nil {
			_ = tx.Close()
		}
	}()
	return fn(tx)
}

type record[T any] struct {
	id  model.RecordID
	doc T
}

// query resolves p to candidates, fetches and decodes them and keeps the
// documents p matches.
func (t *Table[T]) query(ctx context.Context, p predicate.Predicate, cache *mvcc.TransactionCache) ([]record[T], error) {
	if p == nil {
		p = predicate.All()
	}
	ids, err := t.resolve(p, cache)
	if err != nil {
		return nil, err
	}
	if ids.IsEmpty() {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := cache.Chain.Fetch(cache.Log, t.schema.Name, ids, predicate.Conditions(p))
	if err != nil {
		return nil, err
	}

	out := make([]record[T], 0, len(entries))
	for _, e := range entries {
		var doc T
		if err := t.db.opts.codec.Unmarshal(e.Payload, &doc); err != nil {
			return nil, fmt.Errorf("decode record %d of table %q: %w", e.ID, t.schema.Name, err)
		}
		ok, err := p.Matches(predicate.Entry{ID: e.ID, Doc: doc})
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, record[T]{id: e.ID, doc: doc})
		}
	}
	slices.SortFunc(out, func(a, b record[T]) int { return cmp.Compare(a.id, b.id) })
	return out, nil
}

// resolve narrows p to a candidate id set by resolving its index
// primitives left to right.
func (t *Table[T]) resolve(p predicate.Predicate, cache *mvcc.TransactionCache) (*roaring64.Bitmap, error) {
	hadResult := predicate.HasResult(p)
	if predicate.FirstPrimitive(p) == nil && !hadResult {
		return cache.Chain.Universe(cache.Log, t.schema.Name), nil
	}

	resolved := p
	for prim := predicate.FirstPrimitive(resolved); prim != nil; prim = predicate.FirstPrimitive(resolved) {
		eq, ok := prim.(*predicate.IndexEqual[T])
		if !ok {
			return nil, fmt.Errorf("%w: primitive %T (%s)", ErrNotSupported, prim, prim)
		}
		property := norm.NFC.String(eq.Property())
		if _, ok := t.schema.Index(property); !ok {
			return nil, fmt.Errorf("%w: table %q has no index %q", ErrNotSupported, t.schema.Name, eq.Property())
		}
		key := delta.IndexKey{Table: t.schema.Name, Property: property, Hash: eq.Hash()}

		var err error
		resolved, err = predicate.Simplify(resolved, prim, cache.Chain.ResolveEqual(cache.Log, key))
		if err != nil {
			return nil, err
		}
	}

	r, ok := predicate.Reduce(resolved).(*predicate.Result)
	if !ok {
		return nil, fmt.Errorf("%w: %s does not resolve to a candidate set", ErrNotSupported, p)
	}
	if hadResult {
		// Caller-supplied results may name records outside this table.
		return roaring64.And(r.IDs(), cache.Chain.Universe(cache.Log, t.schema.Name)), nil
	}
	return r.IDs(), nil
}

// append queries the documents doc replaces, then writes doc and removes
// them. Every failing step runs before the log is changed.
func (t *Table[T]) append(ctx context.Context, doc T, cache *mvcc.TransactionCache) (model.RecordID, int, error) {
	pk := t.schema.PrimaryKey()
	existing, err := t.query(ctx, predicate.Eq(pk, pk.Key(doc)), cache)
	if err != nil {
		return 0, 0, err
	}
	payload, err := t.db.opts.codec.Marshal(doc)
	if err != nil {
		return 0, 0, fmt.Errorf("encode document for table %q: %w", t.schema.Name, err)
	}

	id := model.RecordID(t.db.nextRecord.Add(1))
	rec := block.Record{ID: id, Payload: payload, Values: t.schema.Values(doc)}
	if err := cache.Log.AppendRecord(t.schema.Name, rec); err != nil {
		return 0, 0, err
	}
	for _, ix := range t.schema.Indexes {
		if err := cache.Log.AppendIndexEntry(t.indexKey(ix, doc), id); err != nil {
			return 0, 0, err
		}
	}
	if err := t.remove(cache.Log, existing); err != nil {
		return 0, 0, err
	}
	return id, len(existing), nil
}

// remove tombstones recs and their index entries.
func (t *Table[T]) remove(log *delta.Log, recs []record[T]) error {
	if len(recs) == 0 {
		return nil
	}
	ids := make([]model.RecordID, len(recs))
	for i, r := range recs {
		ids[i] = r.id
	}
	if err := log.DeleteRecords(t.schema.Name, ids); err != nil {
		return err
	}
	for _, r := range recs {
		for _, ix := range t.schema.Indexes {
			if err := log.DeleteIndexEntry(t.indexKey(ix, r.doc), r.id); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *Table[T]) indexKey(ix schema.Index[T], doc T) delta.IndexKey {
	return delta.IndexKey{Table: t.schema.Name, Property: ix.Property, Hash: ix.DocHash(doc)}
}

func describe(p predicate.Predicate) string {
	if p == nil {
		return predicate.All().String()
	}
	return p.String()
}
