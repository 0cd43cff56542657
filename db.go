package deltadb

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/hupe1980/deltadb/internal/block"
	"github.com/hupe1980/deltadb/internal/delta"
	"github.com/hupe1980/deltadb/internal/mvcc"
	"github.com/hupe1980/deltadb/internal/resource"
	"github.com/hupe1980/deltadb/schema"
)

// Definition registers a typed table with Open. Create one with Define.
type Definition interface {
	tableName() string
	open(db *DB) (table, error)
}

type definition[T any] struct {
	schema schema.Table[T]
}

// Define returns the definition of a table storing documents of type T.
func Define[T any](s schema.Table[T]) Definition {
	return definition[T]{schema: s}
}

func (d definition[T]) tableName() string { return d.schema.Name }

func (d definition[T]) open(db *DB) (table, error) {
	s, err := d.schema.Validate()
	if err != nil {
		return nil, err
	}
	return newTable(db, s), nil
}

// table is the type-erased view of a Table[T].
type table interface {
	Name() string
	docType() string
	newBlock() (block.Block, error)
}

// Stats is a snapshot of database counters.
type Stats struct {
	ID                 string
	Tables             int
	ChainLength        int
	ActiveTransactions int
	Commits            uint64
	Rollbacks          uint64
	CASRetries         uint64
	MemoryUsage        int64
	MemoryLimit        int64
}

// DB is an in-memory transactional database. It is safe for concurrent use.
type DB struct {
	id      uuid.UUID
	opts    options
	logger  *Logger
	metrics MetricsCollector

	mvcc   *mvcc.Controller
	rc     *resource.Controller
	tables map[string]table

	nextRecord atomic.Uint64
	closed     atomic.Bool
}

// Open creates a database with the given tables.
func Open(defs []Definition, optFns ...Option) (*DB, error) {
	opts := applyOptions(optFns)

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate database id: %w", err)
	}

	db := &DB{
		id:      id,
		opts:    opts,
		logger:  opts.logger.WithDatabase(id.String()),
		metrics: opts.metricsCollector,
		tables:  make(map[string]table, len(defs)),
		rc: resource.NewController(resource.Config{
			MemoryLimitBytes:    opts.memoryLimit,
			MaintenanceInterval: opts.maintenanceEvery,
		}),
	}

	for _, def := range defs {
		if def == nil {
			return nil, fmt.Errorf("%w: nil definition", ErrInvalidSchema)
		}
		t, err := def.open(db)
		if err != nil {
			return nil, fmt.Errorf("open table %q: %w", def.tableName(), err)
		}
		if _, dup := db.tables[t.Name()]; dup {
			return nil, fmt.Errorf("%w: duplicate table %q", ErrInvalidSchema, t.Name())
		}
		db.tables[t.Name()] = t
	}

	db.mvcc = mvcc.NewController(db.newBlock)
	db.logger.Info("database opened", "tables", len(db.tables))
	return db, nil
}

func (db *DB) newBlock(name string) (block.Block, error) {
	t, ok := db.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: table %q", ErrNotFound, name)
	}
	return t.newBlock()
}

// ID returns the database instance id.
func (db *DB) ID() string { return db.id.String() }

// GetTable returns the table named name, typed by its document type.
func GetTable[T any](db *DB, name string) (*Table[T], error) {
	t, ok := db.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: table %q", ErrNotFound, name)
	}
	typed, ok := t.(*Table[T])
	if !ok {
		var zero T
		return nil, &TypeMismatchError{Table: name, Want: t.docType(), Got: fmt.Sprintf("%T", zero)}
	}
	return typed, nil
}

// Tables returns the table names in sorted order.
func (db *DB) Tables() []string {
	return slices.Sorted(maps.Keys(db.tables))
}

// CreateTransaction starts a transaction.
func (db *DB) CreateTransaction(ctx context.Context) (*Tx, error) {
	if err := db.checkOpen(ctx); err != nil {
		return nil, err
	}
	db.observe(ctx)

	id, cache := db.mvcc.Create()
	return &Tx{db: db, id: id, cache: cache}, nil
}

// Update runs fn in a new transaction and commits it if fn returns nil.
// Otherwise, or if fn panics, the transaction is rolled back.
func (db *DB) Update(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := db.CreateTransaction(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Close() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Complete(ctx)
}

// View runs fn in a new transaction that is always rolled back.
func (db *DB) View(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := db.CreateTransaction(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Close() }()

	return fn(tx)
}

// Stats returns current database statistics.
func (db *DB) Stats() Stats {
	ms := db.mvcc.Stats()
	return Stats{
		ID:                 db.id.String(),
		Tables:             len(db.tables),
		ChainLength:        ms.ChainLength,
		ActiveTransactions: ms.Active,
		Commits:            ms.Commits,
		Rollbacks:          ms.Rollbacks,
		CASRetries:         ms.Retries,
		MemoryUsage:        db.rc.MemoryUsage(),
		MemoryLimit:        db.rc.MemoryLimit(),
	}
}

// Close marks the database closed. Subsequent transactions and operations
// fail with ErrClosed. Close is idempotent.
func (db *DB) Close() error {
	if db == nil || !db.closed.CompareAndSwap(false, true) {
		return nil
	}
	db.logger.Info("database closed", "chain_length", db.mvcc.Stats().ChainLength)
	return nil
}

func (db *DB) checkOpen(ctx context.Context) error {
	if db.closed.Load() {
		return ErrClosed
	}
	return ctx.Err()
}

// observe runs the maintenance hook if it is due.
func (db *DB) observe(ctx context.Context) {
	if db.opts.maintenance == nil || !db.rc.TryAcquireMaintenance() {
		return
	}
	defer db.rc.ReleaseMaintenance()
	db.opts.maintenance(ctx, db.Stats())
}

// reserve accounts the payload bytes of a delta about to be committed.
func (db *DB) reserve(f *delta.Frozen) (func(), error) {
	n := f.PayloadBytes()
	if err := db.rc.AcquireMemory(n); err != nil {
		return nil, fmt.Errorf("commit %d payload bytes (in use %d of %d): %w",
			n, db.rc.MemoryUsage(), db.rc.MemoryLimit(), err)
	}
	return func() { db.rc.ReleaseMemory(n) }, nil
}
