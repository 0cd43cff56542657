package deltadb

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/deltadb/internal/mvcc"
	"github.com/hupe1980/deltadb/model"
)

// Tx is a transaction handle. A Tx must be used by one goroutine at a time.
//
// A Tx ends with Complete or Rollback; afterwards every use fails with
// ErrInvalidState. Close rolls back a Tx that has not ended, so
//
//	defer tx.Close()
//
// is always safe.
type Tx struct {
	db    *DB
	id    model.TxnID
	cache *mvcc.TransactionCache
	done  bool
}

// ID returns the transaction id.
func (tx *Tx) ID() model.TxnID { return tx.id }

// Complete commits the transaction. If it fails with ErrMemoryLimitExceeded
// the transaction stays active and must still be rolled back or closed.
func (tx *Tx) Complete(ctx context.Context) error {
	if err := tx.check(); err != nil {
		return err
	}
	start := time.Now()
	f, err := tx.db.mvcc.Complete(tx.id, tx.db.reserve)
	extended := f != nil
	tx.db.metrics.RecordCommit(extended, time.Since(start), err)
	var records, deleted int
	if extended {
		records, deleted = f.RecordCount(), f.DeletedCount()
	}
	tx.db.logger.LogCommit(ctx, tx.id, extended, records, deleted, err)
	if err != nil {
		return err
	}
	tx.done = true
	tx.db.observe(ctx)
	return nil
}

// Rollback discards the transaction's changes.
func (tx *Tx) Rollback() error {
	if err := tx.check(); err != nil {
		return err
	}
	tx.done = true
	err := tx.db.mvcc.Rollback(tx.id)
	tx.db.metrics.RecordRollback(err)
	tx.db.logger.LogRollback(context.Background(), tx.id, err)
	return err
}

// Close rolls the transaction back unless it has already ended.
func (tx *Tx) Close() error {
	if tx == nil || tx.done {
		return nil
	}
	return tx.Rollback()
}

func (tx *Tx) check() error {
	if tx.done {
		return fmt.Errorf("%w: %s has ended", ErrInvalidState, tx.id)
	}
	return nil
}
