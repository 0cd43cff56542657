// Package deltadb provides an embeddable, in-memory transactional table engine.
//
// Tables store typed documents, maintain hash indexes over them and answer
// predicate queries under snapshot isolation.
//
// # Quick Start
//
//	users := schema.Table[User]{
//	    Name: "users",
//	    Indexes: []schema.Index[User]{
//	        {Property: "id", Key: func(u User) any { return u.ID }},
//	        {Property: "email", Key: func(u User) any { return u.Email }},
//	    },
//	}
//
//	db, _ := deltadb.Open([]deltadb.Definition{deltadb.Define(users)})
//	defer db.Close()
//
//	tbl, _ := deltadb.GetTable[User](db, "users")
//	_ = tbl.Append(ctx, User{ID: 1, Email: "a@x"}, nil)
//
//	email, _ := tbl.Index("email")
//	found, _ := tbl.Query(ctx, predicate.Eq(email, "a@x"), nil)
//
// # Transactions
//
// Every table operation takes a *Tx. Passing nil runs the operation in its
// own transaction, committed on success and rolled back otherwise:
//
//	tx, _ := db.CreateTransaction(ctx)
//	defer tx.Close() // rolls back unless completed
//
//	_ = tbl.Append(ctx, a, tx)
//	_, _ = tbl.Delete(ctx, predicate.Eq(id, 7), tx)
//	if err := tx.Complete(ctx); err != nil {
//	    return err
//	}
//
// A transaction sees the database as it was when it started plus its own
// changes. Commits never block: the database state is published with a
// compare-and-swap, so concurrent commits retry instead of waiting. There is
// no write-write conflict detection; the last committer wins.
//
// # Storage
//
// Committed changes form an append-only chain of frozen deltas. Each delta
// keeps one storage block per table, either LayoutDocument (payloads plus
// hash indexes, optionally compressed) or LayoutColumnar (payloads plus typed
// columns). Range conditions built with predicate.Field are pushed down to
// columnar blocks holding a column of the same name.
package deltadb
