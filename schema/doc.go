// Package schema describes caller-supplied table schemas.
//
// A Table[T] names the table, lists its indexes (the first one is the
// primary key), chooses the storage layout and, for columnar tables,
// declares the typed columns extracted from each document.
//
//	users := schema.Table[User]{
//	    Name: "users",
//	    Indexes: []schema.Index[User]{
//	        {Property: "id", Key: func(u User) any { return u.ID }},
//	        {Property: "email", Key: func(u User) any { return u.Email }},
//	    },
//	    Layout: model.LayoutColumnar,
//	    Columns: []schema.Column[User]{
//	        {Name: "age", Kind: model.KindInt64, Value: func(u User) any { return u.Age }},
//	    },
//	}
//
// Index keys are reduced to uint64 hashes by HashKey unless an index supplies
// its own Hash. Hash collisions are harmless: every query verifies the
// decoded documents against the predicate.
package schema
