package mvcc

import (
	"fmt"
	"maps"
	"sync/atomic"

	"github.com/hupe1980/deltadb/internal/delta"
	"github.com/hupe1980/deltadb/model"
)

// TransactionCache is the view of one transaction: the chain it started
// from and its private log.
type TransactionCache struct {
	Chain *delta.Chain
	Log   *delta.Log
}

// State is an immutable snapshot of the database state.
type State struct {
	chain  *delta.Chain
	active map[model.TxnID]*TransactionCache
}

// Chain returns the committed chain.
func (s *State) Chain() *delta.Chain { return s.chain }

// ActiveCount returns the number of active transactions.
func (s *State) ActiveCount() int { return len(s.active) }

func (s *State) with(chain *delta.Chain, active map[model.TxnID]*TransactionCache) *State {
	return &State{chain: chain, active: active}
}

// Stats reports controller counters.
type Stats struct {
	ChainLength int
	Active      int
	Commits     uint64
	Rollbacks   uint64
	Retries     uint64
}

// Controller owns the single database state reference.
type Controller struct {
	state    atomic.Pointer[State]
	nextTxn  atomic.Uint64
	newBlock delta.BlockFactory

	commits   atomic.Uint64
	rollbacks atomic.Uint64
	retries   atomic.Uint64
}

// NewController creates a controller with an empty chain. Transaction logs
// create table blocks with newBlock.
func NewController(newBlock delta.BlockFactory) *Controller {
	c := &Controller{newBlock: newBlock}
	c.state.Store(&State{
		chain:  delta.EmptyChain,
		active: map[model.TxnID]*TransactionCache{},
	})
	return c
}

// State returns the current state.
func (c *Controller) State() *State { return c.state.Load() }

// change applies fn optimistically until its result is published.
// Errors returned by fn abort without retry.
func (c *Controller) change(fn func(current *State) (*State, error)) (*State, error) {
	for {
		current := c.state.Load()
		next, err := fn(current)
		if err != nil {
			return nil, err
		}
		if c.state.CompareAndSwap(current, next) {
			return next, nil
		}
		c.retries.Add(1)
	}
}

// Create registers a new transaction and returns its id and cache.
func (c *Controller) Create() (model.TxnID, *TransactionCache) {
	id := model.TxnID(c.nextTxn.Add(1))
	var cache *TransactionCache

	_, _ = c.change(func(current *State) (*State, error) {
		cache = &TransactionCache{
			Chain: current.chain,
			Log:   delta.NewLog(c.newBlock),
		}
		active := maps.Clone(current.active)
		active[id] = cache
		return current.with(current.chain, active), nil
	})
	return id, cache
}

// Cache returns the cache of an active transaction.
func (c *Controller) Cache(id model.TxnID) (*TransactionCache, error) {
	cache, ok := c.state.Load().active[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not active", model.ErrInvalidState, id)
	}
	return cache, nil
}

// Reserve accounts resources for a delta before it is published. The
// returned release undoes the reservation and may be nil.
type Reserve func(f *delta.Frozen) (release func(), err error)

// Complete freezes the transaction's log and publishes it. An empty log is
// dropped without extending the chain. reserve, if non-nil, runs once on a
// non-empty delta before publication; its error aborts the commit and leaves
// the transaction active. If publication fails after reserve succeeded, the
// reservation is released.
//
// It returns the published delta, or nil if the chain was not extended.
func (c *Controller) Complete(id model.TxnID, reserve Reserve) (*delta.Frozen, error) {
	cache, err := c.Cache(id)
	if err != nil {
		return nil, err
	}
	empty := cache.Log.IsEmpty()
	var (
		frozen  *delta.Frozen
		release func()
	)
	if !empty {
		frozen = cache.Log.Freeze()
		if reserve != nil {
			if release, err = reserve(frozen); err != nil {
				return nil, err
			}
		}
	}

	_, err = c.change(func(current *State) (*State, error) {
		if _, ok := current.active[id]; !ok {
			return nil, fmt.Errorf("%w: %s is not active", model.ErrInvalidState, id)
		}
		active := maps.Clone(current.active)
		delete(active, id)
		if empty {
			return current.with(current.chain, active), nil
		}
		return current.with(current.chain.Append(frozen), active), nil
	})
	if err != nil {
		if release != nil {
			release()
		}
		return nil, err
	}
	c.commits.Add(1)
	return frozen, nil
}

// Rollback forgets the transaction. The chain is untouched.
func (c *Controller) Rollback(id model.TxnID) error {
	_, err := c.change(func(current *State) (*State, error) {
		if _, ok := current.active[id]; !ok {
			return nil, fmt.Errorf("%w: %s is not active", model.ErrInvalidState, id)
		}
		active := maps.Clone(current.active)
		delete(active, id)
		return current.with(current.chain, active), nil
	})
	if err != nil {
		return err
	}
	c.rollbacks.Add(1)
	return nil
}

// Stats returns a snapshot of the controller counters.
func (c *Controller) Stats() Stats {
	s := c.state.Load()
	return Stats{
		ChainLength: s.chain.Len(),
		Active:      len(s.active),
		Commits:     c.commits.Load(),
		Rollbacks:   c.rollbacks.Load(),
		Retries:     c.retries.Load(),
	}
}
