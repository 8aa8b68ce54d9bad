// Package index deduplicates uint64 keys into stable value pointers across a
// fixed number of independently locked shards.
//
// Each shard is an unbalanced binary search tree. Child links are published
// with atomic stores and a tree is never rebalanced, so a published entry
// never moves and readers walk the trees without taking the shard lock.
package index

import (
	"sync"
	"sync/atomic"
)

const (
	ShardBits  = 12
	ShardCount = 1 << ShardBits
	shardMask  = ShardCount - 1
)

type entry[V any] struct {
	key    uint64
	val    *V
	lo, hi atomic.Pointer[entry[V]]
}

type shard[V any] struct {
	mu    sync.Mutex
	root  atomic.Pointer[entry[V]]
	count atomic.Int64
	_     [32]byte // pad
}

// Sharded maps keys to values, creating each value at most once.
type Sharded[V any] struct {
	shards [ShardCount]shard[V]
	total  atomic.Int64
}

func New[V any]() *Sharded[V] { return &Sharded[V]{} }

// ShardOf returns the shard a key lives in: its low ShardBits bits.
func ShardOf(key uint64) int { return int(key & shardMask) }

// InsertOrGet returns the value stored under key, calling newFn under the
// shard lock to create it when absent. Concurrent callers for the same key
// all receive the same pointer; newFn runs at most once per key.
func (s *Sharded[V]) InsertOrGet(key uint64, newFn func(key uint64) *V) (*V, bool) {
	sh := &s.shards[key&shardMask]

	// Lock-free hit path.
	if v, ok := find(&sh.root, key); ok {
		return v, false
	}

	sh.mu.Lock()
	defer sh.mu.Unlock()

	slot := &sh.root
	for {
		e := slot.Load()
		if e == nil {
			break
		}
		switch {
		case key == e.key:
			return e.val, false
		case key < e.key:
			slot = &e.lo
		default:
			slot = &e.hi
		}
	}
	e := &entry[V]{key: key, val: newFn(key)}
	slot.Store(e)
	sh.count.Add(1)
	s.total.Add(1)
	return e.val, true
}

// TryGet looks key up without locking.
func (s *Sharded[V]) TryGet(key uint64) (*V, bool) {
	return find(&s.shards[key&shardMask].root, key)
}

func find[V any](root *atomic.Pointer[entry[V]], key uint64) (*V, bool) {
	e := root.Load()
	for e != nil {
		switch {
		case key == e.key:
			return e.val, true
		case key < e.key:
			e = e.lo.Load()
		default:
			e = e.hi.Load()
		}
	}
	return nil, false
}

// Count is the number of distinct keys. It is only eventually consistent
// while inserts are running.
func (s *Sharded[V]) Count() int64 { return s.total.Load() }

// ShardLen is the number of keys in shard i.
func (s *Sharded[V]) ShardLen(i int) int64 { return s.shards[i&shardMask].count.Load() }

// Range calls fn for every entry, shard by shard and in key order within a
// shard, until fn returns false.
func (s *Sharded[V]) Range(fn func(key uint64, v *V) bool) {
	var stack []*entry[V]
	for i := range s.shards {
		stack = stack[:0]
		e := s.shards[i].root.Load()
		for e != nil || len(stack) > 0 {
			for e != nil {
				stack = append(stack, e)
				e = e.lo.Load()
			}
			e = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !fn(e.key, e.val) {
				return
			}
			e = e.hi.Load()
		}
	}
}

// Flatten copies every value pointer into a Collection.
func (s *Sharded[V]) Flatten() *Collection[V] {
	c := newCollection[V](int(s.Count()))
	s.Range(func(_ uint64, v *V) bool {
		c.append(v)
		return true
	})
	return c
}
