package store

import (
	"bytes"
	"sort"
	"strings"

	"github.com/canopy-network/omniroute/lib"
)

// enforce the TxnI interface
var _ lib.TxnI = &Txn{}

/*
	Txn acts like a database transaction
	It saves set/del operations in memory and allows the caller to Write() to the parent or Discard()
	When read from, it merges with the parent as if Write() had already been called

	Txns nest: the parent may itself be a Txn, which is how the ledger opens an atomic scope
	inside another atomic scope and rolls back only the inner one.

	CONTRACT:
	- not thread safe
	- deleted keys shadow the parent until Write() or Discard()
*/

type Txn struct {
	parent lib.RWStoreI  // store to Write() to
	ops    map[string]op // [string(key)] -> set/del operations saved in memory
	sorted []string      // ops keys sorted lexicographically; needed for iteration
}

// op or Operation has the value portion of the operation and if it's a *delete* or a *set*
type op struct {
	value  []byte // value of key value pair
	delete bool   // is operation delete
}

// NewTxn() creates a new instance of a Txn with the specified parent store
func NewTxn(parent lib.RWStoreI) *Txn {
	return &Txn{parent: parent, ops: make(map[string]op)}
}

// Get() retrieves the value for a given key from either the in-memory operations or the parent store
func (c *Txn) Get(key []byte) ([]byte, lib.ErrorI) {
	if v, found := c.ops[string(key)]; found {
		if v.delete {
			return nil, nil
		}
		return v.value, nil
	}
	return c.parent.Get(key)
}

// Set() adds or updates the value for a key in the in-memory operations
func (c *Txn) Set(key, value []byte) lib.ErrorI {
	c.update(string(key), bytes.Clone(value), false)
	return nil
}

// Delete() marks a key for deletion in the in-memory operations
func (c *Txn) Delete(key []byte) lib.ErrorI {
	c.update(string(key), nil, true)
	return nil
}

// update() modifies or adds an operation for a key and maintains order
func (c *Txn) update(key string, v []byte, delete bool) {
	if _, found := c.ops[key]; !found {
		i := sort.SearchStrings(c.sorted, key)
		c.sorted = append(c.sorted, "")
		copy(c.sorted[i+1:], c.sorted[i:])
		c.sorted[i] = key
	}
	c.ops[key] = op{value: v, delete: delete}
}

// Iterator() returns an ascending iterator over the merged view of the operations and the parent
func (c *Txn) Iterator(prefix []byte) (lib.IteratorI, lib.ErrorI) { return c.merged(prefix, false) }

// RevIterator() returns a descending iterator over the merged view of the operations and the parent
func (c *Txn) RevIterator(prefix []byte) (lib.IteratorI, lib.ErrorI) { return c.merged(prefix, true) }

// merged() drains the parent iterator under the prefix and overlays the in-memory operations
func (c *Txn) merged(prefix []byte, reverse bool) (lib.IteratorI, lib.ErrorI) {
	parent, err := c.parent.Iterator(prefix)
	if err != nil {
		return nil, err
	}
	defer parent.Close()
	var entries []entry
	i, p := sort.SearchStrings(c.sorted, string(prefix)), string(prefix)
	for ; parent.Valid(); parent.Next() {
		pKey := string(parent.Key())
		// emit the operations that sort before the parent key
		for ; i < len(c.sorted) && c.sorted[i] < pKey && strings.HasPrefix(c.sorted[i], p); i++ {
			entries = c.appendOp(entries, c.sorted[i])
		}
		// an operation on the same key shadows the parent
		if i < len(c.sorted) && c.sorted[i] == pKey {
			entries = c.appendOp(entries, c.sorted[i])
			i++
			continue
		}
		entries = append(entries, entry{key: []byte(pKey), value: parent.Value()})
	}
	for ; i < len(c.sorted) && strings.HasPrefix(c.sorted[i], p); i++ {
		entries = c.appendOp(entries, c.sorted[i])
	}
	return newSliceIterator(entries, reverse), nil
}

// appendOp() appends the operation under key unless it's a delete
func (c *Txn) appendOp(entries []entry, key string) []entry {
	if o := c.ops[key]; !o.delete {
		return append(entries, entry{key: []byte(key), value: o.value})
	}
	return entries
}

// Write() flushes the in-memory operations to the parent store in key order and clears in-memory changes
func (c *Txn) Write() (err lib.ErrorI) {
	if err = c.forEach(func(key []byte, o op) lib.ErrorI {
		if o.delete {
			return c.parent.Delete(key)
		}
		return c.parent.Set(key, o.value)
	}); err != nil {
		return
	}
	c.Discard()
	return
}

// Discard() clears all in-memory operations
func (c *Txn) Discard() { c.ops, c.sorted = make(map[string]op), nil }

// forEach() visits every pending operation in key order
func (c *Txn) forEach(fn func(key []byte, o op) lib.ErrorI) lib.ErrorI {
	for _, k := range c.sorted {
		if err := fn([]byte(k), c.ops[k]); err != nil {
			return err
		}
	}
	return nil
}

// enforce the Iterator interface
var _ lib.IteratorI = &sliceIterator{}

// entry is a materialized key value pair
type entry struct {
	key, value []byte
}

// sliceIterator walks a sorted snapshot of entries in either direction
type sliceIterator struct {
	entries []entry
	index   int
	reverse bool
}

// newSliceIterator() positions the iterator at the first entry for the direction
func newSliceIterator(entries []entry, reverse bool) *sliceIterator {
	it := &sliceIterator{entries: entries, reverse: reverse}
	if reverse {
		it.index = len(entries) - 1
	}
	return it
}

func (s *sliceIterator) Valid() bool   { return s.index >= 0 && s.index < len(s.entries) }
func (s *sliceIterator) Key() []byte   { return s.entries[s.index].key }
func (s *sliceIterator) Value() []byte { return s.entries[s.index].value }
func (s *sliceIterator) Close()        { s.entries = nil }

// Next() moves one step in the iteration direction
func (s *sliceIterator) Next() {
	if s.reverse {
		s.index--
	} else {
		s.index++
	}
}
