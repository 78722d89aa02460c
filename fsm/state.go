package fsm

import (
	"runtime/debug"

	"github.com/canopy-network/omniroute/lib"
	"github.com/canopy-network/omniroute/store"
)

// StateMachine is the multi-asset ledger every pool and the router operate on
// it owns balances, the asset registry, the event log and the atomic scopes that make a trade all-or-nothing
type StateMachine struct {
	store lib.RWStoreI

	height  uint64
	edMode  EDMode              // how insufficient asset deposits are handled by the current operation
	stack   []lib.ExecutionType // the execution context attached to emitted swaps
	Config  lib.Config
	log     lib.LoggerI
	metrics *lib.Metrics
}

// New() creates a new instance of a StateMachine
func New(c lib.Config, db lib.StoreI, metrics *lib.Metrics, log lib.LoggerI) *StateMachine {
	return &StateMachine{
		store:   db,
		height:  db.Version(),
		Config:  c,
		log:     log,
		metrics: metrics,
	}
}

// BeginBlock() is the automated execution at the 'beginning of a block': the router event id restarts at zero
func (s *StateMachine) BeginBlock() lib.ErrorI {
	s.stack = nil
	return s.Delete(KeyForEventId())
}

// Commit() persists the block and moves the state machine to the next height
func (s *StateMachine) Commit() lib.ErrorI {
	db, ok := s.store.(lib.StoreI)
	if !ok {
		return lib.ErrInvalidArgument(errNotCommittable)
	}
	version, err := db.Commit()
	if err != nil {
		return err
	}
	s.height = version
	return nil
}

// Discard() drops every uncommitted write of the current block
func (s *StateMachine) Discard() {
	if db, ok := s.store.(lib.StoreI); ok {
		db.Discard()
	}
	s.stack = nil
	s.edMode = EDModeNone
}

// Atomic() runs fn in a nested write-set that is written to the current store only if fn succeeds
// any error rolls back every write fn made, including events, deposits and the event id
func (s *StateMachine) Atomic(fn func() lib.ErrorI) (err lib.ErrorI) {
	parent := s.store
	txn := store.NewTxn(parent)
	s.store = txn
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("panic in atomic scope: %v\n%s", r, string(debug.Stack()))
			err = lib.ErrInvalidArgument(errPanic)
		}
		s.store = parent
		if err != nil {
			txn.Discard()
		}
	}()
	if err = fn(); err != nil {
		return
	}
	return txn.Write()
}

// Set() upserts a key-value pair under a key
func (s *StateMachine) Set(k, v []byte) lib.ErrorI { return s.store.Set(k, v) }

// Get() retrieves a key-value pair under a key
// NOTE: returns (nil, nil) if no value is found for that key
func (s *StateMachine) Get(key []byte) ([]byte, lib.ErrorI) { return s.store.Get(key) }

// Delete() deletes a key-value pair under a key
func (s *StateMachine) Delete(key []byte) lib.ErrorI { return s.store.Delete(key) }

// Iterator() creates an iterator over the keys under the prefix in lexicographical order
func (s *StateMachine) Iterator(prefix []byte) (lib.IteratorI, lib.ErrorI) {
	return s.store.Iterator(prefix)
}

// IterateAndExecute() creates an iterator and executes a callback function for each key-value pair
func (s *StateMachine) IterateAndExecute(prefix []byte, callback func(key, value []byte) lib.ErrorI) lib.ErrorI {
	it, err := s.Iterator(prefix)
	if err != nil {
		return err
	}
	defer it.Close()
	for ; it.Valid(); it.Next() {
		if err = callback(it.Key(), it.Value()); err != nil {
			return err
		}
	}
	return nil
}

// GetJSON() reads and decodes a JSON value; found is false if the key is empty
func (s *StateMachine) GetJSON(key []byte, ptr any) (found bool, err lib.ErrorI) {
	bz, err := s.Get(key)
	if err != nil || bz == nil {
		return false, err
	}
	if err = lib.UnmarshalJSON(bz, ptr); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON() encodes a value as JSON under a key
func (s *StateMachine) SetJSON(key []byte, v any) lib.ErrorI {
	bz, err := lib.MarshalJSON(v)
	if err != nil {
		return err
	}
	return s.Set(key, bz)
}

func (s *StateMachine) Store() lib.RWStoreI   { return s.store }
func (s *StateMachine) Height() uint64        { return s.height }
func (s *StateMachine) Log() lib.LoggerI      { return s.log }
func (s *StateMachine) Metrics() *lib.Metrics { return s.metrics }

// EXECUTION CONTEXT BELOW

// PushExecution() opens an execution context; swaps emitted until the matching pop carry it
func (s *StateMachine) PushExecution(t lib.ExecutionType) { s.stack = append(s.stack, t) }

// PopExecution() closes the innermost execution context
func (s *StateMachine) PopExecution() lib.ErrorI {
	if len(s.stack) == 0 {
		return ErrEmptyExecutionStack()
	}
	s.stack = s.stack[:len(s.stack)-1]
	return nil
}

// ExecutionStack() returns a copy of the open execution contexts, outermost first
func (s *StateMachine) ExecutionStack() []lib.ExecutionType {
	return append([]lib.ExecutionType{}, s.stack...)
}

// NextEventId() returns the router event id for this call and increments the block counter
func (s *StateMachine) NextEventId() (uint32, lib.ErrorI) {
	bz, err := s.Get(KeyForEventId())
	if err != nil {
		return 0, err
	}
	id := lib.BytesToUint32(bz)
	return id, s.Set(KeyForEventId(), lib.Uint32ToBytes(id+1))
}
