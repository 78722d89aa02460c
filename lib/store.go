package lib

/* This file contains persistence module interfaces that are used throughout the app */

// StoreI defines the interface for interacting with the persisted ledger state
type StoreI interface {
	RWStoreI                  // reading and writing
	NewTxn() TxnI             // wrap the store in a discardable nested store
	Version() uint64          // access the height of the store
	Commit() (uint64, ErrorI) // persist pending writes and increment the version
	Discard()                 // drop every pending write
	Close() ErrorI            // gracefully stop the database
}

// TxnI is a write-set layered over a parent store that is flushed with Write() or dropped with Discard()
type TxnI interface {
	RWStoreI
	Write() ErrorI
	Discard()
}

// RWStoreI defines the Read/Write interface for basic db CRUD operations
type RWStoreI interface {
	RStoreI
	WStoreI
}

// RStoreI defines the Read interface for basic db CRUD operations
type RStoreI interface {
	Get(key []byte) ([]byte, ErrorI)               // access a value by key
	Iterator(prefix []byte) (IteratorI, ErrorI)    // iterate the keys under a prefix in ascending order
	RevIterator(prefix []byte) (IteratorI, ErrorI) // iterate the keys under a prefix in descending order
}

// WStoreI defines the Write interface for basic db CRUD operations
type WStoreI interface {
	Set(key, value []byte) ErrorI // set a value under a key
	Delete(key []byte) ErrorI     // remove a key
}

// IteratorI defines an interface for iterating over key-value pairs in a data store
type IteratorI interface {
	Valid() bool   // if the item the iterator is pointing at is valid
	Next()         // move to next item
	Key() []byte   // retrieve key
	Value() []byte // retrieve value
	Close()        // close the iterator when done, ensuring proper resource management
}
