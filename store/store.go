package store

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/canopy-network/omniroute/lib"
	"github.com/cenkalti/backoff/v4"
	"github.com/dgraph-io/badger/v4"
)

var (
	versionKey = lib.JoinLenPrefix([]byte("v/")) // reserved key holding the committed version

	_ lib.StoreI = &Store{} // enforce the Store interface
)

/*
The Store is the persistence layer of the router runtime, built on a single BadgerDB instance.

Writes accumulate in a pending Txn layered over the database, so a block can be applied and either
committed as one badger transaction or discarded as a whole. Each Commit() increments the version,
which the application uses as the block height.

Reads see the pending writes first, then the last committed state.
*/

type Store struct {
	version uint64      // version of the store
	db      *badger.DB  // underlying database
	pending *Txn        // uncommitted writes of the current version
	log     lib.LoggerI // logger
}

// New() creates a new instance of a StoreI either in memory or an actual disk DB
func New(config lib.Config, l lib.LoggerI) (lib.StoreI, lib.ErrorI) {
	if config.StoreConfig.InMemory {
		return NewStoreInMemory(l)
	}
	return NewStore(config.StoreConfig, filepath.Join(config.DataDirPath, config.DBName), l)
}

// NewStore() opens a disk DB, retrying while another process holds the directory lock
func NewStore(config lib.StoreConfig, path string, log lib.LoggerI) (lib.StoreI, lib.ErrorI) {
	opts := badger.DefaultOptions(path).
		WithBlockCacheSize(config.BlockCacheSize).
		WithIndexCacheSize(config.IndexCacheSize).
		WithValueLogFileSize(config.ValueLogSize).
		WithLogger(badgerLogger{log})
	retry := backoff.NewExponentialBackOff()
	retry.MaxElapsedTime = time.Duration(config.OpenTimeoutMS) * time.Millisecond
	var db *badger.DB
	err := backoff.RetryNotify(func() (e error) {
		db, e = badger.Open(opts)
		return
	}, retry, func(e error, wait time.Duration) {
		log.Warnf("Opening the database failed with %s, retrying in %s", e.Error(), wait)
	})
	if err != nil {
		return nil, ErrOpenDB(err)
	}
	return NewStoreWithDB(db, log)
}

// NewStoreInMemory() creates a new instance of a mem DB
func NewStoreInMemory(log lib.LoggerI) (lib.StoreI, lib.ErrorI) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(badgerLogger{log}))
	if err != nil {
		return nil, ErrOpenDB(err)
	}
	return NewStoreWithDB(db, log)
}

// NewStoreWithDB() wraps an open badger database and loads the latest committed version
func NewStoreWithDB(db *badger.DB, log lib.LoggerI) (*Store, lib.ErrorI) {
	s := &Store{db: db, log: log}
	bz, err := s.read(versionKey)
	if err != nil {
		return nil, err
	}
	if bz != nil {
		s.version = lib.BytesToUint64(bz)
	}
	s.pending = NewTxn(dbWriter{s})
	return s, nil
}

// Get() returns the value bytes under the key; nil if not found
func (s *Store) Get(key []byte) ([]byte, lib.ErrorI) { return s.pending.Get(key) }

// Set() stages the value under the key in the pending write-set
func (s *Store) Set(key, value []byte) lib.ErrorI { return s.pending.Set(key, value) }

// Delete() stages the removal of the key in the pending write-set
func (s *Store) Delete(key []byte) lib.ErrorI { return s.pending.Delete(key) }

// Iterator() returns an ascending iterator of the pending and committed keys under the prefix
func (s *Store) Iterator(prefix []byte) (lib.IteratorI, lib.ErrorI) { return s.pending.Iterator(prefix) }

// RevIterator() returns a descending iterator of the pending and committed keys under the prefix
func (s *Store) RevIterator(prefix []byte) (lib.IteratorI, lib.ErrorI) {
	return s.pending.RevIterator(prefix)
}

// NewTxn() returns a nested write-set over the store
func (s *Store) NewTxn() lib.TxnI { return NewTxn(s) }

// Version() returns the number of commits
func (s *Store) Version() uint64 { return s.version }

// Commit() atomically persists the pending writes with the incremented version
func (s *Store) Commit() (uint64, lib.ErrorI) {
	version := s.version + 1
	if err := s.pending.Set(versionKey, lib.Uint64ToBytes(version)); err != nil {
		return 0, err
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return s.pending.forEach(func(key []byte, o op) lib.ErrorI {
			if o.delete {
				if e := txn.Delete(key); e != nil {
					return ErrStoreDelete(e)
				}
				return nil
			}
			if e := txn.Set(key, o.value); e != nil {
				return ErrStoreSet(e)
			}
			return nil
		})
	}); err != nil {
		s.pending.Discard()
		return 0, ErrCommitDB(err)
	}
	s.pending.Discard()
	s.version = version
	return version, nil
}

// Discard() drops every pending write
func (s *Store) Discard() { s.pending.Discard() }

// Close() discards pending writes and closes the database
func (s *Store) Close() lib.ErrorI {
	s.Discard()
	if err := s.db.Close(); err != nil {
		return ErrCloseDB(err)
	}
	return nil
}

// read() returns the committed value under key; nil if not found
func (s *Store) read(key []byte) (value []byte, err lib.ErrorI) {
	if e := s.db.View(func(txn *badger.Txn) error {
		item, e := txn.Get(key)
		if e != nil {
			return e
		}
		value, e = item.ValueCopy(nil)
		return e
	}); e != nil && !errors.Is(e, badger.ErrKeyNotFound) {
		return nil, ErrStoreGet(e)
	}
	return
}

// scan() materializes the committed entries under the prefix in ascending order
func (s *Store) scan(prefix []byte) (entries []entry, err lib.ErrorI) {
	if e := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			value, e := item.ValueCopy(nil)
			if e != nil {
				return e
			}
			entries = append(entries, entry{key: item.KeyCopy(nil), value: value})
		}
		return nil
	}); e != nil {
		return nil, ErrStoreIterator(e)
	}
	return
}

// dbWriter is the parent of the pending write-set: reads hit the committed state and writes are rejected
// since only Commit() may write to the database
type dbWriter struct{ s *Store }

func (d dbWriter) Get(key []byte) ([]byte, lib.ErrorI) { return d.s.read(key) }

func (d dbWriter) Iterator(prefix []byte) (lib.IteratorI, lib.ErrorI) {
	entries, err := d.s.scan(prefix)
	if err != nil {
		return nil, err
	}
	return newSliceIterator(entries, false), nil
}

func (d dbWriter) RevIterator(prefix []byte) (lib.IteratorI, lib.ErrorI) {
	entries, err := d.s.scan(prefix)
	if err != nil {
		return nil, err
	}
	return newSliceIterator(entries, true), nil
}

func (d dbWriter) Set(_, _ []byte) lib.ErrorI { return ErrStoreSet(errWriteOutsideCommit) }
func (d dbWriter) Delete(_ []byte) lib.ErrorI { return ErrStoreDelete(errWriteOutsideCommit) }

var errWriteOutsideCommit = errors.New("writes to the database only happen on commit")

// badgerLogger routes badger's internal logging through the project logger
type badgerLogger struct{ log lib.LoggerI }

func (b badgerLogger) Errorf(format string, args ...interface{})   { b.log.Errorf(format, args...) }
func (b badgerLogger) Warningf(format string, args ...interface{}) { b.log.Warnf(format, args...) }
func (b badgerLogger) Infof(format string, args ...interface{})    { b.log.Debugf(format, args...) }
func (b badgerLogger) Debugf(format string, args ...interface{})   { b.log.Debugf(format, args...) }
