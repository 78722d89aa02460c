package store

import (
	"testing"

	"github.com/canopy-network/omniroute/lib"
	"github.com/stretchr/testify/require"
)

func TestStoreCommit(t *testing.T) {
	store, err := NewStoreInMemory(lib.NewNullLogger())
	require.NoError(t, err)
	defer store.Close()
	require.Zero(t, store.Version())
	require.NoError(t, store.Set([]byte("a"), []byte("1")))
	version, err := store.Commit()
	require.NoError(t, err)
	require.EqualValues(t, 1, version)
	require.EqualValues(t, 1, store.Version())
	// committed values are readable
	val, err := store.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), val)
	// deletes are committed too
	require.NoError(t, store.Delete([]byte("a")))
	_, err = store.Commit()
	require.NoError(t, err)
	val, err = store.Get([]byte("a"))
	require.NoError(t, err)
	require.Nil(t, val)
}

func TestStoreDiscard(t *testing.T) {
	store, err := NewStoreInMemory(lib.NewNullLogger())
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Set([]byte("a"), []byte("1")))
	_, err = store.Commit()
	require.NoError(t, err)
	require.NoError(t, store.Set([]byte("a"), []byte("2")))
	require.NoError(t, store.Set([]byte("b"), []byte("2")))
	store.Discard()
	val, err := store.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), val)
	val, err = store.Get([]byte("b"))
	require.NoError(t, err)
	require.Nil(t, val)
	require.EqualValues(t, 1, store.Version())
}

func TestStoreReopen(t *testing.T) {
	dir := t.TempDir()
	config := lib.DefaultStoreConfig()
	store, err := NewStore(config, dir, lib.NewNullLogger())
	require.NoError(t, err)
	require.NoError(t, store.Set([]byte("a"), []byte("1")))
	_, err = store.Commit()
	require.NoError(t, err)
	_, err = store.Commit()
	require.NoError(t, err)
	require.NoError(t, store.Close())
	// the version and values survive a restart
	store, err = NewStore(config, dir, lib.NewNullLogger())
	require.NoError(t, err)
	defer store.Close()
	require.EqualValues(t, 2, store.Version())
	val, err := store.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), val)
}

func TestStoreNestedTxn(t *testing.T) {
	store, err := NewStoreInMemory(lib.NewNullLogger())
	require.NoError(t, err)
	defer store.Close()
	txn := store.NewTxn()
	require.NoError(t, txn.Set([]byte("a"), []byte("1")))
	// not visible until written
	val, err := store.Get([]byte("a"))
	require.NoError(t, err)
	require.Nil(t, val)
	require.NoError(t, txn.Write())
	_, err = store.Commit()
	require.NoError(t, err)
	val, err = store.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), val)
}
