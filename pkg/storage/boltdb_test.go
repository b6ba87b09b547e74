package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCreatesBuckets(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	txn, err := store.Begin(false)
	require.NoError(t, err)
	defer txn.Rollback()

	for _, b := range buckets {
		_, err := txn.Get(b, []byte("missing"))
		assert.NoError(t, err)
	}
}

func TestPutGetDeleteRoundTrip(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	txn, err := store.Begin(true)
	require.NoError(t, err)

	require.NoError(t, txn.Put([]byte("todos"), []byte("todos/todo_1"), []byte("hello")))
	v, err := txn.Get([]byte("todos"), []byte("todos/todo_1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), v)

	require.NoError(t, txn.Delete([]byte("todos"), []byte("todos/todo_1")))
	v, err = txn.Get([]byte("todos"), []byte("todos/todo_1"))
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, txn.Commit())
}

func TestRangeRespectsPrefixAndStop(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	txn, err := store.Begin(true)
	require.NoError(t, err)
	require.NoError(t, txn.Put([]byte("meta"), []byte("a/1"), []byte("1")))
	require.NoError(t, txn.Put([]byte("meta"), []byte("a/2"), []byte("2")))
	require.NoError(t, txn.Put([]byte("meta"), []byte("b/1"), []byte("3")))

	var seen []string
	err = txn.Range([]byte("meta"), []byte("a/"), func(k, v []byte) (bool, error) {
		seen = append(seen, string(k))
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a/1", "a/2"}, seen)

	var first string
	err = txn.Range([]byte("meta"), []byte("a/"), func(k, v []byte) (bool, error) {
		first = string(k)
		return false, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "a/1", first)

	require.NoError(t, txn.Commit())
}

func TestRollbackDiscardsWrites(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	txn, err := store.Begin(true)
	require.NoError(t, err)
	require.NoError(t, txn.Put([]byte("todos"), []byte("todos/todo_1"), []byte("x")))
	require.NoError(t, txn.Rollback())

	readTxn, err := store.Begin(false)
	require.NoError(t, err)
	defer readTxn.Rollback()
	v, err := readTxn.Get([]byte("todos"), []byte("todos/todo_1"))
	require.NoError(t, err)
	assert.Nil(t, v)
}
