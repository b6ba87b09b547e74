package graph

import (
	"testing"

	"github.com/cuemby/warren/pkg/jarierr"
	"github.com/cuemby/warren/pkg/storage"
	"github.com/cuemby/warren/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTxn(t *testing.T) storage.Txn {
	t.Helper()
	store, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	txn, err := store.Begin(true)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return txn
}

func putTodo(t *testing.T, txn storage.Txn, id string, status types.Status) {
	t.Helper()
	require.NoError(t, storage.PutTodo(txn, &types.Todo{ID: id, Title: id, Status: status, Version: 1}, nil))
}

func TestAddEdgeRejectsSelfEdge(t *testing.T) {
	txn := newTestTxn(t)
	putTodo(t, txn, "a", types.StatusOpen)

	err := AddEdge(txn, "a", "a")
	require.Error(t, err)
	var selfErr *jarierr.SelfEdgeError
	assert.ErrorAs(t, err, &selfErr)
}

func TestAddEdgeRejectsCycle(t *testing.T) {
	txn := newTestTxn(t)
	putTodo(t, txn, "a", types.StatusOpen)
	putTodo(t, txn, "b", types.StatusOpen)
	putTodo(t, txn, "c", types.StatusOpen)

	require.NoError(t, AddEdge(txn, "b", "a")) // b depends on a
	require.NoError(t, AddEdge(txn, "c", "b")) // c depends on b

	err := AddEdge(txn, "a", "c") // would close the loop a -> c -> b -> a
	require.Error(t, err)
	var cycleErr *jarierr.CycleDetectedError
	assert.ErrorAs(t, err, &cycleErr)
}

func TestAddEdgeIsIdempotent(t *testing.T) {
	txn := newTestTxn(t)
	putTodo(t, txn, "a", types.StatusOpen)
	putTodo(t, txn, "b", types.StatusOpen)

	require.NoError(t, AddEdge(txn, "b", "a"))
	require.NoError(t, AddEdge(txn, "b", "a"))

	blockers, err := BlockersOf(txn, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, blockers)
}

func TestRemoveEdgeIsIdempotentAndClearsReverseIndex(t *testing.T) {
	txn := newTestTxn(t)
	putTodo(t, txn, "a", types.StatusOpen)
	putTodo(t, txn, "b", types.StatusOpen)

	require.NoError(t, AddEdge(txn, "b", "a"))
	require.NoError(t, RemoveEdge(txn, "b", "a"))
	require.NoError(t, RemoveEdge(txn, "b", "a")) // idempotent

	blockers, err := BlockersOf(txn, "b")
	require.NoError(t, err)
	assert.Empty(t, blockers)

	children, err := storage.ListBlocks(txn, "a")
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestActiveBlockersOfExcludesClosedAndDangling(t *testing.T) {
	txn := newTestTxn(t)
	putTodo(t, txn, "a", types.StatusClosed)
	putTodo(t, txn, "b", types.StatusOpen)
	putTodo(t, txn, "c", types.StatusOpen)

	require.NoError(t, AddEdge(txn, "c", "a"))
	require.NoError(t, AddEdge(txn, "c", "b"))
	require.NoError(t, storage.DeleteTodo(txn, "b")) // dangling reference

	active, err := ActiveBlockersOf(txn, "c")
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestTreeSkipsDanglingReferences(t *testing.T) {
	txn := newTestTxn(t)
	putTodo(t, txn, "a", types.StatusOpen)
	putTodo(t, txn, "b", types.StatusOpen)
	require.NoError(t, AddEdge(txn, "b", "a"))

	childTodo, extra, err := storage.GetTodo(txn, "b")
	require.NoError(t, err)
	childTodo.BlockedBy = append(childTodo.BlockedBy, "ghost")
	require.NoError(t, storage.PutTodo(txn, childTodo, extra))

	tree, err := Tree(txn, "b", types.TreeDown)
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "a", tree.Children[0].ID)
}

func TestTreeUpDirectionWalksReverseIndex(t *testing.T) {
	txn := newTestTxn(t)
	putTodo(t, txn, "a", types.StatusOpen)
	putTodo(t, txn, "b", types.StatusOpen)
	require.NoError(t, AddEdge(txn, "b", "a")) // b depends on a, a blocks b

	tree, err := Tree(txn, "a", types.TreeUp)
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "b", tree.Children[0].ID)
}
