package storage

import (
	"testing"

	"github.com/cuemby/warren/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*BoltStore, Txn) {
	t.Helper()
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	txn, err := store.Begin(true)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, txn
}

func TestTodoCRUD(t *testing.T) {
	_, txn := openTestStore(t)

	got, _, err := GetTodo(txn, "todo_1")
	require.NoError(t, err)
	assert.Nil(t, got)

	tdo := &types.Todo{ID: "todo_1", Title: "a", Status: types.StatusOpen, Version: 1}
	require.NoError(t, PutTodo(txn, tdo, nil))

	got, extra, err := GetTodo(txn, "todo_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a", got.Title)
	assert.Nil(t, extra)

	require.NoError(t, DeleteTodo(txn, "todo_1"))
	got, _, err = GetTodo(txn, "todo_1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestHistoryAppendAndList(t *testing.T) {
	_, txn := openTestStore(t)

	for v := int64(1); v <= 3; v++ {
		snap := &types.HistorySnapshot{Todo: types.Todo{ID: "todo_1", Version: v}, Agent: "a", Operation: "update"}
		require.NoError(t, AppendHistory(txn, "todo_1", snap))
	}

	snaps, err := ListHistory(txn, "todo_1")
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	assert.Equal(t, int64(1), snaps[0].Todo.Version)
	assert.Equal(t, int64(3), snaps[2].Todo.Version)

	one, err := GetHistorySnapshot(txn, "todo_1", 2)
	require.NoError(t, err)
	require.NotNil(t, one)
	assert.Equal(t, int64(2), one.Todo.Version)

	require.NoError(t, DeleteHistory(txn, "todo_1"))
	snaps, err = ListHistory(txn, "todo_1")
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestBlocksEdgeIndex(t *testing.T) {
	_, txn := openTestStore(t)

	require.NoError(t, PutBlocksEdge(txn, "parent", "child1"))
	require.NoError(t, PutBlocksEdge(txn, "parent", "child2"))

	children, err := ListBlocks(txn, "parent")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"child1", "child2"}, children)

	require.NoError(t, DeleteBlocksEdge(txn, "parent", "child1"))
	children, err = ListBlocks(txn, "parent")
	require.NoError(t, err)
	assert.Equal(t, []string{"child2"}, children)
}

func TestPendingReadLifecycle(t *testing.T) {
	_, txn := openTestStore(t)

	_, has, err := GetPending(txn, "agent-a", "todo_1")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, PutPending(txn, "agent-a", "todo_1", 5))
	v, has, err := GetPending(txn, "agent-a", "todo_1")
	require.NoError(t, err)
	assert.True(t, has)
	assert.Equal(t, int64(5), v)

	require.NoError(t, ClearPending(txn, "agent-a", "todo_1"))
	_, has, err = GetPending(txn, "agent-a", "todo_1")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestConflictSequencing(t *testing.T) {
	_, txn := openTestStore(t)

	c1 := &types.Conflict{Agent: "a", Field: types.FieldPriority}
	c2 := &types.Conflict{Agent: "b", Field: types.FieldTitle}
	require.NoError(t, AppendConflict(txn, "todo_1", c1))
	require.NoError(t, AppendConflict(txn, "todo_1", c2))
	assert.Equal(t, int64(0), c1.Seq)
	assert.Equal(t, int64(1), c2.Seq)

	all, err := ListConflicts(txn, "todo_1")
	require.NoError(t, err)
	require.Len(t, all, 2)

	require.NoError(t, DeleteConflict(txn, "todo_1", c1.Seq))
	all, err = ListConflicts(txn, "todo_1")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "b", all[0].Agent)

	require.NoError(t, ClearConflicts(txn, "todo_1"))
	all, err = ListConflicts(txn, "todo_1")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestNextTodoIDIsMonotonicAndGapless(t *testing.T) {
	_, txn := openTestStore(t)

	id1, err := NextTodoID(txn)
	require.NoError(t, err)
	id2, err := NextTodoID(txn)
	require.NoError(t, err)
	assert.Equal(t, "todo_1", id1)
	assert.Equal(t, "todo_2", id2)
}

func TestTouchAgentTracksFirstAndLastSeen(t *testing.T) {
	_, txn := openTestStore(t)

	require.NoError(t, TouchAgent(txn, "agent-a", 100))
	require.NoError(t, TouchAgent(txn, "agent-a", 200))

	agents, err := ListAgents(txn)
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, int64(100), agents[0].FirstSeen)
	assert.Equal(t, int64(200), agents[0].LastSeen)
}
