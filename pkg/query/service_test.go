package query

import (
	"fmt"
	"testing"

	"github.com/cuemby/warren/pkg/storage"
	"github.com/cuemby/warren/pkg/todo"
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

func TestReadyOrdersByPriorityThenCreatedAtThenID(t *testing.T) {
	txn := newTestTxn(t)
	low, err := todo.Create(txn, todo.CreateInput{Title: "low", Agent: "a", Priority: types.PriorityLow}, 10)
	require.NoError(t, err)
	high, err := todo.Create(txn, todo.CreateInput{Title: "high", Agent: "a", Priority: types.PriorityHigh}, 20)
	require.NoError(t, err)
	med, err := todo.Create(txn, todo.CreateInput{Title: "med", Agent: "a", Priority: types.PriorityMedium}, 5)
	require.NoError(t, err)

	ready, err := Ready(txn)
	require.NoError(t, err)
	require.Len(t, ready, 3)
	assert.Equal(t, high.ID, ready[0].ID)
	assert.Equal(t, med.ID, ready[1].ID)
	assert.Equal(t, low.ID, ready[2].ID)
}

func TestReadyExcludesBlockedAndClosed(t *testing.T) {
	txn := newTestTxn(t)
	parent, err := todo.Create(txn, todo.CreateInput{Title: "parent", Agent: "a", Priority: types.PriorityMedium}, 1)
	require.NoError(t, err)
	child, err := todo.Create(txn, todo.CreateInput{Title: "child", Agent: "a", Priority: types.PriorityMedium}, 1)
	require.NoError(t, err)
	require.NoError(t, todo.DepAdd(txn, child.ID, parent.ID))

	closed, err := todo.Create(txn, todo.CreateInput{Title: "closed", Agent: "a", Priority: types.PriorityMedium}, 1)
	require.NoError(t, err)
	_, err = todo.Close(txn, "a", closed.ID, "done", 2)
	require.NoError(t, err)

	ready, err := Ready(txn)
	require.NoError(t, err)
	require.Len(t, ready, 1)
	assert.Equal(t, parent.ID, ready[0].ID)
}

func TestBlockedListsActiveBlockers(t *testing.T) {
	txn := newTestTxn(t)
	parent, err := todo.Create(txn, todo.CreateInput{Title: "parent", Agent: "a", Priority: types.PriorityMedium}, 1)
	require.NoError(t, err)
	child, err := todo.Create(txn, todo.CreateInput{Title: "child", Agent: "a", Priority: types.PriorityMedium}, 1)
	require.NoError(t, err)
	require.NoError(t, todo.DepAdd(txn, child.ID, parent.ID))

	blocked, err := Blocked(txn)
	require.NoError(t, err)
	require.Len(t, blocked, 1)
	assert.Equal(t, child.ID, blocked[0].Todo.ID)
	require.Len(t, blocked[0].Blockers, 1)
	assert.Equal(t, parent.ID, blocked[0].Blockers[0].ID)
}

func TestListFiltersByStatusAndLabel(t *testing.T) {
	txn := newTestTxn(t)
	tdo, err := todo.Create(txn, todo.CreateInput{Title: "x", Agent: "a", Priority: types.PriorityMedium}, 1)
	require.NoError(t, err)
	_, err = todo.LabelAdd(txn, "a", tdo.ID, "urgent", 2)
	require.NoError(t, err)
	_, err = todo.Create(txn, todo.CreateInput{Title: "y", Agent: "a", Priority: types.PriorityMedium}, 1)
	require.NoError(t, err)

	out, err := List(txn, types.Filter{Label: "urgent"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, tdo.ID, out[0].ID)

	out, err = List(txn, types.Filter{Status: []types.Status{types.StatusClosed}})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSearchMatchesTitleDescriptionAndLabels(t *testing.T) {
	txn := newTestTxn(t)
	tdo, err := todo.Create(txn, todo.CreateInput{Title: "fix the parser", Agent: "a", Priority: types.PriorityMedium}, 1)
	require.NoError(t, err)
	_, err = todo.LabelAdd(txn, "a", tdo.ID, "compiler", 2)
	require.NoError(t, err)
	_, err = todo.Create(txn, todo.CreateInput{Title: "unrelated", Agent: "a", Priority: types.PriorityMedium}, 1)
	require.NoError(t, err)

	out, err := Search(txn, "PARSER")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, tdo.ID, out[0].ID)

	out, err = Search(txn, "compiler")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, tdo.ID, out[0].ID)
}

func TestStatusAssemblesConflictsAssignedAndRecentActivity(t *testing.T) {
	txn := newTestTxn(t)
	tdo, err := todo.Create(txn, todo.CreateInput{Title: "x", Agent: "a", Priority: types.PriorityMedium}, 1)
	require.NoError(t, err)
	_, err = todo.Claim(txn, "agent-a", tdo.ID, 2)
	require.NoError(t, err)

	st, err := Status(txn, "agent-a", 10)
	require.NoError(t, err)
	require.Len(t, st.Assigned, 1)
	assert.Equal(t, tdo.ID, st.Assigned[0].ID)
	assert.NotEmpty(t, st.Recent)
}

func TestExportOrdersAscendingByID(t *testing.T) {
	txn := newTestTxn(t)
	_, err := todo.Create(txn, todo.CreateInput{Title: "a", Agent: "a", Priority: types.PriorityMedium}, 1)
	require.NoError(t, err)
	_, err = todo.Create(txn, todo.CreateInput{Title: "b", Agent: "a", Priority: types.PriorityMedium}, 1)
	require.NoError(t, err)

	out, err := Export(txn)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "todo_1", out[0].ID)
	assert.Equal(t, "todo_2", out[1].ID)
}

// TestExportOrdersNumericallyPastLexicographicCrossover creates past
// todo_9 -> todo_10, where a raw string comparison of unpadded ids
// would sort "todo_10" before "todo_2".
func TestExportOrdersNumericallyPastLexicographicCrossover(t *testing.T) {
	txn := newTestTxn(t)
	for i := 0; i < 12; i++ {
		_, err := todo.Create(txn, todo.CreateInput{Title: "x", Agent: "a", Priority: types.PriorityMedium}, 1)
		require.NoError(t, err)
	}

	out, err := Export(txn)
	require.NoError(t, err)
	require.Len(t, out, 12)
	for i, t2 := range out {
		assert.Equal(t, fmt.Sprintf("todo_%d", i+1), t2.ID)
	}
}

// TestReadyOrdersNumericallyOnIDTieBreakPastCrossover pins the same
// numeric-id requirement on the ready-queue comparator's tie-break,
// using same priority/created_at so only the id ordering differs.
func TestReadyOrdersNumericallyOnIDTieBreakPastCrossover(t *testing.T) {
	txn := newTestTxn(t)
	for i := 0; i < 11; i++ {
		_, err := todo.Create(txn, todo.CreateInput{Title: "x", Agent: "a", Priority: types.PriorityMedium}, 5)
		require.NoError(t, err)
	}

	ready, err := Ready(txn)
	require.NoError(t, err)
	require.Len(t, ready, 11)
	for i, t2 := range ready {
		assert.Equal(t, fmt.Sprintf("todo_%d", i+1), t2.ID)
	}
}
