package todo

import (
	"testing"

	"github.com/cuemby/warren/pkg/graph"
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

func TestCreateAssignsSequentialIDsAndInitialVersion(t *testing.T) {
	txn := newTestTxn(t)

	first, err := Create(txn, CreateInput{Title: "first", Agent: "agent-a", Priority: types.PriorityMedium}, 1)
	require.NoError(t, err)
	assert.Equal(t, "todo_1", first.ID)
	assert.Equal(t, int64(1), first.Version)
	assert.Equal(t, types.StatusOpen, first.Status)

	second, err := Create(txn, CreateInput{Title: "second", Agent: "agent-a", Priority: types.PriorityMedium}, 1)
	require.NoError(t, err)
	assert.Equal(t, "todo_2", second.ID)
}

func TestCreateRejectsEmptyTitle(t *testing.T) {
	txn := newTestTxn(t)
	_, err := Create(txn, CreateInput{Title: "", Agent: "agent-a", Priority: types.PriorityMedium}, 1)
	require.Error(t, err)
	var invalid *jarierr.InvalidInputError
	assert.ErrorAs(t, err, &invalid)
}

func TestCloseDoesNotMutateOtherTodos(t *testing.T) {
	txn := newTestTxn(t)
	parent, err := Create(txn, CreateInput{Title: "parent", Agent: "a", Priority: types.PriorityMedium}, 1)
	require.NoError(t, err)
	child, err := Create(txn, CreateInput{Title: "child", Agent: "a", Priority: types.PriorityMedium}, 1)
	require.NoError(t, err)
	require.NoError(t, DepAdd(txn, child.ID, parent.ID))

	_, err = Close(txn, "a", parent.ID, "done", 2)
	require.NoError(t, err)

	gotChild, _, err := storage.GetTodo(txn, child.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gotChild.Version, "closing a blocker must not bump the blocked todo's version")

	active, err := graph.ActiveBlockersOf(txn, child.ID)
	require.NoError(t, err)
	assert.Empty(t, active, "closed blocker should no longer count as an active blocker")
}

func TestReopenRequiresClosedStatus(t *testing.T) {
	txn := newTestTxn(t)
	tdo, err := Create(txn, CreateInput{Title: "x", Agent: "a", Priority: types.PriorityMedium}, 1)
	require.NoError(t, err)

	_, err = Reopen(txn, "a", tdo.ID, 2)
	require.Error(t, err)
	var notClosed *jarierr.NotClosedError
	assert.ErrorAs(t, err, &notClosed)

	_, err = Close(txn, "a", tdo.ID, "done", 2)
	require.NoError(t, err)
	got, err := Reopen(txn, "a", tdo.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, types.StatusOpen, got.Status)
}

func TestDeleteCascadesBlockedByEdgesBothDirections(t *testing.T) {
	txn := newTestTxn(t)
	parent, err := Create(txn, CreateInput{Title: "parent", Agent: "a", Priority: types.PriorityMedium}, 1)
	require.NoError(t, err)
	child, err := Create(txn, CreateInput{Title: "child", Agent: "a", Priority: types.PriorityMedium}, 1)
	require.NoError(t, err)
	require.NoError(t, DepAdd(txn, child.ID, parent.ID))

	require.NoError(t, Delete(txn, "a", parent.ID))

	gotChild, _, err := storage.GetTodo(txn, child.ID)
	require.NoError(t, err)
	assert.Empty(t, gotChild.BlockedBy)

	children, err := storage.ListBlocks(txn, parent.ID)
	require.NoError(t, err)
	assert.Empty(t, children)

	gotParent, _, err := storage.GetTodo(txn, parent.ID)
	require.NoError(t, err)
	assert.Nil(t, gotParent)
}

func TestLabelAddAndRemoveGoThroughOptimisticMerge(t *testing.T) {
	txn := newTestTxn(t)
	tdo, err := Create(txn, CreateInput{Title: "x", Agent: "a", Priority: types.PriorityMedium}, 1)
	require.NoError(t, err)

	got, err := LabelAdd(txn, "a", tdo.ID, "urgent", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"urgent"}, got.Labels)

	got, err = LabelRemove(txn, "a", tdo.ID, "urgent", 3)
	require.NoError(t, err)
	assert.Empty(t, got.Labels)
}

func TestLinkAndUnlinkNiwaRefs(t *testing.T) {
	txn := newTestTxn(t)
	tdo, err := Create(txn, CreateInput{Title: "x", Agent: "a", Priority: types.PriorityMedium}, 1)
	require.NoError(t, err)

	got, err := Link(txn, "a", tdo.ID, "niwa://node/1", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"niwa://node/1"}, got.NiwaRefs)

	got, err = Unlink(txn, "a", tdo.ID, "niwa://node/1", 3)
	require.NoError(t, err)
	assert.Empty(t, got.NiwaRefs)
}
