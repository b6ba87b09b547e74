package codec

import (
	"testing"

	"github.com/cuemby/warren/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeTodoRoundTrip(t *testing.T) {
	tdo := &types.Todo{
		ID:       "todo_1",
		Title:    "write tests",
		Status:   types.StatusOpen,
		Priority: types.PriorityHigh,
		Labels:   []string{"urgent"},
		Version:  1,
	}
	data, err := EncodeTodo(tdo, nil)
	require.NoError(t, err)

	got, extra, err := DecodeTodo(data)
	require.NoError(t, err)
	assert.Equal(t, tdo.ID, got.ID)
	assert.Equal(t, tdo.Title, got.Title)
	assert.Equal(t, tdo.Labels, got.Labels)
	assert.Nil(t, extra)
}

func TestDecodeTodoPreservesUnknownFields(t *testing.T) {
	raw := []byte(`{"id":"todo_1","title":"x","status":"open","priority":2,"version":1,"future_field":"kept"}`)

	tdo, extra, err := DecodeTodo(raw)
	require.NoError(t, err)
	require.NotNil(t, extra)
	assert.Equal(t, "kept", extra["future_field"])

	data, err := EncodeTodo(tdo, extra)
	require.NoError(t, err)

	_, extra2, err := DecodeTodo(data)
	require.NoError(t, err)
	require.NotNil(t, extra2)
	assert.Equal(t, "kept", extra2["future_field"])
}

func TestMergeEnvelopeNeverOverridesKnownField(t *testing.T) {
	tdo := &types.Todo{ID: "todo_1", Title: "real title"}
	merged, err := mergeEnvelope(tdo, map[string]any{"title": "forged", "extra": "kept"})
	require.NoError(t, err)
	assert.Equal(t, "real title", merged["title"])
	assert.Equal(t, "kept", merged["extra"])
}

func TestSnapshotConflictAgentCounterRoundTrip(t *testing.T) {
	snap := &types.HistorySnapshot{Todo: types.Todo{ID: "todo_1", Version: 2}, Agent: "a", Operation: "update"}
	data, err := EncodeSnapshot(snap)
	require.NoError(t, err)
	got, err := DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Todo.Version)

	conflict := &types.Conflict{Seq: 3, Agent: "b", Field: types.FieldStatus}
	cdata, err := EncodeConflict(conflict)
	require.NoError(t, err)
	gotc, err := DecodeConflict(cdata)
	require.NoError(t, err)
	assert.Equal(t, int64(3), gotc.Seq)

	agent := &types.AgentSummary{Name: "a", FirstSeen: 1, LastSeen: 2}
	adata, err := EncodeAgent(agent)
	require.NoError(t, err)
	gota, err := DecodeAgent(adata)
	require.NoError(t, err)
	assert.Equal(t, "a", gota.Name)

	cdata2 := EncodeCounter(42)
	n, err := DecodeCounter(cdata2)
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	n, err = DecodeCounter(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestHistoryKeyZeroPadsForLexicographicOrder(t *testing.T) {
	k1 := HistoryKey("todo_1", 9)
	k2 := HistoryKey("todo_1", 10)
	assert.Less(t, string(k1), string(k2))
	assert.True(t, len(k1) == len(k2))
}

func TestKeyBuildersNamespaceByID(t *testing.T) {
	assert.Equal(t, []byte("todos/todo_1"), TodoKey("todo_1"))
	assert.Contains(t, string(HistoryPrefix("todo_1")), "todo_1")
	assert.Contains(t, string(BlocksKey("p", "c")), "p/c")
	assert.Contains(t, string(BlocksPrefix("p")), "p")
	assert.Contains(t, string(PendingKey("a", "todo_1")), "a/todo_1")
	assert.Contains(t, string(ConflictPrefix("todo_1")), "todo_1")
	assert.Contains(t, string(AgentKey("a")), "a")
}
