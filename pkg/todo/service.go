package todo

import (
	"github.com/cuemby/warren/pkg/concurrency"
	"github.com/cuemby/warren/pkg/graph"
	"github.com/cuemby/warren/pkg/jarierr"
	"github.com/cuemby/warren/pkg/log"
	"github.com/cuemby/warren/pkg/metrics"
	"github.com/cuemby/warren/pkg/storage"
	"github.com/cuemby/warren/pkg/types"
)

// CreateInput collects create()'s optional fields; Title and Agent are
// required by the caller before this is built.
type CreateInput struct {
	Title       string
	Agent       string
	Priority    types.Priority
	Type        string
	Description string
	ParentID    string
	NiwaRef     string
}

// Create assigns the next todo_{n} id, sets version=1 and status=open,
// and appends the initial history snapshot.
func Create(txn storage.Txn, in CreateInput, now int64) (result *types.Todo, err error) {
	txnID := log.NewTxnID()
	defer func() {
		id, version := "", int64(0)
		if result != nil {
			id, version = result.ID, result.Version
		}
		log.LogOperation("create", id, in.Agent, version, txnID, err)
	}()

	if in.Title == "" {
		return nil, &jarierr.InvalidInputError{Field: "title", Reason: "must not be empty"}
	}
	if !in.Priority.Valid() {
		return nil, &jarierr.InvalidInputError{Field: "priority", Reason: "must be in [0,4]"}
	}

	id, err := storage.NextTodoID(txn)
	if err != nil {
		return nil, err
	}

	t := &types.Todo{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Status:      types.StatusOpen,
		Priority:    in.Priority,
		Type:        in.Type,
		ParentID:    in.ParentID,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   in.Agent,
		UpdatedBy:   in.Agent,
	}
	if in.NiwaRef != "" {
		t.NiwaRefs = []string{in.NiwaRef}
	}

	if err := storage.PutTodo(txn, t, nil); err != nil {
		return nil, err
	}
	snap := &types.HistorySnapshot{Todo: *t.Clone(), Agent: in.Agent, Operation: "create", Timestamp: now}
	if err := storage.AppendHistory(txn, id, snap); err != nil {
		return nil, err
	}
	if err := storage.TouchAgent(txn, in.Agent, now); err != nil {
		return nil, err
	}
	if err := metrics.Incr(txn, metrics.TodosCreated); err != nil {
		return nil, err
	}
	return t, nil
}

// Show is the read path: current record plus active blockers, and it
// refreshes the agent's pending-read marker for a later Update.
func Show(txn storage.Txn, agent, id string, now int64) (*types.Todo, []types.BlockerInfo, error) {
	return concurrency.Read(txn, agent, id, now)
}

// Update delegates straight to the concurrency engine's field-level
// merge/conflict protocol.
func Update(txn storage.Txn, agent, id string, changes []types.FieldChange, now int64) (*types.Todo, error) {
	return concurrency.Update(txn, agent, id, changes, now)
}

// Claim delegates to the concurrency engine's atomic claim protocol.
func Claim(txn storage.Txn, agent, id string, now int64) (*types.Todo, error) {
	return concurrency.Claim(txn, agent, id, now)
}

// Resolve delegates to the concurrency engine's conflict resolution.
func Resolve(txn storage.Txn, agent, id string, strategy types.ResolutionStrategy, overrides []types.FieldChange, now int64) (*types.Todo, error) {
	return concurrency.Resolve(txn, agent, id, strategy, overrides, now)
}

// Close transitions a todo to closed. Unblocking children is a query
// property, not a status rewrite here: closing never touches any
// other todo's record.
func Close(txn storage.Txn, agent, id, reason string, now int64) (result *types.Todo, err error) {
	txnID := log.NewTxnID()
	defer func() {
		version := int64(0)
		if result != nil {
			version = result.Version
		}
		log.LogOperation("close", id, agent, version, txnID, err)
	}()

	t, extra, err := storage.GetTodo(txn, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, &jarierr.NotFoundError{ID: id}
	}
	t.Status = types.StatusClosed
	t.Reason = reason
	t.Version++
	t.UpdatedAt = now
	t.UpdatedBy = agent
	if err := storage.PutTodo(txn, t, extra); err != nil {
		return nil, err
	}
	snap := &types.HistorySnapshot{Todo: *t.Clone(), Agent: agent, Operation: "close", Timestamp: now}
	if err := storage.AppendHistory(txn, id, snap); err != nil {
		return nil, err
	}
	if err := storage.ClearPending(txn, agent, id); err != nil {
		return nil, err
	}
	return t, nil
}

// Reopen transitions a closed todo back to open.
func Reopen(txn storage.Txn, agent, id string, now int64) (result *types.Todo, err error) {
	txnID := log.NewTxnID()
	defer func() {
		version := int64(0)
		if result != nil {
			version = result.Version
		}
		log.LogOperation("reopen", id, agent, version, txnID, err)
	}()

	t, extra, err := storage.GetTodo(txn, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, &jarierr.NotFoundError{ID: id}
	}
	if t.Status != types.StatusClosed {
		return nil, &jarierr.NotClosedError{ID: id}
	}
	t.Status = types.StatusOpen
	t.Version++
	t.UpdatedAt = now
	t.UpdatedBy = agent
	if err := storage.PutTodo(txn, t, extra); err != nil {
		return nil, err
	}
	snap := &types.HistorySnapshot{Todo: *t.Clone(), Agent: agent, Operation: "reopen", Timestamp: now}
	if err := storage.AppendHistory(txn, id, snap); err != nil {
		return nil, err
	}
	if err := storage.ClearPending(txn, agent, id); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes a todo, its history, its conflict records, and
// every edge touching it — both its own blocked_by set and every
// other todo's reverse/forward reference to it. Agents' pending-read
// markers for the id are not removed. A dangling parent_id on a
// surviving child is permitted by design and is left as-is.
func Delete(txn storage.Txn, agent, id string) (err error) {
	txnID := log.NewTxnID()
	defer func() { log.LogOperation("delete", id, agent, 0, txnID, err) }()

	t, _, err := storage.GetTodo(txn, id)
	if err != nil {
		return err
	}
	if t == nil {
		return &jarierr.NotFoundError{ID: id}
	}

	for _, parent := range append([]string(nil), t.BlockedBy...) {
		if err := graph.RemoveEdge(txn, id, parent); err != nil {
			return err
		}
	}
	children, err := storage.ListBlocks(txn, id)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := graph.RemoveEdge(txn, child, id); err != nil {
			return err
		}
	}

	if err := storage.ClearConflicts(txn, id); err != nil {
		return err
	}
	if err := storage.DeleteHistory(txn, id); err != nil {
		return err
	}
	return storage.DeleteTodo(txn, id)
}

// DepAdd records that child depends on parent.
func DepAdd(txn storage.Txn, child, parent string) error {
	return graph.AddEdge(txn, child, parent)
}

// DepRemove removes the child-depends-on-parent edge.
func DepRemove(txn storage.Txn, child, parent string) error {
	return graph.RemoveEdge(txn, child, parent)
}

// DepTree renders the transitive closure from id in the given direction.
func DepTree(txn storage.Txn, id string, dir types.TreeDirection) (*types.TreeNode, error) {
	return graph.Tree(txn, id, dir)
}

// LabelAdd adds one label, a no-op if already present.
func LabelAdd(txn storage.Txn, agent, id, label string, now int64) (*types.Todo, error) {
	return mutateSet(txn, agent, id, types.FieldLabels, types.OpAdd, label, now)
}

// LabelRemove removes one label, a no-op if absent.
func LabelRemove(txn storage.Txn, agent, id, label string, now int64) (*types.Todo, error) {
	return mutateSet(txn, agent, id, types.FieldLabels, types.OpRemove, label, now)
}

// Link attaches one niwa node reference.
func Link(txn storage.Txn, agent, id, niwaRef string, now int64) (*types.Todo, error) {
	return mutateSet(txn, agent, id, types.FieldNiwaRefs, types.OpAdd, niwaRef, now)
}

// Unlink detaches one niwa node reference.
func Unlink(txn storage.Txn, agent, id, niwaRef string, now int64) (*types.Todo, error) {
	return mutateSet(txn, agent, id, types.FieldNiwaRefs, types.OpRemove, niwaRef, now)
}

// mutateSet applies a single add/remove change through the same
// optimistic-merge path as Update, so label/link edits respect
// whatever the agent last read rather than blindly overwriting.
func mutateSet(txn storage.Txn, agent, id string, field types.Field, op types.ChangeOp, value string, now int64) (*types.Todo, error) {
	return concurrency.Update(txn, agent, id, []types.FieldChange{{Field: field, Op: op, Value: value}}, now)
}
