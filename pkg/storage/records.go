package storage

import (
	"fmt"

	"github.com/cuemby/warren/pkg/codec"
	"github.com/cuemby/warren/pkg/types"
)

// Record-level helpers shared by the graph, concurrency, todo, and
// query packages. Each wraps one Get/Put against a Txn with the
// appropriate codec key and (de)serialization, so higher layers never
// touch bucket names or byte keys directly.

// GetTodo loads a todo record, or (nil, nil, nil) if absent.
func GetTodo(txn Txn, id string) (*types.Todo, map[string]any, error) {
	data, err := txn.Get([]byte(codec.BucketTodos), codec.TodoKey(id))
	if err != nil {
		return nil, nil, err
	}
	if data == nil {
		return nil, nil, nil
	}
	t, extra, err := codec.DecodeTodo(data)
	return t, extra, err
}

// PutTodo writes a todo record, preserving any unrecognized fields
// already on disk (extra, from a prior GetTodo call).
func PutTodo(txn Txn, t *types.Todo, extra map[string]any) error {
	data, err := codec.EncodeTodo(t, extra)
	if err != nil {
		return err
	}
	return txn.Put([]byte(codec.BucketTodos), codec.TodoKey(t.ID), data)
}

// DeleteTodo removes a todo record.
func DeleteTodo(txn Txn, id string) error {
	return txn.Delete([]byte(codec.BucketTodos), codec.TodoKey(id))
}

// AppendHistory writes an immutable version snapshot.
func AppendHistory(txn Txn, id string, snap *types.HistorySnapshot) error {
	data, err := codec.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	return txn.Put([]byte(codec.BucketHistory), codec.HistoryKey(id, snap.Todo.Version), data)
}

// GetHistorySnapshot loads the snapshot for id at exactly version.
func GetHistorySnapshot(txn Txn, id string, version int64) (*types.HistorySnapshot, error) {
	data, err := txn.Get([]byte(codec.BucketHistory), codec.HistoryKey(id, version))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return codec.DecodeSnapshot(data)
}

// ListHistory returns every snapshot for id, ascending by version.
func ListHistory(txn Txn, id string) ([]*types.HistorySnapshot, error) {
	var out []*types.HistorySnapshot
	err := txn.Range([]byte(codec.BucketHistory), codec.HistoryPrefix(id), func(_, v []byte) (bool, error) {
		snap, err := codec.DecodeSnapshot(v)
		if err != nil {
			return false, err
		}
		out = append(out, snap)
		return true, nil
	})
	return out, err
}

// DeleteHistory removes every snapshot for id (used by delete()).
func DeleteHistory(txn Txn, id string) error {
	var keys [][]byte
	err := txn.Range([]byte(codec.BucketHistory), codec.HistoryPrefix(id), func(k, _ []byte) (bool, error) {
		key := append([]byte(nil), k...)
		keys = append(keys, key)
		return true, nil
	})
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := txn.Delete([]byte(codec.BucketHistory), k); err != nil {
			return err
		}
	}
	return nil
}

// PutBlocksEdge / DeleteBlocksEdge maintain the reverse index
// meta/blocks/{parent}/{child}.
func PutBlocksEdge(txn Txn, parent, child string) error {
	return txn.Put([]byte(codec.BucketMeta), codec.BlocksKey(parent, child), []byte{1})
}

func DeleteBlocksEdge(txn Txn, parent, child string) error {
	return txn.Delete([]byte(codec.BucketMeta), codec.BlocksKey(parent, child))
}

// ListBlocks returns every child blocked on parent.
func ListBlocks(txn Txn, parent string) ([]string, error) {
	var children []string
	err := txn.Range([]byte(codec.BucketMeta), codec.BlocksPrefix(parent), func(k, _ []byte) (bool, error) {
		// key is meta/blocks/{parent}/{child}
		prefix := codec.BlocksPrefix(parent)
		child := string(k[len(prefix):])
		children = append(children, child)
		return true, nil
	})
	return children, err
}

// GetPending returns the version an agent last observed for id, and
// whether a pending-read record exists at all.
func GetPending(txn Txn, agent, id string) (int64, bool, error) {
	data, err := txn.Get([]byte(codec.BucketPending), codec.PendingKey(agent, id))
	if err != nil {
		return 0, false, err
	}
	if data == nil {
		return 0, false, nil
	}
	v, err := codec.DecodeCounter(data)
	if err != nil {
		return 0, false, fmt.Errorf("decode pending read: %w", err)
	}
	return v, true, nil
}

// PutPending records the version agent last observed for id.
func PutPending(txn Txn, agent, id string, version int64) error {
	return txn.Put([]byte(codec.BucketPending), codec.PendingKey(agent, id), codec.EncodeCounter(version))
}

// ClearPending removes agent's pending-read record for id.
func ClearPending(txn Txn, agent, id string) error {
	return txn.Delete([]byte(codec.BucketPending), codec.PendingKey(agent, id))
}

// AppendConflict appends one conflict record for id, assigning the
// next per-todo sequence number from NextConflictSeq.
func AppendConflict(txn Txn, id string, c *types.Conflict) error {
	seq, err := NextConflictSeq(txn, id)
	if err != nil {
		return err
	}
	c.Seq = seq
	data, err := codec.EncodeConflict(c)
	if err != nil {
		return err
	}
	return txn.Put([]byte(codec.BucketMeta), codec.ConflictKey(id, seq), data)
}

// NextConflictSeq reserves the next per-todo conflict sequence number
// without writing a record: one past the highest seq currently stored
// for id, so it never reuses the seq of a conflict still pending.
// Numbering starts again at 0 once no conflict on id remains.
func NextConflictSeq(txn Txn, id string) (int64, error) {
	var max int64 = -1
	err := txn.Range([]byte(codec.BucketMeta), codec.ConflictPrefix(id), func(_, v []byte) (bool, error) {
		c, err := codec.DecodeConflict(v)
		if err != nil {
			return false, err
		}
		if c.Seq > max {
			max = c.Seq
		}
		return true, nil
	})
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// ListConflicts returns every pending conflict on id, ordered by seq.
func ListConflicts(txn Txn, id string) ([]*types.Conflict, error) {
	var out []*types.Conflict
	err := txn.Range([]byte(codec.BucketMeta), codec.ConflictPrefix(id), func(_, v []byte) (bool, error) {
		c, err := codec.DecodeConflict(v)
		if err != nil {
			return false, err
		}
		out = append(out, c)
		return true, nil
	})
	return out, err
}

// DeleteConflict removes one conflict record by sequence number.
func DeleteConflict(txn Txn, id string, seq int64) error {
	return txn.Delete([]byte(codec.BucketMeta), codec.ConflictKey(id, seq))
}

// ClearConflicts removes every pending conflict on id.
func ClearConflicts(txn Txn, id string) error {
	var keys [][]byte
	err := txn.Range([]byte(codec.BucketMeta), codec.ConflictPrefix(id), func(k, _ []byte) (bool, error) {
		keys = append(keys, append([]byte(nil), k...))
		return true, nil
	})
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := txn.Delete([]byte(codec.BucketMeta), k); err != nil {
			return err
		}
	}
	return nil
}

// TouchAgent creates or refreshes an agent registry entry.
func TouchAgent(txn Txn, name string, now int64) error {
	data, err := txn.Get([]byte(codec.BucketMeta), codec.AgentKey(name))
	if err != nil {
		return err
	}
	var a types.AgentSummary
	if data == nil {
		a = types.AgentSummary{Name: name, FirstSeen: now, LastSeen: now}
	} else {
		decoded, err := codec.DecodeAgent(data)
		if err != nil {
			return err
		}
		a = *decoded
		a.LastSeen = now
	}
	encoded, err := codec.EncodeAgent(&a)
	if err != nil {
		return err
	}
	return txn.Put([]byte(codec.BucketMeta), codec.AgentKey(name), encoded)
}

// ListAgents returns every registered agent.
func ListAgents(txn Txn) ([]*types.AgentSummary, error) {
	var out []*types.AgentSummary
	err := txn.Range([]byte(codec.BucketMeta), []byte(codec.AgentPrefix), func(_, v []byte) (bool, error) {
		a, err := codec.DecodeAgent(v)
		if err != nil {
			return false, err
		}
		out = append(out, a)
		return true, nil
	})
	return out, err
}

// NextTodoID atomically reserves and advances the todo_{n} counter.
func NextTodoID(txn Txn) (string, error) {
	data, err := txn.Get([]byte(codec.BucketMeta), codec.CounterKey)
	if err != nil {
		return "", err
	}
	next, err := codec.DecodeCounter(data)
	if err != nil {
		return "", err
	}
	next++
	if err := txn.Put([]byte(codec.BucketMeta), codec.CounterKey, codec.EncodeCounter(next)); err != nil {
		return "", err
	}
	return fmt.Sprintf("todo_%d", next), nil
}

// IncrMetric adds delta to the named operation counter, creating it at
// delta if absent.
func IncrMetric(txn Txn, name string, delta int64) error {
	data, err := txn.Get([]byte(codec.BucketMeta), codec.MetricKey(name))
	if err != nil {
		return err
	}
	cur, err := codec.DecodeCounter(data)
	if err != nil {
		return err
	}
	return txn.Put([]byte(codec.BucketMeta), codec.MetricKey(name), codec.EncodeCounter(cur+delta))
}

// ListMetrics returns every named operation counter and its value.
func ListMetrics(txn Txn) (map[string]int64, error) {
	out := make(map[string]int64)
	err := txn.Range([]byte(codec.BucketMeta), []byte(codec.MetricPrefix), func(k, v []byte) (bool, error) {
		name := string(k[len(codec.MetricPrefix):])
		n, err := codec.DecodeCounter(v)
		if err != nil {
			return false, err
		}
		out[name] = n
		return true, nil
	})
	return out, err
}

// ListTodos returns every todo record, in lexicographic key order
// ("todos/todo_10" sorts before "todos/todo_2").
func ListTodos(txn Txn) ([]*types.Todo, error) {
	var out []*types.Todo
	err := txn.Range([]byte(codec.BucketTodos), []byte("todos/"), func(_, v []byte) (bool, error) {
		t, _, err := codec.DecodeTodo(v)
		if err != nil {
			return false, err
		}
		out = append(out, t)
		return true, nil
	})
	return out, err
}
