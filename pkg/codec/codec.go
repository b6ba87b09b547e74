// Package codec provides deterministic encoding of Jari records and
// the key layout for every sub-store. Records round-trip through a
// map[string]any envelope so that fields unknown to the running
// binary survive a read-modify-write, generalized for forward
// compatibility.
package codec

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cuemby/warren/pkg/types"
)

// Sub-store (bucket) names.
const (
	BucketTodos   = "todos"
	BucketHistory = "history"
	BucketPending = "pending"
	BucketMeta    = "meta"
)

// historyVersionWidth zero-pads history keys so lexicographic bbolt
// cursor order matches numeric version order up to 10^12 versions.
const historyVersionWidth = 13

// TodoKey is the key of a todo record within BucketTodos.
func TodoKey(id string) []byte { return []byte(fmt.Sprintf("todos/%s", id)) }

// HistoryKey is the key of a version snapshot within BucketHistory.
func HistoryKey(id string, version int64) []byte {
	return []byte(fmt.Sprintf("history/%s/%0*d", id, historyVersionWidth, version))
}

// HistoryPrefix is the range prefix for all snapshots of id.
func HistoryPrefix(id string) []byte {
	return []byte(fmt.Sprintf("history/%s/", id))
}

// BlocksKey is the reverse-edge marker key: parent is blocked on by child.
func BlocksKey(parent, child string) []byte {
	return []byte(fmt.Sprintf("meta/blocks/%s/%s", parent, child))
}

// BlocksPrefix ranges over every child blocked on parent.
func BlocksPrefix(parent string) []byte {
	return []byte(fmt.Sprintf("meta/blocks/%s/", parent))
}

// PendingKey is the key of an agent's pending-read marker for a todo.
func PendingKey(agent, id string) []byte {
	return []byte(fmt.Sprintf("pending/%s/%s", agent, id))
}

// ConflictKey is the key of one conflict record for a todo.
func ConflictKey(id string, seq int64) []byte {
	return []byte(fmt.Sprintf("meta/conflict/%s/%0*d", id, historyVersionWidth, seq))
}

// ConflictPrefix ranges over every pending conflict on a todo.
func ConflictPrefix(id string) []byte {
	return []byte(fmt.Sprintf("meta/conflict/%s/", id))
}

// AgentKey is the key of an agent registry entry.
func AgentKey(name string) []byte {
	return []byte(fmt.Sprintf("meta/agent/%s", name))
}

// AgentPrefix ranges over the entire agent registry.
const AgentPrefix = "meta/agent/"

// CounterKey is the key of the next-todo-id counter.
var CounterKey = []byte("meta/counter/todo_id")

// MetricKey is the key of one named operation counter.
func MetricKey(name string) []byte {
	return []byte(fmt.Sprintf("meta/metric/%s", name))
}

// MetricPrefix ranges over every named operation counter.
const MetricPrefix = "meta/metric/"

// EncodeTodo marshals t deterministically, preserving unknown keys
// already present in prior (decoded into extra) so a read-modify-write
// round trip never drops fields this binary doesn't recognize.
func EncodeTodo(t *types.Todo, extra map[string]any) ([]byte, error) {
	merged, err := mergeEnvelope(t, extra)
	if err != nil {
		return nil, err
	}
	return json.Marshal(merged)
}

// DecodeTodo unmarshals a todo record and returns any fields the
// current schema does not recognize, for preservation on rewrite.
func DecodeTodo(data []byte) (*types.Todo, map[string]any, error) {
	var t types.Todo
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, nil, fmt.Errorf("decode todo: %w", err)
	}
	var envelope map[string]any
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, nil, fmt.Errorf("decode todo envelope: %w", err)
	}
	extra := unknownFields(envelope, knownTodoFields)
	return &t, extra, nil
}

// EncodeSnapshot marshals a history snapshot.
func EncodeSnapshot(s *types.HistorySnapshot) ([]byte, error) {
	return json.Marshal(s)
}

// DecodeSnapshot unmarshals a history snapshot.
func DecodeSnapshot(data []byte) (*types.HistorySnapshot, error) {
	var s types.HistorySnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

// EncodeConflict marshals a conflict record.
func EncodeConflict(c *types.Conflict) ([]byte, error) { return json.Marshal(c) }

// DecodeConflict unmarshals a conflict record.
func DecodeConflict(data []byte) (*types.Conflict, error) {
	var c types.Conflict
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode conflict: %w", err)
	}
	return &c, nil
}

// EncodeAgent marshals an agent registry entry.
func EncodeAgent(a *types.AgentSummary) ([]byte, error) { return json.Marshal(a) }

// DecodeAgent unmarshals an agent registry entry.
func DecodeAgent(data []byte) (*types.AgentSummary, error) {
	var a types.AgentSummary
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode agent: %w", err)
	}
	return &a, nil
}

// EncodeCounter/DecodeCounter store the next-issue todo id counter as
// a plain decimal string rather than JSON, since it is a bare integer.
func EncodeCounter(next int64) []byte { return []byte(strconv.FormatInt(next, 10)) }

func DecodeCounter(data []byte) (int64, error) {
	if len(data) == 0 {
		return 0, nil
	}
	return strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
}

func mergeEnvelope(t *types.Todo, extra map[string]any) (map[string]any, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encode todo: %w", err)
	}
	var envelope map[string]any
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("re-decode todo: %w", err)
	}
	for k, v := range extra {
		if _, known := envelope[k]; !known {
			envelope[k] = v
		}
	}
	return envelope, nil
}

func unknownFields(envelope map[string]any, known map[string]bool) map[string]any {
	if len(envelope) == 0 {
		return nil
	}
	extra := make(map[string]any)
	for k, v := range envelope {
		if !known[k] {
			extra[k] = v
		}
	}
	if len(extra) == 0 {
		return nil
	}
	return extra
}

var knownTodoFields = map[string]bool{
	"id": true, "title": true, "description": true, "status": true,
	"priority": true, "type": true, "assignee": true, "labels": true,
	"niwa_refs": true, "parent_id": true, "blocked_by": true, "reason": true,
	"version": true, "created_at": true, "updated_at": true,
	"created_by": true, "updated_by": true,
}
