// Package graph implements the dependency graph over blocked_by edges
// edge mutation with cycle rejection, blocker queries, and the
// transitive tree view used for display. Cyclic structure is avoided
// because edges live in an index (the
// todo's blocked_by set plus the meta/blocks reverse index), not by
// nodes embedding each other, so traversal is repeated lookups rather
// than pointer-chasing that could loop.
package graph

import (
	"github.com/cuemby/warren/pkg/jarierr"
	"github.com/cuemby/warren/pkg/metrics"
	"github.com/cuemby/warren/pkg/storage"
	"github.com/cuemby/warren/pkg/types"
)

// AddEdge records that child depends on parent (child is blocked by
// parent), enforcing child != parent, parent existence, and acyclicity.
// Both sides of the edge — child.blocked_by and the parent's reverse
// index — are updated in the same Txn.
func AddEdge(txn storage.Txn, child, parent string) error {
	if child == parent {
		return &jarierr.SelfEdgeError{ID: child}
	}

	parentTodo, _, err := storage.GetTodo(txn, parent)
	if err != nil {
		return err
	}
	if parentTodo == nil {
		return &jarierr.NotFoundError{ID: parent}
	}

	childTodo, extra, err := storage.GetTodo(txn, child)
	if err != nil {
		return err
	}
	if childTodo == nil {
		return &jarierr.NotFoundError{ID: child}
	}

	for _, b := range childTodo.BlockedBy {
		if b == parent {
			return nil // idempotent: edge already present
		}
	}

	// An edge child -> parent (child depends on parent) is a cycle iff
	// child is reachable from parent by walking existing blocked_by
	// edges forward (parent would then, transitively, depend on child).
	reachable, path, err := reachableFrom(txn, parent, child)
	if err != nil {
		return err
	}
	if reachable {
		if err := metrics.Incr(txn, metrics.CyclesRejected); err != nil {
			return err
		}
		return &jarierr.CycleDetectedError{Path: append([]string{parent}, path...)}
	}

	childTodo.BlockedBy = append(childTodo.BlockedBy, parent)
	if err := storage.PutTodo(txn, childTodo, extra); err != nil {
		return err
	}
	return storage.PutBlocksEdge(txn, parent, child)
}

// RemoveEdge removes the child-depends-on-parent edge. Idempotent.
func RemoveEdge(txn storage.Txn, child, parent string) error {
	childTodo, extra, err := storage.GetTodo(txn, child)
	if err != nil {
		return err
	}
	if childTodo == nil {
		return &jarierr.NotFoundError{ID: child}
	}

	var remaining []string
	found := false
	for _, b := range childTodo.BlockedBy {
		if b == parent {
			found = true
			continue
		}
		remaining = append(remaining, b)
	}
	if !found {
		return nil
	}
	childTodo.BlockedBy = remaining
	if err := storage.PutTodo(txn, childTodo, extra); err != nil {
		return err
	}
	return storage.DeleteBlocksEdge(txn, parent, child)
}

// BlockersOf returns child's blocked_by set verbatim.
func BlockersOf(txn storage.Txn, id string) ([]string, error) {
	t, _, err := storage.GetTodo(txn, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, &jarierr.NotFoundError{ID: id}
	}
	return t.BlockedBy, nil
}

// ActiveBlockersOf returns the subset of id's blocked_by whose status
// is not closed.
func ActiveBlockersOf(txn storage.Txn, id string) ([]types.BlockerInfo, error) {
	blockers, err := BlockersOf(txn, id)
	if err != nil {
		return nil, err
	}
	var active []types.BlockerInfo
	for _, bid := range blockers {
		bt, _, err := storage.GetTodo(txn, bid)
		if err != nil {
			return nil, err
		}
		if bt == nil {
			continue // dangling blocker reference; not treated as active
		}
		if bt.Status != types.StatusClosed {
			active = append(active, types.BlockerInfo{ID: bid, Status: bt.Status})
		}
	}
	return active, nil
}

// Tree returns the transitive closure from id in the given direction,
// as a structured view for display. Cycles cannot occur by invariant,
// so no visited-set guard is required for correctness, but one is kept
// to bound traversal defensively against a corrupted store.
func Tree(txn storage.Txn, id string, dir types.TreeDirection) (*types.TreeNode, error) {
	visited := make(map[string]bool)
	return buildTree(txn, id, dir, visited)
}

func buildTree(txn storage.Txn, id string, dir types.TreeDirection, visited map[string]bool) (*types.TreeNode, error) {
	t, _, err := storage.GetTodo(txn, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, &jarierr.NotFoundError{ID: id}
	}
	node := &types.TreeNode{ID: id, Status: t.Status}
	if visited[id] {
		return node, nil
	}
	visited[id] = true

	var children []string
	if dir == types.TreeDown {
		children = t.BlockedBy
	} else {
		children, err = storage.ListBlocks(txn, id)
		if err != nil {
			return nil, err
		}
	}
	for _, cid := range children {
		child, err := buildTree(txn, cid, dir, visited)
		if err != nil {
			if _, ok := err.(*jarierr.NotFoundError); ok {
				continue // dangling reference; omit from the tree
			}
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

// reachableFrom reports whether target is reachable from start by
// walking blocked_by edges forward (start -> ... -> target), and if so
// returns one witnessing path (excluding start, including target).
func reachableFrom(txn storage.Txn, start, target string) (bool, []string, error) {
	if start == target {
		return true, nil, nil
	}
	visited := map[string]bool{start: true}
	type frame struct {
		id   string
		path []string
	}
	stack := []frame{{id: start, path: nil}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		t, _, err := storage.GetTodo(txn, f.id)
		if err != nil {
			return false, nil, err
		}
		if t == nil {
			continue
		}
		for _, next := range t.BlockedBy {
			path := append(append([]string(nil), f.path...), next)
			if next == target {
				return true, path, nil
			}
			if !visited[next] {
				visited[next] = true
				stack = append(stack, frame{id: next, path: path})
			}
		}
	}
	return false, nil, nil
}
