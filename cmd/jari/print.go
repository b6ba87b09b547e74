package main

import (
	"fmt"

	"github.com/cuemby/warren/pkg/types"
)

func printTodo(t *types.Todo) {
	fmt.Printf("%s  [%s] p%d  %s\n", t.ID, t.Status, t.Priority, t.Title)
	if t.Assignee != "" {
		fmt.Printf("  assignee: %s\n", t.Assignee)
	}
	if len(t.Labels) > 0 {
		fmt.Printf("  labels: %v\n", t.Labels)
	}
	if len(t.BlockedBy) > 0 {
		fmt.Printf("  blocked_by: %v\n", t.BlockedBy)
	}
	fmt.Printf("  version: %d\n", t.Version)
}

func printTodoLine(t *types.Todo) {
	fmt.Printf("%s  [%s] p%d  %s\n", t.ID, t.Status, t.Priority, t.Title)
}

func printBlockers(blockers []types.BlockerInfo) {
	if len(blockers) == 0 {
		return
	}
	fmt.Println("  active blockers:")
	for _, b := range blockers {
		fmt.Printf("    %s [%s]\n", b.ID, b.Status)
	}
}
