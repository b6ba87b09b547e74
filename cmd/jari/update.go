package main

import (
	"fmt"

	"github.com/cuemby/warren/pkg/jarierr"
	"github.com/cuemby/warren/pkg/storage"
	"github.com/cuemby/warren/pkg/todo"
	"github.com/cuemby/warren/pkg/types"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Propose field changes, auto-merging against concurrent writes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		agent, err := requireAgent(cmd)
		if err != nil {
			return err
		}

		var changes []types.FieldChange
		if v, ok := flagSet(cmd, "title"); ok {
			changes = append(changes, types.FieldChange{Field: types.FieldTitle, Op: types.OpSet, Value: v})
		}
		if v, ok := flagSet(cmd, "description"); ok {
			changes = append(changes, types.FieldChange{Field: types.FieldDescription, Op: types.OpSet, Value: v})
		}
		if v, ok := flagSet(cmd, "status"); ok {
			changes = append(changes, types.FieldChange{Field: types.FieldStatus, Op: types.OpSet, Value: v})
		}
		if cmd.Flags().Changed("priority") {
			p, _ := cmd.Flags().GetInt("priority")
			changes = append(changes, types.FieldChange{Field: types.FieldPriority, Op: types.OpSet, Value: fmt.Sprintf("%d", p)})
		}
		if v, ok := flagSet(cmd, "type"); ok {
			changes = append(changes, types.FieldChange{Field: types.FieldType, Op: types.OpSet, Value: v})
		}
		if v, ok := flagSet(cmd, "assignee"); ok {
			changes = append(changes, types.FieldChange{Field: types.FieldAssignee, Op: types.OpSet, Value: v})
		}
		if v, ok := flagSet(cmd, "parent"); ok {
			changes = append(changes, types.FieldChange{Field: types.FieldParentID, Op: types.OpSet, Value: v})
		}
		if v, ok := flagSet(cmd, "reason"); ok {
			changes = append(changes, types.FieldChange{Field: types.FieldReason, Op: types.OpSet, Value: v})
		}
		if len(changes) == 0 {
			return &jarierr.InvalidInputError{Field: "update", Reason: "no fields given"}
		}

		var result *types.Todo
		err = withWriteTxn(cmd, func(txn storage.Txn) error {
			t, err := todo.Update(txn, agent, args[0], changes, now())
			if err != nil {
				return err
			}
			result = t
			return nil
		})
		if err != nil {
			return err
		}
		printTodo(result)
		return nil
	},
}

// flagSet reports a string flag's value and whether the caller set it
// explicitly, distinguishing "not mentioned" from "set to empty".
func flagSet(cmd *cobra.Command, name string) (string, bool) {
	if !cmd.Flags().Changed(name) {
		return "", false
	}
	v, _ := cmd.Flags().GetString(name)
	return v, true
}

func init() {
	updateCmd.Flags().String("title", "", "New title")
	updateCmd.Flags().StringP("description", "d", "", "New description")
	updateCmd.Flags().String("status", "", "New status")
	updateCmd.Flags().IntP("priority", "p", 0, "New priority [0,4]")
	updateCmd.Flags().StringP("type", "t", "", "New type")
	updateCmd.Flags().String("assignee", "", "New assignee")
	updateCmd.Flags().String("parent", "", "New parent todo id")
	updateCmd.Flags().String("reason", "", "Reason annotation")
}
