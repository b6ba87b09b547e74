package main

import (
	"github.com/cuemby/warren/pkg/storage"
	"github.com/cuemby/warren/pkg/todo"
	"github.com/cuemby/warren/pkg/types"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new todo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		agent, err := requireAgent(cmd)
		if err != nil {
			return err
		}
		priority, _ := cmd.Flags().GetInt("priority")
		typ, _ := cmd.Flags().GetString("type")
		description, _ := cmd.Flags().GetString("description")
		parent, _ := cmd.Flags().GetString("parent")
		niwaRef, _ := cmd.Flags().GetString("niwa-ref")

		var created *types.Todo
		err = withWriteTxn(cmd, func(txn storage.Txn) error {
			t, err := todo.Create(txn, todo.CreateInput{
				Title:       args[0],
				Agent:       agent,
				Priority:    types.Priority(priority),
				Type:        typ,
				Description: description,
				ParentID:    parent,
				NiwaRef:     niwaRef,
			}, now())
			if err != nil {
				return err
			}
			created = t
			return nil
		})
		if err != nil {
			return err
		}
		printTodo(created)
		return nil
	},
}

func init() {
	createCmd.Flags().IntP("priority", "p", int(types.PriorityMedium), "Priority [0,4]")
	createCmd.Flags().StringP("type", "t", "task", "Todo type")
	createCmd.Flags().StringP("description", "d", "", "Description")
	createCmd.Flags().String("parent", "", "Parent todo id")
	createCmd.Flags().String("niwa-ref", "", "Niwa node reference")
}
