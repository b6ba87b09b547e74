package main

import (
	"github.com/cuemby/warren/pkg/storage"
	"github.com/cuemby/warren/pkg/todo"
	"github.com/cuemby/warren/pkg/types"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a todo and its active blockers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		agent, err := requireAgent(cmd)
		if err != nil {
			return err
		}
		var t *types.Todo
		var blockers []types.BlockerInfo
		err = withWriteTxn(cmd, func(txn storage.Txn) error {
			var err error
			t, blockers, err = todo.Show(txn, agent, args[0], now())
			return err
		})
		if err != nil {
			return err
		}
		printTodo(t)
		printBlockers(blockers)
		return nil
	},
}
