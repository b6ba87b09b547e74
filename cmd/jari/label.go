package main

import (
	"fmt"

	"github.com/cuemby/warren/pkg/storage"
	"github.com/cuemby/warren/pkg/todo"
	"github.com/cuemby/warren/pkg/types"
	"github.com/spf13/cobra"
)

var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Manage labels on a todo",
}

var labelAddCmd = &cobra.Command{
	Use:   "add <id> <label>",
	Short: "Add a label",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		agent, err := requireAgent(cmd)
		if err != nil {
			return err
		}
		var t *types.Todo
		err = withWriteTxn(cmd, func(txn storage.Txn) error {
			var err error
			t, err = todo.LabelAdd(txn, agent, args[0], args[1], now())
			return err
		})
		if err != nil {
			return err
		}
		printTodo(t)
		return nil
	},
}

var labelRemoveCmd = &cobra.Command{
	Use:   "remove <id> <label>",
	Short: "Remove a label",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		agent, err := requireAgent(cmd)
		if err != nil {
			return err
		}
		var t *types.Todo
		err = withWriteTxn(cmd, func(txn storage.Txn) error {
			var err error
			t, err = todo.LabelRemove(txn, agent, args[0], args[1], now())
			return err
		})
		if err != nil {
			return err
		}
		printTodo(t)
		return nil
	},
}

var linkCmd = &cobra.Command{
	Use:   "link <id> <niwa-node-id>",
	Short: "Attach a niwa node reference",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		agent, err := requireAgent(cmd)
		if err != nil {
			return err
		}
		var t *types.Todo
		err = withWriteTxn(cmd, func(txn storage.Txn) error {
			var err error
			t, err = todo.Link(txn, agent, args[0], args[1], now())
			return err
		})
		if err != nil {
			return err
		}
		printTodo(t)
		return nil
	},
}

var unlinkCmd = &cobra.Command{
	Use:   "unlink <id> <niwa-node-id>",
	Short: "Detach a niwa node reference",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		agent, err := requireAgent(cmd)
		if err != nil {
			return err
		}
		var t *types.Todo
		err = withWriteTxn(cmd, func(txn storage.Txn) error {
			var err error
			t, err = todo.Unlink(txn, agent, args[0], args[1], now())
			return err
		})
		if err != nil {
			return err
		}
		printTodo(t)
		return nil
	},
}

var linkedCmd = &cobra.Command{
	Use:   "linked <id>",
	Short: "Show niwa node references attached to a todo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		agent, err := requireAgent(cmd)
		if err != nil {
			return err
		}
		var t *types.Todo
		err = withWriteTxn(cmd, func(txn storage.Txn) error {
			var err error
			t, _, err = todo.Show(txn, agent, args[0], now())
			return err
		})
		if err != nil {
			return err
		}
		for _, ref := range t.NiwaRefs {
			fmt.Println(ref)
		}
		return nil
	},
}

func init() {
	labelCmd.AddCommand(labelAddCmd, labelRemoveCmd)
}
