package main

import (
	"fmt"

	"github.com/cuemby/warren/pkg/storage"
	"github.com/cuemby/warren/pkg/todo"
	"github.com/cuemby/warren/pkg/types"
	"github.com/spf13/cobra"
)

var closeCmd = &cobra.Command{
	Use:   "close <id>",
	Short: "Close a todo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		agent, err := requireAgent(cmd)
		if err != nil {
			return err
		}
		reason, _ := cmd.Flags().GetString("reason")
		var t *types.Todo
		err = withWriteTxn(cmd, func(txn storage.Txn) error {
			var err error
			t, err = todo.Close(txn, agent, args[0], reason, now())
			return err
		})
		if err != nil {
			return err
		}
		printTodo(t)
		return nil
	},
}

var reopenCmd = &cobra.Command{
	Use:   "reopen <id>",
	Short: "Reopen a closed todo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		agent, err := requireAgent(cmd)
		if err != nil {
			return err
		}
		var t *types.Todo
		err = withWriteTxn(cmd, func(txn storage.Txn) error {
			var err error
			t, err = todo.Reopen(txn, agent, args[0], now())
			return err
		})
		if err != nil {
			return err
		}
		printTodo(t)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a todo and every edge touching it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		agent, err := requireAgent(cmd)
		if err != nil {
			return err
		}
		err = withWriteTxn(cmd, func(txn storage.Txn) error {
			return todo.Delete(txn, agent, args[0])
		})
		if err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", args[0])
		return nil
	},
}

var claimCmd = &cobra.Command{
	Use:   "claim <id>",
	Short: "Atomically assign a todo to the issuing agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		agent, err := requireAgent(cmd)
		if err != nil {
			return err
		}
		var t *types.Todo
		err = withWriteTxn(cmd, func(txn storage.Txn) error {
			var err error
			t, err = todo.Claim(txn, agent, args[0], now())
			return err
		})
		if err != nil {
			return err
		}
		printTodo(t)
		return nil
	},
}

func init() {
	closeCmd.Flags().String("reason", "", "Reason for closing")
}
