package main

import (
	"fmt"

	"github.com/cuemby/warren/pkg/storage"
	"github.com/cuemby/warren/pkg/todo"
	"github.com/cuemby/warren/pkg/types"
	"github.com/spf13/cobra"
)

var depCmd = &cobra.Command{
	Use:   "dep",
	Short: "Manage dependency edges",
}

var depAddCmd = &cobra.Command{
	Use:   "add <child> <parent>",
	Short: "Record that child depends on parent",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := withWriteTxn(cmd, func(txn storage.Txn) error {
			return todo.DepAdd(txn, args[0], args[1])
		})
		if err != nil {
			return err
		}
		fmt.Printf("%s now depends on %s\n", args[0], args[1])
		return nil
	},
}

var depRemoveCmd = &cobra.Command{
	Use:   "remove <child> <parent>",
	Short: "Remove a dependency edge",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := withWriteTxn(cmd, func(txn storage.Txn) error {
			return todo.DepRemove(txn, args[0], args[1])
		})
		if err != nil {
			return err
		}
		fmt.Printf("%s no longer depends on %s\n", args[0], args[1])
		return nil
	},
}

var depTreeCmd = &cobra.Command{
	Use:   "tree <id>",
	Short: "Show the transitive dependency tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		up, _ := cmd.Flags().GetBool("up")
		dir := types.TreeDown
		if up {
			dir = types.TreeUp
		}
		var node *types.TreeNode
		err := withReadTxn(cmd, func(txn storage.Txn) error {
			var err error
			node, err = todo.DepTree(txn, args[0], dir)
			return err
		})
		if err != nil {
			return err
		}
		printTree(node, 0)
		return nil
	},
}

func printTree(n *types.TreeNode, depth int) {
	for i := 0; i < depth; i++ {
		fmt.Print("  ")
	}
	fmt.Printf("%s [%s]\n", n.ID, n.Status)
	for _, c := range n.Children {
		printTree(c, depth+1)
	}
}

func init() {
	depCmd.AddCommand(depAddCmd, depRemoveCmd, depTreeCmd)
	depTreeCmd.Flags().Bool("up", false, "Walk blocks (upward) instead of blocked_by (downward)")
}
