package main

import (
	"github.com/cuemby/warren/pkg/query"
	"github.com/cuemby/warren/pkg/storage"
	"github.com/cuemby/warren/pkg/types"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List todos matching a filter",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := types.Filter{}
		if s, _ := cmd.Flags().GetString("status"); s != "" {
			filter.Status = []types.Status{types.Status(s)}
		}
		filter.Assignee, _ = cmd.Flags().GetString("assignee")
		filter.Label, _ = cmd.Flags().GetString("label")
		filter.Type, _ = cmd.Flags().GetString("type")
		if has := cmd.Flags().Changed("priority"); has {
			p, _ := cmd.Flags().GetInt("priority")
			pr := types.Priority(p)
			filter.Priority = &pr
		}

		var todos []*types.Todo
		err := withReadTxn(cmd, func(txn storage.Txn) error {
			var err error
			todos, err = query.List(txn, filter)
			return err
		})
		if err != nil {
			return err
		}
		for _, t := range todos {
			printTodoLine(t)
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search todos by title, description, or label substring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var todos []*types.Todo
		err := withReadTxn(cmd, func(txn storage.Txn) error {
			var err error
			todos, err = query.Search(txn, args[0])
			return err
		})
		if err != nil {
			return err
		}
		for _, t := range todos {
			printTodoLine(t)
		}
		return nil
	},
}

var readyCmd = &cobra.Command{
	Use:   "ready",
	Short: "List workable todos with no active blocker",
	RunE: func(cmd *cobra.Command, args []string) error {
		var todos []*types.Todo
		err := withReadTxn(cmd, func(txn storage.Txn) error {
			var err error
			todos, err = query.Ready(txn)
			return err
		})
		if err != nil {
			return err
		}
		for _, t := range todos {
			printTodoLine(t)
		}
		return nil
	},
}

var blockedCmd = &cobra.Command{
	Use:   "blocked",
	Short: "List workable todos with at least one active blocker",
	RunE: func(cmd *cobra.Command, args []string) error {
		var entries []query.BlockedEntry
		err := withReadTxn(cmd, func(txn storage.Txn) error {
			var err error
			entries, err = query.Blocked(txn)
			return err
		})
		if err != nil {
			return err
		}
		for _, e := range entries {
			printTodoLine(e.Todo)
			printBlockers(e.Blockers)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().String("status", "", "Filter by status")
	listCmd.Flags().String("assignee", "", "Filter by assignee")
	listCmd.Flags().String("label", "", "Filter by label")
	listCmd.Flags().String("type", "", "Filter by type")
	listCmd.Flags().Int("priority", 0, "Filter by priority [0,4]")
}
