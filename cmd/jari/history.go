package main

import (
	"fmt"

	"github.com/cuemby/warren/pkg/query"
	"github.com/cuemby/warren/pkg/storage"
	"github.com/cuemby/warren/pkg/types"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "Show every version snapshot for a todo, ascending",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var snaps []*types.HistorySnapshot
		err := withReadTxn(cmd, func(txn storage.Txn) error {
			var err error
			snaps, err = query.History(txn, args[0])
			return err
		})
		if err != nil {
			return err
		}
		for _, s := range snaps {
			fmt.Printf("v%d  %s by %s @ %d  %s [%s]\n", s.Todo.Version, s.Operation, s.Agent, s.Timestamp, s.Todo.Title, s.Todo.Status)
		}
		return nil
	},
}
