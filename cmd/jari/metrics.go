package main

import (
	"fmt"
	"sort"

	"github.com/cuemby/warren/pkg/metrics"
	"github.com/cuemby/warren/pkg/storage"
	"github.com/spf13/cobra"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show persisted operation counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		var snap metrics.Snapshot
		err := withReadTxn(cmd, func(txn storage.Txn) error {
			var err error
			snap, err = metrics.Read(txn)
			return err
		})
		if err != nil {
			return err
		}
		names := make([]string, 0, len(snap))
		for name := range snap {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("%-20s %d\n", name, snap[name])
		}
		return nil
	},
}
