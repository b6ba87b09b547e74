package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/cuemby/warren/pkg/codec"
	"github.com/cuemby/warren/pkg/query"
	"github.com/cuemby/warren/pkg/storage"
	"github.com/cuemby/warren/pkg/types"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every todo, one self-contained record per line",
	RunE: func(cmd *cobra.Command, args []string) error {
		var todos []*types.Todo
		err := withReadTxn(cmd, func(txn storage.Txn) error {
			var err error
			todos, err = query.Export(txn)
			return err
		})
		if err != nil {
			return err
		}

		out := os.Stdout
		if path, _ := cmd.Flags().GetString("output"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		w := bufio.NewWriter(out)
		defer w.Flush()
		for _, t := range todos {
			data, err := codec.EncodeTodo(t, nil)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(w, string(data)); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().String("output", "", "Write to this file instead of stdout")
}
