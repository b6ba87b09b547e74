package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database directory and its buckets",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := dbDir(cmd)
		if err != nil {
			return err
		}
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()
		fmt.Printf("initialized jari database at %s\n", dir)
		return nil
	},
}
