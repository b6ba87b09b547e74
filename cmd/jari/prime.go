package main

import (
	"fmt"

	"github.com/cuemby/warren/pkg/query"
	"github.com/cuemby/warren/pkg/storage"
	"github.com/spf13/cobra"
)

// primeCmd prints a short orientation summary for an agent starting a
// session: what is ready to claim, what it already owns, and what is
// waiting on its own conflict resolution. It makes no mutation.
var primeCmd = &cobra.Command{
	Use:   "prime",
	Short: "Print a session-start orientation summary for the issuing agent",
	RunE: func(cmd *cobra.Command, args []string) error {
		agent, _ := cmd.Flags().GetString("agent")

		var ready, assigned int
		var conflicts int
		err := withReadTxn(cmd, func(txn storage.Txn) error {
			rs, err := query.Ready(txn)
			if err != nil {
				return err
			}
			ready = len(rs)
			if agent == "" {
				return nil
			}
			st, err := query.Status(txn, agent, 1)
			if err != nil {
				return err
			}
			assigned = len(st.Assigned)
			conflicts = len(st.Conflicts)
			return nil
		})
		if err != nil {
			return err
		}

		fmt.Printf("%d todos ready to claim\n", ready)
		if agent != "" {
			fmt.Printf("%s: %d assigned, %d pending conflicts\n", agent, assigned, conflicts)
			if conflicts > 0 {
				fmt.Println("run `jari status --agent " + agent + "` then `jari resolve <id> <strategy>` to clear them")
			}
		} else {
			fmt.Println("pass --agent to see your assignments and pending conflicts")
		}
		return nil
	},
}
