package main

import (
	"fmt"

	"github.com/cuemby/warren/pkg/query"
	"github.com/cuemby/warren/pkg/storage"
	"github.com/cuemby/warren/pkg/types"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the issuing agent's conflicts, assignments, and recent activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		agent, err := requireAgent(cmd)
		if err != nil {
			return err
		}
		n, _ := cmd.Flags().GetInt("last")
		var st *query.AgentStatus
		err = withReadTxn(cmd, func(txn storage.Txn) error {
			var err error
			st, err = query.Status(txn, agent, n)
			return err
		})
		if err != nil {
			return err
		}

		fmt.Printf("agent: %s\n", agent)
		fmt.Println("assigned:")
		for _, t := range st.Assigned {
			printTodoLine(t)
		}
		fmt.Println("pending conflicts:")
		for _, c := range st.Conflicts {
			fmt.Printf("  %s.%s: yours=%s theirs=%s (base %d)\n", agent, c.Field, c.YoursValue, c.TheirsValue, c.BaseVersion)
		}
		fmt.Println("recent activity:")
		for _, s := range st.Recent {
			fmt.Printf("  %s v%d %s @ %d\n", s.Todo.ID, s.Todo.Version, s.Operation, s.Timestamp)
		}
		return nil
	},
}

var conflictsCmd = &cobra.Command{
	Use:   "conflicts <id>",
	Short: "List pending conflicts on a todo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var conflicts []*types.Conflict
		err := withReadTxn(cmd, func(txn storage.Txn) error {
			var err error
			conflicts, err = query.Conflicts(txn, args[0])
			return err
		})
		if err != nil {
			return err
		}
		for _, c := range conflicts {
			fmt.Printf("[%d] agent=%s field=%s yours=%s theirs=%s base=%d\n",
				c.Seq, c.Agent, c.Field, c.YoursValue, c.TheirsValue, c.BaseVersion)
		}
		return nil
	},
}

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List the agent registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		var agents []*types.AgentSummary
		err := withReadTxn(cmd, func(txn storage.Txn) error {
			var err error
			agents, err = query.Agents(txn)
			return err
		})
		if err != nil {
			return err
		}
		for _, a := range agents {
			fmt.Printf("%s  first_seen=%d last_seen=%d\n", a.Name, a.FirstSeen, a.LastSeen)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().Int("last", 10, "Number of recent snapshots to show")
}
