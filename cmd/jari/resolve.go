package main

import (
	"strings"

	"github.com/cuemby/warren/pkg/jarierr"
	"github.com/cuemby/warren/pkg/storage"
	"github.com/cuemby/warren/pkg/todo"
	"github.com/cuemby/warren/pkg/types"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <id> <ACCEPT_YOURS|ACCEPT_THEIRS|MANUAL_MERGE>",
	Short: "Resolve the issuing agent's pending conflicts on a todo",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		agent, err := requireAgent(cmd)
		if err != nil {
			return err
		}
		strategy := types.ResolutionStrategy(strings.ToLower(args[1]))

		var overrides []types.FieldChange
		if strategy == types.ManualMerge {
			overrideFlags, _ := cmd.Flags().GetStringArray("set")
			overrides, err = parseOverrides(overrideFlags)
			if err != nil {
				return err
			}
		}

		var t *types.Todo
		err = withWriteTxn(cmd, func(txn storage.Txn) error {
			var err error
			t, err = todo.Resolve(txn, agent, args[0], strategy, overrides, now())
			return err
		})
		if err != nil {
			return err
		}
		printTodo(t)
		return nil
	},
}

// parseOverrides turns "--set field=value" pairs into FieldChange
// entries for MANUAL_MERGE: scalar fields use OpSet; set fields use
// "field+=value" to add and "field-=value" to remove.
func parseOverrides(pairs []string) ([]types.FieldChange, error) {
	var out []types.FieldChange
	for _, p := range pairs {
		switch {
		case strings.Contains(p, "+="):
			kv := strings.SplitN(p, "+=", 2)
			out = append(out, types.FieldChange{Field: types.Field(kv[0]), Op: types.OpAdd, Value: kv[1]})
		case strings.Contains(p, "-="):
			kv := strings.SplitN(p, "-=", 2)
			out = append(out, types.FieldChange{Field: types.Field(kv[0]), Op: types.OpRemove, Value: kv[1]})
		case strings.Contains(p, "="):
			kv := strings.SplitN(p, "=", 2)
			out = append(out, types.FieldChange{Field: types.Field(kv[0]), Op: types.OpSet, Value: kv[1]})
		default:
			return nil, &jarierr.InvalidInputError{Field: "set", Reason: "expected field=value, field+=value, or field-=value"}
		}
	}
	return out, nil
}

func init() {
	resolveCmd.Flags().StringArray("set", nil, "MANUAL_MERGE override, repeatable")
}
