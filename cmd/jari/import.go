package main

import (
	"fmt"
	"io"
	"os"

	"github.com/cuemby/warren/pkg/storage"
	"github.com/cuemby/warren/pkg/todo"
	"github.com/cuemby/warren/pkg/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// importItem is the bulk-create record shape, deliberately separate
// from types.Todo: it only carries what create() accepts, with names
// that read naturally in a hand-written YAML seed file.
type importItem struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Priority    int    `yaml:"priority"`
	Type        string `yaml:"type"`
	ParentID    string `yaml:"parent_id"`
	NiwaRef     string `yaml:"niwa_ref"`
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk-create todos from a YAML document (--file or stdin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		agent, err := requireAgent(cmd)
		if err != nil {
			return err
		}

		var r io.Reader = os.Stdin
		if path, _ := cmd.Flags().GetString("file"); path != "" {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}

		var items []importItem
		if err := yaml.NewDecoder(r).Decode(&items); err != nil && err != io.EOF {
			return fmt.Errorf("decode import document: %w", err)
		}

		var created []*types.Todo
		err = withWriteTxn(cmd, func(txn storage.Txn) error {
			for _, it := range items {
				t, err := todo.Create(txn, todo.CreateInput{
					Title:       it.Title,
					Agent:       agent,
					Priority:    types.Priority(it.Priority),
					Type:        it.Type,
					Description: it.Description,
					ParentID:    it.ParentID,
					NiwaRef:     it.NiwaRef,
				}, now())
				if err != nil {
					return err
				}
				created = append(created, t)
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, t := range created {
			fmt.Printf("%s  %s\n", t.ID, t.Title)
		}
		fmt.Printf("imported %d todo(s)\n", len(created))
		return nil
	},
}

func init() {
	importCmd.Flags().String("file", "", "Read the import document from this file instead of stdin")
}
