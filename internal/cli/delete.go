package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/todos/pkg/types"
)

func (a *app) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a todo; its identifier is never reused",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withStore(func(s types.Store) error {
				if err := s.Delete(id); err != nil {
					return storeError(id, err)
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), map[string]uint32{"deleted": id})
				}
				printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Deleted todo %d", id))
				return nil
			})
		},
	}
}
