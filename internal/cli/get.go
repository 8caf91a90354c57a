package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/todos/pkg/types"
)

func (a *app) newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		Aliases: []string{"read", "show"},
		Short:   "Print a todo by identifier",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withStore(func(s types.Store) error {
				t, err := s.Read(id)
				if err != nil {
					return storeError(id, err)
				}
				return a.printTodo(cmd.OutOrStdout(), t)
			})
		},
	}
}
