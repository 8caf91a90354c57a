package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/todos/pkg/types"
)

func (a *app) newCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <title...>",
		Short: "Create a todo and print its identifier",
		Long:  "Create stores a new todo with the given title and status not done.\nMultiple arguments are joined with spaces.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			return a.withStore(func(s types.Store) error {
				id, err := s.Create(title)
				if err != nil {
					return sysError(fmt.Errorf("create todo: %w", err))
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), types.Todo{ID: id, Title: title})
				}
				printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Created todo %d", id))
				return nil
			})
		},
	}
}
