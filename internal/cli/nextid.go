package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/todos/pkg/types"
)

func (a *app) newNextIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next-id",
		Short: "Print the identifier the next create will allocate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s types.Store) error {
				next, err := s.PeekNextID()
				if err != nil {
					return sysError(fmt.Errorf("peek next id: %w", err))
				}
				if a.flags.jsonMode {
					out := map[string]any{"next_id": next}
					if ider, ok := s.(storeIdentifier); ok {
						out["store_id"] = ider.StoreID()
					}
					return printJSON(cmd.OutOrStdout(), out)
				}
				fmt.Fprintln(cmd.OutOrStdout(), next)
				return nil
			})
		},
	}
}
