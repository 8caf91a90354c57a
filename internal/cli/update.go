package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/todos/pkg/types"
)

func (a *app) newUpdateCmd() *cobra.Command {
	var (
		title  string
		status bool
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the title and/or status of a todo",
		Long: `Update replaces only the fields whose flags are given.
With no flags the todo is rewritten unchanged.

Example:
  todos update 3 --title "Write spec v2"
  todos update 3 --status=true`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var u types.Update
			if cmd.Flags().Changed("title") {
				u.Title = &title
			}
			if cmd.Flags().Changed("status") {
				u.Status = &status
			}
			return a.applyUpdate(cmd, args[0], u)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().BoolVar(&status, "status", false, "new status (true = done)")
	return cmd
}

// newStatusCmd builds the "done" and "undone" shortcuts for update --status.
func (a *app) newStatusCmd(name string, status bool) *cobra.Command {
	short := "Mark a todo as done"
	if !status {
		short = "Mark a todo as not done"
	}
	return &cobra.Command{
		Use:   name + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.applyUpdate(cmd, args[0], types.SetStatus(status))
		},
	}
}

func (a *app) applyUpdate(cmd *cobra.Command, rawID string, u types.Update) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	return a.withStore(func(s types.Store) error {
		if err := s.Update(id, u); err != nil {
			return storeError(id, err)
		}
		if a.flags.jsonMode {
			t, err := s.Read(id)
			if err != nil {
				return storeError(id, err)
			}
			return printJSON(cmd.OutOrStdout(), t)
		}
		printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Updated todo %d", id))
		return nil
	})
}
