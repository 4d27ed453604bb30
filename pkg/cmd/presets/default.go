package presets

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/an-presets/internal/state"
	"github.com/Paintersrp/an-presets/pkg/shared/flags"
)

func newCmdDefault(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "default",
		Short: "Show, set or clear the global default preset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, ok := s.Manager.GlobalDefault()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "No global default preset")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set [id]",
		Short: "Make a preset the global default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := targetID(cmd, s, args, "Global default")
			if err != nil {
				return err
			}
			if err := s.Manager.SetGlobalDefault(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Global default is now %s\n", id)
			return nil
		},
	}
	flags.AddPick(set)

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Remove the global default",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := s.Manager.ClearGlobalDefault(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Global default cleared")
			return nil
		},
	}

	cmd.AddCommand(set, clear)
	return cmd
}
