package presets

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/an-presets/internal/state"
	"github.com/Paintersrp/an-presets/pkg/shared/arg"
)

func newCmdRename(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:     "rename [old-id] [new-id]",
		Aliases: []string{"mv"},
		Short:   "Change the id of a preset, carrying its assignments along",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldID, ok := arg.HandleID(args, 0)
			if !ok {
				return fmt.Errorf("old id cannot be empty")
			}
			newID, ok := arg.HandleID(args, 1)
			if !ok {
				return fmt.Errorf("new id cannot be empty")
			}

			if err := s.Manager.Rename(cmd.Context(), oldID, newID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed preset %s to %s\n", oldID, newID)
			return nil
		},
	}
}
