package presets

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/an-presets/internal/state"
	"github.com/Paintersrp/an-presets/pkg/shared/flags"
)

func newCmdClone(s *state.State) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:     "clone [id]",
		Aliases: []string{"cp"},
		Short:   "Copy a preset's settings into a new preset",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := targetID(cmd, s, args, "Clone preset")
			if err != nil {
				return err
			}

			p, err := s.Manager.Clone(cmd.Context(), id, name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cloned %s into %q (%s)\n", id, p.Name, p.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Name of the copy (default is \"<name> (copy)\")")
	flags.AddPick(cmd)
	return cmd
}
