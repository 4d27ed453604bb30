package presets

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/an-presets/internal/state"
	"github.com/Paintersrp/an-presets/pkg/shared/flags"
)

func newCmdDelete(s *state.State) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete [id]",
		Aliases: []string{"d", "rm"},
		Short:   "Delete a preset and every assignment pointing at it",
		Long: heredoc.Doc(`
			Deletes a preset. Folder and tag assignments to it are removed and the
			global default is cleared when it pointed at the preset. Deleting an
			unknown id is not an error.

			Examples:
			  an-presets preset delete reading
			  an-presets preset delete --pick --yes
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := targetID(cmd, s, args, "Delete preset")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if usage, err := s.Manager.UsageOf(id); err == nil && usage.InUse() {
				fmt.Fprintf(out, "Preset %s is still used by:\n", id)
				writeUsage(out, s, id)
			}

			if !yes {
				if !interactive() {
					return fmt.Errorf("refusing to delete %s without --yes outside a terminal", id)
				}
				ok, err := confirm(fmt.Sprintf("Delete preset %s?", id))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Aborted")
					return nil
				}
			}

			removed, err := s.Manager.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(out, "Preset %s does not exist\n", id)
				return nil
			}
			fmt.Fprintf(out, "Deleted preset %s\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking for confirmation")
	flags.AddPick(cmd)
	return cmd
}
