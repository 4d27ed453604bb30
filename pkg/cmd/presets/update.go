package presets

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/an-presets/internal/state"
	"github.com/Paintersrp/an-presets/pkg/shared/flags"
)

func newCmdUpdate(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "update [id]",
		Aliases: []string{"u", "edit"},
		Short:   "Change the name, description or settings of a preset",
		Long: heredoc.Doc(`
			Updates a preset in place. --set changes single fields and keeps the
			rest of the group; groups read with --from-file replace the preset's
			group as a whole. Groups that are not mentioned stay as they are.

			Examples:
			  an-presets preset update work --set style.theme=dark --set style.accent=#FF8800
			  an-presets preset update work --name "Work board" --description "Projects"
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := targetID(cmd, s, args, "Update preset")
			if err != nil {
				return err
			}
			current, err := s.Manager.Get(id)
			if err != nil {
				return err
			}

			var name, description *string
			if cmd.Flags().Changed("name") {
				v, _ := cmd.Flags().GetString("name")
				name = &v
			}
			if cmd.Flags().Changed("description") {
				v, _ := cmd.Flags().GetString("description")
				description = &v
			}

			settings, hasSettings, err := flags.HandleSettings(cmd, current.Settings)
			if err != nil {
				return err
			}
			if name == nil && description == nil && !hasSettings {
				return fmt.Errorf("nothing to update: use --name, --description, --set or --from-file")
			}

			ctx := cmd.Context()
			if hasSettings {
				if _, err := s.Manager.Update(ctx, id, settings); err != nil {
					return err
				}
			}
			if name != nil || description != nil {
				if _, err := s.Manager.UpdateMeta(ctx, id, name, description); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated preset %s\n", id)
			return nil
		},
	}

	cmd.Flags().String("name", "", "New display name")
	cmd.Flags().StringP("description", "d", "", "New description")
	flags.AddSettings(cmd)
	flags.AddPick(cmd)
	return cmd
}
