package presets

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/an-presets/internal/preset"
	"github.com/Paintersrp/an-presets/internal/state"
	"github.com/Paintersrp/an-presets/pkg/shared/flags"
)

func newCmdCreate(s *state.State) *cobra.Command {
	var (
		id          string
		description string
		makeDefault bool
	)

	cmd := &cobra.Command{
		Use:     "create [name]",
		Aliases: []string{"c", "new"},
		Short:   "Create a preset",
		Long: heredoc.Doc(`
			Creates a preset. Without --id a unique id is generated.

			Settings are given per field with --set group.field=value, or as whole
			groups with --from-file (YAML, or JSON when the file ends in .json).

			Examples:
			  an-presets preset create "Work board" --id work --set layout.mode=grid --set layout.columns=3
			  an-presets preset create Reading --from-file reading.yaml --default
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("preset name cannot be empty")
			}

			settings, hasSettings, err := flags.HandleSettings(cmd, preset.Settings{})
			if err != nil {
				return err
			}
			if hasSettings {
				if err := settings.Validate(); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			var p preset.Preset
			if id = strings.TrimSpace(id); id != "" {
				p, err = s.Manager.CreateWithID(ctx, id, name, description)
			} else {
				p, err = s.Manager.Create(ctx, name, description)
			}
			if err != nil {
				return err
			}

			if hasSettings {
				if p, err = s.Manager.Update(ctx, p.ID, settings); err != nil {
					return err
				}
			}
			if makeDefault {
				if err := s.Manager.SetGlobalDefault(ctx, p.ID); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created preset %q (%s)\n", p.Name, p.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Id of the new preset")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description of the preset")
	cmd.Flags().BoolVar(&makeDefault, "default", false, "Make the new preset the global default")
	flags.AddSettings(cmd)
	return cmd
}
