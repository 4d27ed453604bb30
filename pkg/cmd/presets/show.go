package presets

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/an-presets/internal/state"
	"github.com/Paintersrp/an-presets/pkg/shared/flags"
	"github.com/Paintersrp/an-presets/utils"
)

func newCmdShow(s *state.State) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "show [id]",
		Aliases: []string{"s", "get"},
		Short:   "Show one preset",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := targetID(cmd, s, args, "Show preset")
			if err != nil {
				return err
			}
			p, err := s.Manager.Get(id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(p)
			}

			width, colour := 100, false
			if f, ok := out.(*os.File); ok && utils.IsTerminal(f) {
				width, colour = utils.TerminalWidth(f, width), true
			}
			rendered, err := utils.RenderMarkdown(utils.PresetMarkdown(p), width, colour)
			if err != nil {
				return fmt.Errorf("failed to render preset: %w", err)
			}
			fmt.Fprint(out, rendered)

			usage, err := s.Manager.UsageOf(id)
			if err == nil && usage.InUse() {
				fmt.Fprintln(out, "Used by:")
				writeUsage(out, s, id)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the preset as JSON")
	flags.AddPick(cmd)
	return cmd
}
