package presets

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/an-presets/internal/state"
)

func newCmdList(s *state.State) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"l", "ls"},
		Short:   "List presets with their settings groups and assignments",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list := s.Manager.List()
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}

			if len(list) == 0 {
				fmt.Fprintln(out, "No presets")
				return nil
			}

			bold := color.New(color.Bold)
			accent := color.New(color.FgCyan)

			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.MaxColWidth = 40
			tbl.AddRow(
				bold.Sprint("ID"),
				bold.Sprint("NAME"),
				bold.Sprint("GROUPS"),
				bold.Sprint("FOLDERS"),
				bold.Sprint("TAGS"),
			)
			for _, p := range list {
				id := p.ID
				if p.IsDefault {
					id = accent.Sprint(id + " *")
				}

				groups := make([]string, 0, 5)
				for _, g := range p.Settings.Defined() {
					groups = append(groups, string(g))
				}

				usage, err := s.Manager.UsageOf(p.ID)
				if err != nil {
					return err
				}
				tbl.AddRow(
					id,
					p.Name,
					dashIfEmpty(strings.Join(groups, ",")),
					dashIfEmpty(strings.Join(usage.Folders, ",")),
					dashIfEmpty(strings.Join(usage.Tags, ",")),
				)
			}

			fmt.Fprintln(out, tbl)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the presets as JSON")
	return cmd
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
