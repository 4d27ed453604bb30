package assign

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	assignidx "github.com/Paintersrp/an-presets/internal/assign"
	"github.com/Paintersrp/an-presets/internal/state"
)

func NewCmdAssignments(s *state.State) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "assignments",
		Aliases: []string{"mappings"},
		Short:   "List folder and tag assignments and the global default",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			folders := s.Manager.FolderAssignments()
			tags := s.Manager.TagAssignments()
			global, hasGlobal := s.Manager.GlobalDefault()
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Folders       map[string]assignidx.Assignment `json:"folders"`
					Tags          map[string]assignidx.Assignment `json:"tags"`
					GlobalDefault string                          `json:"globalDefault,omitempty"`
				}{folders, tags, global})
			}

			bold := color.New(color.Bold)
			dim := color.New(color.Faint)

			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.AddRow(bold.Sprint("KIND"), bold.Sprint("KEY"), bold.Sprint("PRESET"), bold.Sprint("OVERRIDES GLOBAL"))
			addRows(tbl, string(kindFolder), folders, dim)
			addRows(tbl, string(kindTag), tags, dim)
			if hasGlobal {
				tbl.AddRow("global", "-", global, "-")
			}

			if len(folders) == 0 && len(tags) == 0 && !hasGlobal {
				fmt.Fprintln(out, "No assignments")
				return nil
			}
			fmt.Fprintln(out, tbl)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the assignments as JSON")
	return cmd
}

func addRows(tbl *uitable.Table, k string, entries map[string]assignidx.Assignment, dim *color.Color) {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		a := entries[key]
		flag := overrideLabel(a.OverridesGlobal)
		if a.OverridesGlobal == nil {
			flag = dim.Sprint("unset (true)")
		}
		tbl.AddRow(k, display(key), a.PresetID, flag)
	}
}
