package policy

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/an-presets/internal/preset"
	"github.com/Paintersrp/an-presets/internal/resolve"
	"github.com/Paintersrp/an-presets/internal/state"
)

func NewCmdPolicy(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Show or change how folder, tag and global presets combine",
		Long: heredoc.Doc(`
			The resolution policy decides which assignments apply to a note and how
			several presets are combined.

			  apply mode           folder-only, tag-only, folder-first, tag-first, merged
			  priority order       tag-folder-global, folder-tag-global, custom
			  conflict resolution  priority-only, merge-priority, merge-custom
			  merge strategy       folder-base, tag-base, default-base
			  tag order            supplied, alphabetical
		`),
	}

	cmd.AddCommand(
		newCmdGet(s),
		newCmdSet(s),
		newCmdReset(s),
	)
	return cmd
}

func newCmdGet(s *state.State) *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the current policy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := s.Manager.Policy()
			out := cmd.OutOrStdout()

			if asYAML {
				data, err := yaml.Marshal(p)
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}

			bold := color.New(color.Bold)
			groups := "all"
			if len(p.MergeGroups) > 0 {
				names := make([]string, 0, len(p.MergeGroups))
				for _, g := range p.MergeGroups {
					names = append(names, string(g))
				}
				groups = strings.Join(names, ",")
			}

			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.AddRow(bold.Sprint("apply mode"), p.ApplyMode)
			tbl.AddRow(bold.Sprint("priority order"), p.PriorityOrder)
			tbl.AddRow(bold.Sprint("conflict resolution"), p.ConflictResolution)
			tbl.AddRow(bold.Sprint("merge strategy"), p.MergeStrategy)
			tbl.AddRow(bold.Sprint("tag order"), p.TagOrder)
			tbl.AddRow(bold.Sprint("merge groups"), groups)
			fmt.Fprintln(out, tbl)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the policy as YAML")
	return cmd
}

func newCmdSet(s *state.State) *cobra.Command {
	var (
		applyMode          string
		priorityOrder      string
		conflictResolution string
		mergeStrategy      string
		tagOrder           string
		mergeGroups        []string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change parts of the policy",
		Long: heredoc.Doc(`
			Changes the given parts of the policy and keeps the rest.

			Examples:
			  an-presets policy set --apply-mode merged --conflict-resolution merge-custom
			  an-presets policy set --merge-groups style,layout
			  an-presets policy set --merge-groups ""
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := s.Manager.Policy()

			steps := []struct {
				flag  string
				apply func() error
			}{
				{"apply-mode", func() (err error) {
					p.ApplyMode, err = resolve.ParseApplyMode(applyMode)
					return err
				}},
				{"priority-order", func() (err error) {
					p.PriorityOrder, err = resolve.ParsePriorityOrder(priorityOrder)
					return err
				}},
				{"conflict-resolution", func() (err error) {
					p.ConflictResolution, err = resolve.ParseConflictResolution(conflictResolution)
					return err
				}},
				{"merge-strategy", func() (err error) {
					p.MergeStrategy, err = resolve.ParseMergeStrategy(mergeStrategy)
					return err
				}},
				{"tag-order", func() (err error) {
					p.TagOrder, err = resolve.ParseTagOrder(tagOrder)
					return err
				}},
				{"merge-groups", func() error {
					p.MergeGroups = nil
					for _, name := range mergeGroups {
						if name = strings.TrimSpace(name); name == "" {
							continue
						}
						g, err := preset.ParseGroup(name)
						if err != nil {
							return err
						}
						p.MergeGroups = append(p.MergeGroups, g)
					}
					return nil
				}},
			}

			changed := false
			for _, step := range steps {
				if !cmd.Flags().Changed(step.flag) {
					continue
				}
				changed = true
				if err := step.apply(); err != nil {
					return err
				}
			}
			if !changed {
				return fmt.Errorf("nothing to change: pass at least one policy flag")
			}

			if err := s.Manager.SetPolicy(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Policy updated")
			return nil
		},
	}

	cmd.Flags().StringVar(&applyMode, "apply-mode", "", "Which assignments take part in resolution")
	cmd.Flags().StringVar(&priorityOrder, "priority-order", "", "Precedence of tag, folder and global presets in merged mode")
	cmd.Flags().StringVar(&conflictResolution, "conflict-resolution", "", "How several presets combine in merged mode")
	cmd.Flags().StringVar(&mergeStrategy, "merge-strategy", "", "Base preset of merge-custom")
	cmd.Flags().StringVar(&tagOrder, "tag-order", "", "Which of several assigned tags wins")
	cmd.Flags().StringSliceVar(&mergeGroups, "merge-groups", nil, "Groups deep merged by merge-custom (empty means all)")
	return cmd
}

func newCmdReset(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default policy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := s.Manager.SetPolicy(cmd.Context(), resolve.DefaultPolicy()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Policy reset to defaults")
			return nil
		},
	}
}
