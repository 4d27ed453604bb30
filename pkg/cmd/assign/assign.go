package assign

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/an-presets/internal/fzf"
	"github.com/Paintersrp/an-presets/internal/pathutil"
	"github.com/Paintersrp/an-presets/internal/preset"
	"github.com/Paintersrp/an-presets/internal/state"
	"github.com/Paintersrp/an-presets/pkg/shared/arg"
	"github.com/Paintersrp/an-presets/pkg/shared/flags"
)

var pickPreset = func(presets []preset.Preset, header, query string) (preset.Preset, error) {
	return fzf.NewPresetFinder(presets, header).Run(query)
}

func NewCmdAssign(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "assign",
		Aliases: []string{"a"},
		Short:   "Assign a preset to a folder or a tag",
		Long: heredoc.Doc(`
			Maps a folder or a tag to a preset. Folder assignments are inherited by
			every subfolder without one of its own; tag assignments match the tag
			exactly.

			--overrides-global=false puts the assignment below the global default
			when the merged apply mode combines presets.

			Examples:
			  an-presets assign folder projects/work work
			  an-presets assign tag review reading --overrides-global=false
			  an-presets assign folder journal --pick
		`),
	}

	cmd.AddCommand(
		newCmdAssignKind(s, kindFolder),
		newCmdAssignKind(s, kindTag),
	)
	return cmd
}

type kind string

const (
	kindFolder kind = "folder"
	kindTag    kind = "tag"
)

func newCmdAssignKind(s *state.State, k kind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s [%s] [preset-id]", k, k),
		Short: fmt.Sprintf("Assign a preset to a %s", k),
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := keyFor(s, k, args[0])

			id, err := presetID(cmd, s, args[1:], fmt.Sprintf("Preset for %s %s", k, key))
			if err != nil {
				return err
			}
			overrides, err := flags.HandleOverride(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if k == kindFolder {
				err = s.Manager.AssignFolder(ctx, key, id, overrides)
			} else {
				err = s.Manager.AssignTag(ctx, key, id, overrides)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Assigned %s %s to preset %s\n", k, display(key), id)
			return nil
		},
	}

	flags.AddOverride(cmd)
	flags.AddPick(cmd)
	return cmd
}

func NewCmdUnassign(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unassign",
		Short: "Remove the assignment of a folder or a tag",
		Long: heredoc.Doc(`
			Removes the exact folder or tag assignment. Subfolders then inherit
			from the next assigned ancestor. Removing a missing assignment is
			not an error.
		`),
	}

	for _, k := range []kind{kindFolder, kindTag} {
		k := k
		cmd.AddCommand(&cobra.Command{
			Use:   fmt.Sprintf("%s [%s]", k, k),
			Short: fmt.Sprintf("Remove a %s assignment", k),
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				key := keyFor(s, k, args[0])

				var (
					removed bool
					err     error
				)
				if k == kindFolder {
					removed, err = s.Manager.UnassignFolder(cmd.Context(), key)
				} else {
					removed, err = s.Manager.UnassignTag(cmd.Context(), key)
				}
				if err != nil {
					return err
				}

				if !removed {
					fmt.Fprintf(cmd.OutOrStdout(), "No assignment for %s %s\n", k, display(key))
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed assignment of %s %s\n", k, display(key))
				return nil
			},
		})
	}
	return cmd
}

func NewCmdOverride(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "override",
		Short: "Set whether an assignment wins over the global default",
		Long: heredoc.Doc(`
			Changes the overrides-global flag of an existing assignment. "unset"
			restores the default behaviour, which is to override.

			Examples:
			  an-presets override folder archive false
			  an-presets override tag review unset
		`),
	}

	for _, k := range []kind{kindFolder, kindTag} {
		k := k
		cmd.AddCommand(&cobra.Command{
			Use:       fmt.Sprintf("%s [%s] [true|false|unset]", k, k),
			Short:     fmt.Sprintf("Set the override flag of a %s assignment", k),
			Args:      cobra.ExactArgs(2),
			ValidArgs: []string{"true", "false", "unset"},
			RunE: func(cmd *cobra.Command, args []string) error {
				key := keyFor(s, k, args[0])
				overrides, err := flags.ParseOverride(strings.TrimSpace(args[1]))
				if err != nil {
					return err
				}

				if k == kindFolder {
					err = s.Manager.SetFolderOverride(cmd.Context(), key, overrides)
				} else {
					err = s.Manager.SetTagOverride(cmd.Context(), key, overrides)
				}
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Set overrides-global of %s %s to %s\n", k, display(key), overrideLabel(overrides))
				return nil
			},
		})
	}
	return cmd
}

// keyFor accepts folders relative to the vault or absolute paths inside it.
// Tags may be written with a leading '#'.
func keyFor(s *state.State, k kind, raw string) string {
	raw = strings.TrimSpace(raw)
	if k == kindTag {
		if tags := arg.HandleTags([]string{raw}); len(tags) > 0 {
			return tags[0]
		}
		return raw
	}

	if filepath.IsAbs(raw) && s.Vault != "" {
		if rel, err := filepath.Rel(s.Vault, raw); err == nil && !strings.HasPrefix(rel, "..") {
			raw = rel
		}
	}
	return pathutil.NormalizeFolder(filepath.ToSlash(raw))
}

func presetID(cmd *cobra.Command, s *state.State, args []string, header string) (string, error) {
	if flags.HandlePick(cmd) {
		query := ""
		if len(args) > 0 {
			query = args[0]
		}
		p, err := pickPreset(s.Manager.List(), header, query)
		if err != nil {
			return "", err
		}
		return p.ID, nil
	}

	id, ok := arg.HandleID(args, 0)
	if !ok {
		return "", fmt.Errorf("a preset id is required (or use --pick)")
	}
	return id, nil
}

func display(key string) string {
	if key == pathutil.RootFolder {
		return "(vault root)"
	}
	return key
}

func overrideLabel(overrides *bool) string {
	if overrides == nil {
		return "unset"
	}
	return fmt.Sprint(*overrides)
}
