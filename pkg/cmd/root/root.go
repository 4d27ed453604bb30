package root

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Paintersrp/an-presets/internal/constants"
	"github.com/Paintersrp/an-presets/internal/state"
	"github.com/Paintersrp/an-presets/pkg/cmd/assign"
	"github.com/Paintersrp/an-presets/pkg/cmd/events"
	"github.com/Paintersrp/an-presets/pkg/cmd/initialize"
	"github.com/Paintersrp/an-presets/pkg/cmd/policy"
	"github.com/Paintersrp/an-presets/pkg/cmd/presets"
	"github.com/Paintersrp/an-presets/pkg/cmd/resolve"
	"github.com/Paintersrp/an-presets/pkg/cmd/version"
	"github.com/Paintersrp/an-presets/pkg/cmd/workspace"
)

// NewCmdRoot builds the command tree. The state is filled in before any
// subcommand runs, once persistent flags are parsed; an already loaded state
// is used as is.
func NewCmdRoot(s *state.State) (*cobra.Command, error) {
	var (
		workspaceName string
		verbose       bool
	)

	cmd := &cobra.Command{
		Use:     constants.AppName,
		Short:   "Manage note display presets and resolve them per note.",
		Version: constants.Version,
		Long: heredoc.Doc(`
			Named display presets for a notes vault, assigned to folders and tags.

			A note's effective settings are resolved from the preset of its folder
			(inherited from the nearest assigned ancestor), the presets of its tags,
			the global default and the resolution policy.

			Examples:
			  an-presets preset create "Work" --set style.theme=dark
			  an-presets assign folder projects/work work
			  an-presets resolve projects/work/plan.md --explain
		`),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if s.Manager != nil || skipState(cmd) {
				return nil
			}
			loaded, err := state.NewState(cmd.Context(), state.Options{
				Workspace: workspaceName,
				Verbose:   verbose,
				LogOutput: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			*s = *loaded
			return nil
		},
	}

	cmd.PersistentFlags().
		StringVarP(&workspaceName, "workspace", "w", "", "Workspace to use for this command (default is the current workspace)")
	cmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Log diagnostics to stderr")
	cmd.PersistentFlags().
		String("vaultdir", "", "Override the vault directory of the workspace")
	cmd.PersistentFlags().
		String("storage-backend", "", "Override the storage backend (file, diskv, s3, postgres)")
	cmd.PersistentFlags().
		Bool("watch", false, "Reload presets when the store file changes on disk")
	viper.BindPFlag("vaultdir", cmd.PersistentFlags().Lookup("vaultdir"))
	viper.BindPFlag("storage.backend", cmd.PersistentFlags().Lookup("storage-backend"))
	viper.BindPFlag("watch", cmd.PersistentFlags().Lookup("watch"))

	cmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	cmd.AddCommand(
		initialize.NewCmdInit(s),
		workspace.NewCmdWorkspace(s),
		presets.NewCmdPreset(s),
		assign.NewCmdAssign(s),
		assign.NewCmdUnassign(s),
		assign.NewCmdOverride(s),
		assign.NewCmdAssignments(s),
		policy.NewCmdPolicy(s),
		resolve.NewCmdResolve(s),
		events.NewCmdEvents(s),
		version.NewCmdVersion(),
	)

	return cmd, nil
}

func skipState(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[state.SkipAnnotation]; ok {
			return true
		}
	}
	return false
}
