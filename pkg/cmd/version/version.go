package version

import (
	"fmt"

	"github.com/spf13/cobra"
	goversion "go.hein.dev/go-version"

	"github.com/Paintersrp/an-presets/internal/constants"
	"github.com/Paintersrp/an-presets/internal/state"
)

func NewCmdVersion() *cobra.Command {
	var (
		short  bool
		output string
	)

	cmd := &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Example:     "an-presets version --short",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{state.SkipAnnotation: "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			resp := goversion.FuncWithOutput(short, constants.Version, constants.Commit, constants.Date, output)
			fmt.Fprint(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print just the version number")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format, one of 'yaml' or 'json'")
	return cmd
}
