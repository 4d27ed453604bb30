package flags

import (
	"github.com/spf13/cobra"
)

func AddPick(cmd *cobra.Command) {
	cmd.Flags().Bool("pick", false, "Choose the preset with an interactive fuzzy finder")
}

func HandlePick(cmd *cobra.Command) bool {
	pick, _ := cmd.Flags().GetBool("pick")
	return pick
}

func AddClipboard(cmd *cobra.Command, usage string) {
	cmd.Flags().Bool("clipboard", false, usage)
}

func HandleClipboard(cmd *cobra.Command) bool {
	clip, _ := cmd.Flags().GetBool("clipboard")
	return clip
}
