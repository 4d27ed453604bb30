package presets

import (
	"fmt"
	"io"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/atotto/clipboard"
	"github.com/erikgeiser/promptkit/confirmation"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/an-presets/internal/fzf"
	"github.com/Paintersrp/an-presets/internal/preset"
	"github.com/Paintersrp/an-presets/internal/state"
	"github.com/Paintersrp/an-presets/pkg/shared/arg"
	"github.com/Paintersrp/an-presets/pkg/shared/flags"
	"github.com/Paintersrp/an-presets/utils"
)

var (
	readClipboard  = clipboard.ReadAll
	writeClipboard = clipboard.WriteAll

	pickPreset = func(presets []preset.Preset, header, query string) (preset.Preset, error) {
		return fzf.NewPresetFinder(presets, header).Run(query)
	}

	confirm = func(prompt string) (bool, error) {
		return confirmation.New(prompt, confirmation.No).RunPrompt()
	}

	interactive = func() bool {
		return utils.IsTerminal(os.Stdin)
	}
)

func NewCmdPreset(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "preset",
		Aliases: []string{"p", "presets"},
		Short:   "Create, inspect and organise display presets",
		Long: heredoc.Doc(`
			Presets are named bundles of display settings. Each settings group
			(content, style, layout, sort, cardSet) is optional; groups a preset
			leaves out are inherited during resolution.

			Examples:
			  an-presets preset list
			  an-presets preset create Reading --set layout.mode=card --set layout.columns=2
			  an-presets preset show --pick
		`),
	}

	cmd.AddCommand(
		newCmdList(s),
		newCmdShow(s),
		newCmdCreate(s),
		newCmdUpdate(s),
		newCmdDelete(s),
		newCmdRename(s),
		newCmdClone(s),
		newCmdDefault(s),
		newCmdExport(s),
		newCmdImport(s),
	)

	return cmd
}

// targetID returns the preset id from args[0] or, with --pick, from the fuzzy
// finder seeded with args[0] as query.
func targetID(cmd *cobra.Command, s *state.State, args []string, header string) (string, error) {
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

func writeUsage(w io.Writer, s *state.State, id string) {
	usage, err := s.Manager.UsageOf(id)
	if err != nil || !usage.InUse() {
		return
	}
	if len(usage.Folders) > 0 {
		fmt.Fprintf(w, "  folders: %v\n", usage.Folders)
	}
	if len(usage.Tags) > 0 {
		fmt.Fprintf(w, "  tags:    %v\n", usage.Tags)
	}
	if usage.GlobalDefault {
		fmt.Fprintln(w, "  global default")
	}
}
