package presets

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/an-presets/internal/manager"
	"github.com/Paintersrp/an-presets/internal/state"
	"github.com/Paintersrp/an-presets/pkg/shared/flags"
)

func newCmdExport(s *state.State) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "export [ids...]",
		Short: "Write presets as a portable bundle",
		Long: heredoc.Doc(`
			Exports the given presets, or all of them, as a JSON bundle with a
			checksum. The bundle goes to stdout unless --file or --clipboard is set.

			Examples:
			  an-presets preset export work reading --file presets.json
			  an-presets preset export --clipboard
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := s.Manager.Export(args...)
			if err != nil {
				return err
			}

			switch {
			case flags.HandleClipboard(cmd):
				if err := writeClipboard(string(data)); err != nil {
					return fmt.Errorf("write clipboard: %w", err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "Bundle copied to the clipboard")
			case file != "":
				if err := os.WriteFile(file, data, 0o644); err != nil {
					return fmt.Errorf("failed to write bundle: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Bundle written to %s\n", file)
			default:
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Write the bundle to a file")
	flags.AddClipboard(cmd, "Copy the bundle to the clipboard")
	return cmd
}

func newCmdImport(s *state.State) *cobra.Command {
	var (
		file      string
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Add the presets of a bundle",
		Long: heredoc.Doc(`
			Imports a bundle written by export, from --file, --clipboard or stdin.
			Presets whose id already exists are imported under a new "-copy-N" id
			unless --overwrite replaces them.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				data []byte
				err  error
			)
			switch {
			case flags.HandleClipboard(cmd):
				var text string
				text, err = readClipboard()
				data = []byte(text)
			case file != "":
				data, err = os.ReadFile(file)
			default:
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("failed to read bundle: %w", err)
			}

			report, err := s.Manager.Import(cmd.Context(), data, manager.ImportOptions{Overwrite: overwrite})
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the bundle from a file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace presets with the same id")
	flags.AddClipboard(cmd, "Read the bundle from the clipboard")
	return cmd
}

func printReport(w io.Writer, r manager.ImportReport) {
	fmt.Fprintf(w, "Imported %d preset(s)\n", len(r.IDs()))
	for _, id := range r.Created {
		fmt.Fprintf(w, "  created     %s\n", id)
	}
	for _, id := range r.Overwritten {
		fmt.Fprintf(w, "  overwritten %s\n", id)
	}

	olds := make([]string, 0, len(r.Renamed))
	for old := range r.Renamed {
		olds = append(olds, old)
	}
	sort.Strings(olds)
	for _, old := range olds {
		fmt.Fprintf(w, "  renamed     %s -> %s\n", old, r.Renamed[old])
	}
}
