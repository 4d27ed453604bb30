package resolve

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/an-presets/internal/notectx"
	"github.com/Paintersrp/an-presets/internal/preset"
	res "github.com/Paintersrp/an-presets/internal/resolve"
	"github.com/Paintersrp/an-presets/internal/state"
	"github.com/Paintersrp/an-presets/pkg/shared/arg"
	"github.com/Paintersrp/an-presets/pkg/shared/flags"
)

type options struct {
	tags    []string
	explain bool
	asJSON  bool
	apply   bool
}

func NewCmdResolve(s *state.State) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:     "resolve [note]",
		Aliases: []string{"r"},
		Short:   "Print the effective display settings of a note",
		Long: heredoc.Doc(`
			Resolves the settings of a note from its folder, its tags, the global
			default and the policy. Tags are read from the note's front matter and
			body; --tags replaces them. A note that does not exist yet is resolved
			from its path alone.

			Examples:
			  an-presets resolve projects/work/plan.md
			  an-presets resolve projects/work/plan.md --explain
			  an-presets resolve drafts/new.md --tags review,todo --json
			  an-presets resolve --pick
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			switch {
			case flags.HandlePick(cmd):
				query := ""
				if len(args) > 0 {
					query = args[0]
				}
				picked, err := pickNote(s.Vault, query)
				if err != nil {
					return err
				}
				path = picked
			case len(args) == 1:
				path = args[0]
			default:
				return fmt.Errorf("a note path is required (or use --pick)")
			}

			fc, err := noteContext(s, path, cmd.Flags().Changed("tags"), opts.tags)
			if err != nil {
				return err
			}
			return run(cmd.OutOrStdout(), s, fc, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.tags, "tags", "t", nil, "Tags of the note, in precedence order (replaces the tags read from the note)")
	cmd.Flags().BoolVarP(&opts.explain, "explain", "e", false, "Show which presets took part and where each group came from")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&opts.apply, "apply", false, "Publish an applied event for the winning preset")
	flags.AddPick(cmd)
	cmd.Flags().Lookup("pick").Usage = "Choose the note with an interactive fuzzy finder"
	return cmd
}

// noteContext reads the note's tags unless they were given explicitly.
func noteContext(s *state.State, path string, tagsGiven bool, tags []string) (notectx.FileContext, error) {
	fc, err := s.Provider.Context(path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		fc, err = s.Provider.FromSource(path, nil)
		if err != nil {
			return notectx.FileContext{}, err
		}
		s.Logger.Debug("note does not exist, resolving from its path", "path", path)
	default:
		return notectx.FileContext{}, err
	}

	if tagsGiven {
		fc.Tags = arg.HandleTags(tags)
	}
	return fc, nil
}

func run(out io.Writer, s *state.State, fc notectx.FileContext, opts options) error {
	result := s.Manager.Explain(fc.Path, fc.Tags)
	if opts.apply {
		s.Manager.Apply(fc.Path, fc.Tags)
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if opts.explain {
			return enc.Encode(explanation(fc, result))
		}
		return enc.Encode(result.Settings)
	}

	if opts.explain {
		fmt.Fprintln(out, renderExplain(fc, result))
	}
	data, err := yaml.Marshal(result.Settings)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

type explained struct {
	Path       string                  `json:"path"`
	Folder     string                  `json:"folder"`
	Tags       []string                `json:"tags"`
	Winner     string                  `json:"winner"`
	Fallback   bool                    `json:"fallback"`
	Candidates []res.Candidate         `json:"candidates"`
	Sources    map[preset.Group]string `json:"sources"`
	MergeError string                  `json:"mergeError,omitempty"`
	Settings   preset.Settings         `json:"settings"`
}

func explanation(fc notectx.FileContext, r res.Result) explained {
	e := explained{
		Path:       fc.Path,
		Folder:     r.Folder,
		Tags:       fc.Tags,
		Winner:     r.WinnerID,
		Fallback:   r.Fallback,
		Candidates: r.Candidates,
		Sources:    r.Sources,
		Settings:   r.Settings,
	}
	if r.MergeErr != nil {
		e.MergeError = r.MergeErr.Error()
	}
	return e
}

func renderExplain(fc notectx.FileContext, r res.Result) string {
	var b strings.Builder

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(value)
		b.WriteString("\n")
	}

	b.WriteString(headerStyle.Render(fc.Path))
	b.WriteString("\n")
	row("folder", r.Folder)
	if len(fc.Tags) == 0 {
		row("tags", mutedStyle.Render("none"))
	} else {
		row("tags", strings.Join(fc.Tags, ", "))
	}

	winner := winnerStyle.Render(r.WinnerID)
	if r.Fallback {
		winner += " " + mutedStyle.Render("(fallback)")
	}
	row("winner", winner)

	if len(r.Candidates) > 0 {
		b.WriteString(headerStyle.Render("candidates"))
		b.WriteString(mutedStyle.Render(" lowest priority first"))
		b.WriteString("\n")
		var lines []string
		for _, c := range r.Candidates {
			line := fmt.Sprintf("%-8s %s", c.Source, c.PresetID)
			if c.Key != "" {
				line += mutedStyle.Render(" via " + c.Key)
			}
			if !c.Overrides && c.Source != res.SourceGlobal && c.Source != res.SourceFallback {
				line += mutedStyle.Render(" (below global)")
			}
			lines = append(lines, line)
		}
		b.WriteString(sectionStyle.Render(strings.Join(lines, "\n")))
		b.WriteString("\n")
	}

	if len(r.Sources) > 0 {
		b.WriteString(headerStyle.Render("groups"))
		b.WriteString("\n")
		var lines []string
		for _, g := range preset.Groups {
			src, ok := r.Sources[g]
			if !ok {
				src = mutedStyle.Render("defaults")
			}
			lines = append(lines, fmt.Sprintf("%-8s %s", g, src))
		}
		b.WriteString(sectionStyle.Render(strings.Join(lines, "\n")))
		b.WriteString("\n")
	}

	if r.MergeErr != nil {
		b.WriteString(warnStyle.Render("custom merge failed, priority merge used: " + r.MergeErr.Error()))
		b.WriteString("\n")
	}
	return b.String()
}
