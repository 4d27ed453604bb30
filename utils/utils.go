package utils

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/an-presets/internal/preset"
)

const (
	defaultWrapWidth       = 100
	previewHorizontalSpace = 4
)

func AppendIfNotExists(slice []string, value string) []string {
	for _, v := range slice {
		if v == value {
			return slice
		}
	}
	return append(slice, value)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// TerminalWidth returns the width of f, or fallback when it is not a terminal.
func TerminalWidth(f *os.File, fallback int) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}

// PresetMarkdown describes a preset as a markdown document: its name, id,
// description and settings as YAML.
func PresetMarkdown(p preset.Preset) string {
	var b strings.Builder

	name := p.Name
	if name == "" {
		name = p.ID
	}
	fmt.Fprintf(&b, "# %s\n\n", name)
	fmt.Fprintf(&b, "`%s`", p.ID)
	if p.IsDefault {
		b.WriteString(" · global default")
	}
	b.WriteString("\n\n")

	if desc := strings.TrimSpace(p.Description); desc != "" {
		b.WriteString(desc)
		b.WriteString("\n\n")
	}

	if defined := p.Settings.Defined(); len(defined) == 0 {
		b.WriteString("_No settings defined; every group is inherited._\n")
	} else {
		data, err := yaml.Marshal(p.Settings)
		if err != nil {
			fmt.Fprintf(&b, "_Settings could not be encoded: %v_\n", err)
		} else {
			b.WriteString("```yaml\n")
			b.Write(data)
			b.WriteString("```\n")
		}
	}

	if !p.UpdatedAt.IsZero() {
		fmt.Fprintf(&b, "\nUpdated %s\n", p.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return b.String()
}

// RenderMarkdown renders markdown with glamour, wrapping to width. Without
// colour the notty style keeps the output free of escape codes.
func RenderMarkdown(markdown string, width int, colour bool) (string, error) {
	wrap := width - previewHorizontalSpace
	if wrap <= 0 {
		wrap = defaultWrapWidth
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(wrap)}
	if colour {
		opts = append(opts,
			glamour.WithStandardStyle("dracula"),
			glamour.WithColorProfile(termenv.ANSI256),
		)
	} else {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	return r.Render(markdown)
}

// RenderPresetPreview is the fuzzy finder preview of one preset.
func RenderPresetPreview(p preset.Preset, w, h int) string {
	out, err := RenderMarkdown(PresetMarkdown(p), w, true)
	if err != nil {
		return "Error rendering preset"
	}
	return out
}
