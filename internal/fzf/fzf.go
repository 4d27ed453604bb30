package fzf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/Paintersrp/an-presets/internal/preset"
	"github.com/Paintersrp/an-presets/utils"
)

// ErrNoSelection is returned when the finder is closed without a choice.
var ErrNoSelection = errors.New("no preset selected")

// FindFunc matches fuzzyfinder.Find so tests can replace the terminal UI.
type FindFunc func(items []preset.Preset, label func(i int) string, opts ...fuzzyfinder.Option) (int, error)

// PresetFinder picks a preset interactively, previewing its settings.
type PresetFinder struct {
	Header  string
	presets []preset.Preset
	find    FindFunc
}

func NewPresetFinder(presets []preset.Preset, header string) *PresetFinder {
	return &PresetFinder{
		Header:  header,
		presets: presets,
		find: func(items []preset.Preset, label func(int) string, opts ...fuzzyfinder.Option) (int, error) {
			return fuzzyfinder.Find(items, label, opts...)
		},
	}
}

// WithFind swaps the finder implementation.
func (f *PresetFinder) WithFind(find FindFunc) *PresetFinder {
	f.find = find
	return f
}

// Run opens the finder, pre-filled with query when it is not empty.
func (f *PresetFinder) Run(query string) (preset.Preset, error) {
	if len(f.presets) == 0 {
		return preset.Preset{}, fmt.Errorf("no presets to choose from")
	}

	options := []fuzzyfinder.Option{
		fuzzyfinder.WithPreviewWindow(f.renderPreview),
	}
	if query != "" {
		options = append(options, fuzzyfinder.WithQuery(query))
	}
	if f.Header != "" {
		options = append(options, fuzzyfinder.WithHeader(f.Header))
	}

	idx, err := f.find(f.presets, f.label, options...)
	if errors.Is(err, fuzzyfinder.ErrAbort) || (err == nil && idx < 0) {
		return preset.Preset{}, ErrNoSelection
	}
	if err != nil {
		return preset.Preset{}, fmt.Errorf("error selecting preset: %w", err)
	}
	return f.presets[idx], nil
}

// label shows the name, id and defined groups of one preset.
func (f *PresetFinder) label(i int) string {
	p := f.presets[i]

	groups := make([]string, 0, len(preset.Groups))
	for _, g := range p.Settings.Defined() {
		groups = append(groups, string(g))
	}
	summary := "[No settings]"
	if len(groups) > 0 {
		summary = "[" + strings.Join(groups, ", ") + "]"
	}

	marker := ""
	if p.IsDefault {
		marker = " *"
	}
	return fmt.Sprintf("%s (%s)%s %s", p.Name, p.ID, marker, summary)
}

func (f *PresetFinder) renderPreview(i, w, h int) string {
	if i == -1 {
		return ""
	}
	return utils.RenderPresetPreview(f.presets[i], w, h)
}
