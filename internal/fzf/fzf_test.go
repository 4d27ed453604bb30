package fzf

import (
	"errors"
	"strings"
	"testing"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/Paintersrp/an-presets/internal/preset"
)

func samplePresets() []preset.Preset {
	return []preset.Preset{
		{ID: "default", Name: "Default", IsDefault: true, Settings: preset.DefaultSettings()},
		{ID: "work", Name: "Work", Settings: preset.Settings{Style: &preset.StyleSettings{Theme: preset.Ptr("dark")}}},
	}
}

func TestRunReturnsChosenPreset(t *testing.T) {
	var labels []string
	f := NewPresetFinder(samplePresets(), "Pick").WithFind(
		func(items []preset.Preset, label func(int) string, opts ...fuzzyfinder.Option) (int, error) {
			for i := range items {
				labels = append(labels, label(i))
			}
			return 1, nil
		},
	)

	p, err := f.Run("wo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "work" {
		t.Fatalf("expected work, got %q", p.ID)
	}
	if !strings.Contains(labels[0], "(default) *") {
		t.Fatalf("expected the global default marker, got %q", labels[0])
	}
	if !strings.HasSuffix(labels[1], "[style]") {
		t.Fatalf("expected defined groups in label, got %q", labels[1])
	}
}

func TestRunAbort(t *testing.T) {
	f := NewPresetFinder(samplePresets(), "").WithFind(
		func([]preset.Preset, func(int) string, ...fuzzyfinder.Option) (int, error) {
			return -1, fuzzyfinder.ErrAbort
		},
	)
	if _, err := f.Run(""); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
}

func TestRunWithoutPresets(t *testing.T) {
	if _, err := NewPresetFinder(nil, "").Run(""); err == nil {
		t.Fatal("expected an error for an empty list")
	}
}
