package flags

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/an-presets/internal/preset"
)

func AddSettings(cmd *cobra.Command) {
	cmd.Flags().
		StringArray("set", nil, "Set one field as group.field=value, e.g. style.theme=dark (repeatable)")
	cmd.Flags().
		String("from-file", "", "Read settings groups from a YAML or JSON file")
}

// HandleSettings applies --from-file and then --set on top of base. Groups in
// the file replace whole groups of base; --set changes single fields. The
// boolean is false when neither flag was used.
func HandleSettings(cmd *cobra.Command, base preset.Settings) (preset.Settings, bool, error) {
	assignments, err := cmd.Flags().GetStringArray("set")
	if err != nil {
		return preset.Settings{}, false, err
	}
	file, err := cmd.Flags().GetString("from-file")
	if err != nil {
		return preset.Settings{}, false, err
	}

	patch := base.Clone()
	if file != "" {
		fromFile, err := ReadSettingsFile(file)
		if err != nil {
			return preset.Settings{}, false, err
		}
		patch = patch.Patch(fromFile)
	}
	for _, a := range assignments {
		if err := ApplyAssignment(&patch, a); err != nil {
			return preset.Settings{}, false, err
		}
	}
	return patch, file != "" || len(assignments) > 0, nil
}

// ReadSettingsFile decodes a settings document. Files ending in .json use the
// camelCase field names of the store, everything else the snake_case YAML names.
func ReadSettingsFile(path string) (preset.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return preset.Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	}

	var s preset.Settings
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&s)
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&s)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return preset.Settings{}, fmt.Errorf("invalid settings file %s: %w", path, err)
	}
	return s, nil
}

// ApplyAssignment sets one field of s from "group.field=value". The value is
// read as a YAML scalar or flow sequence, so numbers, booleans and [a, b]
// lists keep their types.
func ApplyAssignment(s *preset.Settings, assignment string) error {
	key, raw, ok := strings.Cut(assignment, "=")
	if !ok {
		return fmt.Errorf("invalid setting %q: expected group.field=value", assignment)
	}
	key = strings.TrimSpace(key)
	groupName, field, ok := strings.Cut(key, ".")
	if !ok || field == "" {
		return fmt.Errorf("invalid setting %q: expected group.field=value", assignment)
	}
	group, err := preset.ParseGroup(groupName)
	if err != nil {
		return err
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("setting %q needs a value", key)
	}
	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		return fmt.Errorf("invalid value for %q: %w", key, err)
	}
	if value == nil {
		// Colour values like #00AAFF parse as a YAML comment.
		value = raw
	}

	current, err := json.Marshal(s)
	if err != nil {
		return err
	}
	doc := map[string]map[string]any{}
	if err := json.Unmarshal(current, &doc); err != nil {
		return err
	}
	if doc[string(group)] == nil {
		doc[string(group)] = map[string]any{}
	}
	doc[string(group)][field] = value

	patched, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var next preset.Settings
	dec := json.NewDecoder(bytes.NewReader(patched))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&next); err != nil {
		return fmt.Errorf("invalid setting %q: %w", key, err)
	}
	*s = next
	return nil
}
