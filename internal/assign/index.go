// Package assign maps folders and tags to presets.
package assign

import (
	"sort"

	"github.com/Paintersrp/an-presets/internal/preset"
)

// Assignment links a folder or tag to a preset. OverridesGlobal is nil when
// the user never set it; Priority then treats it as true.
type Assignment struct {
	PresetID        string `json:"presetId"                  yaml:"preset_id"`
	OverridesGlobal *bool  `json:"overridesGlobal,omitempty" yaml:"overrides_global,omitempty"`
}

// Priority reports whether the assignment wins over the global default.
func (a Assignment) Priority() bool {
	if a.OverridesGlobal == nil {
		return true
	}
	return *a.OverridesGlobal
}

// Exists reports whether a preset id is known.
type Exists func(id string) bool

// index is the keyed store shared by the folder and tag indices. Keys passed in
// are already normalised.
type index struct {
	entries map[string]Assignment
}

func newIndex() index {
	return index{entries: make(map[string]Assignment)}
}

func (ix *index) assign(op, key, presetID string, overrides *bool, exists Exists) error {
	if exists != nil && !exists(presetID) {
		return &preset.Error{Op: op, ID: presetID, Err: preset.ErrInvalidReference}
	}
	var flag *bool
	if overrides != nil {
		v := *overrides
		flag = &v
	}
	ix.entries[key] = Assignment{PresetID: presetID, OverridesGlobal: flag}
	return nil
}

func (ix *index) unassign(key string) bool {
	if _, ok := ix.entries[key]; !ok {
		return false
	}
	delete(ix.entries, key)
	return true
}

func (ix *index) lookup(key string) (Assignment, bool) {
	a, ok := ix.entries[key]
	return a, ok
}

func (ix *index) setOverride(op, key string, overrides *bool) error {
	a, ok := ix.entries[key]
	if !ok {
		return &preset.Error{Op: op, ID: key, Err: preset.ErrNotFound}
	}
	if overrides == nil {
		a.OverridesGlobal = nil
	} else {
		v := *overrides
		a.OverridesGlobal = &v
	}
	ix.entries[key] = a
	return nil
}

func (ix *index) keysFor(presetID string) []string {
	var keys []string
	for key, a := range ix.entries {
		if a.PresetID == presetID {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

func (ix *index) rewrite(oldID, newID string) []string {
	keys := ix.keysFor(oldID)
	for _, key := range keys {
		a := ix.entries[key]
		a.PresetID = newID
		ix.entries[key] = a
	}
	return keys
}

func (ix *index) removeFor(presetID string) []string {
	keys := ix.keysFor(presetID)
	for _, key := range keys {
		delete(ix.entries, key)
	}
	return keys
}

func (ix *index) keys() []string {
	keys := make([]string, 0, len(ix.entries))
	for key := range ix.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (ix *index) snapshot() map[string]Assignment {
	out := make(map[string]Assignment, len(ix.entries))
	for key, a := range ix.entries {
		if a.OverridesGlobal != nil {
			v := *a.OverridesGlobal
			a.OverridesGlobal = &v
		}
		out[key] = a
	}
	return out
}

func (ix *index) reset() {
	ix.entries = make(map[string]Assignment)
}
