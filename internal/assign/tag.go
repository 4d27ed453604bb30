package assign

import (
	"fmt"
	"strings"
)

// TagIndex maps tags to presets. Tags are flat: only exact matches resolve.
type TagIndex struct {
	ix            index
	caseSensitive bool
}

func NewTagIndex(caseSensitive bool) *TagIndex {
	return &TagIndex{ix: newIndex(), caseSensitive: caseSensitive}
}

// CaseSensitive reports whether tags differing only in case are distinct.
func (t *TagIndex) CaseSensitive() bool {
	return t.caseSensitive
}

// Normalize returns the key a tag is stored under.
func (t *TagIndex) Normalize(tag string) string {
	return NormalizeTag(tag, t.caseSensitive)
}

// NormalizeTag trims whitespace and leading '#' marks, folding case unless
// caseSensitive is set.
func NormalizeTag(tag string, caseSensitive bool) string {
	trimmed := strings.TrimLeft(strings.TrimSpace(tag), "#")
	if !caseSensitive {
		trimmed = strings.ToLower(trimmed)
	}
	return trimmed
}

func (t *TagIndex) Assign(tag, presetID string, overrides *bool, exists Exists) error {
	key := t.Normalize(tag)
	if key == "" {
		return fmt.Errorf("tag cannot be empty: %q", tag)
	}
	return t.ix.assign("assign tag", key, presetID, overrides, exists)
}

func (t *TagIndex) Unassign(tag string) bool {
	return t.ix.unassign(t.Normalize(tag))
}

func (t *TagIndex) Lookup(tag string) (Assignment, bool) {
	return t.ix.lookup(t.Normalize(tag))
}

func (t *TagIndex) Resolve(tag string) (string, bool) {
	a, ok := t.Lookup(tag)
	return a.PresetID, ok
}

func (t *TagIndex) Priority(tag string) bool {
	a, ok := t.Lookup(tag)
	if !ok {
		return true
	}
	return a.Priority()
}

func (t *TagIndex) SetOverride(tag string, overrides *bool) error {
	return t.ix.setOverride("set tag override", t.Normalize(tag), overrides)
}

func (t *TagIndex) KeysFor(presetID string) []string {
	return t.ix.keysFor(presetID)
}

func (t *TagIndex) Rewrite(oldID, newID string) []string {
	return t.ix.rewrite(oldID, newID)
}

func (t *TagIndex) RemoveFor(presetID string) []string {
	return t.ix.removeFor(presetID)
}

func (t *TagIndex) Keys() []string {
	return t.ix.keys()
}

func (t *TagIndex) Entries() map[string]Assignment {
	return t.ix.snapshot()
}

func (t *TagIndex) Len() int {
	return len(t.ix.entries)
}

func (t *TagIndex) Reset() {
	t.ix.reset()
}
