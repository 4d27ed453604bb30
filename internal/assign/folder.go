package assign

import (
	"github.com/Paintersrp/an-presets/internal/pathutil"
)

// FolderIndex maps folders to presets. Lookups inherit from the nearest
// assigned ancestor.
type FolderIndex struct {
	ix index
}

func NewFolderIndex() *FolderIndex {
	return &FolderIndex{ix: newIndex()}
}

// Assign upserts the assignment for folder after checking that presetID exists.
func (f *FolderIndex) Assign(folder, presetID string, overrides *bool, exists Exists) error {
	return f.ix.assign("assign folder", pathutil.NormalizeFolder(folder), presetID, overrides, exists)
}

// Unassign removes the assignment for folder. Missing folders are ignored.
func (f *FolderIndex) Unassign(folder string) bool {
	return f.ix.unassign(pathutil.NormalizeFolder(folder))
}

// Lookup returns the assignment stored for exactly this folder.
func (f *FolderIndex) Lookup(folder string) (Assignment, bool) {
	return f.ix.lookup(pathutil.NormalizeFolder(folder))
}

// ResolveAssignment walks from folder up to the root and returns the first
// assignment found together with the folder it was stored under.
func (f *FolderIndex) ResolveAssignment(folder string) (string, Assignment, bool) {
	for _, candidate := range pathutil.Ancestors(folder) {
		if a, ok := f.ix.lookup(candidate); ok {
			return candidate, a, true
		}
	}
	return "", Assignment{}, false
}

// Resolve returns the preset id inherited by folder.
func (f *FolderIndex) Resolve(folder string) (string, bool) {
	_, a, ok := f.ResolveAssignment(folder)
	return a.PresetID, ok
}

// Priority returns the override flag of the assignment folder inherits.
// Unassigned folders and unset flags report true.
func (f *FolderIndex) Priority(folder string) bool {
	_, a, ok := f.ResolveAssignment(folder)
	if !ok {
		return true
	}
	return a.Priority()
}

func (f *FolderIndex) SetOverride(folder string, overrides *bool) error {
	return f.ix.setOverride("set folder override", pathutil.NormalizeFolder(folder), overrides)
}

// KeysFor returns every folder assigned to presetID.
func (f *FolderIndex) KeysFor(presetID string) []string {
	return f.ix.keysFor(presetID)
}

// Rewrite points every folder assigned to oldID at newID.
func (f *FolderIndex) Rewrite(oldID, newID string) []string {
	return f.ix.rewrite(oldID, newID)
}

// RemoveFor drops every folder assigned to presetID.
func (f *FolderIndex) RemoveFor(presetID string) []string {
	return f.ix.removeFor(presetID)
}

func (f *FolderIndex) Keys() []string {
	return f.ix.keys()
}

func (f *FolderIndex) Entries() map[string]Assignment {
	return f.ix.snapshot()
}

func (f *FolderIndex) Len() int {
	return len(f.ix.entries)
}

func (f *FolderIndex) Reset() {
	f.ix.reset()
}
