package assign

import (
	"errors"
	"slices"
	"testing"

	"github.com/Paintersrp/an-presets/internal/preset"
)

func existsIn(ids ...string) Exists {
	return func(id string) bool {
		return slices.Contains(ids, id)
	}
}

func boolPtr(v bool) *bool {
	return &v
}

func TestFolderAssignValidatesReference(t *testing.T) {
	f := NewFolderIndex()

	err := f.Assign("Projects", "ghost", nil, existsIn("work"))
	if !errors.Is(err, preset.ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
	if f.Len() != 0 {
		t.Fatalf("expected failed assign to leave index empty, got %v", f.Keys())
	}
}

func TestFolderResolveWalksAncestors(t *testing.T) {
	f := NewFolderIndex()
	exists := existsIn("root", "projects", "deep")

	if err := f.Assign("/", "root", nil, exists); err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	if err := f.Assign("Projects/", "projects", boolPtr(false), exists); err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	if err := f.Assign("Projects/Work/Deep", "deep", nil, exists); err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}

	tests := []struct {
		folder   string
		want     string
		priority bool
	}{
		{"Projects/Work/Deep", "deep", true},
		{"Projects/Work/Deep/Deeper", "deep", true},
		{"Projects/Work", "projects", false},
		{"Projects", "projects", false},
		{"Other", "root", true},
		{"", "root", true},
	}

	for _, tc := range tests {
		t.Run(tc.folder, func(t *testing.T) {
			got, ok := f.Resolve(tc.folder)
			if !ok || got != tc.want {
				t.Fatalf("Resolve(%q) = %q, %v; want %q", tc.folder, got, ok, tc.want)
			}
			if p := f.Priority(tc.folder); p != tc.priority {
				t.Fatalf("Priority(%q) = %v, want %v", tc.folder, p, tc.priority)
			}
		})
	}
}

func TestFolderResolveWithoutRootAssignment(t *testing.T) {
	f := NewFolderIndex()
	f.Assign("Projects", "work", nil, nil)

	if id, ok := f.Resolve("Other/Nested"); ok {
		t.Fatalf("expected no match outside Projects, got %q", id)
	}
	if !f.Priority("Other") {
		t.Fatal("expected unassigned folder priority to default to true")
	}
}

func TestUnassignIsIdempotent(t *testing.T) {
	f := NewFolderIndex()
	f.Assign("Notes", "a", nil, nil)

	if !f.Unassign("/Notes/") {
		t.Fatal("expected Unassign to remove normalised key")
	}
	if f.Unassign("Notes") {
		t.Fatal("expected second Unassign to be a no-op")
	}

	tags := NewTagIndex(false)
	if tags.Unassign("never") {
		t.Fatal("expected Unassign of unknown tag to be a no-op")
	}
}

func TestRewriteAndRemoveFor(t *testing.T) {
	f := NewFolderIndex()
	f.Assign("a", "old", boolPtr(false), nil)
	f.Assign("b", "old", nil, nil)
	f.Assign("c", "other", nil, nil)

	if keys := f.Rewrite("old", "new"); !slices.Equal(keys, []string{"a", "b"}) {
		t.Fatalf("Rewrite returned %v", keys)
	}
	if got := f.KeysFor("old"); len(got) != 0 {
		t.Fatalf("expected no keys left for old, got %v", got)
	}
	if a, _ := f.Lookup("a"); a.PresetID != "new" || a.Priority() {
		t.Fatalf("expected rewrite to keep override flag, got %+v", a)
	}

	if keys := f.RemoveFor("new"); !slices.Equal(keys, []string{"a", "b"}) {
		t.Fatalf("RemoveFor returned %v", keys)
	}
	if !slices.Equal(f.Keys(), []string{"c"}) {
		t.Fatalf("expected only c to remain, got %v", f.Keys())
	}
}

func TestTagIndexExactMatchOnly(t *testing.T) {
	tags := NewTagIndex(false)
	tags.Assign("#Work", "work", nil, nil)
	tags.Assign("work/urgent", "urgent", boolPtr(false), nil)

	if id, ok := tags.Resolve("work"); !ok || id != "work" {
		t.Fatalf("expected case-insensitive match, got %q %v", id, ok)
	}
	if id, ok := tags.Resolve("work/other"); ok {
		t.Fatalf("expected no hierarchical match for tags, got %q", id)
	}
	if tags.Priority("work/urgent") {
		t.Fatal("expected explicit false override flag")
	}
	if !tags.Priority("work") {
		t.Fatal("expected unset flag to default to true")
	}
}

func TestTagIndexCaseSensitive(t *testing.T) {
	tags := NewTagIndex(true)
	tags.Assign("Work", "work", nil, nil)

	if _, ok := tags.Resolve("work"); ok {
		t.Fatal("expected case-sensitive index to miss lower-case tag")
	}
	if _, ok := tags.Resolve("#Work"); !ok {
		t.Fatal("expected hash prefix to be ignored")
	}
}

func TestTagAssignRejectsEmpty(t *testing.T) {
	tags := NewTagIndex(false)
	if err := tags.Assign(" # ", "work", nil, nil); err == nil {
		t.Fatal("expected error for empty tag")
	}
}

func TestSetOverride(t *testing.T) {
	f := NewFolderIndex()
	if err := f.SetOverride("missing", boolPtr(true)); !errors.Is(err, preset.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	f.Assign("Notes", "a", nil, nil)
	if err := f.SetOverride("Notes", boolPtr(false)); err != nil {
		t.Fatalf("SetOverride returned error: %v", err)
	}
	if f.Priority("Notes") {
		t.Fatal("expected override flag to be false")
	}
}

func TestEntriesAreCopies(t *testing.T) {
	f := NewFolderIndex()
	f.Assign("Notes", "a", boolPtr(true), nil)

	entries := f.Entries()
	*entries["Notes"].OverridesGlobal = false

	if !f.Priority("Notes") {
		t.Fatal("Entries leaked internal override pointer")
	}
}
