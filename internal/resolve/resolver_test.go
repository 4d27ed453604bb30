package resolve

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Paintersrp/an-presets/internal/assign"
	"github.com/Paintersrp/an-presets/internal/preset"
)

type fixture struct {
	store   *preset.Store
	folders *assign.FolderIndex
	tags    *assign.TagIndex
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:   preset.NewStore(),
		folders: assign.NewFolderIndex(),
		tags:    assign.NewTagIndex(false),
	}
	f.store.Bootstrap()
	return f
}

func (f *fixture) preset(t *testing.T, id string, s preset.Settings) {
	t.Helper()
	if _, err := f.store.CreateWithID(id, id, ""); err != nil {
		t.Fatalf("CreateWithID(%q) returned error: %v", id, err)
	}
	if _, err := f.store.Update(id, s); err != nil {
		t.Fatalf("Update(%q) returned error: %v", id, err)
	}
}

func (f *fixture) folder(t *testing.T, key, id string, overrides *bool) {
	t.Helper()
	if err := f.folders.Assign(key, id, overrides, f.store.Has); err != nil {
		t.Fatalf("assign folder %q: %v", key, err)
	}
}

func (f *fixture) tag(t *testing.T, key, id string, overrides *bool) {
	t.Helper()
	if err := f.tags.Assign(key, id, overrides, f.store.Has); err != nil {
		t.Fatalf("assign tag %q: %v", key, err)
	}
}

func (f *fixture) resolve(path string, tags []string, policy Policy) Result {
	return Resolver{}.Resolve(Input{
		Path:    path,
		Tags:    tags,
		Presets: f.store,
		Folders: f.folders,
		TagIdx:  f.tags,
		Policy:  policy,
	})
}

func theme(s preset.Settings) string {
	return *s.Style.Theme
}

func boolPtr(v bool) *bool {
	return &v
}

func styled(name string) preset.Settings {
	return preset.Settings{Style: &preset.StyleSettings{Theme: preset.Ptr(name)}}
}

func TestFolderFirstScenario(t *testing.T) {
	f := newFixture(t)
	f.preset(t, "work", styled("work"))
	f.folder(t, "Projects", "work", boolPtr(true))

	policy := Policy{ApplyMode: FolderFirst}

	got := f.resolve("Projects/a.md", nil, policy)
	if got.WinnerID != "work" || theme(got.Settings) != "work" {
		t.Fatalf("expected work preset for Projects/a.md, got %q (%s)", got.WinnerID, theme(got.Settings))
	}

	other := f.resolve("Other/a.md", nil, policy)
	if other.WinnerID != preset.BootstrapID || theme(other.Settings) != "default" {
		t.Fatalf("expected default preset for Other/a.md, got %q", other.WinnerID)
	}
}

func TestFolderFirstIgnoresTagsWhenFolderAssigned(t *testing.T) {
	f := newFixture(t)
	f.preset(t, "folder", styled("folder"))
	f.preset(t, "tag", styled("tag"))
	f.folder(t, "Notes", "folder", nil)
	f.tag(t, "urgent", "tag", nil)

	got := f.resolve("Notes/Sub/a.md", []string{"urgent"}, Policy{ApplyMode: FolderFirst})
	if got.WinnerID != "folder" {
		t.Fatalf("expected folder preset to win, got %q", got.WinnerID)
	}

	got = f.resolve("Elsewhere/a.md", []string{"urgent"}, Policy{ApplyMode: FolderFirst})
	if got.WinnerID != "tag" {
		t.Fatalf("expected tag preset when folder has none, got %q", got.WinnerID)
	}
}

func TestApplyModes(t *testing.T) {
	f := newFixture(t)
	f.preset(t, "folder", styled("folder"))
	f.preset(t, "tag", styled("tag"))
	f.folder(t, "Notes", "folder", nil)
	f.tag(t, "urgent", "tag", nil)

	tests := []struct {
		mode ApplyMode
		path string
		tags []string
		want string
	}{
		{FolderOnly, "Notes/a.md", []string{"urgent"}, "folder"},
		{FolderOnly, "Other/a.md", []string{"urgent"}, preset.BootstrapID},
		{TagOnly, "Notes/a.md", []string{"urgent"}, "tag"},
		{TagOnly, "Notes/a.md", nil, preset.BootstrapID},
		{TagFirst, "Notes/a.md", []string{"urgent"}, "tag"},
		{TagFirst, "Notes/a.md", []string{"calm"}, "folder"},
		{FolderFirst, "Other/a.md", nil, preset.BootstrapID},
	}

	for _, tc := range tests {
		t.Run(string(tc.mode)+"/"+tc.path, func(t *testing.T) {
			got := f.resolve(tc.path, tc.tags, Policy{ApplyMode: tc.mode})
			if got.WinnerID != tc.want {
				t.Fatalf("got winner %q, want %q", got.WinnerID, tc.want)
			}
		})
	}
}

func TestFirstTagWinsInSuppliedOrder(t *testing.T) {
	f := newFixture(t)
	f.preset(t, "alpha", styled("alpha"))
	f.preset(t, "zulu", styled("zulu"))
	f.tag(t, "zulu", "zulu", nil)
	f.tag(t, "alpha", "alpha", nil)

	supplied := f.resolve("a.md", []string{"unassigned", "zulu", "alpha"}, Policy{ApplyMode: TagOnly})
	if supplied.WinnerID != "zulu" {
		t.Fatalf("expected first supplied tag to win, got %q", supplied.WinnerID)
	}

	alpha := f.resolve("a.md", []string{"zulu", "alpha"}, Policy{ApplyMode: TagOnly, TagOrder: TagOrderAlphabetical})
	if alpha.WinnerID != "alpha" {
		t.Fatalf("expected alphabetical tie-break to pick alpha, got %q", alpha.WinnerID)
	}
}

func TestMergedPriorityCombinesGroups(t *testing.T) {
	f := newFixture(t)
	f.preset(t, "tagged", preset.Settings{Style: &preset.StyleSettings{Theme: preset.Ptr("tag-style")}})
	f.preset(t, "foldered", preset.Settings{Layout: &preset.LayoutSettings{Mode: preset.Ptr("grid")}})
	f.folder(t, "Projects", "foldered", nil)
	f.tag(t, "design", "tagged", nil)

	got := f.resolve("Projects/a.md", []string{"design"}, Policy{
		ApplyMode:          Merged,
		PriorityOrder:      FolderTagGlobal,
		ConflictResolution: MergePriority,
	})

	if *got.Settings.Layout.Mode != "grid" {
		t.Fatalf("expected folder layout, got %q", *got.Settings.Layout.Mode)
	}
	if theme(got.Settings) != "tag-style" {
		t.Fatalf("expected tag style, got %q", theme(got.Settings))
	}
	def := preset.DefaultSettings()
	if !reflect.DeepEqual(got.Settings.Sort, def.Sort) || !reflect.DeepEqual(got.Settings.Content, def.Content) {
		t.Fatalf("expected remaining groups from the global default, got %+v", got.Settings)
	}
	if got.Sources[preset.GroupLayout] != "foldered" || got.Sources[preset.GroupStyle] != "tagged" || got.Sources[preset.GroupSort] != preset.BootstrapID {
		t.Fatalf("unexpected group sources %v", got.Sources)
	}
}

func TestMergedPriorityOrderDecidesSharedGroup(t *testing.T) {
	f := newFixture(t)
	f.preset(t, "tagged", styled("tag"))
	f.preset(t, "foldered", styled("folder"))
	f.folder(t, "Projects", "foldered", nil)
	f.tag(t, "design", "tagged", nil)

	tagWins := f.resolve("Projects/a.md", []string{"design"}, Policy{ApplyMode: Merged, PriorityOrder: TagFolderGlobal})
	if theme(tagWins.Settings) != "tag" {
		t.Fatalf("expected tag to win under tag-folder-global, got %q", theme(tagWins.Settings))
	}

	folderWins := f.resolve("Projects/a.md", []string{"design"}, Policy{ApplyMode: Merged, PriorityOrder: FolderTagGlobal})
	if theme(folderWins.Settings) != "folder" {
		t.Fatalf("expected folder to win under folder-tag-global, got %q", theme(folderWins.Settings))
	}
}

func TestNonOverridingAssignmentLosesToGlobal(t *testing.T) {
	f := newFixture(t)
	f.preset(t, "global", styled("global"))
	f.preset(t, "foldered", preset.Settings{
		Style:  &preset.StyleSettings{Theme: preset.Ptr("folder")},
		Layout: &preset.LayoutSettings{Mode: preset.Ptr("card")},
	})
	f.store.SetGlobalDefault("global")
	f.folder(t, "Projects", "foldered", boolPtr(false))

	got := f.resolve("Projects/a.md", nil, Policy{ApplyMode: Merged, PriorityOrder: Custom})
	if theme(got.Settings) != "global" {
		t.Fatalf("expected global style to win over non-overriding folder, got %q", theme(got.Settings))
	}
	if *got.Settings.Layout.Mode != "card" {
		t.Fatalf("expected folder layout where global defines none, got %q", *got.Settings.Layout.Mode)
	}
	if got.Candidates[0].Source != SourceFolder || got.Candidates[1].Source != SourceGlobal {
		t.Fatalf("unexpected candidate order %+v", got.Candidates)
	}
}

func TestPriorityOnlyCollapsesToSingleWinner(t *testing.T) {
	f := newFixture(t)
	f.preset(t, "tagged", styled("tag"))
	f.preset(t, "foldered", preset.Settings{Layout: &preset.LayoutSettings{Mode: preset.Ptr("grid")}})
	f.folder(t, "Projects", "foldered", nil)
	f.tag(t, "design", "tagged", nil)

	got := f.resolve("Projects/a.md", []string{"design"}, Policy{
		ApplyMode:          Merged,
		PriorityOrder:      TagFolderGlobal,
		ConflictResolution: PriorityOnly,
	})
	if got.WinnerID != "tagged" {
		t.Fatalf("expected tag preset as single winner, got %q", got.WinnerID)
	}
	if *got.Settings.Layout.Mode == "grid" {
		t.Fatal("expected no merge of folder layout under priority-only")
	}
}

func TestMergeCustomOverlaysFieldsOntoBase(t *testing.T) {
	f := newFixture(t)
	f.preset(t, "foldered", preset.Settings{Style: &preset.StyleSettings{Theme: preset.Ptr("folder"), FontSize: preset.Ptr(20)}})
	f.preset(t, "tagged", preset.Settings{Style: &preset.StyleSettings{Accent: preset.Ptr("#f00")}})
	f.folder(t, "Projects", "foldered", nil)
	f.tag(t, "design", "tagged", nil)

	got := f.resolve("Projects/a.md", []string{"design"}, Policy{
		ApplyMode:          Merged,
		PriorityOrder:      TagFolderGlobal,
		ConflictResolution: MergeCustom,
		MergeStrategy:      DefaultBase,
		MergeGroups:        []preset.Group{preset.GroupStyle},
	})
	if got.MergeErr != nil {
		t.Fatalf("unexpected merge error: %v", got.MergeErr)
	}

	style := got.Settings.Style
	if *style.Theme != "folder" || *style.FontSize != 20 || *style.Accent != "#f00" {
		t.Fatalf("expected field-level merge, got theme=%q size=%d accent=%q", *style.Theme, *style.FontSize, *style.Accent)
	}
	if *style.CardWidth != *preset.DefaultSettings().Style.CardWidth {
		t.Fatalf("expected untouched field from default base, got %d", *style.CardWidth)
	}
}

func TestMergeCustomFolderBase(t *testing.T) {
	f := newFixture(t)
	f.preset(t, "foldered", preset.Settings{Style: &preset.StyleSettings{Theme: preset.Ptr("folder"), FontSize: preset.Ptr(20)}})
	f.folder(t, "Projects", "foldered", boolPtr(true))

	got := f.resolve("Projects/a.md", nil, Policy{
		ApplyMode:          Merged,
		ConflictResolution: MergeCustom,
		MergeStrategy:      FolderBase,
	})
	if got.MergeErr != nil {
		t.Fatalf("unexpected merge error: %v", got.MergeErr)
	}
	if ids := candidateIDs(got.Candidates); ids != "default,foldered" {
		t.Fatalf("unexpected candidates %s", ids)
	}

	style := got.Settings.Style
	if *style.Theme != "folder" || *style.FontSize != 20 {
		t.Fatalf("expected folder base fields to survive, got theme=%q size=%d", *style.Theme, *style.FontSize)
	}
	if *style.CardWidth != *preset.DefaultSettings().Style.CardWidth {
		t.Fatalf("expected global to fill fields the folder leaves unset, got %d", *style.CardWidth)
	}
}

func TestMergeCustomDefaultBaseBeatsNonOverridingFolder(t *testing.T) {
	f := newFixture(t)
	f.preset(t, "foldered", styled("folder"))
	f.folder(t, "Projects", "foldered", boolPtr(false))

	got := f.resolve("Projects/a.md", nil, Policy{
		ApplyMode:          Merged,
		ConflictResolution: MergeCustom,
		MergeStrategy:      DefaultBase,
	})
	if got.MergeErr != nil {
		t.Fatalf("unexpected merge error: %v", got.MergeErr)
	}
	if ids := candidateIDs(got.Candidates); ids != "foldered,default" {
		t.Fatalf("unexpected candidates %s", ids)
	}
	if theme(got.Settings) != "default" {
		t.Fatalf("expected the global default to win over a non-overriding folder, got %q", theme(got.Settings))
	}
}

func TestMergeCustomLowerLayersOnlyFillGaps(t *testing.T) {
	f := newFixture(t)
	f.preset(t, "foldered", preset.Settings{Style: &preset.StyleSettings{Theme: preset.Ptr("folder"), Accent: preset.Ptr("#0f0")}})
	f.preset(t, "tagged", preset.Settings{Style: &preset.StyleSettings{Theme: preset.Ptr("tag")}})
	f.folder(t, "Projects", "foldered", nil)
	f.tag(t, "design", "tagged", nil)

	got := f.resolve("Projects/a.md", []string{"design"}, Policy{
		ApplyMode:          Merged,
		PriorityOrder:      FolderTagGlobal,
		ConflictResolution: MergeCustom,
		MergeStrategy:      TagBase,
	})
	if ids := candidateIDs(got.Candidates); ids != "default,tagged,foldered" {
		t.Fatalf("unexpected candidates %s", ids)
	}

	style := got.Settings.Style
	if *style.Theme != "folder" || *style.Accent != "#0f0" {
		t.Fatalf("expected the higher ranked folder to overwrite the tag base, got theme=%q accent=%q", *style.Theme, *style.Accent)
	}
	if *style.FontSize != *preset.DefaultSettings().Style.FontSize {
		t.Fatalf("expected global to fill the rest, got %d", *style.FontSize)
	}
}

func candidateIDs(cs []Candidate) string {
	out := ""
	for i, c := range cs {
		if i > 0 {
			out += ","
		}
		out += c.PresetID
	}
	return out
}

func TestMergeCustomFailureFallsBackToMergePriority(t *testing.T) {
	f := newFixture(t)
	f.preset(t, "tagged", styled("tag"))
	f.tag(t, "design", "tagged", nil)

	failing := Resolver{Merge: func(g preset.Group, base preset.Settings, layers []preset.Settings) (preset.Settings, error) {
		return preset.Settings{}, errors.New("boom")
	}}
	panicking := Resolver{Merge: func(g preset.Group, base preset.Settings, layers []preset.Settings) (preset.Settings, error) {
		panic("kaboom")
	}}

	for name, r := range map[string]Resolver{"error": failing, "panic": panicking} {
		t.Run(name, func(t *testing.T) {
			got := r.Resolve(Input{
				Path:    "a.md",
				Tags:    []string{"design"},
				Presets: f.store,
				Folders: f.folders,
				TagIdx:  f.tags,
				Policy:  Policy{ApplyMode: Merged, ConflictResolution: MergeCustom},
			})
			if !errors.Is(got.MergeErr, preset.ErrMerge) {
				t.Fatalf("expected ErrMerge, got %v", got.MergeErr)
			}
			if theme(got.Settings) != "tag" {
				t.Fatalf("expected merge-priority fallback result, got %q", theme(got.Settings))
			}
		})
	}
}

func TestMissingWinnerFallsBack(t *testing.T) {
	f := newFixture(t)
	f.preset(t, "ghost", styled("ghost"))
	f.folder(t, "Notes", "ghost", nil)
	f.store.Delete("ghost")

	got := f.resolve("Notes/a.md", nil, Policy{ApplyMode: FolderFirst})
	if got.WinnerID != preset.BootstrapID {
		t.Fatalf("expected fallback to global default, got %q", got.WinnerID)
	}

	f.store.ClearGlobalDefault()
	got = f.resolve("Notes/a.md", nil, Policy{ApplyMode: FolderFirst})
	if !got.Fallback || got.WinnerID != preset.BootstrapID {
		t.Fatalf("expected bootstrap fallback, got %q (fallback=%v)", got.WinnerID, got.Fallback)
	}
}

func TestResolveWithEmptyStoreIsFullyPopulated(t *testing.T) {
	got := Resolver{}.Resolve(Input{
		Path:    "a.md",
		Presets: preset.NewStore(),
		Folders: assign.NewFolderIndex(),
		TagIdx:  assign.NewTagIndex(false),
	})

	if !reflect.DeepEqual(got.Settings, preset.DefaultSettings()) {
		t.Fatalf("expected built-in defaults, got %+v", got.Settings)
	}
	if !got.Fallback {
		t.Fatal("expected result to be marked as fallback")
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	f := newFixture(t)
	f.preset(t, "a", styled("a"))
	f.preset(t, "b", preset.Settings{Layout: &preset.LayoutSettings{Columns: preset.Ptr(3)}})
	f.folder(t, "x", "a", nil)
	f.tag(t, "t", "b", boolPtr(false))

	policy := Policy{ApplyMode: Merged, ConflictResolution: MergeCustom}
	first := f.resolve("x/y/z.md", []string{"t"}, policy)
	for i := 0; i < 10; i++ {
		again := f.resolve("x/y/z.md", []string{"t"}, policy)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("resolution %d differed:\n%+v\n%+v", i, first, again)
		}
	}
}

func TestOrder(t *testing.T) {
	global := &Candidate{Source: SourceGlobal, PresetID: "g", Overrides: true}
	folder := &Candidate{Source: SourceFolder, PresetID: "f", Overrides: true}
	tag := &Candidate{Source: SourceTag, PresetID: "t", Overrides: true}
	weakTag := &Candidate{Source: SourceTag, PresetID: "t", Overrides: false}
	weakFolder := &Candidate{Source: SourceFolder, PresetID: "f", Overrides: false}

	ids := func(cs []Candidate) string {
		out := ""
		for _, c := range cs {
			out += c.PresetID
		}
		return out
	}

	tests := []struct {
		name  string
		order  PriorityOrder
		folder *Candidate
		tag    *Candidate
		want   string
	}{
		{"tag-folder-global", TagFolderGlobal, folder, tag, "gft"},
		{"folder-tag-global", FolderTagGlobal, folder, tag, "gtf"},
		{"weak tag moves before global", TagFolderGlobal, folder, weakTag, "tgf"},
		{"custom", Custom, folder, weakTag, "tgf"},
		{"custom keeps folder before tag when both override", Custom, folder, tag, "gft"},
		{"custom keeps folder before tag when neither overrides", Custom, weakFolder, weakTag, "ftg"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ids(Order(tc.order, global, tc.folder, tc.tag)); got != tc.want {
				t.Fatalf("Order() = %s, want %s", got, tc.want)
			}
		})
	}

	if got := ids(Order(TagFolderGlobal, nil, nil, tag)); got != "t" {
		t.Fatalf("Order with only a tag = %s", got)
	}
}
