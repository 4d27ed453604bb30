package assign

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/an-presets/internal/preset"
	"github.com/Paintersrp/an-presets/internal/state"
)

func newState(t *testing.T) *state.State {
	t.Helper()
	s := state.NewInMemory(t.TempDir())
	if _, err := s.Manager.CreateWithID(context.Background(), "work", "Work", ""); err != nil {
		t.Fatalf("create preset: %v", err)
	}
	return s
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAssignFolderAndTag(t *testing.T) {
	s := newState(t)

	out, err := run(t, NewCmdAssign(s), "folder", "projects/work/", "work")
	if err != nil {
		t.Fatalf("assign folder: %v", err)
	}
	if !strings.Contains(out, "Assigned folder projects/work to preset work") {
		t.Fatalf("unexpected output %q", out)
	}

	if _, err := run(t, NewCmdAssign(s), "tag", "#Review", "work", "--overrides-global=false"); err != nil {
		t.Fatalf("assign tag: %v", err)
	}

	folders := s.Manager.FolderAssignments()
	if folders["projects/work"].PresetID != "work" {
		t.Fatalf("unexpected folder assignments %+v", folders)
	}
	tags := s.Manager.TagAssignments()
	a, ok := tags["review"]
	if !ok || a.PresetID != "work" || a.OverridesGlobal == nil || *a.OverridesGlobal {
		t.Fatalf("unexpected tag assignments %+v", tags)
	}
}

func TestAssignAbsoluteFolderInsideVault(t *testing.T) {
	s := newState(t)

	abs := filepath.Join(s.Vault, "journal", "2024")
	if _, err := run(t, NewCmdAssign(s), "folder", abs, "work"); err != nil {
		t.Fatalf("assign folder: %v", err)
	}
	if _, ok := s.Manager.FolderAssignments()["journal/2024"]; !ok {
		t.Fatalf("expected vault relative key, got %+v", s.Manager.FolderAssignments())
	}
}

func TestAssignRejectsUnknownPresetAndBadFlag(t *testing.T) {
	s := newState(t)

	if _, err := run(t, NewCmdAssign(s), "folder", "notes", "missing"); !preset.IsInvalidReference(err) {
		t.Fatalf("expected invalid reference, got %v", err)
	}
	if _, err := run(t, NewCmdAssign(s), "tag", "x", "work", "--overrides-global=sometimes"); err == nil {
		t.Fatal("expected an invalid override value to be rejected")
	}
	if _, err := run(t, NewCmdAssign(s), "tag", "x"); err == nil {
		t.Fatal("expected a missing preset id to be rejected")
	}
}

func TestAssignWithPick(t *testing.T) {
	s := newState(t)

	restore := pickPreset
	t.Cleanup(func() { pickPreset = restore })
	pickPreset = func(list []preset.Preset, header, query string) (preset.Preset, error) {
		if !strings.Contains(header, "notes") {
			t.Fatalf("expected the header to name the folder, got %q", header)
		}
		return s.Manager.Get("work")
	}

	if _, err := run(t, NewCmdAssign(s), "folder", "notes", "--pick"); err != nil {
		t.Fatalf("assign with pick: %v", err)
	}
	if s.Manager.FolderAssignments()["notes"].PresetID != "work" {
		t.Fatal("expected the picked preset to be assigned")
	}
}

func TestUnassignIsIdempotent(t *testing.T) {
	s := newState(t)
	if _, err := run(t, NewCmdAssign(s), "tag", "review", "work"); err != nil {
		t.Fatalf("assign tag: %v", err)
	}

	out, err := run(t, NewCmdUnassign(s), "tag", "review")
	if err != nil || !strings.Contains(out, "Removed assignment of tag review") {
		t.Fatalf("unexpected result %q %v", out, err)
	}
	out, err = run(t, NewCmdUnassign(s), "tag", "review")
	if err != nil || !strings.Contains(out, "No assignment for tag review") {
		t.Fatalf("unexpected result %q %v", out, err)
	}
	out, err = run(t, NewCmdUnassign(s), "folder", "/")
	if err != nil || !strings.Contains(out, "(vault root)") {
		t.Fatalf("unexpected result %q %v", out, err)
	}
}

func TestOverride(t *testing.T) {
	s := newState(t)
	if _, err := run(t, NewCmdAssign(s), "folder", "archive", "work"); err != nil {
		t.Fatalf("assign folder: %v", err)
	}

	if _, err := run(t, NewCmdOverride(s), "folder", "archive", "false"); err != nil {
		t.Fatalf("override: %v", err)
	}
	a := s.Manager.FolderAssignments()["archive"]
	if a.OverridesGlobal == nil || *a.OverridesGlobal {
		t.Fatalf("expected overrides-global=false, got %+v", a)
	}

	if _, err := run(t, NewCmdOverride(s), "folder", "archive", "unset"); err != nil {
		t.Fatalf("override unset: %v", err)
	}
	if a := s.Manager.FolderAssignments()["archive"]; a.OverridesGlobal != nil {
		t.Fatalf("expected the flag to be unset, got %v", *a.OverridesGlobal)
	}

	if _, err := run(t, NewCmdOverride(s), "tag", "unknown", "true"); !preset.IsNotFound(err) {
		t.Fatalf("expected not found for a missing assignment, got %v", err)
	}
}

func TestAssignmentsList(t *testing.T) {
	s := newState(t)
	if out, _ := run(t, NewCmdAssignments(s)); !strings.Contains(out, "No assignments") {
		t.Fatalf("unexpected empty output %q", out)
	}

	if _, err := run(t, NewCmdAssign(s), "folder", "projects", "work"); err != nil {
		t.Fatalf("assign folder: %v", err)
	}
	if _, err := run(t, NewCmdAssign(s), "tag", "review", "work", "--overrides-global=true"); err != nil {
		t.Fatalf("assign tag: %v", err)
	}
	if err := s.Manager.SetGlobalDefault(context.Background(), preset.BootstrapID); err != nil {
		t.Fatalf("set global default: %v", err)
	}

	out, err := run(t, NewCmdAssignments(s))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"projects", "review", "true", "global", preset.BootstrapID} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}
