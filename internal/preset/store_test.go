package preset

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func newTestStore() *Store {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	seq := 0
	return NewStore(
		WithClock(func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Minute)
		}),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("p%d", seq)
		}),
	)
}

func TestCreateAssignsUniqueIDs(t *testing.T) {
	s := newTestStore()

	a, err := s.Create("Alpha", "first")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	b, err := s.Create("Beta", "")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if a.ID == b.ID {
		t.Fatalf("expected unique ids, both were %q", a.ID)
	}
	if !a.CreatedAt.Equal(a.UpdatedAt) {
		t.Fatalf("expected createdAt == updatedAt on create, got %v and %v", a.CreatedAt, a.UpdatedAt)
	}
	if got := s.List(); len(got) != 2 || got[0].ID != a.ID || got[1].ID != b.ID {
		t.Fatalf("List returned unexpected order: %+v", got)
	}
}

func TestCreateWithIDRejectsCollisions(t *testing.T) {
	s := newTestStore()

	if _, err := s.CreateWithID("work", "Work", ""); err != nil {
		t.Fatalf("CreateWithID returned error: %v", err)
	}

	_, err := s.CreateWithID("work", "Other", "")
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}

	if _, err := s.CreateWithID("  ", "Blank", ""); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID for blank id, got %v", err)
	}
}

func TestGetUnknownReturnsNotFound(t *testing.T) {
	s := newTestStore()

	_, err := s.Get("missing")
	if !IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}

	var perr *Error
	if !errors.As(err, &perr) || perr.Op != "get" || perr.ID != "missing" {
		t.Fatalf("expected *Error with op and id, got %#v", err)
	}
}

func TestUpdateReplacesOnlyProvidedGroups(t *testing.T) {
	s := newTestStore()
	p, _ := s.CreateWithID("work", "Work", "")

	first, err := s.Update(p.ID, Settings{
		Style:  &StyleSettings{Theme: Ptr("dark"), FontSize: Ptr(16)},
		Layout: &LayoutSettings{Mode: Ptr("grid")},
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if !first.UpdatedAt.After(p.UpdatedAt) {
		t.Fatalf("expected updatedAt to advance, got %v then %v", p.UpdatedAt, first.UpdatedAt)
	}

	second, err := s.Update(p.ID, Settings{Style: &StyleSettings{Accent: Ptr("#fff")}})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if second.Settings.Style.Theme != nil {
		t.Fatalf("expected style group to be replaced wholesale, theme survived: %q", *second.Settings.Style.Theme)
	}
	if second.Settings.Layout == nil || *second.Settings.Layout.Mode != "grid" {
		t.Fatalf("expected layout group to be untouched, got %+v", second.Settings.Layout)
	}
}

func TestUpdateRejectsInvalidSettings(t *testing.T) {
	s := newTestStore()
	p, _ := s.CreateWithID("work", "Work", "")

	_, err := s.Update(p.ID, Settings{Layout: &LayoutSettings{Mode: Ptr("spiral")}})
	if !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("expected ErrInvalidSettings, got %v", err)
	}

	got, _ := s.Get(p.ID)
	if got.Settings.Layout != nil {
		t.Fatalf("expected failed update to leave settings untouched, got %+v", got.Settings.Layout)
	}
}

func TestReturnedPresetsAreCopies(t *testing.T) {
	s := newTestStore()
	s.CreateWithID("work", "Work", "")
	s.Update("work", Settings{Style: &StyleSettings{Theme: Ptr("dark")}})

	got, _ := s.Get("work")
	*got.Settings.Style.Theme = "mutated"

	again, _ := s.Get("work")
	if *again.Settings.Style.Theme != "dark" {
		t.Fatalf("store leaked internal state, theme is %q", *again.Settings.Style.Theme)
	}
}

func TestRename(t *testing.T) {
	s := newTestStore()
	s.CreateWithID("a", "A", "")
	s.CreateWithID("b", "B", "")

	if err := s.Rename("a", "b"); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID renaming onto existing id, got %v", err)
	}
	if err := s.Rename("missing", "c"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound renaming unknown id, got %v", err)
	}
	if err := s.Rename("a", "c"); err != nil {
		t.Fatalf("Rename returned error: %v", err)
	}
	if s.Has("a") || !s.Has("c") {
		t.Fatalf("expected a to move to c, ids are %v", s.IDs())
	}

	got, _ := s.Get("c")
	if got.Name != "A" {
		t.Fatalf("expected renamed preset to keep its name, got %q", got.Name)
	}
}

func TestDeleteAlwaysSucceeds(t *testing.T) {
	s := newTestStore()
	s.CreateWithID("a", "A", "")

	if !s.Delete("a") {
		t.Fatal("expected Delete to report removal")
	}
	if s.Delete("a") {
		t.Fatal("expected second Delete to report nothing removed")
	}
}

func TestGlobalDefault(t *testing.T) {
	s := newTestStore()

	if err := s.SetGlobalDefault("missing"); !IsInvalidReference(err) {
		t.Fatalf("expected invalid reference, got %v", err)
	}

	s.CreateWithID("a", "A", "")
	if err := s.SetGlobalDefault("a"); err != nil {
		t.Fatalf("SetGlobalDefault returned error: %v", err)
	}
	if id, ok := s.GlobalDefault(); !ok || id != "a" {
		t.Fatalf("expected global default a, got %q (%v)", id, ok)
	}

	s.ClearGlobalDefault()
	if _, ok := s.GlobalDefault(); ok {
		t.Fatal("expected global default to be cleared")
	}
}

func TestBootstrapOnlySeedsEmptyStore(t *testing.T) {
	s := newTestStore()

	if !s.Bootstrap() {
		t.Fatal("expected Bootstrap to seed an empty store")
	}
	if s.Bootstrap() {
		t.Fatal("expected Bootstrap to be a no-op on a populated store")
	}

	p, ok := s.Fallback()
	if !ok || p.ID != BootstrapID || !p.IsDefault {
		t.Fatalf("unexpected fallback preset %+v (%v)", p, ok)
	}
	if id, _ := s.GlobalDefault(); id != BootstrapID {
		t.Fatalf("expected bootstrap to become global default, got %q", id)
	}
	for _, g := range Groups {
		if !p.Settings.Has(g) {
			t.Fatalf("bootstrap preset is missing group %s", g)
		}
	}
}
