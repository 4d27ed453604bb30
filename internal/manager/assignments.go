package manager

import (
	"context"

	"github.com/Paintersrp/an-presets/internal/assign"
	"github.com/Paintersrp/an-presets/internal/events"
	"github.com/Paintersrp/an-presets/internal/pathutil"
)

// AssignFolder maps folder, and every folder below it without its own
// assignment, to presetID. A nil overrides defaults to overriding the global
// default.
func (m *Manager) AssignFolder(ctx context.Context, folder, presetID string, overrides *bool) error {
	key := pathutil.NormalizeFolder(folder)
	return m.mutate(ctx, "assign folder", func() ([]events.Event, error) {
		if err := m.folders.Assign(key, presetID, overrides, m.store.Has); err != nil {
			return nil, err
		}
		return []events.Event{{Kind: events.FolderMappingChanged, PresetID: presetID, Key: key}}, nil
	})
}

// UnassignFolder removes the exact folder mapping. It reports whether one
// existed; nothing is saved or published otherwise.
func (m *Manager) UnassignFolder(ctx context.Context, folder string) (bool, error) {
	key := pathutil.NormalizeFolder(folder)
	var removed bool
	err := m.mutate(ctx, "unassign folder", func() ([]events.Event, error) {
		a, ok := m.folders.Lookup(key)
		if !ok {
			return nil, nil
		}
		m.folders.Unassign(key)
		removed = true
		return []events.Event{{Kind: events.FolderMappingRemoved, PresetID: a.PresetID, Key: key}}, nil
	})
	return removed, err
}

func (m *Manager) SetFolderOverride(ctx context.Context, folder string, overrides *bool) error {
	key := pathutil.NormalizeFolder(folder)
	return m.mutate(ctx, "set folder override", func() ([]events.Event, error) {
		if err := m.folders.SetOverride(key, overrides); err != nil {
			return nil, err
		}
		a, _ := m.folders.Lookup(key)
		return []events.Event{{Kind: events.FolderMappingChanged, PresetID: a.PresetID, Key: key}}, nil
	})
}

func (m *Manager) AssignTag(ctx context.Context, tag, presetID string, overrides *bool) error {
	return m.mutate(ctx, "assign tag", func() ([]events.Event, error) {
		key := m.tags.Normalize(tag)
		if err := m.tags.Assign(tag, presetID, overrides, m.store.Has); err != nil {
			return nil, err
		}
		return []events.Event{{Kind: events.TagMappingChanged, PresetID: presetID, Key: key}}, nil
	})
}

func (m *Manager) UnassignTag(ctx context.Context, tag string) (bool, error) {
	var removed bool
	err := m.mutate(ctx, "unassign tag", func() ([]events.Event, error) {
		key := m.tags.Normalize(tag)
		a, ok := m.tags.Lookup(key)
		if !ok {
			return nil, nil
		}
		m.tags.Unassign(key)
		removed = true
		return []events.Event{{Kind: events.TagMappingRemoved, PresetID: a.PresetID, Key: key}}, nil
	})
	return removed, err
}

func (m *Manager) SetTagOverride(ctx context.Context, tag string, overrides *bool) error {
	return m.mutate(ctx, "set tag override", func() ([]events.Event, error) {
		key := m.tags.Normalize(tag)
		if err := m.tags.SetOverride(key, overrides); err != nil {
			return nil, err
		}
		a, _ := m.tags.Lookup(key)
		return []events.Event{{Kind: events.TagMappingChanged, PresetID: a.PresetID, Key: key}}, nil
	})
}

func (m *Manager) FolderAssignments() map[string]assign.Assignment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.folders.Entries()
}

func (m *Manager) TagAssignments() map[string]assign.Assignment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tags.Entries()
}
