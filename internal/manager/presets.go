package manager

import (
	"context"
	"fmt"
	"strings"

	"github.com/Paintersrp/an-presets/internal/events"
	"github.com/Paintersrp/an-presets/internal/preset"
)

func (m *Manager) Get(id string) (preset.Preset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store.Get(id)
}

func (m *Manager) List() []preset.Preset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store.List()
}

// Create adds an empty preset under a generated id.
func (m *Manager) Create(ctx context.Context, name, description string) (preset.Preset, error) {
	var created preset.Preset
	err := m.mutate(ctx, "create", func() ([]events.Event, error) {
		p, err := m.store.Create(name, description)
		if err != nil {
			return nil, err
		}
		created = p
		return []events.Event{{Kind: events.Created, PresetID: p.ID}}, nil
	})
	return created, err
}

// CreateWithID adds an empty preset under id.
func (m *Manager) CreateWithID(ctx context.Context, id, name, description string) (preset.Preset, error) {
	var created preset.Preset
	err := m.mutate(ctx, "create", func() ([]events.Event, error) {
		p, err := m.store.CreateWithID(id, name, description)
		if err != nil {
			return nil, err
		}
		created = p
		return []events.Event{{Kind: events.Created, PresetID: p.ID}}, nil
	})
	return created, err
}

// Update replaces every group present in patch.
func (m *Manager) Update(ctx context.Context, id string, patch preset.Settings) (preset.Preset, error) {
	var updated preset.Preset
	err := m.mutate(ctx, "update", func() ([]events.Event, error) {
		p, err := m.store.Update(id, patch)
		if err != nil {
			return nil, err
		}
		updated = p
		return []events.Event{{Kind: events.Updated, PresetID: id}}, nil
	})
	return updated, err
}

func (m *Manager) UpdateMeta(ctx context.Context, id string, name, description *string) (preset.Preset, error) {
	var updated preset.Preset
	err := m.mutate(ctx, "update", func() ([]events.Event, error) {
		p, err := m.store.UpdateMeta(id, name, description)
		if err != nil {
			return nil, err
		}
		updated = p
		return []events.Event{{Kind: events.Updated, PresetID: id}}, nil
	})
	return updated, err
}

// Delete removes the preset along with every assignment to it, and clears
// the global default if it pointed there. It reports whether the preset
// existed; the error only reflects persistence.
func (m *Manager) Delete(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := m.mutate(ctx, "delete", func() ([]events.Event, error) {
		if !m.store.Delete(id) {
			return nil, nil
		}
		removed = true
		return m.coordinator().onDeleted(id).deletedEvents(id), nil
	})
	return removed, err
}

// Rename moves a preset to newID and rewrites every reference to it.
func (m *Manager) Rename(ctx context.Context, oldID, newID string) error {
	newID = strings.TrimSpace(newID)
	return m.mutate(ctx, "rename", func() ([]events.Event, error) {
		if oldID == newID {
			if !m.store.Has(oldID) {
				return nil, &preset.Error{Op: "rename", ID: oldID, Err: preset.ErrNotFound}
			}
			return nil, nil
		}
		if err := m.store.Rename(oldID, newID); err != nil {
			return nil, err
		}
		m.coordinator().onRenamed(oldID, newID)
		return []events.Event{{Kind: events.IDChanged, PresetID: newID, OldID: oldID}}, nil
	})
}

// Clone copies a preset's settings into a new preset. An empty name derives
// one from the source.
func (m *Manager) Clone(ctx context.Context, id, name string) (preset.Preset, error) {
	var created preset.Preset
	err := m.mutate(ctx, "clone", func() ([]events.Event, error) {
		src, err := m.store.Get(id)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("%s (copy)", src.Name)
		}

		p, err := m.store.Create(name, src.Description)
		if err != nil {
			return nil, err
		}
		if p, err = m.store.Update(p.ID, src.Settings); err != nil {
			m.store.Delete(p.ID)
			return nil, err
		}
		created = p
		return []events.Event{{Kind: events.Created, PresetID: p.ID}}, nil
	})
	return created, err
}

func (m *Manager) GlobalDefault() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store.GlobalDefault()
}

func (m *Manager) SetGlobalDefault(ctx context.Context, id string) error {
	return m.mutate(ctx, "set global default", func() ([]events.Event, error) {
		if gd, ok := m.store.GlobalDefault(); ok && gd == id {
			return nil, nil
		}
		if err := m.store.SetGlobalDefault(id); err != nil {
			return nil, err
		}
		return []events.Event{{Kind: events.GlobalDefaultChanged, PresetID: id}}, nil
	})
}

// ClearGlobalDefault unsets the global default. Clearing an unset default is
// a no-op.
func (m *Manager) ClearGlobalDefault(ctx context.Context) error {
	return m.mutate(ctx, "clear global default", func() ([]events.Event, error) {
		gd, ok := m.store.GlobalDefault()
		if !ok {
			return nil, nil
		}
		m.store.ClearGlobalDefault()
		return []events.Event{{Kind: events.GlobalDefaultCleared, PresetID: gd}}, nil
	})
}

// Usage lists everything referencing one preset.
type Usage struct {
	Folders       []string `json:"folders"`
	Tags          []string `json:"tags"`
	GlobalDefault bool     `json:"globalDefault"`
}

// InUse reports whether anything references the preset.
func (u Usage) InUse() bool {
	return u.GlobalDefault || len(u.Folders) > 0 || len(u.Tags) > 0
}

func (m *Manager) UsageOf(id string) (Usage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.store.Has(id) {
		return Usage{}, &preset.Error{Op: "usage", ID: id, Err: preset.ErrNotFound}
	}
	gd, ok := m.store.GlobalDefault()
	return Usage{
		Folders:       m.folders.KeysFor(id),
		Tags:          m.tags.KeysFor(id),
		GlobalDefault: ok && gd == id,
	}, nil
}
