package manager

import (
	"github.com/Paintersrp/an-presets/internal/assign"
	"github.com/Paintersrp/an-presets/internal/events"
	"github.com/Paintersrp/an-presets/internal/preset"
)

// coordinator keeps index entries and the global default pointing at presets
// that exist. Callers hold the manager's write lock.
type coordinator struct {
	store   *preset.Store
	folders *assign.FolderIndex
	tags    *assign.TagIndex
}

// cascade lists what a delete or rename touched.
type cascade struct {
	folders       []string
	tags          []string
	globalDefault bool
}

func (c coordinator) onDeleted(id string) cascade {
	out := cascade{
		folders: c.folders.RemoveFor(id),
		tags:    c.tags.RemoveFor(id),
	}
	if gd, ok := c.store.GlobalDefault(); ok && gd == id {
		c.store.ClearGlobalDefault()
		out.globalDefault = true
	}
	return out
}

func (c coordinator) onRenamed(oldID, newID string) cascade {
	out := cascade{
		folders: c.folders.Rewrite(oldID, newID),
		tags:    c.tags.Rewrite(oldID, newID),
	}
	if gd, ok := c.store.GlobalDefault(); ok && gd == oldID {
		// newID exists: the store rename has already happened.
		_ = c.store.SetGlobalDefault(newID)
		out.globalDefault = true
	}
	return out
}

// deletedEvents reports the removals of a delete cascade.
func (c cascade) deletedEvents(id string) []events.Event {
	evs := []events.Event{{Kind: events.Deleted, PresetID: id}}
	for _, key := range c.folders {
		evs = append(evs, events.Event{Kind: events.FolderMappingRemoved, PresetID: id, Key: key})
	}
	for _, key := range c.tags {
		evs = append(evs, events.Event{Kind: events.TagMappingRemoved, PresetID: id, Key: key})
	}
	if c.globalDefault {
		evs = append(evs, events.Event{Kind: events.GlobalDefaultCleared, PresetID: id})
	}
	return evs
}
