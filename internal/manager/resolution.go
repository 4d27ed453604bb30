package manager

import (
	"context"
	"maps"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/Paintersrp/an-presets/internal/events"
	"github.com/Paintersrp/an-presets/internal/preset"
	"github.com/Paintersrp/an-presets/internal/resolve"
)

func (m *Manager) Policy() resolve.Policy {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p := m.policy
	p.MergeGroups = slices.Clone(p.MergeGroups)
	return p
}

// SetPolicy validates and installs p. Empty fields take their defaults.
func (m *Manager) SetPolicy(ctx context.Context, p resolve.Policy) error {
	p = p.WithDefaults()
	if err := p.Validate(); err != nil {
		return err
	}
	return m.mutate(ctx, "set policy", func() ([]events.Event, error) {
		m.policy = p
		return []events.Event{{Kind: events.PolicyChanged}}, nil
	})
}

// ResolveForFile returns the fully populated settings for a note. It never
// fails.
func (m *Manager) ResolveForFile(path string, tags []string) preset.Settings {
	return m.Explain(path, tags).Settings
}

// Explain resolves a note and reports which presets took part.
func (m *Manager) Explain(path string, tags []string) resolve.Result {
	key := resultKey(path, tags)
	if res, ok := m.results.Get(key); ok {
		return cloneResult(res)
	}

	m.mu.RLock()
	res := m.resolver.Resolve(resolve.Input{
		Path:    path,
		Tags:    tags,
		Presets: m.store,
		Folders: m.folders,
		TagIdx:  m.tags,
		Policy:  m.policy,
	})
	// Only cache against the state the result was computed from.
	m.results.Put(key, cloneResult(res))
	m.mu.RUnlock()

	if res.MergeErr != nil {
		m.logger.Warn("custom merge failed, using priority merge", "path", path, "err", res.MergeErr)
		m.notifier.Publish(events.Event{Kind: events.Error, PresetID: res.WinnerID, Key: path, Err: res.MergeErr})
	}
	return res
}

// Apply resolves a note and publishes an applied event for the winner.
func (m *Manager) Apply(path string, tags []string) preset.Settings {
	res := m.Explain(path, tags)
	m.notifier.Publish(events.Event{Kind: events.Applied, PresetID: res.WinnerID, Key: path})
	return res.Settings
}

func resultKey(path string, tags []string) uint64 {
	d := xxhash.New()
	d.WriteString(path)
	for _, tag := range tags {
		d.Write([]byte{0})
		d.WriteString(tag)
	}
	return d.Sum64()
}

func cloneResult(r resolve.Result) resolve.Result {
	r.Settings = r.Settings.Clone()
	r.Sources = maps.Clone(r.Sources)
	r.Candidates = append([]resolve.Candidate(nil), r.Candidates...)
	return r
}
