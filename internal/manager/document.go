package manager

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/Paintersrp/an-presets/internal/assign"
	"github.com/Paintersrp/an-presets/internal/pathutil"
	"github.com/Paintersrp/an-presets/internal/preset"
	"github.com/Paintersrp/an-presets/internal/resolve"
)

// DocumentVersion is the schema version written by Save.
const DocumentVersion = 1

// Document is the persisted form of a manager's state.
type Document struct {
	Version               int                          `json:"version"`
	Presets               []preset.Preset              `json:"presets"`
	FolderAssignments     map[string]assign.Assignment `json:"folderAssignments"`
	TagAssignments        map[string]assign.Assignment `json:"tagAssignments"`
	GlobalDefaultPresetID string                       `json:"globalDefaultPresetId,omitempty"`
	Policy                resolve.Policy               `json:"policy"`
}

func encodeDocument(doc Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", preset.ErrSerialization, err)
	}
	return data, nil
}

// decodeDocument parses and validates data. Dangling references fail in
// strict mode and are otherwise pruned and returned as notes.
func decodeDocument(data []byte, strict bool) (Document, []string, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, nil, fmt.Errorf("%w: %w", preset.ErrSerialization, err)
	}
	if doc.Version != DocumentVersion {
		return Document{}, nil, fmt.Errorf("%w: unsupported version %d", preset.ErrSerialization, doc.Version)
	}

	seen := make(map[string]struct{}, len(doc.Presets))
	for _, p := range doc.Presets {
		if p.ID == "" {
			return Document{}, nil, fmt.Errorf("%w: preset with empty id", preset.ErrSerialization)
		}
		if _, dup := seen[p.ID]; dup {
			return Document{}, nil, fmt.Errorf("%w: duplicate preset id %q", preset.ErrSerialization, p.ID)
		}
		seen[p.ID] = struct{}{}
		if err := p.Settings.Validate(); err != nil {
			return Document{}, nil, fmt.Errorf("%w: preset %q: %w", preset.ErrSerialization, p.ID, err)
		}
	}

	doc.Policy = doc.Policy.WithDefaults()
	if err := doc.Policy.Validate(); err != nil {
		return Document{}, nil, fmt.Errorf("%w: %w", preset.ErrSerialization, err)
	}

	dangling := danglingReferences(doc)
	if len(dangling) > 0 && strict {
		return Document{}, nil, fmt.Errorf("%w: dangling references: %v", preset.ErrSerialization, dangling)
	}
	return pruneDangling(doc), dangling, nil
}

// danglingReferences lists every reference to a preset the document lacks.
func danglingReferences(doc Document) []string {
	ids := make(map[string]struct{}, len(doc.Presets))
	for _, p := range doc.Presets {
		ids[p.ID] = struct{}{}
	}

	var out []string
	for _, key := range sortedKeys(doc.FolderAssignments) {
		if _, ok := ids[doc.FolderAssignments[key].PresetID]; !ok {
			out = append(out, fmt.Sprintf("folder %q -> %q", key, doc.FolderAssignments[key].PresetID))
		}
	}
	for _, key := range sortedKeys(doc.TagAssignments) {
		if _, ok := ids[doc.TagAssignments[key].PresetID]; !ok {
			out = append(out, fmt.Sprintf("tag %q -> %q", key, doc.TagAssignments[key].PresetID))
		}
	}
	if gd := doc.GlobalDefaultPresetID; gd != "" {
		if _, ok := ids[gd]; !ok {
			out = append(out, fmt.Sprintf("global default -> %q", gd))
		}
	}
	return out
}

func pruneDangling(doc Document) Document {
	ids := make(map[string]struct{}, len(doc.Presets))
	for _, p := range doc.Presets {
		ids[p.ID] = struct{}{}
	}
	keep := func(in map[string]assign.Assignment) map[string]assign.Assignment {
		out := make(map[string]assign.Assignment, len(in))
		for key, a := range in {
			if _, ok := ids[a.PresetID]; ok {
				out[key] = a
			}
		}
		return out
	}
	doc.FolderAssignments = keep(doc.FolderAssignments)
	doc.TagAssignments = keep(doc.TagAssignments)
	if _, ok := ids[doc.GlobalDefaultPresetID]; !ok {
		doc.GlobalDefaultPresetID = ""
	}
	return doc
}

func sortedKeys(m map[string]assign.Assignment) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// state is the in-memory aggregate a document is loaded into.
type state struct {
	store   *preset.Store
	folders *assign.FolderIndex
	tags    *assign.TagIndex
	policy  resolve.Policy
}

func (m *Manager) newState() state {
	return state{
		store:   preset.NewStore(m.storeOpts()...),
		folders: assign.NewFolderIndex(),
		tags:    assign.NewTagIndex(m.tagCaseSensitive),
		policy:  resolve.DefaultPolicy(),
	}
}

// buildState turns a validated document into a fresh state.
func (m *Manager) buildState(doc Document) (state, error) {
	st := m.newState()
	st.policy = doc.Policy

	var errs []error
	for _, p := range doc.Presets {
		if err := st.store.Put(p); err != nil {
			errs = append(errs, err)
		}
	}
	folderKeys := make(map[string]string)
	for _, key := range sortedKeys(doc.FolderAssignments) {
		if m.collides("folder", folderKeys, pathutil.NormalizeFolder(key), key) {
			continue
		}
		a := doc.FolderAssignments[key]
		if err := st.folders.Assign(key, a.PresetID, a.OverridesGlobal, st.store.Has); err != nil {
			errs = append(errs, err)
		}
	}
	tagKeys := make(map[string]string)
	for _, key := range sortedKeys(doc.TagAssignments) {
		if m.collides("tag", tagKeys, st.tags.Normalize(key), key) {
			continue
		}
		a := doc.TagAssignments[key]
		if err := st.tags.Assign(key, a.PresetID, a.OverridesGlobal, st.store.Has); err != nil {
			errs = append(errs, err)
		}
	}
	if doc.GlobalDefaultPresetID != "" {
		if err := st.store.SetGlobalDefault(doc.GlobalDefaultPresetID); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return state{}, fmt.Errorf("%w: %w", preset.ErrSerialization, err)
	}
	return st, nil
}

// collides reports whether a stored key normalises to one already loaded,
// which happens when the tag case policy changes between runs. The first key
// in sorted order is kept.
func (m *Manager) collides(kind string, seen map[string]string, normalized, key string) bool {
	first, ok := seen[normalized]
	if !ok {
		seen[normalized] = key
		return false
	}
	m.logger.Warn("dropping assignment that collides after normalisation",
		"kind", kind, "key", key, "kept", first, "normalized", normalized)
	return true
}

// snapshotLocked captures the current state as a document. Callers hold at
// least the read lock.
func (m *Manager) snapshotLocked() Document {
	doc := Document{
		Version:           DocumentVersion,
		Presets:           m.store.List(),
		FolderAssignments: m.folders.Entries(),
		TagAssignments:    m.tags.Entries(),
		Policy:            m.policy,
	}
	if gd, ok := m.store.GlobalDefault(); ok {
		doc.GlobalDefaultPresetID = gd
	}
	return doc
}
