// Package resolve computes the effective settings of a note from its folder,
// its tags, the global default and a resolution policy.
package resolve

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Paintersrp/an-presets/internal/assign"
	"github.com/Paintersrp/an-presets/internal/pathutil"
	"github.com/Paintersrp/an-presets/internal/preset"
)

// Presets is the read side of the preset store.
type Presets interface {
	Get(id string) (preset.Preset, error)
	GlobalDefault() (string, bool)
	Fallback() (preset.Preset, bool)
}

// Folders resolves folder assignments with ancestor inheritance.
type Folders interface {
	ResolveAssignment(folder string) (string, assign.Assignment, bool)
}

// Tags resolves exact tag assignments.
type Tags interface {
	Lookup(tag string) (assign.Assignment, bool)
	Normalize(tag string) string
}

// Input is everything a resolution depends on.
type Input struct {
	Path    string
	Tags    []string
	Presets Presets
	Folders Folders
	TagIdx  Tags
	Policy  Policy
}

// Result is the outcome of a resolution. Settings is always fully populated.
type Result struct {
	Settings   preset.Settings
	WinnerID   string
	Folder     string
	Candidates []Candidate
	Sources    map[preset.Group]string
	Fallback   bool
	MergeErr   error
}

// MergeFunc deep merges layers, lowest priority first, onto base for one group.
type MergeFunc func(g preset.Group, base preset.Settings, layers []preset.Settings) (preset.Settings, error)

// Resolver turns an Input into a Result. The zero value is ready to use.
type Resolver struct {
	// Merge replaces the field-by-field merge used by merge-custom.
	Merge MergeFunc
}

// Resolve is a pure function of its input.
func (r Resolver) Resolve(in Input) Result {
	policy := in.Policy.WithDefaults()
	if err := policy.Validate(); err != nil {
		policy = DefaultPolicy()
	}

	folder := pathutil.FolderOf(in.Path)
	res := Result{Folder: folder}

	folderCand := folderCandidate(in.Folders, folder)
	tagCand := firstTagCandidate(in.TagIdx, in.Tags, policy.TagOrder)
	globalCand := globalCandidate(in.Presets)

	var chosen []Candidate
	switch policy.ApplyMode {
	case FolderOnly:
		chosen = firstOf(folderCand, globalCand)
	case TagOnly:
		chosen = firstOf(tagCand, globalCand)
	case TagFirst:
		chosen = firstOf(tagCand, folderCand, globalCand)
	case Merged:
		chosen = Order(policy.PriorityOrder, globalCand, folderCand, tagCand)
	default:
		chosen = firstOf(folderCand, tagCand, globalCand)
	}

	layers := loadLayers(in.Presets, chosen)
	if len(layers) == 0 {
		layers = fallbackLayers(in.Presets)
		res.Fallback = true
	}
	res.Candidates = candidatesOf(layers)

	top := layers[len(layers)-1]
	res.WinnerID = top.cand.PresetID

	switch {
	case policy.ConflictResolution == PriorityOnly || len(layers) == 1:
		res.Settings = top.preset.Settings.Clone()
		res.Sources = sourcesFor(top)
	case policy.ConflictResolution == MergeCustom:
		settings, sources, err := r.mergeCustom(policy, layers, globalCand, folderCand, tagCand)
		if err != nil {
			res.MergeErr = err
			settings, sources = mergePriority(layers)
		}
		res.Settings, res.Sources = settings, sources
	default:
		res.Settings, res.Sources = mergePriority(layers)
	}

	res.Settings = complete(in.Presets, res.Settings)
	return res
}

type layer struct {
	cand   Candidate
	preset preset.Preset
}

func folderCandidate(folders Folders, folder string) *Candidate {
	if folders == nil {
		return nil
	}
	key, a, ok := folders.ResolveAssignment(folder)
	if !ok {
		return nil
	}
	return &Candidate{Source: SourceFolder, Key: key, PresetID: a.PresetID, Overrides: a.Priority()}
}

// firstTagCandidate returns the assignment of the first tag, in tie-break
// order, that has one.
func firstTagCandidate(tags Tags, supplied []string, order TagOrder) *Candidate {
	if tags == nil || len(supplied) == 0 {
		return nil
	}

	ordered := make([]string, 0, len(supplied))
	seen := make(map[string]struct{}, len(supplied))
	for _, tag := range supplied {
		key := tags.Normalize(tag)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		ordered = append(ordered, key)
	}
	if order == TagOrderAlphabetical {
		sort.Strings(ordered)
	}

	for _, key := range ordered {
		if a, ok := tags.Lookup(key); ok {
			return &Candidate{Source: SourceTag, Key: key, PresetID: a.PresetID, Overrides: a.Priority()}
		}
	}
	return nil
}

func globalCandidate(presets Presets) *Candidate {
	if presets == nil {
		return nil
	}
	id, ok := presets.GlobalDefault()
	if !ok {
		return nil
	}
	return &Candidate{Source: SourceGlobal, PresetID: id, Overrides: true}
}

func firstOf(cands ...*Candidate) []Candidate {
	for _, c := range cands {
		if c != nil {
			return []Candidate{*c}
		}
	}
	return nil
}

// loadLayers resolves candidate ids to presets, dropping ids that no longer
// exist. A single dropped winner falls through to the global default.
func loadLayers(presets Presets, chosen []Candidate) []layer {
	if presets == nil {
		return nil
	}
	layers := make([]layer, 0, len(chosen))
	for _, c := range chosen {
		p, err := presets.Get(c.PresetID)
		if err != nil {
			continue
		}
		layers = append(layers, layer{cand: c, preset: p})
	}
	if len(layers) == 0 && len(chosen) > 0 {
		if g := globalCandidate(presets); g != nil && chosen[0].Source != SourceGlobal {
			return loadLayers(presets, []Candidate{*g})
		}
	}
	return layers
}

func fallbackLayers(presets Presets) []layer {
	if presets != nil {
		if p, ok := presets.Fallback(); ok {
			return []layer{{cand: Candidate{Source: SourceFallback, PresetID: p.ID}, preset: p}}
		}
	}
	return []layer{{
		cand:   Candidate{Source: SourceFallback},
		preset: preset.Preset{Settings: preset.DefaultSettings()},
	}}
}

func candidatesOf(layers []layer) []Candidate {
	out := make([]Candidate, len(layers))
	for i, l := range layers {
		out[i] = l.cand
	}
	return out
}

func sourcesFor(l layer) map[preset.Group]string {
	sources := make(map[preset.Group]string)
	for _, g := range l.preset.Settings.Defined() {
		sources[g] = l.cand.PresetID
	}
	return sources
}

// mergePriority takes each group from the highest priority layer defining it.
func mergePriority(layers []layer) (preset.Settings, map[preset.Group]string) {
	var out preset.Settings
	sources := make(map[preset.Group]string)
	for _, g := range preset.Groups {
		for i := len(layers) - 1; i >= 0; i-- {
			if layers[i].preset.Settings.Has(g) {
				out.CopyGroup(g, layers[i].preset.Settings)
				sources[g] = layers[i].cand.PresetID
				break
			}
		}
	}
	return out, sources
}

func (r Resolver) mergeCustom(policy Policy, layers []layer, global, folder, tag *Candidate) (out preset.Settings, sources map[preset.Group]string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", preset.ErrMerge, rec)
		}
	}()

	var baseCand *Candidate
	switch policy.MergeStrategy {
	case FolderBase:
		baseCand = folder
	case TagBase:
		baseCand = tag
	default:
		baseCand = global
	}
	baseIdx := -1
	if baseCand != nil {
		for i, l := range layers {
			if l.cand.Source == baseCand.Source {
				baseIdx = i
				break
			}
		}
	}

	merge := r.Merge
	if merge == nil {
		merge = OverlayMerge
	}

	out, sources = mergePriority(layers)
	for _, g := range preset.Groups {
		if !policy.mergesGroup(g) {
			continue
		}

		merged, mergeErr := mergeAroundBase(merge, g, layers, baseIdx)
		if mergeErr != nil {
			return preset.Settings{}, nil, fmt.Errorf("%w: group %s: %w", preset.ErrMerge, g, mergeErr)
		}
		out.CopyGroup(g, merged)
		if merged.Has(g) {
			sources[g] = mergedSource(layers, g)
		}
	}

	if err := out.Validate(); err != nil {
		return preset.Settings{}, nil, errors.Join(preset.ErrMerge, err)
	}
	return out, sources, nil
}

// mergeAroundBase merges group g so that layers ranked above the base
// overwrite its fields while layers ranked below only fill fields the base
// leaves unset. Without a base every layer is overlaid in priority order.
func mergeAroundBase(merge MergeFunc, g preset.Group, layers []layer, baseIdx int) (preset.Settings, error) {
	if baseIdx < 0 {
		return merge(g, preset.Settings{}, settingsOf(layers))
	}

	below, err := merge(g, preset.Settings{}, settingsOf(layers[:baseIdx]))
	if err != nil {
		return preset.Settings{}, err
	}
	withBase, err := merge(g, below, []preset.Settings{layers[baseIdx].preset.Settings})
	if err != nil {
		return preset.Settings{}, err
	}
	return merge(g, withBase, settingsOf(layers[baseIdx+1:]))
}

func settingsOf(layers []layer) []preset.Settings {
	out := make([]preset.Settings, len(layers))
	for i, l := range layers {
		out[i] = l.preset.Settings
	}
	return out
}

// mergedSource names the highest priority preset contributing to group g.
func mergedSource(layers []layer, g preset.Group) string {
	for i := len(layers) - 1; i >= 0; i-- {
		if layers[i].preset.Settings.Has(g) {
			return layers[i].cand.PresetID
		}
	}
	return ""
}

// OverlayMerge is the default merge-custom rule: every layer is overlaid onto
// base field by field, so absent fields never clear earlier values.
func OverlayMerge(g preset.Group, base preset.Settings, layers []preset.Settings) (preset.Settings, error) {
	out := base.Clone()
	for _, l := range layers {
		out.OverlayGroup(g, l)
	}
	return out, nil
}

// complete fills absent groups and fields from the bootstrap preset, then
// from the built-in defaults.
func complete(presets Presets, s preset.Settings) preset.Settings {
	base := preset.DefaultSettings()
	if presets != nil {
		if p, ok := presets.Fallback(); ok {
			for _, g := range preset.Groups {
				base.OverlayGroup(g, p.Settings)
			}
		}
	}
	for _, g := range preset.Groups {
		base.OverlayGroup(g, s)
	}
	return base
}
