package resolve

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Paintersrp/an-presets/internal/preset"
)

// ApplyMode selects which assignment axes take part in resolution.
type ApplyMode string

const (
	FolderOnly  ApplyMode = "folder-only"
	TagOnly     ApplyMode = "tag-only"
	FolderFirst ApplyMode = "folder-first"
	TagFirst    ApplyMode = "tag-first"
	Merged      ApplyMode = "merged"
)

// PriorityOrder fixes the precedence of folder and tag assignments in merged mode.
type PriorityOrder string

const (
	TagFolderGlobal PriorityOrder = "tag-folder-global"
	FolderTagGlobal PriorityOrder = "folder-tag-global"
	Custom          PriorityOrder = "custom"
)

// ConflictResolution decides how several winning presets combine.
type ConflictResolution string

const (
	PriorityOnly  ConflictResolution = "priority-only"
	MergePriority ConflictResolution = "merge-priority"
	MergeCustom   ConflictResolution = "merge-custom"
)

// MergeStrategy names the base object of a merge-custom resolution.
type MergeStrategy string

const (
	FolderBase  MergeStrategy = "folder-base"
	TagBase     MergeStrategy = "tag-base"
	DefaultBase MergeStrategy = "default-base"
)

// TagOrder is the tie-break used when several tags of one note are assigned.
type TagOrder string

const (
	TagOrderSupplied     TagOrder = "supplied"
	TagOrderAlphabetical TagOrder = "alphabetical"
)

var (
	ApplyModes          = []ApplyMode{FolderOnly, TagOnly, FolderFirst, TagFirst, Merged}
	PriorityOrders      = []PriorityOrder{TagFolderGlobal, FolderTagGlobal, Custom}
	ConflictResolutions = []ConflictResolution{PriorityOnly, MergePriority, MergeCustom}
	MergeStrategies     = []MergeStrategy{FolderBase, TagBase, DefaultBase}
	TagOrders           = []TagOrder{TagOrderSupplied, TagOrderAlphabetical}
)

// Policy governs how folder, tag and global assignments combine.
type Policy struct {
	ApplyMode          ApplyMode          `json:"applyMode"             yaml:"apply_mode"`
	PriorityOrder      PriorityOrder      `json:"priorityOrder"         yaml:"priority_order"`
	ConflictResolution ConflictResolution `json:"conflictResolution"    yaml:"conflict_resolution"`
	MergeStrategy      MergeStrategy      `json:"mergeStrategy"         yaml:"merge_strategy"`
	TagOrder           TagOrder           `json:"tagOrder,omitempty"    yaml:"tag_order,omitempty"`
	MergeGroups        []preset.Group     `json:"mergeGroups,omitempty" yaml:"merge_groups,omitempty"`
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{
		ApplyMode:          FolderFirst,
		PriorityOrder:      TagFolderGlobal,
		ConflictResolution: MergePriority,
		MergeStrategy:      DefaultBase,
		TagOrder:           TagOrderSupplied,
	}
}

// WithDefaults fills empty fields from DefaultPolicy.
func (p Policy) WithDefaults() Policy {
	def := DefaultPolicy()
	if p.ApplyMode == "" {
		p.ApplyMode = def.ApplyMode
	}
	if p.PriorityOrder == "" {
		p.PriorityOrder = def.PriorityOrder
	}
	if p.ConflictResolution == "" {
		p.ConflictResolution = def.ConflictResolution
	}
	if p.MergeStrategy == "" {
		p.MergeStrategy = def.MergeStrategy
	}
	if p.TagOrder == "" {
		p.TagOrder = def.TagOrder
	}
	return p
}

// Validate reports the first unknown enum value.
func (p Policy) Validate() error {
	if !slices.Contains(ApplyModes, p.ApplyMode) {
		return fmt.Errorf("invalid apply mode %q", p.ApplyMode)
	}
	if !slices.Contains(PriorityOrders, p.PriorityOrder) {
		return fmt.Errorf("invalid priority order %q", p.PriorityOrder)
	}
	if !slices.Contains(ConflictResolutions, p.ConflictResolution) {
		return fmt.Errorf("invalid conflict resolution %q", p.ConflictResolution)
	}
	if !slices.Contains(MergeStrategies, p.MergeStrategy) {
		return fmt.Errorf("invalid merge strategy %q", p.MergeStrategy)
	}
	if p.TagOrder != "" && !slices.Contains(TagOrders, p.TagOrder) {
		return fmt.Errorf("invalid tag order %q", p.TagOrder)
	}
	for _, g := range p.MergeGroups {
		if _, err := preset.ParseGroup(string(g)); err != nil {
			return err
		}
	}
	return nil
}

// mergesGroup reports whether g is deep merged under merge-custom.
func (p Policy) mergesGroup(g preset.Group) bool {
	if len(p.MergeGroups) == 0 {
		return true
	}
	return slices.Contains(p.MergeGroups, g)
}

func ParseApplyMode(s string) (ApplyMode, error) {
	return parseEnum(s, ApplyModes, "apply mode")
}

func ParsePriorityOrder(s string) (PriorityOrder, error) {
	return parseEnum(s, PriorityOrders, "priority order")
}

func ParseConflictResolution(s string) (ConflictResolution, error) {
	return parseEnum(s, ConflictResolutions, "conflict resolution")
}

func ParseMergeStrategy(s string) (MergeStrategy, error) {
	return parseEnum(s, MergeStrategies, "merge strategy")
}

func ParseTagOrder(s string) (TagOrder, error) {
	return parseEnum(s, TagOrders, "tag order")
}

func parseEnum[T ~string](s string, valid []T, what string) (T, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	for _, v := range valid {
		if string(v) == normalized {
			return v, nil
		}
	}

	names := make([]string, len(valid))
	for i, v := range valid {
		names[i] = string(v)
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q. Please choose from %s", what, s, strings.Join(names, ", "))
}
