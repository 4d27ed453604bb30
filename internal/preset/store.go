// Package preset holds named display presets and the global default pointer.
package preset

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BootstrapID is the id of the preset created when a store is first used.
const BootstrapID = "default"

// Preset is a named, reusable bundle of display settings.
type Preset struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Settings    Settings  `json:"settings"`
	IsDefault   bool      `json:"isDefault,omitempty"`
}

// Clone returns a deep copy of p.
func (p Preset) Clone() Preset {
	p.Settings = p.Settings.Clone()
	return p
}

// Store owns the preset collection. It is not safe for concurrent use; callers
// serialise access.
type Store struct {
	presets       map[string]*Preset
	globalDefault string
	now           func() time.Time
	newID         func() string
}

type StoreOption func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator overrides how ids are generated by Create.
func WithIDGenerator(gen func() string) StoreOption {
	return func(s *Store) {
		s.newID = gen
	}
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		presets: make(map[string]*Preset),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Len returns the number of presets.
func (s *Store) Len() int {
	return len(s.presets)
}

// Has reports whether a preset with the given id exists.
func (s *Store) Has(id string) bool {
	_, ok := s.presets[id]
	return ok
}

// Create adds a preset with a generated id and no settings groups.
func (s *Store) Create(name, description string) (Preset, error) {
	id := s.newID()
	for s.Has(id) {
		id = s.newID()
	}
	return s.CreateWithID(id, name, description)
}

// CreateWithID adds a preset under a caller supplied id.
func (s *Store) CreateWithID(id, name, description string) (Preset, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Preset{}, opError("create", id, ErrInvalidID)
	}
	if s.Has(id) {
		return Preset{}, opError("create", id, ErrDuplicateID)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = id
	}

	now := s.now()
	p := &Preset{
		ID:          id,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.presets[id] = p
	return p.Clone(), nil
}

// Put inserts a fully formed preset, keeping its timestamps. Used when loading
// and importing.
func (s *Store) Put(p Preset) error {
	if strings.TrimSpace(p.ID) == "" {
		return opError("put", p.ID, ErrInvalidID)
	}
	if s.Has(p.ID) {
		return opError("put", p.ID, ErrDuplicateID)
	}
	if err := p.Settings.Validate(); err != nil {
		return opError("put", p.ID, err)
	}
	cp := p.Clone()
	s.presets[p.ID] = &cp
	return nil
}

// Replace overwrites an existing preset wholesale.
func (s *Store) Replace(p Preset) error {
	if !s.Has(p.ID) {
		return opError("replace", p.ID, ErrNotFound)
	}
	if err := p.Settings.Validate(); err != nil {
		return opError("replace", p.ID, err)
	}
	cp := p.Clone()
	s.presets[p.ID] = &cp
	return nil
}

func (s *Store) Get(id string) (Preset, error) {
	p, ok := s.presets[id]
	if !ok {
		return Preset{}, opError("get", id, ErrNotFound)
	}
	return p.Clone(), nil
}

// List returns every preset ordered by creation time, then id.
func (s *Store) List() []Preset {
	out := make([]Preset, 0, len(s.presets))
	for _, p := range s.presets {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// IDs returns the sorted preset ids.
func (s *Store) IDs() []string {
	ids := make([]string, 0, len(s.presets))
	for id := range s.presets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Update replaces each group defined in patch and leaves the rest untouched.
func (s *Store) Update(id string, patch Settings) (Preset, error) {
	p, ok := s.presets[id]
	if !ok {
		return Preset{}, opError("update", id, ErrNotFound)
	}

	next := p.Settings.Patch(patch)
	if err := next.Validate(); err != nil {
		return Preset{}, opError("update", id, err)
	}

	p.Settings = next
	p.UpdatedAt = s.now()
	return p.Clone(), nil
}

// UpdateMeta changes the name and/or description. Nil arguments are left as is.
func (s *Store) UpdateMeta(id string, name, description *string) (Preset, error) {
	p, ok := s.presets[id]
	if !ok {
		return Preset{}, opError("update", id, ErrNotFound)
	}
	if name != nil {
		if trimmed := strings.TrimSpace(*name); trimmed != "" {
			p.Name = trimmed
		}
	}
	if description != nil {
		p.Description = *description
	}
	p.UpdatedAt = s.now()
	return p.Clone(), nil
}

// Delete removes the preset and reports whether it existed. References held
// elsewhere are cleaned up by the caller.
func (s *Store) Delete(id string) bool {
	if _, ok := s.presets[id]; !ok {
		return false
	}
	delete(s.presets, id)
	return true
}

// Rename moves a preset to a new id, keeping its contents.
func (s *Store) Rename(oldID, newID string) error {
	newID = strings.TrimSpace(newID)
	if newID == "" {
		return opError("rename", newID, ErrInvalidID)
	}
	p, ok := s.presets[oldID]
	if !ok {
		return opError("rename", oldID, ErrNotFound)
	}
	if oldID == newID {
		return nil
	}
	if s.Has(newID) {
		return opError("rename", newID, ErrDuplicateID)
	}

	delete(s.presets, oldID)
	p.ID = newID
	p.UpdatedAt = s.now()
	s.presets[newID] = p
	return nil
}

// GlobalDefault returns the global default preset id, if one is set.
func (s *Store) GlobalDefault() (string, bool) {
	return s.globalDefault, s.globalDefault != ""
}

func (s *Store) SetGlobalDefault(id string) error {
	if !s.Has(id) {
		return opError("set global default", id, ErrInvalidReference)
	}
	s.globalDefault = id
	return nil
}

func (s *Store) ClearGlobalDefault() {
	s.globalDefault = ""
}

// Bootstrap seeds an empty store with the default preset and points the
// global default at it. It reports whether anything was created.
func (s *Store) Bootstrap() bool {
	if len(s.presets) > 0 {
		return false
	}

	now := s.now()
	s.presets[BootstrapID] = &Preset{
		ID:          BootstrapID,
		Name:        "Default",
		Description: "Default display settings.",
		CreatedAt:   now,
		UpdatedAt:   now,
		Settings:    DefaultSettings(),
		IsDefault:   true,
	}
	s.globalDefault = BootstrapID
	return true
}

// Fallback returns the bootstrap preset, or any preset flagged as default.
func (s *Store) Fallback() (Preset, bool) {
	if p, ok := s.presets[BootstrapID]; ok && p.IsDefault {
		return p.Clone(), true
	}
	for _, p := range s.List() {
		if p.IsDefault {
			return p, true
		}
	}
	return Preset{}, false
}

// Reset drops every preset and the global default.
func (s *Store) Reset() {
	s.presets = make(map[string]*Preset)
	s.globalDefault = ""
}
