package manager

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/Paintersrp/an-presets/internal/events"
	"github.com/Paintersrp/an-presets/internal/preset"
)

// Bundle is the exchange format of Export and Import.
type Bundle struct {
	Version    int             `json:"version"`
	ExportedAt time.Time       `json:"exportedAt"`
	Presets    []preset.Preset `json:"presets"`
	Checksum   string          `json:"checksum,omitempty"`
}

type ImportOptions struct {
	// Overwrite replaces presets with the same id instead of importing them
	// under a new one.
	Overwrite bool
}

type ImportReport struct {
	Created     []string          `json:"created"`
	Overwritten []string          `json:"overwritten"`
	Renamed     map[string]string `json:"renamed"`
}

// IDs returns every id the import wrote.
func (r ImportReport) IDs() []string {
	ids := append([]string(nil), r.Created...)
	return append(ids, r.Overwritten...)
}

func checksum(presets []preset.Preset) (string, error) {
	data, err := json.Marshal(presets)
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(xxhash.Sum64(data), 16), nil
}

// Export bundles the given presets, or all of them when ids is empty.
func (m *Manager) Export(ids ...string) ([]byte, error) {
	m.mu.RLock()
	var presets []preset.Preset
	if len(ids) == 0 {
		presets = m.store.List()
	} else {
		for _, id := range ids {
			p, err := m.store.Get(id)
			if err != nil {
				m.mu.RUnlock()
				return nil, err
			}
			presets = append(presets, p)
		}
	}
	m.mu.RUnlock()

	sum, err := checksum(presets)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", preset.ErrSerialization, err)
	}
	data, err := json.MarshalIndent(Bundle{
		Version:    DocumentVersion,
		ExportedAt: m.now(),
		Presets:    presets,
		Checksum:   sum,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", preset.ErrSerialization, err)
	}
	return data, nil
}

// Import adds the presets of a bundle. Colliding ids get a "-copy-N" suffix
// unless opts.Overwrite is set. Imported presets never carry the default flag.
func (m *Manager) Import(ctx context.Context, data []byte, opts ImportOptions) (ImportReport, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return ImportReport{}, &preset.Error{Op: "import", Err: fmt.Errorf("%w: %w", preset.ErrSerialization, err)}
	}
	if b.Version != DocumentVersion {
		return ImportReport{}, &preset.Error{Op: "import", Err: fmt.Errorf("%w: unsupported version %d", preset.ErrSerialization, b.Version)}
	}
	if b.Checksum != "" {
		sum, err := checksum(b.Presets)
		if err != nil || sum != b.Checksum {
			return ImportReport{}, &preset.Error{Op: "import", Err: fmt.Errorf("%w: checksum mismatch", preset.ErrSerialization)}
		}
	}
	for i, p := range b.Presets {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return ImportReport{}, &preset.Error{Op: "import", ID: p.ID, Err: preset.ErrInvalidID}
		}
		if err := p.Settings.Validate(); err != nil {
			return ImportReport{}, &preset.Error{Op: "import", ID: p.ID, Err: err}
		}
		b.Presets[i].ID = id
	}

	report := ImportReport{Renamed: make(map[string]string)}
	err := m.mutate(ctx, "import", func() (evs []events.Event, err error) {
		// A failing preset undoes the whole batch.
		var undo []func()
		defer func() {
			if err == nil {
				return
			}
			for i := len(undo) - 1; i >= 0; i-- {
				undo[i]()
			}
			report = ImportReport{}
		}()

		now := m.now()
		for _, p := range b.Presets {
			p.IsDefault = false
			p.UpdatedAt = now
			if p.CreatedAt.IsZero() {
				p.CreatedAt = now
			}

			switch {
			case !m.store.Has(p.ID):
				report.Created = append(report.Created, p.ID)
			case opts.Overwrite:
				existing, _ := m.store.Get(p.ID)
				p.CreatedAt = existing.CreatedAt
				p.IsDefault = existing.IsDefault
				if err := m.store.Replace(p); err != nil {
					return nil, err
				}
				undo = append(undo, func() { _ = m.store.Replace(existing) })
				report.Overwritten = append(report.Overwritten, p.ID)
				continue
			default:
				newID := m.freeCopyID(p.ID)
				report.Renamed[p.ID] = newID
				p.ID = newID
				report.Created = append(report.Created, newID)
			}
			if err := m.store.Put(p); err != nil {
				return nil, err
			}
			id := p.ID
			undo = append(undo, func() { m.store.Delete(id) })
		}

		ids := report.IDs()
		if len(ids) == 0 {
			return nil, nil
		}
		return []events.Event{{Kind: events.ImportedBatch, IDs: ids}}, nil
	})
	return report, err
}

func (m *Manager) freeCopyID(id string) string {
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s-copy-%d", id, n)
		if !m.store.Has(candidate) {
			return candidate
		}
	}
}
