package preset

import (
	"fmt"
	"slices"
)

// Group names one independently optional block of preset settings.
type Group string

const (
	GroupContent Group = "content"
	GroupStyle   Group = "style"
	GroupLayout  Group = "layout"
	GroupSort    Group = "sort"
	GroupCardSet Group = "cardSet"
)

// Groups lists every settings group in canonical order.
var Groups = []Group{GroupContent, GroupStyle, GroupLayout, GroupSort, GroupCardSet}

// ParseGroup validates a group name.
func ParseGroup(name string) (Group, error) {
	for _, g := range Groups {
		if string(g) == name {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown settings group %q", name)
}

var (
	ValidLayoutModes = []string{"list", "card", "grid", "masonry"}
	ValidSortFields  = []string{"title", "modified", "created", "path"}
	ValidSortOrders  = []string{"asc", "desc"}
)

type ContentSettings struct {
	ShowTitle       *bool `json:"showTitle,omitempty"       yaml:"show_title,omitempty"`
	ShowTags        *bool `json:"showTags,omitempty"        yaml:"show_tags,omitempty"`
	ShowPreview     *bool `json:"showPreview,omitempty"     yaml:"show_preview,omitempty"`
	PreviewLines    *int  `json:"previewLines,omitempty"    yaml:"preview_lines,omitempty"`
	ShowFrontmatter *bool `json:"showFrontmatter,omitempty" yaml:"show_frontmatter,omitempty"`
}

type StyleSettings struct {
	Theme     *string `json:"theme,omitempty"     yaml:"theme,omitempty"`
	CardWidth *int    `json:"cardWidth,omitempty" yaml:"card_width,omitempty"`
	FontSize  *int    `json:"fontSize,omitempty"  yaml:"font_size,omitempty"`
	Accent    *string `json:"accent,omitempty"    yaml:"accent,omitempty"`
}

type LayoutSettings struct {
	Mode    *string `json:"mode,omitempty"    yaml:"mode,omitempty"`
	Columns *int    `json:"columns,omitempty" yaml:"columns,omitempty"`
	Gap     *int    `json:"gap,omitempty"     yaml:"gap,omitempty"`
	Dense   *bool   `json:"dense,omitempty"   yaml:"dense,omitempty"`
}

type SortSettings struct {
	Field       *string `json:"field,omitempty"       yaml:"field,omitempty"`
	Order       *string `json:"order,omitempty"       yaml:"order,omitempty"`
	PinnedFirst *bool   `json:"pinnedFirst,omitempty" yaml:"pinned_first,omitempty"`
}

type CardSetSettings struct {
	Name          *string  `json:"name,omitempty"          yaml:"name,omitempty"`
	Fields        []string `json:"fields,omitempty"        yaml:"fields,omitempty"`
	ImageProperty *string  `json:"imageProperty,omitempty" yaml:"image_property,omitempty"`
	ShowCover     *bool    `json:"showCover,omitempty"     yaml:"show_cover,omitempty"`
}

// Settings is the display configuration carried by a preset. A nil group means
// the preset does not define it.
type Settings struct {
	Content *ContentSettings `json:"content,omitempty" yaml:"content,omitempty"`
	Style   *StyleSettings   `json:"style,omitempty"   yaml:"style,omitempty"`
	Layout  *LayoutSettings  `json:"layout,omitempty"  yaml:"layout,omitempty"`
	Sort    *SortSettings    `json:"sort,omitempty"    yaml:"sort,omitempty"`
	CardSet *CardSetSettings `json:"cardSet,omitempty" yaml:"card_set,omitempty"`
}

// DefaultSettings returns the fully populated settings used by the bootstrap preset.
func DefaultSettings() Settings {
	return Settings{
		Content: &ContentSettings{
			ShowTitle:       Ptr(true),
			ShowTags:        Ptr(true),
			ShowPreview:     Ptr(true),
			PreviewLines:    Ptr(3),
			ShowFrontmatter: Ptr(false),
		},
		Style: &StyleSettings{
			Theme:     Ptr("default"),
			CardWidth: Ptr(280),
			FontSize:  Ptr(14),
			Accent:    Ptr("#00AAFF"),
		},
		Layout: &LayoutSettings{
			Mode:    Ptr("list"),
			Columns: Ptr(1),
			Gap:     Ptr(8),
			Dense:   Ptr(false),
		},
		Sort: &SortSettings{
			Field:       Ptr("modified"),
			Order:       Ptr("desc"),
			PinnedFirst: Ptr(true),
		},
		CardSet: &CardSetSettings{
			Name:          Ptr("default"),
			Fields:        []string{"title", "tags"},
			ImageProperty: Ptr("cover"),
			ShowCover:     Ptr(false),
		},
	}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func pick[T any](base, over *T) *T {
	if over != nil {
		return clonePtr(over)
	}
	return clonePtr(base)
}

func (c *ContentSettings) clone() *ContentSettings {
	if c == nil {
		return nil
	}
	return &ContentSettings{
		ShowTitle:       clonePtr(c.ShowTitle),
		ShowTags:        clonePtr(c.ShowTags),
		ShowPreview:     clonePtr(c.ShowPreview),
		PreviewLines:    clonePtr(c.PreviewLines),
		ShowFrontmatter: clonePtr(c.ShowFrontmatter),
	}
}

func (s *StyleSettings) clone() *StyleSettings {
	if s == nil {
		return nil
	}
	return &StyleSettings{
		Theme:     clonePtr(s.Theme),
		CardWidth: clonePtr(s.CardWidth),
		FontSize:  clonePtr(s.FontSize),
		Accent:    clonePtr(s.Accent),
	}
}

func (l *LayoutSettings) clone() *LayoutSettings {
	if l == nil {
		return nil
	}
	return &LayoutSettings{
		Mode:    clonePtr(l.Mode),
		Columns: clonePtr(l.Columns),
		Gap:     clonePtr(l.Gap),
		Dense:   clonePtr(l.Dense),
	}
}

func (s *SortSettings) clone() *SortSettings {
	if s == nil {
		return nil
	}
	return &SortSettings{
		Field:       clonePtr(s.Field),
		Order:       clonePtr(s.Order),
		PinnedFirst: clonePtr(s.PinnedFirst),
	}
}

func (c *CardSetSettings) clone() *CardSetSettings {
	if c == nil {
		return nil
	}
	return &CardSetSettings{
		Name:          clonePtr(c.Name),
		Fields:        slices.Clone(c.Fields),
		ImageProperty: clonePtr(c.ImageProperty),
		ShowCover:     clonePtr(c.ShowCover),
	}
}

// Clone returns a deep copy of s.
func (s Settings) Clone() Settings {
	return Settings{
		Content: s.Content.clone(),
		Style:   s.Style.clone(),
		Layout:  s.Layout.clone(),
		Sort:    s.Sort.clone(),
		CardSet: s.CardSet.clone(),
	}
}

// Has reports whether the group is defined.
func (s Settings) Has(g Group) bool {
	switch g {
	case GroupContent:
		return s.Content != nil
	case GroupStyle:
		return s.Style != nil
	case GroupLayout:
		return s.Layout != nil
	case GroupSort:
		return s.Sort != nil
	case GroupCardSet:
		return s.CardSet != nil
	}
	return false
}

// Defined returns the groups present in s in canonical order.
func (s Settings) Defined() []Group {
	var groups []Group
	for _, g := range Groups {
		if s.Has(g) {
			groups = append(groups, g)
		}
	}
	return groups
}

// CopyGroup replaces group g of s with a copy of the same group from src.
func (s *Settings) CopyGroup(g Group, src Settings) {
	switch g {
	case GroupContent:
		s.Content = src.Content.clone()
	case GroupStyle:
		s.Style = src.Style.clone()
	case GroupLayout:
		s.Layout = src.Layout.clone()
	case GroupSort:
		s.Sort = src.Sort.clone()
	case GroupCardSet:
		s.CardSet = src.CardSet.clone()
	}
}

// OverlayGroup merges group g of over onto s field by field. Fields absent in
// over never clear fields of s.
func (s *Settings) OverlayGroup(g Group, over Settings) {
	switch g {
	case GroupContent:
		s.Content = overlayContent(s.Content, over.Content)
	case GroupStyle:
		s.Style = overlayStyle(s.Style, over.Style)
	case GroupLayout:
		s.Layout = overlayLayout(s.Layout, over.Layout)
	case GroupSort:
		s.Sort = overlaySort(s.Sort, over.Sort)
	case GroupCardSet:
		s.CardSet = overlayCardSet(s.CardSet, over.CardSet)
	}
}

// Patch replaces every group defined in p wholesale and leaves the others untouched.
func (s Settings) Patch(p Settings) Settings {
	out := s.Clone()
	for _, g := range p.Defined() {
		out.CopyGroup(g, p)
	}
	return out
}

// Complete fills every absent group and field from DefaultSettings.
func (s Settings) Complete() Settings {
	out := DefaultSettings()
	for _, g := range Groups {
		out.OverlayGroup(g, s)
	}
	return out
}

func overlayContent(base, over *ContentSettings) *ContentSettings {
	if over == nil {
		return base.clone()
	}
	if base == nil {
		return over.clone()
	}
	return &ContentSettings{
		ShowTitle:       pick(base.ShowTitle, over.ShowTitle),
		ShowTags:        pick(base.ShowTags, over.ShowTags),
		ShowPreview:     pick(base.ShowPreview, over.ShowPreview),
		PreviewLines:    pick(base.PreviewLines, over.PreviewLines),
		ShowFrontmatter: pick(base.ShowFrontmatter, over.ShowFrontmatter),
	}
}

func overlayStyle(base, over *StyleSettings) *StyleSettings {
	if over == nil {
		return base.clone()
	}
	if base == nil {
		return over.clone()
	}
	return &StyleSettings{
		Theme:     pick(base.Theme, over.Theme),
		CardWidth: pick(base.CardWidth, over.CardWidth),
		FontSize:  pick(base.FontSize, over.FontSize),
		Accent:    pick(base.Accent, over.Accent),
	}
}

func overlayLayout(base, over *LayoutSettings) *LayoutSettings {
	if over == nil {
		return base.clone()
	}
	if base == nil {
		return over.clone()
	}
	return &LayoutSettings{
		Mode:    pick(base.Mode, over.Mode),
		Columns: pick(base.Columns, over.Columns),
		Gap:     pick(base.Gap, over.Gap),
		Dense:   pick(base.Dense, over.Dense),
	}
}

func overlaySort(base, over *SortSettings) *SortSettings {
	if over == nil {
		return base.clone()
	}
	if base == nil {
		return over.clone()
	}
	return &SortSettings{
		Field:       pick(base.Field, over.Field),
		Order:       pick(base.Order, over.Order),
		PinnedFirst: pick(base.PinnedFirst, over.PinnedFirst),
	}
}

func overlayCardSet(base, over *CardSetSettings) *CardSetSettings {
	if over == nil {
		return base.clone()
	}
	if base == nil {
		return over.clone()
	}
	fields := slices.Clone(base.Fields)
	if over.Fields != nil {
		fields = slices.Clone(over.Fields)
	}
	return &CardSetSettings{
		Name:          pick(base.Name, over.Name),
		Fields:        fields,
		ImageProperty: pick(base.ImageProperty, over.ImageProperty),
		ShowCover:     pick(base.ShowCover, over.ShowCover),
	}
}

// Validate checks the values of every defined group.
func (s Settings) Validate() error {
	if c := s.Content; c != nil && c.PreviewLines != nil && *c.PreviewLines < 0 {
		return fmt.Errorf("%w: content.previewLines must not be negative", ErrInvalidSettings)
	}
	if st := s.Style; st != nil {
		if st.CardWidth != nil && *st.CardWidth <= 0 {
			return fmt.Errorf("%w: style.cardWidth must be positive", ErrInvalidSettings)
		}
		if st.FontSize != nil && *st.FontSize <= 0 {
			return fmt.Errorf("%w: style.fontSize must be positive", ErrInvalidSettings)
		}
	}
	if l := s.Layout; l != nil {
		if l.Mode != nil && !slices.Contains(ValidLayoutModes, *l.Mode) {
			return fmt.Errorf("%w: unknown layout.mode %q", ErrInvalidSettings, *l.Mode)
		}
		if l.Columns != nil && *l.Columns < 1 {
			return fmt.Errorf("%w: layout.columns must be at least 1", ErrInvalidSettings)
		}
		if l.Gap != nil && *l.Gap < 0 {
			return fmt.Errorf("%w: layout.gap must not be negative", ErrInvalidSettings)
		}
	}
	if so := s.Sort; so != nil {
		if so.Field != nil && !slices.Contains(ValidSortFields, *so.Field) {
			return fmt.Errorf("%w: unknown sort.field %q", ErrInvalidSettings, *so.Field)
		}
		if so.Order != nil && !slices.Contains(ValidSortOrders, *so.Order) {
			return fmt.Errorf("%w: unknown sort.order %q", ErrInvalidSettings, *so.Order)
		}
	}
	return nil
}
