package resolve

// Source identifies where a resolution candidate came from.
type Source string

const (
	SourceGlobal   Source = "global"
	SourceFolder   Source = "folder"
	SourceTag      Source = "tag"
	SourceFallback Source = "fallback"
)

// Candidate is one preset taking part in a resolution. Key is the folder or
// tag the assignment was found under.
type Candidate struct {
	Source    Source `json:"source"`
	Key       string `json:"key,omitempty"`
	PresetID  string `json:"presetId"`
	Overrides bool   `json:"overrides"`
}

// Order arranges the merged-mode candidates from lowest to highest priority.
// Folder and tag candidates that do not override the global default are moved
// in front of it. Nil candidates are skipped.
func Order(order PriorityOrder, global, folder, tag *Candidate) []Candidate {
	var fixed []*Candidate
	switch order {
	case FolderTagGlobal:
		fixed = []*Candidate{tag, folder}
	default:
		// tag-folder-global, and custom which has no fixed precedence and keeps
		// folder before tag within each override class.
		fixed = []*Candidate{folder, tag}
	}

	var below, above []Candidate
	for _, c := range fixed {
		if c == nil {
			continue
		}
		if c.Overrides {
			above = append(above, *c)
		} else {
			below = append(below, *c)
		}
	}

	out := make([]Candidate, 0, 3)
	out = append(out, below...)
	if global != nil {
		out = append(out, *global)
	}
	return append(out, above...)
}
