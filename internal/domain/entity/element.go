package entity

// PathStep is one level of the structural ancestor chain of an element,
// expressed as a tag plus its 1-based :nth-of-type position.
type PathStep struct {
	Tag   string `json:"tag"`
	Index int    `json:"index"`
}

// CandidateElement is a snapshot of one DOM node considered for tool
// generation. It is produced by the extractor from a live DOM read and
// immutable afterwards.
type CandidateElement struct {
	Tag         string   `json:"tag"`
	Type        string   `json:"type,omitempty"`
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name,omitempty"`
	Classes     []string `json:"classes,omitempty"`
	Text        string   `json:"text,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Href        string   `json:"href,omitempty"`
	Role        string   `json:"role,omitempty"`
	Visible     bool     `json:"visible"`
	Disabled    bool     `json:"disabled"`

	// Path is the ancestor chain used for the structural selector fallback,
	// outermost first, ending with the element itself. PathAnchorID is set
	// when the chain stops at an id-bearing ancestor.
	Path         []PathStep `json:"path,omitempty"`
	PathAnchorID string     `json:"pathAnchorId,omitempty"`
}

// Interactable reports whether the element qualifies as a candidate at all.
func (e CandidateElement) Interactable() bool {
	return e.Visible && !e.Disabled
}
