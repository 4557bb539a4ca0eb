// Package selector derives CSS selectors that re-target extracted elements
// on a later automated visit.
package selector

import (
	"errors"
	"fmt"
	"strings"

	"mcp-webtools/internal/domain/entity"
)

// ErrNoSelector is returned when no rule of the priority chain applies.
var ErrNoSelector = errors.New("no rule produced a selector")

// Verifier checks a selector against the captured document. A nil verifier
// means selectors are trusted by construction.
type Verifier interface {
	Unique(selector string) bool
}

// Synthesizer builds one selector per candidate element using a fixed
// priority chain: id > tag[name] > tag.stableClass > structural nth-of-type
// path. The earlier rule always wins, regardless of selector length.
type Synthesizer struct {
	verifier Verifier
}

func New() *Synthesizer {
	return &Synthesizer{}
}

// NewStrict re-queries every candidate selector against the document and
// falls through to the next rule on a collision. Strict mode changes which
// selector is chosen for pages with duplicate ids, so it is off by default.
func NewStrict(v Verifier) *Synthesizer {
	return &Synthesizer{verifier: v}
}

// Synthesize returns the first applicable selector of the priority chain,
// or ErrNoSelector when none applies.
func (s *Synthesizer) Synthesize(el entity.CandidateElement) (string, error) {
	for _, candidate := range s.candidates(el) {
		if s.verifier == nil || s.verifier.Unique(candidate) {
			return candidate, nil
		}
	}
	return "", ErrNoSelector
}

func (s *Synthesizer) candidates(el entity.CandidateElement) []string {
	var out []string

	if el.ID != "" {
		out = append(out, "#"+escapeIdent(el.ID))
	}
	if el.Name != "" && el.Tag != "" {
		out = append(out, fmt.Sprintf("%s[name=%q]", el.Tag, el.Name))
	}
	if el.Tag != "" {
		for _, class := range el.Classes {
			if StableClass(class) {
				out = append(out, el.Tag+"."+escapeIdent(class))
				break
			}
		}
	}
	if sel := structural(el); sel != "" {
		out = append(out, sel)
	}

	return out
}

// structural builds the nth-of-type ancestor path recorded at extraction
// time, rooted at the nearest id-bearing ancestor when one exists.
func structural(el entity.CandidateElement) string {
	if len(el.Path) == 0 {
		return ""
	}

	parts := make([]string, 0, len(el.Path)+1)
	if el.PathAnchorID != "" {
		parts = append(parts, "#"+escapeIdent(el.PathAnchorID))
	}
	for _, step := range el.Path {
		if step.Tag == "" || step.Index < 1 {
			return ""
		}
		parts = append(parts, fmt.Sprintf("%s:nth-of-type(%d)", step.Tag, step.Index))
	}
	return strings.Join(parts, " > ")
}

// escapeIdent makes a raw attribute value safe inside a CSS identifier
// position, following the CSS.escape serialization rules for the characters
// that actually occur in ids and class names in the wild.
func escapeIdent(s string) string {
	var sb strings.Builder
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == '-', r >= 0x80:
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				fmt.Fprintf(&sb, "\\3%c ", r)
			} else {
				sb.WriteRune(r)
			}
		default:
			sb.WriteRune('\\')
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
