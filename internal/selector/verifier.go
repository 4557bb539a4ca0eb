package selector

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// DocumentVerifier checks selector uniqueness against a captured HTML
// document. Used by strict mode and by tests.
type DocumentVerifier struct {
	doc *goquery.Document
}

func NewDocumentVerifier(html string) (*DocumentVerifier, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &DocumentVerifier{doc: doc}, nil
}

// Unique reports whether the selector matches exactly one node. Selectors
// cascadia cannot compile are treated as not unique.
func (v *DocumentVerifier) Unique(selector string) bool {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return false
	}
	return v.doc.FindMatcher(sel).Length() == 1
}

// Matches returns how many nodes the selector matches, for diagnostics.
func (v *DocumentVerifier) Matches(selector string) int {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return 0
	}
	return v.doc.FindMatcher(sel).Length()
}
