// Package banner removes cookie/consent-management overlays from the live
// DOM before element extraction, so banner controls never become tools.
package banner

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MatcherKind selects how a matcher pattern is evaluated against the DOM.
type MatcherKind string

const (
	// MatchID removes the element whose id equals the pattern.
	MatchID MatcherKind = "id"
	// MatchIDSubstring removes elements whose id contains the pattern.
	MatchIDSubstring MatcherKind = "id-substring"
	// MatchClassSubstring removes elements whose class attribute contains
	// the pattern.
	MatchClassSubstring MatcherKind = "class-substring"
	// MatchSelector removes elements matching the pattern as a CSS selector.
	MatchSelector MatcherKind = "selector"
)

// Matcher is one entry of the vendor catalogue. RequireConsentText guards
// broad substring patterns: the element is only removed when its text
// mentions cookies or consent.
type Matcher struct {
	Kind               MatcherKind `yaml:"kind" json:"kind"`
	Pattern            string      `yaml:"pattern" json:"pattern"`
	RequireConsentText bool        `yaml:"requireConsentText" json:"requireConsentText"`
}

// DefaultCatalogue covers the widely deployed consent-management platforms
// plus generic cookie/consent containers. Extend it via a YAML file rather
// than editing control flow.
func DefaultCatalogue() []Matcher {
	return []Matcher{
		{Kind: MatchID, Pattern: "onetrust-consent-sdk"},
		{Kind: MatchID, Pattern: "onetrust-banner-sdk"},
		{Kind: MatchID, Pattern: "Cookiebot"},
		{Kind: MatchID, Pattern: "CybotCookiebotDialog"},
		{Kind: MatchID, Pattern: "usercentrics-root"},
		{Kind: MatchID, Pattern: "usercentrics-cmp-ui"},
		{Kind: MatchID, Pattern: "didomi-host"},
		{Kind: MatchID, Pattern: "qc-cmp2-container"},
		{Kind: MatchID, Pattern: "truste-consent-track"},
		{Kind: MatchID, Pattern: "cmpbox"},
		{Kind: MatchIDSubstring, Pattern: "sp_message_container"},
		{Kind: MatchClassSubstring, Pattern: "onetrust"},
		{Kind: MatchSelector, Pattern: "[data-testid='cookie-policy-manage-dialog']"},
		{Kind: MatchIDSubstring, Pattern: "cookie", RequireConsentText: true},
		{Kind: MatchIDSubstring, Pattern: "consent", RequireConsentText: true},
		{Kind: MatchClassSubstring, Pattern: "cookie", RequireConsentText: true},
		{Kind: MatchClassSubstring, Pattern: "consent", RequireConsentText: true},
	}
}

// LoadCatalogue returns the default catalogue extended with matchers from an
// optional YAML file. An empty path yields the defaults unchanged.
func LoadCatalogue(path string) ([]Matcher, error) {
	matchers := DefaultCatalogue()
	if path == "" {
		return matchers, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read banner catalogue: %w", err)
	}

	var extra []Matcher
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("parse banner catalogue: %w", err)
	}
	for _, m := range extra {
		switch m.Kind {
		case MatchID, MatchIDSubstring, MatchClassSubstring, MatchSelector:
		default:
			return nil, fmt.Errorf("unknown matcher kind %q", m.Kind)
		}
		if m.Pattern == "" {
			return nil, fmt.Errorf("matcher with empty pattern")
		}
		matchers = append(matchers, m)
	}
	return matchers, nil
}
