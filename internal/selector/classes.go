package selector

import (
	"regexp"
	"strings"
)

// Patterns for class names minted by build tooling rather than written by a
// developer. A generated class is useless for re-targeting because the token
// changes on the next deploy.
var generatedClassPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[0-9]`),                  // leading digit
	regexp.MustCompile(`^[a-f0-9]{8,}$`),          // bare hex hash
	regexp.MustCompile(`^(?:css|jss|sc|svelte)-`), // css-in-js frameworks
}

// StableClass reports whether a class name looks hand-written and safe to
// use in a selector.
func StableClass(class string) bool {
	if class == "" || len(class) > 64 {
		return false
	}
	for _, p := range generatedClassPatterns {
		if p.MatchString(class) {
			return false
		}
	}
	if isHashToken(class) {
		return false
	}
	// css-modules style: a hand-written prefix with a hash glued on,
	// e.g. Button__root--3xKpz.
	for _, sep := range []string{"--", "__"} {
		if idx := strings.LastIndex(class, sep); idx >= 0 {
			if isHashToken(class[idx+len(sep):]) {
				return false
			}
		}
	}
	return true
}

// isHashToken flags random alphanumeric tokens: letters and digits mixed
// together with no separators a human would have typed.
func isHashToken(s string) bool {
	if len(s) < 5 || strings.ContainsAny(s, "-_") {
		return false
	}
	return strings.ContainsAny(s, "0123456789")
}
