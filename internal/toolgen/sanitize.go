package toolgen

import (
	"regexp"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var whitespaceRuns = regexp.MustCompile(`\s+`)

// SanitizeLabel makes raw element text safe for descriptions and the preview
// document: markup stripped, whitespace collapsed, entities escaped.
func SanitizeLabel(s string) string {
	s = StripTags(s)
	s = whitespaceRuns.ReplaceAllString(s, " ")
	return xhtml.EscapeString(strings.TrimSpace(s))
}

// StripTags drops any markup from a string, keeping only its text content.
// Unparseable input is returned as-is.
func StripTags(s string) string {
	if !strings.ContainsAny(s, "<>") {
		return s
	}

	body := &xhtml.Node{Type: xhtml.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := xhtml.ParseFragment(strings.NewReader(s), body)
	if err != nil {
		return s
	}

	var sb strings.Builder
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
			return
		}
		if n.Type == xhtml.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return sb.String()
}
