// Package toolgen turns candidate elements into safe tool names and
// human-readable descriptions.
package toolgen

import (
	"fmt"
	"regexp"
	"strings"

	"mcp-webtools/internal/domain/entity"
)

const maxNameLength = 40

// Generator produces (name, description) pairs for candidate elements.
// Name uniqueness is scoped to the Namer, i.e. to one run.
type Generator struct {
	namer *Namer
}

func NewGenerator(namer *Namer) *Generator {
	return &Generator{namer: namer}
}

// Generate never fails: an element with no naming signal at all still gets
// a generic element_N name and description.
func (g *Generator) Generate(el entity.CandidateElement) (name, description string) {
	category := Category(el)
	name = g.namer.Issue(baseName(category, slugSource(el)))
	description = describe(category, el)
	return name, description
}

// SchemaDescription is the text attached to the selector property of the
// tool's input schema.
func SchemaDescription(el entity.CandidateElement) string {
	return fmt.Sprintf("CSS selector for the %s %s", Label(el), Category(el))
}

// Category maps tag and role onto the tool name prefix.
func Category(el entity.CandidateElement) string {
	switch el.Tag {
	case "button":
		return "button"
	case "a":
		return "link"
	case "select":
		return "select"
	case "textarea":
		return "textarea"
	case "input":
		switch el.Type {
		case "button", "submit", "reset", "image":
			return "button"
		default:
			return "input"
		}
	}
	switch el.Role {
	case "button", "tab", "menuitem", "switch", "checkbox":
		return "button"
	case "link":
		return "link"
	case "combobox":
		return "select"
	}
	return "element"
}

// slugSource picks the naming signal: visible text, then placeholder, then
// the name attribute, then the id, then a generic fallback.
func slugSource(el entity.CandidateElement) string {
	for _, candidate := range []string{StripTags(el.Text), el.Placeholder, el.Name, el.ID} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return "element"
}

var nonAlnumRuns = regexp.MustCompile(`[^a-z0-9]+`)

// baseName builds the category_slug form: lowercase, non-alphanumeric runs
// collapsed to single underscores, bounded length.
func baseName(category, source string) string {
	name := category + "_" + strings.ToLower(source)
	name = nonAlnumRuns.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if len(name) > maxNameLength {
		name = strings.TrimRight(name[:maxNameLength], "_")
	}
	if name == "" {
		name = category + "_element"
	}
	return name
}

// Label is the human-readable handle used inside descriptions. Falls back
// to "element" when the element carries no signal.
func Label(el entity.CandidateElement) string {
	for _, candidate := range []string{el.Text, el.Placeholder, el.Name, humanizeID(el.ID)} {
		if s := SanitizeLabel(candidate); s != "" {
			return s
		}
	}
	return "element"
}

func humanizeID(id string) string {
	id = strings.ReplaceAll(id, "-", " ")
	return strings.ReplaceAll(id, "_", " ")
}

func describe(category string, el entity.CandidateElement) string {
	label := Label(el)
	switch category {
	case "button":
		return fmt.Sprintf("Click the %s button", label)
	case "input":
		return fmt.Sprintf("Enter text in the %s input field", label)
	case "textarea":
		return fmt.Sprintf("Enter text in the %s text area", label)
	case "select":
		return fmt.Sprintf("Choose an option in the %s dropdown", label)
	case "link":
		target := el.Href
		if target == "" {
			target = label
		}
		return fmt.Sprintf("Navigate to %s", SanitizeLabel(target))
	}
	return fmt.Sprintf("Interact with the %s element", label)
}
