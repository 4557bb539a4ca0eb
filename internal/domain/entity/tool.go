package entity

// SelectorProperty describes the single "selector" property of a tool's
// input schema.
type SelectorProperty struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     string `json:"default"`
}

// InputSchema is the JSON schema attached to every generated tool: an object
// with exactly one required string property, "selector".
type InputSchema struct {
	Type       string                      `json:"type"`
	Properties map[string]SelectorProperty `json:"properties"`
	Required   []string                    `json:"required"`
}

// Tool is the externally visible unit describing one actionable element.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"input_schema"`
}

// ToolDocument is the final output document, preserving extraction order.
type ToolDocument struct {
	Tools []Tool `json:"tools"`
}

// NewInputSchema builds the selector-only schema for a tool.
func NewInputSchema(description, selector string) InputSchema {
	return InputSchema{
		Type: "object",
		Properties: map[string]SelectorProperty{
			"selector": {
				Type:        "string",
				Description: description,
				Default:     selector,
			},
		},
		Required: []string{"selector"},
	}
}
