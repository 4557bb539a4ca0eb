package mcp

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"

	"mcp-webtools/internal/domain/entity"
)

//go:embed preview.gohtml
var previewTemplate string

var previewTmpl = template.Must(template.New("preview").Parse(previewTemplate))

// ActionCard is one extracted element as shown on the preview page.
type ActionCard struct {
	Category string
	Label    string
	Selector string
}

// PreviewData feeds the preview template. Thumbnail is a data URL or empty.
type PreviewData struct {
	URL          string
	RunID        string
	ToolCount    int
	ActionsCount int
	Actions      []ActionCard
	ToolsJSON    string
	Thumbnail    template.URL
}

// RenderPreview produces the self-contained preview HTML document.
func (a *Assembler) RenderPreview(data PreviewData) ([]byte, error) {
	var buf bytes.Buffer
	if err := previewTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render preview: %w", err)
	}
	return buf.Bytes(), nil
}

// PreviewFrom builds the template data for a run.
func PreviewFrom(url, runID string, doc entity.ToolDocument, actions []ActionCard, actionsCount int, thumbnail string, toolsJSON []byte) PreviewData {
	return PreviewData{
		URL:          url,
		RunID:        runID,
		ToolCount:    len(doc.Tools),
		ActionsCount: actionsCount,
		Actions:      actions,
		ToolsJSON:    string(toolsJSON),
		Thumbnail:    template.URL(thumbnail),
	}
}
