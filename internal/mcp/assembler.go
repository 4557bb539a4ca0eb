// Package mcp packages generated tools into the output documents: the tools
// JSON, the human preview page and the screenshot blob. Purely packaging —
// no reordering, filtering or renaming happens here.
package mcp

import (
	"encoding/json"
	"fmt"

	"mcp-webtools/internal/domain/entity"
	"mcp-webtools/internal/infrastructure/logger"
)

type Assembler struct {
	log logger.Logger
}

func NewAssembler(log logger.Logger) *Assembler {
	return &Assembler{log: log}
}

// Document wraps the tools into the output document, preserving order.
func (a *Assembler) Document(tools []entity.Tool) entity.ToolDocument {
	if tools == nil {
		tools = []entity.Tool{}
	}
	return entity.ToolDocument{Tools: tools}
}

// MarshalDocument renders the document as indented JSON.
func (a *Assembler) MarshalDocument(doc entity.ToolDocument) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tool document: %w", err)
	}
	return data, nil
}

// Keys for the blobs of one run.

func JSONKey(runID string) string       { return fmt.Sprintf("mcp-%s.json", runID) }
func PreviewKey(runID string) string    { return fmt.Sprintf("preview-%s.html", runID) }
func ScreenshotKey(runID string) string { return fmt.Sprintf("screenshot-%s.png", runID) }
func ErrorKey(timestampMs int64) string { return fmt.Sprintf("error-%d.png", timestampMs) }
