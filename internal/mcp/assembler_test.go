package mcp

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-webtools/internal/domain/entity"
	"mcp-webtools/internal/infrastructure/logger"
)

func sampleTools() []entity.Tool {
	return []entity.Tool{
		{
			Name:        "button_submit",
			Description: "Click the Submit button",
			InputSchema: entity.NewInputSchema("CSS selector for the Submit button", "#submit-btn"),
		},
		{
			Name:        "link_docs",
			Description: "Navigate to https://example.com/docs",
			InputSchema: entity.NewInputSchema("CSS selector for the Docs link", "a[name=\"docs\"]"),
		},
	}
}

func TestDocument_PreservesOrder(t *testing.T) {
	asm := NewAssembler(logger.NewNop())

	doc := asm.Document(sampleTools())
	require.Len(t, doc.Tools, 2)
	assert.Equal(t, "button_submit", doc.Tools[0].Name)
	assert.Equal(t, "link_docs", doc.Tools[1].Name)
}

func TestDocument_NilToolsYieldsEmptyArray(t *testing.T) {
	asm := NewAssembler(logger.NewNop())

	data, err := asm.MarshalDocument(asm.Document(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"tools": []}`, string(data))
}

func TestMarshalDocument_Shape(t *testing.T) {
	asm := NewAssembler(logger.NewNop())

	data, err := asm.MarshalDocument(asm.Document(sampleTools()))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	tools, ok := decoded["tools"].([]any)
	require.True(t, ok)
	require.Len(t, tools, 2)

	first, ok := tools[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "button_submit", first["name"])
	assert.Equal(t, "Click the Submit button", first["description"])

	schema, ok := first["input_schema"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []any{"selector"}, schema["required"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	selector, ok := props["selector"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", selector["type"])
	assert.Equal(t, "#submit-btn", selector["default"])
	assert.Contains(t, selector["description"], "Submit button")
}

func TestBlobKeys(t *testing.T) {
	assert.Equal(t, "mcp-a1b2c3d4.json", JSONKey("a1b2c3d4"))
	assert.Equal(t, "preview-a1b2c3d4.html", PreviewKey("a1b2c3d4"))
	assert.Equal(t, "screenshot-a1b2c3d4.png", ScreenshotKey("a1b2c3d4"))
	assert.Equal(t, "error-1700000000000.png", ErrorKey(1700000000000))
}

func TestRenderPreview(t *testing.T) {
	asm := NewAssembler(logger.NewNop())
	doc := asm.Document(sampleTools())
	toolsJSON, err := asm.MarshalDocument(doc)
	require.NoError(t, err)

	actions := []ActionCard{
		{Category: "button", Label: "Submit", Selector: "#submit-btn"},
		{Category: "link", Label: "Docs", Selector: "a[name=\"docs\"]"},
	}
	data := PreviewFrom("https://example.com", "a1b2c3d4", doc, actions, 7, "data:image/jpeg;base64,AAAA", toolsJSON)

	html, err := asm.RenderPreview(data)
	require.NoError(t, err)
	page := string(html)

	assert.Contains(t, page, "https://example.com")
	assert.Contains(t, page, "a1b2c3d4")
	assert.Contains(t, page, "#submit-btn")
	assert.Contains(t, page, "Submit")
	assert.Contains(t, page, "data:image/jpeg;base64,AAAA")
	assert.Contains(t, page, "button_submit")
}

func TestRenderPreview_NoThumbnail(t *testing.T) {
	asm := NewAssembler(logger.NewNop())
	doc := asm.Document(nil)
	toolsJSON, err := asm.MarshalDocument(doc)
	require.NoError(t, err)

	html, err := asm.RenderPreview(PreviewFrom("https://example.com", "run1", doc, nil, 0, "", toolsJSON))
	require.NoError(t, err)
	assert.NotContains(t, string(html), "<img")
}

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestThumbnail_ProducesJPEGDataURL(t *testing.T) {
	url, err := Thumbnail(encodePNG(t, 1280, 720))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/jpeg;base64,"))
}

func TestThumbnail_SmallImagesAreNotUpscaled(t *testing.T) {
	url, err := Thumbnail(encodePNG(t, 320, 200))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/jpeg;base64,"))
}

func TestThumbnail_RejectsGarbage(t *testing.T) {
	_, err := Thumbnail([]byte("not an image"))
	require.Error(t, err)
}
