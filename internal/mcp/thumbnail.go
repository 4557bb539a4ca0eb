package mcp

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

const thumbnailWidth = 640

// Thumbnail converts a full-page screenshot into a small JPEG data URL for
// embedding into the preview document.
func Thumbnail(screenshot []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(screenshot))
	if err != nil {
		return "", fmt.Errorf("decode screenshot: %w", err)
	}

	if img.Bounds().Dx() > thumbnailWidth {
		img = imaging.Resize(img, thumbnailWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 75}); err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
