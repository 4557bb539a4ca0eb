// Package input parses and validates the actor input document before the
// pipeline runs. The core assumes everything here has already been enforced.
package input

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"mcp-webtools/internal/domain/entity"
)

const (
	DefaultMaxActions = 50
	MinActions        = 5
	MaxActions        = 200

	DefaultViewportWidth  = 1920
	DefaultViewportHeight = 1080
)

type raw struct {
	URL             string          `json:"url"`
	Cookies         json.RawMessage `json:"cookies"`
	RemoveBanners   *bool           `json:"removeBanners"`
	MaxActions      *int            `json:"maxActions"`
	Headless        *bool           `json:"headless"`
	ViewportWidth   *int            `json:"viewportWidth"`
	ViewportHeight  *int            `json:"viewportHeight"`
	WaitForSelector string          `json:"waitForSelector"`
}

// Load reads and validates the input document from path.
func Load(path string) (*entity.RunInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input file: %w", err)
	}
	return Parse(data)
}

// Parse validates a raw JSON input document and applies defaults.
func Parse(data []byte) (*entity.RunInput, error) {
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}

	if strings.TrimSpace(r.URL) == "" {
		return nil, fmt.Errorf("input field url is required")
	}
	normalized, err := NormalizeURL(r.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", r.URL, err)
	}

	cookies, err := parseCookies(r.Cookies)
	if err != nil {
		return nil, fmt.Errorf("invalid cookies: %w", err)
	}

	in := &entity.RunInput{
		URL:             normalized,
		Cookies:         cookies,
		RemoveBanners:   true,
		MaxActions:      DefaultMaxActions,
		Headless:        true,
		ViewportWidth:   DefaultViewportWidth,
		ViewportHeight:  DefaultViewportHeight,
		WaitForSelector: "body",
	}

	if r.RemoveBanners != nil {
		in.RemoveBanners = *r.RemoveBanners
	}
	if r.Headless != nil {
		in.Headless = *r.Headless
	}
	if r.WaitForSelector != "" {
		in.WaitForSelector = r.WaitForSelector
	}
	if r.MaxActions != nil {
		if *r.MaxActions < MinActions || *r.MaxActions > MaxActions {
			return nil, fmt.Errorf("maxActions must be between %d and %d, got %d", MinActions, MaxActions, *r.MaxActions)
		}
		in.MaxActions = *r.MaxActions
	}
	if r.ViewportWidth != nil {
		if *r.ViewportWidth < 320 || *r.ViewportWidth > 3840 {
			return nil, fmt.Errorf("viewportWidth out of range: %d", *r.ViewportWidth)
		}
		in.ViewportWidth = *r.ViewportWidth
	}
	if r.ViewportHeight != nil {
		if *r.ViewportHeight < 240 || *r.ViewportHeight > 2160 {
			return nil, fmt.Errorf("viewportHeight out of range: %d", *r.ViewportHeight)
		}
		in.ViewportHeight = *r.ViewportHeight
	}

	return in, nil
}

// parseCookies accepts either a JSON array of cookie objects or a JSON string
// containing such an array. Cookies missing a name or value are dropped.
func parseCookies(data json.RawMessage) ([]entity.Cookie, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var encoded string
	if err := json.Unmarshal(data, &encoded); err == nil {
		data = json.RawMessage(encoded)
	}

	var cookies []entity.Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("cookies must be an array of {name, value} objects: %w", err)
	}

	kept := cookies[:0]
	for _, c := range cookies {
		if c.Name == "" || c.Value == "" {
			continue
		}
		if c.Path == "" {
			c.Path = "/"
		}
		kept = append(kept, c)
	}
	return kept, nil
}

// NormalizeURL adds a https scheme when missing and strips the trailing slash
// from bare root URLs.
func NormalizeURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = "https://" + rawURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("missing host")
	}

	if (parsed.Path == "" || parsed.Path == "/") && strings.HasSuffix(rawURL, "/") {
		parsed.Path = ""
		return parsed.String(), nil
	}
	return rawURL, nil
}
