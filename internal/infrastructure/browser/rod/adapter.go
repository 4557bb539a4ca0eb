// Package rod adapts the go-rod browser to the pipeline's BrowserPort.
package rod

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"mcp-webtools/internal/application/port/output"
	"mcp-webtools/internal/domain/entity"
)

var _ output.BrowserPort = (*Adapter)(nil)

const (
	defaultTimeout  = 30 * time.Second
	defaultIdleWait = 5 * time.Second
)

type Config struct {
	Headless       bool
	Timeout        time.Duration
	NoSandbox      bool
	ViewportWidth  int
	ViewportHeight int
}

func DefaultConfig() Config {
	return Config{
		Headless:       true,
		Timeout:        defaultTimeout,
		NoSandbox:      true,
		ViewportWidth:  1920,
		ViewportHeight: 1080,
	}
}

type Adapter struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	timeout  time.Duration
}

func NewAdapter(ctx context.Context, cfg Config) (*Adapter, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox).
		Delete("use-mock-keychain")

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	if cfg.ViewportWidth > 0 && cfg.ViewportHeight > 0 {
		err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             cfg.ViewportWidth,
			Height:            cfg.ViewportHeight,
			DeviceScaleFactor: 1,
		})
		if err != nil {
			_ = browser.Close()
			l.Kill()
			l.Cleanup()
			return nil, fmt.Errorf("failed to set viewport: %w", err)
		}
	}

	return &Adapter{
		browser:  browser,
		launcher: l,
		page:     page,
		timeout:  cfg.Timeout,
	}, nil
}

// SetCookies installs cookies before navigation. Cookies without a domain
// get scoped to the target page URL.
func (a *Adapter) SetCookies(ctx context.Context, cookies []entity.Cookie, pageURL string) error {
	if len(cookies) == 0 {
		return nil
	}

	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		param := &proto.NetworkCookieParam{
			Name:   c.Name,
			Value:  c.Value,
			Domain: c.Domain,
			Path:   c.Path,
		}
		if param.Domain == "" {
			param.URL = pageURL
		}
		params = append(params, param)
	}

	if err := a.browser.SetCookies(params); err != nil {
		return fmt.Errorf("set cookies: %w", err)
	}
	return nil
}

// Navigate loads the URL and waits for the load event plus network idle,
// within the adapter timeout.
func (a *Adapter) Navigate(ctx context.Context, url string) error {
	page := a.page.Context(ctx).Timeout(a.timeout)

	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("page load wait failed: %w", err)
	}
	_ = page.WaitIdle(defaultIdleWait)
	return nil
}

func (a *Adapter) WaitFor(ctx context.Context, selector string) error {
	_, err := a.page.Context(ctx).Timeout(a.timeout).Element(selector)
	if err != nil {
		return fmt.Errorf("element not found: %s: %w", selector, err)
	}
	return nil
}

// Eval runs the script and unmarshals its JSON result into out.
func (a *Adapter) Eval(ctx context.Context, script string, out any) error {
	obj, err := a.page.Context(ctx).Timeout(a.timeout).Eval(script)
	if err != nil {
		return fmt.Errorf("script evaluation failed: %w", err)
	}
	if out == nil {
		return nil
	}

	data := obj.Value.JSON("", "")
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return fmt.Errorf("decode script result: %w", err)
	}
	return nil
}

func (a *Adapter) HTML(ctx context.Context) (string, error) {
	html, err := a.page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("get page html: %w", err)
	}
	return html, nil
}

func (a *Adapter) Screenshot(ctx context.Context, fullPage bool) (*entity.Screenshot, error) {
	data, err := a.page.Context(ctx).Timeout(a.timeout).Screenshot(fullPage, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return &entity.Screenshot{Data: data, Format: "png"}, nil
}

func (a *Adapter) CurrentURL() string {
	info, err := a.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (a *Adapter) Close() {
	if a.browser != nil {
		_ = a.browser.Close()
	}
	if a.launcher != nil {
		a.launcher.Kill()
		a.launcher.Cleanup()
	}
}
