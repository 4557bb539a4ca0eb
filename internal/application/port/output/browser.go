package output

import (
	"context"

	"mcp-webtools/internal/domain/entity"
)

// BrowserPort is the capability surface the pipeline needs from the headless
// browser: navigation, cookie injection, script evaluation and screenshots.
// The core never talks to the browser beyond this.
type BrowserPort interface {
	SetCookies(ctx context.Context, cookies []entity.Cookie, pageURL string) error
	Navigate(ctx context.Context, url string) error
	WaitFor(ctx context.Context, selector string) error

	// Eval runs a JavaScript expression in the page and unmarshals its JSON
	// result into out. Pass nil to discard the result.
	Eval(ctx context.Context, script string, out any) error

	HTML(ctx context.Context) (string, error)
	Screenshot(ctx context.Context, fullPage bool) (*entity.Screenshot, error)

	CurrentURL() string
	Close()
}
