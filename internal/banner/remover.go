package banner

import (
	"context"
	"encoding/json"
	"fmt"

	"mcp-webtools/internal/application/port/output"
	"mcp-webtools/internal/infrastructure/logger"
)

// Remover deletes matching consent overlays from the live page. Removal is
// idempotent: a second pass over a cleaned DOM finds nothing and no-ops.
type Remover struct {
	browser  output.BrowserPort
	log      logger.Logger
	matchers []Matcher
}

func NewRemover(browser output.BrowserPort, log logger.Logger, matchers []Matcher) *Remover {
	if matchers == nil {
		matchers = DefaultCatalogue()
	}
	return &Remover{
		browser:  browser,
		log:      log,
		matchers: matchers,
	}
}

// Remove evaluates the catalogue against the page and deletes every match.
// Returns the number of elements removed. Absence of banners is not an error.
func (r *Remover) Remove(ctx context.Context) (int, error) {
	script, err := r.script()
	if err != nil {
		return 0, err
	}

	var removed int
	if err := r.browser.Eval(ctx, script, &removed); err != nil {
		return 0, fmt.Errorf("banner removal script: %w", err)
	}

	if removed > 0 {
		r.log.Info("consent banners removed", logger.Int("count", removed))
	} else {
		r.log.Debug("no consent banners matched")
	}
	return removed, nil
}

// script builds the removal expression. The catalogue is embedded as JSON
// and interpreted by a fixed loop, so new vendors never touch control flow.
func (r *Remover) script() (string, error) {
	table, err := json.Marshal(r.matchers)
	if err != nil {
		return "", fmt.Errorf("marshal matcher table: %w", err)
	}

	return fmt.Sprintf(`() => {
	const matchers = %s;
	const consentText = (el) => {
		const text = (el.textContent || '').toLowerCase();
		return text.includes('cookie') || text.includes('consent');
	};
	const collect = (m) => {
		switch (m.kind) {
		case 'id': {
			const el = document.getElementById(m.pattern);
			return el ? [el] : [];
		}
		case 'id-substring':
			return Array.from(document.querySelectorAll('[id*="' + m.pattern + '"]'));
		case 'class-substring':
			return Array.from(document.querySelectorAll('[class*="' + m.pattern + '"]'));
		case 'selector':
			try { return Array.from(document.querySelectorAll(m.pattern)); }
			catch (e) { return []; }
		default:
			return [];
		}
	};
	let removed = 0;
	for (const m of matchers) {
		for (const el of collect(m)) {
			if (!el.isConnected) continue;
			if (m.requireConsentText && !consentText(el)) continue;
			el.remove();
			removed++;
		}
	}
	return removed;
}`, table), nil
}
