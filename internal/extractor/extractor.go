// Package extractor walks the live DOM and produces the ordered list of
// candidate elements for tool synthesis.
package extractor

import (
	"context"
	_ "embed"
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"

	"mcp-webtools/internal/application/port/output"
	"mcp-webtools/internal/domain/entity"
	"mcp-webtools/internal/infrastructure/logger"
)

//go:embed extract.js
var extractScript string

// KeyFunc computes the dedupe identity of a candidate, normally the selector
// the synthesizer would produce for it.
type KeyFunc func(entity.CandidateElement) (string, error)

type Extractor struct {
	browser output.BrowserPort
	log     logger.Logger
	key     KeyFunc
}

func New(browser output.BrowserPort, log logger.Logger, key KeyFunc) *Extractor {
	return &Extractor{
		browser: browser,
		log:     log,
		key:     key,
	}
}

// Extract queries the page for actionable elements and returns them in
// document order, deduplicated and capped at maxActions, together with the
// raw count of actionable elements found before capping. An empty page is a
// successful empty extraction, not an error.
func (e *Extractor) Extract(ctx context.Context, maxActions int) ([]entity.CandidateElement, int, error) {
	var snapshots []entity.CandidateElement
	if err := e.browser.Eval(ctx, extractScript, &snapshots); err != nil {
		return nil, 0, fmt.Errorf("element extraction script: %w", err)
	}
	total := len(snapshots)

	seen := make(map[string]bool, total)
	candidates := make([]entity.CandidateElement, 0, min(total, maxActions))
	for _, el := range snapshots {
		// The script already filters these, but the invariant is cheap to
		// hold on this side of the wire too.
		if !el.Interactable() {
			continue
		}
		key := e.identity(el)
		if seen[key] {
			continue
		}
		seen[key] = true

		candidates = append(candidates, el)
		if len(candidates) >= maxActions {
			break
		}
	}

	e.log.Info("interactive elements extracted",
		logger.Int("found", total),
		logger.Int("kept", len(candidates)),
		logger.Int("max_actions", maxActions),
	)
	return candidates, total, nil
}

func (e *Extractor) identity(el entity.CandidateElement) string {
	if e.key != nil {
		if sel, err := e.key(el); err == nil {
			return sel
		}
	}
	return fingerprint(el)
}

// fingerprint builds a stable identity for elements the key function cannot
// handle: tag, id, sorted classes, the discriminating attributes and the
// structural path, hashed to a short token.
func fingerprint(el entity.CandidateElement) string {
	var sb strings.Builder
	sb.WriteString(el.Tag)
	if el.ID != "" {
		sb.WriteString("#" + el.ID)
	}
	if len(el.Classes) > 0 {
		classes := append([]string(nil), el.Classes...)
		sort.Strings(classes)
		sb.WriteString("." + strings.Join(classes, "."))
	}
	for _, attr := range []struct{ k, v string }{
		{"name", el.Name},
		{"type", el.Type},
		{"role", el.Role},
		{"href", el.Href},
		{"placeholder", el.Placeholder},
	} {
		if attr.v != "" {
			fmt.Fprintf(&sb, "[%s=%q]", attr.k, attr.v)
		}
	}
	sb.WriteString("|" + el.Text)
	if el.PathAnchorID != "" {
		sb.WriteString("|@" + el.PathAnchorID)
	}
	for _, step := range el.Path {
		fmt.Fprintf(&sb, "|%s:%d", step.Tag, step.Index)
	}

	h := fnv.New64a()
	h.Write([]byte(sb.String()))
	return strconv.FormatUint(h.Sum64(), 16)
}
