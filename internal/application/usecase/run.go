// Package usecase orchestrates one end-to-end pipeline run: navigate,
// clean, extract, synthesize, assemble, upload.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mcp-webtools/internal/application/port/output"
	"mcp-webtools/internal/banner"
	"mcp-webtools/internal/domain/entity"
	"mcp-webtools/internal/extractor"
	"mcp-webtools/internal/infrastructure/logger"
	"mcp-webtools/internal/mcp"
	"mcp-webtools/internal/selector"
	"mcp-webtools/internal/toolgen"
)

// Stage names a pipeline phase for error reporting.
type Stage string

const (
	StageNavigation Stage = "navigation"
	StageBanner     Stage = "banner-removal"
	StageExtraction Stage = "extraction"
	StageAssembly   Stage = "assembly"
	StageUpload     Stage = "upload"
)

// StageError marks a run-level failure with the pipeline stage it happened
// in, so callers can tell "site unreachable" from a broken extraction.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}

// Pipeline wires the stages around their collaborators. One Pipeline value
// serves one browser page; Run executes strictly sequentially.
type Pipeline struct {
	browser output.BrowserPort
	store   output.StoragePort
	dataset output.DatasetPort
	log     logger.Logger

	remover   *banner.Remover
	extractor *extractor.Extractor
	synth     *selector.Synthesizer
	asm       *mcp.Assembler
}

func NewPipeline(
	browser output.BrowserPort,
	store output.StoragePort,
	dataset output.DatasetPort,
	log logger.Logger,
	remover *banner.Remover,
	ext *extractor.Extractor,
	synth *selector.Synthesizer,
	asm *mcp.Assembler,
) *Pipeline {
	return &Pipeline{
		browser:   browser,
		store:     store,
		dataset:   dataset,
		log:       log,
		remover:   remover,
		extractor: ext,
		synth:     synth,
		asm:       asm,
	}
}

// Run executes the whole pipeline for one input. A page with zero actionable
// elements is a successful run with toolCount 0; failures before assembly
// produce no partial tool output.
func (p *Pipeline) Run(ctx context.Context, in entity.RunInput) (*entity.RunResult, error) {
	runID := uuid.NewString()[:8]
	log := p.log.With(logger.String("run_id", runID), logger.String("url", in.URL))
	start := time.Now()
	log.Info("run started",
		logger.Int("max_actions", in.MaxActions),
		logger.Bool("remove_banners", in.RemoveBanners),
	)

	if err := p.browser.SetCookies(ctx, in.Cookies, in.URL); err != nil {
		return nil, stageErr(StageNavigation, err)
	}

	if err := p.browser.Navigate(ctx, in.URL); err != nil {
		p.reportFailure(ctx, log, runID, StageNavigation, err)
		return nil, stageErr(StageNavigation, err)
	}
	if in.WaitForSelector != "" {
		if err := p.browser.WaitFor(ctx, in.WaitForSelector); err != nil {
			p.reportFailure(ctx, log, runID, StageNavigation, err)
			return nil, stageErr(StageNavigation, err)
		}
	}
	log.Info("page loaded")

	if in.RemoveBanners {
		if _, err := p.remover.Remove(ctx); err != nil {
			p.reportFailure(ctx, log, runID, StageBanner, err)
			return nil, stageErr(StageBanner, err)
		}
	}

	candidates, totalFound, err := p.extractor.Extract(ctx, in.MaxActions)
	if err != nil {
		p.reportFailure(ctx, log, runID, StageExtraction, err)
		return nil, stageErr(StageExtraction, err)
	}

	tools, cards := p.generateTools(log, candidates)

	doc := p.asm.Document(tools)
	docJSON, err := p.asm.MarshalDocument(doc)
	if err != nil {
		return nil, stageErr(StageAssembly, err)
	}

	shot, err := p.browser.Screenshot(ctx, true)
	if err != nil {
		// The tools document is still complete without an image.
		log.Warn("screenshot capture failed", logger.Error(err))
		shot = nil
	}

	thumbnail := ""
	if shot != nil {
		if thumb, thumbErr := mcp.Thumbnail(shot.Data); thumbErr == nil {
			thumbnail = thumb
		} else {
			log.Warn("thumbnail generation failed", logger.Error(thumbErr))
		}
	}

	previewHTML, err := p.asm.RenderPreview(mcp.PreviewFrom(in.URL, runID, doc, cards, len(candidates), thumbnail, docJSON))
	if err != nil {
		return nil, stageErr(StageAssembly, err)
	}

	result := &entity.RunResult{
		ToolCount:    len(doc.Tools),
		URL:          in.URL,
		RunID:        runID,
		ActionsCount: len(candidates),
		TotalFound:   totalFound,
	}

	if err := p.upload(ctx, log, runID, result, docJSON, previewHTML, shot); err != nil {
		return nil, err
	}

	if err := p.dataset.PushData(ctx, result); err != nil {
		return nil, stageErr(StageUpload, fmt.Errorf("push run record: %w", err))
	}

	log.Info("run completed",
		logger.Int("tool_count", result.ToolCount),
		logger.Int("actions_count", result.ActionsCount),
		logger.Int("total_found", result.TotalFound),
		logger.Duration("duration", time.Since(start)),
	)
	return result, nil
}

// generateTools runs selector synthesis and name generation over the
// candidates. Selector failures drop the single element and continue; name
// generation never fails.
func (p *Pipeline) generateTools(log logger.Logger, candidates []entity.CandidateElement) ([]entity.Tool, []mcp.ActionCard) {
	namer := toolgen.NewNamer()
	gen := toolgen.NewGenerator(namer)

	tools := make([]entity.Tool, 0, len(candidates))
	cards := make([]mcp.ActionCard, 0, len(candidates))

	for _, el := range candidates {
		sel, err := p.synth.Synthesize(el)
		if err != nil {
			if errors.Is(err, selector.ErrNoSelector) {
				log.Warn("element dropped, no selector",
					logger.String("tag", el.Tag),
					logger.String("text", el.Text),
				)
				continue
			}
			log.Warn("selector synthesis failed", logger.Error(err))
			continue
		}

		name, description := gen.Generate(el)
		tools = append(tools, entity.Tool{
			Name:        name,
			Description: description,
			InputSchema: entity.NewInputSchema(toolgen.SchemaDescription(el), sel),
		})
		cards = append(cards, mcp.ActionCard{
			Category: toolgen.Category(el),
			Label:    toolgen.Label(el),
			Selector: sel,
		})
	}
	return tools, cards
}

// upload stores the three blobs. The JSON document is mandatory; preview and
// screenshot failures only cost their URL in the run record.
func (p *Pipeline) upload(ctx context.Context, log logger.Logger, runID string, result *entity.RunResult, docJSON, previewHTML []byte, shot *entity.Screenshot) error {
	jsonURL, err := p.store.SetValue(ctx, mcp.JSONKey(runID), docJSON, "application/json")
	if err != nil {
		return stageErr(StageUpload, fmt.Errorf("store tools document: %w", err))
	}
	result.MCPJSONURL = jsonURL

	previewURL, err := p.store.SetValue(ctx, mcp.PreviewKey(runID), previewHTML, "text/html")
	if err != nil {
		log.Warn("preview upload failed", logger.Error(err))
	} else {
		result.PreviewURL = previewURL
	}

	if shot != nil {
		shotURL, err := p.store.SetValue(ctx, mcp.ScreenshotKey(runID), shot.Data, "image/png")
		if err != nil {
			log.Warn("screenshot upload failed", logger.Error(err))
		} else {
			result.ScreenshotURL = shotURL
		}
	}
	return nil
}

// reportFailure captures a best-effort error screenshot and pushes an error
// record, so a failed run is still diagnosable. Never lets its own failures
// mask the original error.
func (p *Pipeline) reportFailure(ctx context.Context, log logger.Logger, runID string, stage Stage, cause error) {
	log.Error("run failed", logger.String("stage", string(stage)), logger.Error(cause))

	record := map[string]any{
		"error": cause.Error(),
		"stage": string(stage),
		"url":   p.browser.CurrentURL(),
		"runId": runID,
	}

	if shot, err := p.browser.Screenshot(ctx, true); err == nil && shot != nil {
		key := mcp.ErrorKey(time.Now().UnixMilli())
		if shotURL, upErr := p.store.SetValue(ctx, key, shot.Data, "image/png"); upErr == nil {
			record["screenshotUrl"] = shotURL
		} else {
			log.Warn("error screenshot upload failed", logger.Error(upErr))
		}
	} else {
		log.Warn("error screenshot capture failed", logger.Error(err))
	}

	if err := p.dataset.PushData(ctx, record); err != nil {
		log.Warn("error record push failed", logger.Error(err))
	}
}
