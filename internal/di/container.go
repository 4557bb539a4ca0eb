package di

import (
	"context"
	"fmt"
	"time"

	"mcp-webtools/internal/application/port/output"
	"mcp-webtools/internal/application/usecase"
	"mcp-webtools/internal/banner"
	"mcp-webtools/internal/domain/entity"
	"mcp-webtools/internal/extractor"
	"mcp-webtools/internal/infrastructure/browser/rod"
	"mcp-webtools/internal/infrastructure/logger"
	"mcp-webtools/internal/infrastructure/storage"
	"mcp-webtools/internal/mcp"
	"mcp-webtools/internal/selector"
)

type Container struct {
	Browser  output.BrowserPort
	Store    output.StoragePort
	Dataset  output.DatasetPort
	Logger   logger.Logger
	Pipeline *usecase.Pipeline
}

type Config struct {
	Headless       bool
	ViewportWidth  int
	ViewportHeight int
	BrowserTimeout time.Duration

	// Storage: "api" uses the key-value-store REST API, anything else
	// writes to OutputDir.
	StorageKind string
	APIBaseURL  string
	APIToken    string
	StoreID     string
	DatasetID   string
	OutputDir   string

	BannerCataloguePath string
	StrictSelectors     bool
	LogLevel            string
	Development         bool
}

func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	log, err := logger.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	browserCfg := rod.DefaultConfig()
	browserCfg.Headless = cfg.Headless
	browserCfg.ViewportWidth = cfg.ViewportWidth
	browserCfg.ViewportHeight = cfg.ViewportHeight
	if cfg.BrowserTimeout > 0 {
		browserCfg.Timeout = cfg.BrowserTimeout
	}
	browser, err := rod.NewAdapter(ctx, browserCfg)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("failed to create browser: %w", err)
	}

	store, dataset, err := newStorage(cfg)
	if err != nil {
		browser.Close()
		_ = log.Sync()
		return nil, err
	}

	matchers, err := banner.LoadCatalogue(cfg.BannerCataloguePath)
	if err != nil {
		browser.Close()
		_ = log.Sync()
		return nil, fmt.Errorf("failed to load banner catalogue: %w", err)
	}
	remover := banner.NewRemover(browser, log, matchers)

	synth := newSynthesizer(ctx, cfg, browser, log)
	ext := extractor.New(browser, log, func(el entity.CandidateElement) (string, error) {
		return synth.Synthesize(el)
	})
	asm := mcp.NewAssembler(log)

	pipeline := usecase.NewPipeline(browser, store, dataset, log, remover, ext, synth, asm)

	return &Container{
		Browser:  browser,
		Store:    store,
		Dataset:  dataset,
		Logger:   log,
		Pipeline: pipeline,
	}, nil
}

func newStorage(cfg Config) (output.StoragePort, output.DatasetPort, error) {
	if cfg.StorageKind == "api" {
		client := storage.NewAPIClient(storage.APIConfig{
			BaseURL:   cfg.APIBaseURL,
			Token:     cfg.APIToken,
			StoreID:   cfg.StoreID,
			DatasetID: cfg.DatasetID,
		})
		return client, client, nil
	}

	dir := cfg.OutputDir
	if dir == "" {
		dir = "output"
	}
	fs, err := storage.NewFileStore(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create file store: %w", err)
	}
	return fs, fs, nil
}

// newSynthesizer wires strict selector verification against the page HTML
// when enabled; the default synthesizer trusts selectors by construction.
func newSynthesizer(ctx context.Context, cfg Config, browser output.BrowserPort, log logger.Logger) *selector.Synthesizer {
	if !cfg.StrictSelectors {
		return selector.New()
	}
	return selector.NewStrict(&pageVerifier{ctx: ctx, browser: browser, log: log})
}

// pageVerifier re-parses the current page HTML on first use. Strict mode is
// opt-in, so the extra capture only happens when asked for.
type pageVerifier struct {
	ctx     context.Context
	browser output.BrowserPort
	log     logger.Logger

	verifier *selector.DocumentVerifier
	failed   bool
}

func (v *pageVerifier) Unique(sel string) bool {
	if v.failed {
		return true // fall back to trust-by-construction
	}
	if v.verifier == nil {
		html, err := v.browser.HTML(v.ctx)
		if err != nil {
			v.log.Warn("selector verification disabled, cannot capture html", logger.Error(err))
			v.failed = true
			return true
		}
		verifier, err := selector.NewDocumentVerifier(html)
		if err != nil {
			v.log.Warn("selector verification disabled, cannot parse html", logger.Error(err))
			v.failed = true
			return true
		}
		v.verifier = verifier
	}
	return v.verifier.Unique(sel)
}

func (c *Container) Close() {
	if c.Browser != nil {
		c.Browser.Close()
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}
