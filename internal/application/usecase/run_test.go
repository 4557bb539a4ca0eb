package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-webtools/internal/banner"
	"mcp-webtools/internal/domain/entity"
	"mcp-webtools/internal/extractor"
	"mcp-webtools/internal/infrastructure/logger"
	mcppkg "mcp-webtools/internal/mcp"
	"mcp-webtools/internal/selector"
)

type fakeBrowser struct {
	navErr         bool
	waitErr        bool
	screenshotErr  bool
	bannersRemoved int
	elements       []entity.CandidateElement

	navigatedTo string
	waitedFor   string
}

func (b *fakeBrowser) SetCookies(context.Context, []entity.Cookie, string) error { return nil }

func (b *fakeBrowser) Navigate(_ context.Context, url string) error {
	if b.navErr {
		return errors.New("net::ERR_NAME_NOT_RESOLVED")
	}
	b.navigatedTo = url
	return nil
}

func (b *fakeBrowser) WaitFor(_ context.Context, sel string) error {
	b.waitedFor = sel
	if b.waitErr {
		return errors.New("element not found")
	}
	return nil
}

func (b *fakeBrowser) Eval(_ context.Context, _ string, out any) error {
	switch v := out.(type) {
	case *int:
		*v = b.bannersRemoved
	case *[]entity.CandidateElement:
		data, err := json.Marshal(b.elements)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, v)
	}
	return nil
}

func (b *fakeBrowser) HTML(context.Context) (string, error) { return "<html></html>", nil }

func (b *fakeBrowser) Screenshot(context.Context, bool) (*entity.Screenshot, error) {
	if b.screenshotErr {
		return nil, errors.New("capture failed")
	}
	return &entity.Screenshot{Data: []byte("fake-png-bytes"), Format: "png"}, nil
}

func (b *fakeBrowser) CurrentURL() string { return b.navigatedTo }
func (b *fakeBrowser) Close()             {}

type fakeStore struct {
	mu         sync.Mutex
	blobs      map[string][]byte
	failPrefix string
}

func newFakeStore() *fakeStore {
	return &fakeStore{blobs: make(map[string][]byte)}
}

func (s *fakeStore) SetValue(_ context.Context, key string, data []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPrefix != "" && strings.HasPrefix(key, s.failPrefix) {
		return "", errors.New("storage unavailable")
	}
	s.blobs[key] = data
	return "mem://" + key, nil
}

func (s *fakeStore) keyWithPrefix(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.blobs {
		if strings.HasPrefix(k, prefix) {
			return k
		}
	}
	return ""
}

type fakeDataset struct {
	records []any
	err     error
}

func (d *fakeDataset) PushData(_ context.Context, record any) error {
	if d.err != nil {
		return d.err
	}
	d.records = append(d.records, record)
	return nil
}

func newPipeline(browser *fakeBrowser, store *fakeStore, dataset *fakeDataset) *Pipeline {
	log := logger.NewNop()
	synth := selector.New()
	key := func(el entity.CandidateElement) (string, error) { return synth.Synthesize(el) }
	return NewPipeline(
		browser,
		store,
		dataset,
		log,
		banner.NewRemover(browser, log, nil),
		extractor.New(browser, log, key),
		synth,
		mcppkg.NewAssembler(log),
	)
}

func runInput() entity.RunInput {
	return entity.RunInput{
		URL:            "https://example.com",
		RemoveBanners:  true,
		MaxActions:     50,
		Headless:       true,
		ViewportWidth:  1920,
		ViewportHeight: 1080,
	}
}

func pageElements() []entity.CandidateElement {
	return []entity.CandidateElement{
		{Tag: "button", ID: "submit-btn", Text: "Submit Form", Visible: true},
		{Tag: "input", Type: "text", Name: "username", Placeholder: "Enter username", Visible: true},
	}
}

func TestRun_HappyPath(t *testing.T) {
	browser := &fakeBrowser{elements: pageElements(), bannersRemoved: 1}
	store := newFakeStore()
	dataset := &fakeDataset{}

	result, err := newPipeline(browser, store, dataset).Run(context.Background(), runInput())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "https://example.com", browser.navigatedTo)
	assert.Len(t, result.RunID, 8)
	assert.Equal(t, 2, result.ToolCount)
	assert.Equal(t, 2, result.ActionsCount)
	assert.Equal(t, 2, result.TotalFound)
	assert.Equal(t, "https://example.com", result.URL)
	assert.Equal(t, "mem://mcp-"+result.RunID+".json", result.MCPJSONURL)
	assert.Equal(t, "mem://preview-"+result.RunID+".html", result.PreviewURL)
	assert.Equal(t, "mem://screenshot-"+result.RunID+".png", result.ScreenshotURL)

	var doc entity.ToolDocument
	require.NoError(t, json.Unmarshal(store.blobs["mcp-"+result.RunID+".json"], &doc))
	require.Len(t, doc.Tools, 2)
	assert.Equal(t, "button_submit_form", doc.Tools[0].Name)
	assert.Equal(t, "#submit-btn", doc.Tools[0].InputSchema.Properties["selector"].Default)
	assert.Equal(t, "input_enter_username", doc.Tools[1].Name)
	assert.Equal(t, `input[name="username"]`, doc.Tools[1].InputSchema.Properties["selector"].Default)

	preview := string(store.blobs["preview-"+result.RunID+".html"])
	assert.Contains(t, preview, "#submit-btn")
	assert.Contains(t, preview, result.RunID)

	require.Len(t, dataset.records, 1)
	assert.Same(t, result, dataset.records[0])
}

func TestRun_ZeroElementsIsSuccess(t *testing.T) {
	browser := &fakeBrowser{}
	store := newFakeStore()
	dataset := &fakeDataset{}

	result, err := newPipeline(browser, store, dataset).Run(context.Background(), runInput())
	require.NoError(t, err)

	assert.Zero(t, result.ToolCount)
	assert.Zero(t, result.ActionsCount)
	assert.Zero(t, result.TotalFound)
	assert.NotEmpty(t, result.MCPJSONURL)
	assert.JSONEq(t, `{"tools": []}`, string(store.blobs["mcp-"+result.RunID+".json"]))
}

func TestRun_NavigationFailure(t *testing.T) {
	browser := &fakeBrowser{navErr: true}
	store := newFakeStore()
	dataset := &fakeDataset{}

	result, err := newPipeline(browser, store, dataset).Run(context.Background(), runInput())
	require.Error(t, err)
	assert.Nil(t, result)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageNavigation, se.Stage)

	require.Len(t, dataset.records, 1)
	record, ok := dataset.records[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "navigation", record["stage"])
	assert.Contains(t, record["error"], "ERR_NAME_NOT_RESOLVED")

	errorKey := store.keyWithPrefix("error-")
	require.NotEmpty(t, errorKey)
	assert.Equal(t, "mem://"+errorKey, record["screenshotUrl"])
}

func TestRun_WaitForSelector(t *testing.T) {
	browser := &fakeBrowser{elements: pageElements()}
	in := runInput()
	in.WaitForSelector = "#app"

	_, err := newPipeline(browser, newFakeStore(), &fakeDataset{}).Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "#app", browser.waitedFor)
}

func TestRun_NoWaitWhenSelectorUnset(t *testing.T) {
	browser := &fakeBrowser{elements: pageElements()}

	_, err := newPipeline(browser, newFakeStore(), &fakeDataset{}).Run(context.Background(), runInput())
	require.NoError(t, err)
	assert.Empty(t, browser.waitedFor)
}

func TestRun_ElementWithoutSelectorIsDropped(t *testing.T) {
	elements := append(pageElements(), entity.CandidateElement{
		Tag:     "div",
		Role:    "button",
		Text:    "Floating",
		Visible: true,
		// No id, name, classes or structural path: nothing to address it by.
	})
	browser := &fakeBrowser{elements: elements}

	result, err := newPipeline(browser, newFakeStore(), &fakeDataset{}).Run(context.Background(), runInput())
	require.NoError(t, err)
	assert.Equal(t, 2, result.ToolCount)
	assert.Equal(t, 3, result.ActionsCount)
}

func TestRun_PreviewUploadFailureIsNonFatal(t *testing.T) {
	browser := &fakeBrowser{elements: pageElements()}
	store := newFakeStore()
	store.failPrefix = "preview-"

	result, err := newPipeline(browser, store, &fakeDataset{}).Run(context.Background(), runInput())
	require.NoError(t, err)
	assert.NotEmpty(t, result.MCPJSONURL)
	assert.Empty(t, result.PreviewURL)
	assert.NotEmpty(t, result.ScreenshotURL)
}

func TestRun_JSONUploadFailureIsFatal(t *testing.T) {
	browser := &fakeBrowser{elements: pageElements()}
	store := newFakeStore()
	store.failPrefix = "mcp-"

	result, err := newPipeline(browser, store, &fakeDataset{}).Run(context.Background(), runInput())
	require.Error(t, err)
	assert.Nil(t, result)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageUpload, se.Stage)
}

func TestRun_ScreenshotFailureIsNonFatal(t *testing.T) {
	browser := &fakeBrowser{elements: pageElements(), screenshotErr: true}
	store := newFakeStore()

	result, err := newPipeline(browser, store, &fakeDataset{}).Run(context.Background(), runInput())
	require.NoError(t, err)
	assert.Empty(t, result.ScreenshotURL)
	assert.NotEmpty(t, result.PreviewURL)
}

func TestRun_DatasetPushFailureIsFatal(t *testing.T) {
	browser := &fakeBrowser{elements: pageElements()}
	dataset := &fakeDataset{err: errors.New("dataset gone")}

	_, err := newPipeline(browser, newFakeStore(), dataset).Run(context.Background(), runInput())
	require.Error(t, err)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageUpload, se.Stage)
}

func TestStageError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := stageErr(StageExtraction, cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "extraction: boom", err.Error())
}
