package entity

// Cookie is one browser cookie injected before navigation.
type Cookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain,omitempty"`
	Path   string `json:"path,omitempty"`
}

// RunInput is the validated configuration for one pipeline run.
type RunInput struct {
	URL             string
	Cookies         []Cookie
	RemoveBanners   bool
	MaxActions      int
	Headless        bool
	ViewportWidth   int
	ViewportHeight  int
	WaitForSelector string
}

// RunResult is the record pushed to the dataset sink after a successful run.
// PreviewURL and ScreenshotURL may be empty if their uploads failed.
type RunResult struct {
	MCPJSONURL    string `json:"mcpJsonUrl"`
	PreviewURL    string `json:"previewUrl,omitempty"`
	ScreenshotURL string `json:"screenshotUrl,omitempty"`
	ToolCount     int    `json:"toolCount"`
	URL           string `json:"url"`
	RunID         string `json:"runId"`
	ActionsCount  int    `json:"actionsCount"`
	TotalFound    int    `json:"totalFound"`
}

// Screenshot is a captured page image.
type Screenshot struct {
	Data   []byte
	Format string
}
