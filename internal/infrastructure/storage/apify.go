// Package storage provides the blob and dataset sinks: an Apify-compatible
// HTTP key-value store for platform runs and a filesystem store for local
// runs.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mcp-webtools/internal/application/port/output"
)

var (
	_ output.StoragePort = (*APIClient)(nil)
	_ output.DatasetPort = (*APIClient)(nil)
)

// APIClient talks to an Apify-style key-value-store and dataset REST API.
type APIClient struct {
	baseURL   string
	token     string
	storeID   string
	datasetID string
	client    *http.Client
}

type APIConfig struct {
	BaseURL   string
	Token     string
	StoreID   string
	DatasetID string
	Timeout   time.Duration
}

func NewAPIClient(cfg APIConfig) *APIClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &APIClient{
		baseURL:   cfg.BaseURL,
		token:     cfg.Token,
		storeID:   cfg.StoreID,
		datasetID: cfg.DatasetID,
		client:    &http.Client{Timeout: cfg.Timeout},
	}
}

// SetValue uploads one record and returns its public URL.
func (c *APIClient) SetValue(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	recordURL := c.RecordURL(key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.authorized(recordURL), bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build store request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("store record %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("store record %s: status %d: %s", key, resp.StatusCode, body)
	}
	return recordURL, nil
}

// PushData appends a record to the dataset.
func (c *APIClient) PushData(ctx context.Context, record any) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal dataset record: %w", err)
	}

	itemsURL := fmt.Sprintf("%s/v2/datasets/%s/items", c.baseURL, c.datasetID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authorized(itemsURL), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build dataset request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("push dataset record: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("push dataset record: status %d: %s", resp.StatusCode, body)
	}
	return nil
}

// RecordURL is the public URL of a stored record, without the token.
func (c *APIClient) RecordURL(key string) string {
	return fmt.Sprintf("%s/v2/key-value-stores/%s/records/%s", c.baseURL, c.storeID, url.PathEscape(key))
}

func (c *APIClient) authorized(rawURL string) string {
	if c.token == "" {
		return rawURL
	}
	sep := "?"
	if strings.ContainsRune(rawURL, '?') {
		sep = "&"
	}
	return rawURL + sep + "token=" + url.QueryEscape(c.token)
}
