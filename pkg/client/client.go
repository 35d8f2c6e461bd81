// Package client is a small JSON client for the reportd HTTP service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/your-org/wfreport/internal/analyze"
	"github.com/your-org/wfreport/internal/report"
)

// Client talks to one reportd instance.
type Client struct {
	baseURL string
	http    *http.Client
}

// AnalyzeRequest names the input files on the server's filesystem.
type AnalyzeRequest struct {
	PlatformPath string `json:"platform_path"`
	WorkflowPath string `json:"workflow_path"`
	TracePath    string `json:"trace_path"`
}

// AnalyzeResponse is the server's view of one completed analysis.
type AnalyzeResponse struct {
	RunID        string          `json:"run_id"`
	Simulation   string          `json:"simulation"`
	Metrics      analyze.Metrics `json:"metrics"`
	Rows         int             `json:"rows"`
	ReportPath   string          `json:"report_path"`
	Schema       string          `json:"schema"`
	Persisted    bool            `json:"persisted"`
	PersistError string          `json:"persist_error"`
}

func New(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("client: base url is empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient}, nil
}

// Analyze submits an analysis request and returns the computed summary.
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (AnalyzeResponse, error) {
	var out AnalyzeResponse
	if err := c.doJSON(ctx, http.MethodPost, "/analyze", req, &out); err != nil {
		return AnalyzeResponse{}, err
	}
	return out, nil
}

// RecentRuns fetches the newest persisted report rows. A limit of zero uses
// the server default.
func (c *Client) RecentRuns(ctx context.Context, limit int) ([]report.RunSummary, error) {
	path := "/runs"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out struct {
		Rows []report.RunSummary `json:"rows"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Rows, nil
}

// Healthy reports whether the service answers its health probe.
func (c *Client) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: health check failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("client: health check returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method string, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("client: marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: http request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("client: server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("client: decode response: %w", err)
		}
	}
	return nil
}
