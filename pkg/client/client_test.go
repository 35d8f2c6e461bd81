package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/your-org/wfreport/internal/app"
	"github.com/your-org/wfreport/internal/scaffold"
)

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(app.NewServer().Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestClientHealthy(t *testing.T) {
	ts := startServer(t)
	c, err := New(ts.URL, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := c.Healthy(context.Background()); err != nil {
		t.Fatalf("healthy: %v", err)
	}
}

func TestClientAnalyze(t *testing.T) {
	dir := t.TempDir()
	if err := scaffold.Generate(dir, "clienttest"); err != nil {
		t.Fatalf("scaffold inputs: %v", err)
	}
	t.Setenv("REPORT_PATH", filepath.Join(t.TempDir(), "report.csv"))
	t.Setenv("HISTORY_DB", "")
	t.Setenv("JOURNAL_PATH", "")

	ts := startServer(t)
	c, err := New(ts.URL, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	resp, err := c.Analyze(context.Background(), AnalyzeRequest{
		PlatformPath: filepath.Join(dir, "platform.yaml"),
		WorkflowPath: filepath.Join(dir, "workflow.json"),
		TracePath:    filepath.Join(dir, "trace.json"),
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if resp.RunID != "extk-3" || resp.Rows != 3 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Metrics.TotalTasks != 3 || resp.Metrics.FailedTasks != 1 {
		t.Fatalf("unexpected metrics: %+v", resp.Metrics)
	}
}

func TestClientAnalyzeServerError(t *testing.T) {
	ts := startServer(t)
	c, err := New(ts.URL, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := c.Analyze(context.Background(), AnalyzeRequest{}); err == nil {
		t.Fatal("expected error for empty request")
	}
}

func TestClientRecentRuns(t *testing.T) {
	dir := t.TempDir()
	if err := scaffold.Generate(dir, "clienttest"); err != nil {
		t.Fatalf("scaffold inputs: %v", err)
	}
	stateDir := t.TempDir()
	t.Setenv("REPORT_PATH", filepath.Join(stateDir, "report.csv"))
	t.Setenv("HISTORY_DB", filepath.Join(stateDir, "history.db"))
	t.Setenv("JOURNAL_PATH", "")

	ts := startServer(t)
	c, err := New(ts.URL, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := c.Analyze(context.Background(), AnalyzeRequest{
		PlatformPath: filepath.Join(dir, "platform.yaml"),
		WorkflowPath: filepath.Join(dir, "workflow.json"),
		TracePath:    filepath.Join(dir, "trace.json"),
	}); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	rows, err := c.RecentRuns(context.Background(), 5)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
}

func TestClientRejectsEmptyBaseURL(t *testing.T) {
	if _, err := New("  ", nil); err == nil {
		t.Fatal("expected error for empty base url")
	}
}

func TestClientHealthyAgainstDownServer(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close()
	c, err := New(ts.URL, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := c.Healthy(context.Background()); err == nil {
		t.Fatal("expected health check failure against closed server")
	}
}
