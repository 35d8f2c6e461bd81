package app

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/your-org/wfreport/internal/config"
	"github.com/your-org/wfreport/internal/metrics"
	"github.com/your-org/wfreport/internal/report"
	"github.com/your-org/wfreport/internal/security"
)

// Server exposes analysis over HTTP for deployments where traces land on a
// shared filesystem. It owns a process-lifetime recorder so counters span
// every request instead of resetting per run.
type Server struct {
	recorder *metrics.InMemoryRecorder
}

func NewServer() *Server {
	return &Server{recorder: metrics.NewInMemoryRecorder()}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	mux.HandleFunc("/analyze", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			PlatformPath string `json:"platform_path"`
			WorkflowPath string `json:"workflow_path"`
			TracePath    string `json:"trace_path"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.PlatformPath == "" || req.WorkflowPath == "" || req.TracePath == "" {
			http.Error(w, "platform_path, workflow_path and trace_path are required", http.StatusBadRequest)
			return
		}

		rep, err := AnalyzeReport(req.PlatformPath, req.WorkflowPath, req.TracePath)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.observe(rep)

		settings := config.FromEnv()
		persisted := true
		persistErr := ""
		if err := persistRows(r.Context(), settings, rep, s.recorder, discardWriter{}); err != nil {
			if !IsPersistenceFailure(err) {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			persisted = false
			persistErr = err.Error()
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"run_id":        rep.RunID,
			"simulation":    rep.Simulation,
			"metrics":       rep.Metrics,
			"rows":          len(rep.Rows),
			"report_path":   rep.ReportPath,
			"schema":        rep.Schema,
			"persisted":     persisted,
			"persist_error": persistErr,
		})
	})
	mux.HandleFunc("/runs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		settings := config.FromEnv()
		if settings.HistoryDBPath == "" {
			http.Error(w, "run history is not configured", http.StatusNotFound)
			return
		}
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				http.Error(w, "limit must be an integer", http.StatusBadRequest)
				return
			}
			limit = n
		}
		hist, err := report.OpenHistory(settings.HistoryDBPath)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer func() { _ = hist.Close() }()
		if err := hist.Migrate(); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		rows, err := hist.RecentRows(limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"rows": rows})
	})
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s.recorder.Snapshot())
	})
	return mux
}

func (s *Server) observe(rep RunReport) {
	snap := rep.Snapshot
	for status, n := range snap.ByStatus {
		for i := int64(0); i < n; i++ {
			s.recorder.ObserveTask(status, 0)
		}
	}
	for i := int64(0); i < snap.RetryAttempts; i++ {
		s.recorder.ObserveRetry()
	}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func StartServer(ctx context.Context, addr string, srv *Server) error {
	if addr == "" {
		addr = ":8080"
	}
	s := &http.Server{Addr: addr, Handler: srv.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		_ = s.Shutdown(context.Background())
	}()
	return s.ListenAndServe()
}

func StartServerTLS(ctx context.Context, addr string, srv *Server, certFile string, keyFile string, caFile string, requireClientCert bool) error {
	if addr == "" {
		addr = ":8080"
	}
	cfg, err := security.BuildServerTLSConfig(certFile, keyFile, caFile, requireClientCert)
	if err != nil {
		return err
	}
	s := &http.Server{Addr: addr, Handler: srv.Handler(), ReadHeaderTimeout: 5 * time.Second, TLSConfig: cfg}
	go func() {
		<-ctx.Done()
		_ = s.Shutdown(context.Background())
	}()
	ln, err := tls.Listen("tcp", addr, cfg)
	if err != nil {
		return fmt.Errorf("reportd tls listen: %w", err)
	}
	return s.Serve(ln)
}

func StartServerFromEnv(ctx context.Context, srv *Server) error {
	addr := os.Getenv("REPORTD_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	if envBool("REPORTD_TLS_ENABLED") {
		return StartServerTLS(
			ctx,
			addr,
			srv,
			os.Getenv("REPORTD_TLS_CERT_FILE"),
			os.Getenv("REPORTD_TLS_KEY_FILE"),
			os.Getenv("REPORTD_TLS_CA_FILE"),
			envBool("REPORTD_TLS_REQUIRE_CLIENT_CERT"),
		)
	}
	return StartServer(ctx, addr, srv)
}
