package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/your-org/wfreport/internal/analyze"
	"github.com/your-org/wfreport/internal/config"
	"github.com/your-org/wfreport/internal/coordinator"
	"github.com/your-org/wfreport/internal/energy"
	"github.com/your-org/wfreport/internal/journal"
	"github.com/your-org/wfreport/internal/metrics"
	"github.com/your-org/wfreport/internal/platform"
	"github.com/your-org/wfreport/internal/publish"
	"github.com/your-org/wfreport/internal/report"
	"github.com/your-org/wfreport/internal/sim"
	"github.com/your-org/wfreport/internal/telemetry"
	"github.com/your-org/wfreport/internal/workflow"
	"go.opentelemetry.io/otel/attribute"
)

// RunReport captures everything one analysis produced: the aggregate
// metrics, the per-host rows, and where they were (or should be) persisted.
type RunReport struct {
	RunID         string
	Simulation    string
	WorkflowTasks int
	Metrics       analyze.Metrics
	Hosts         []report.HostMetadata
	Rows          []report.Row
	Schema        report.Schema
	ReportPath    string
	Snapshot      metrics.Snapshot
}

// Analyze runs the full pipeline (load, aggregate, persist) and writes a
// human-readable summary. A persistence failure is returned as a typed
// *report.PersistenceError after the summary is emitted: the computed
// metrics stand even when the report file could not be written.
func Analyze(platformPath, workflowPath, tracePath string, out io.Writer) (retErr error) {
	settings := config.FromEnv()

	logger := journal.NewLogger(settings.JournalPath)
	runID := ""
	defer func() {
		status := "success"
		if retErr != nil {
			status = "error"
		}
		_ = logger.Write(runID, "analyze", tracePath, status, retErr)
	}()

	rep, err := AnalyzeReport(platformPath, workflowPath, tracePath)
	if err != nil {
		return err
	}
	runID = rep.RunID

	emitSummary(out, rep)
	emitStructuredLogs(out, rep)
	emitEnergyStatements(out, rep)

	if settings.GraphOutput != "" {
		wf, err := workflow.Load(workflowPath)
		if err != nil {
			return fmt.Errorf("dump workflow graph: %w", err)
		}
		if err := workflow.SaveGraphJSON(settings.GraphOutput, wf); err != nil {
			return fmt.Errorf("dump workflow graph: %w", err)
		}
	}
	if settings.MetricsOutput != "" {
		if err := analyze.SaveToFile(settings.MetricsOutput, rep.Metrics); err != nil {
			return fmt.Errorf("persist metrics: %w", err)
		}
	}

	return persistRows(context.Background(), settings, rep, metrics.NoopRecorder{}, out)
}

// AnalyzeReport runs aggregation only; nothing is persisted.
func AnalyzeReport(platformPath, workflowPath, tracePath string) (RunReport, error) {
	settings := config.FromEnv()

	otelRuntime, err := telemetry.SetupFromEnv("wfreport")
	if err != nil {
		return RunReport{}, fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() { _ = otelRuntime.Shutdown(context.Background()) }()

	ctx, loadSpan := otelRuntime.Tracer.Start(context.Background(), "load_inputs")
	plat, err := platform.Load(platformPath)
	if err != nil {
		loadSpan.End()
		return RunReport{}, fmt.Errorf("load platform: %w", err)
	}
	wf, err := workflow.Load(workflowPath)
	if err != nil {
		loadSpan.End()
		return RunReport{}, fmt.Errorf("load workflow: %w", err)
	}
	tr, err := sim.LoadFromFile(tracePath)
	if err != nil {
		loadSpan.End()
		return RunReport{}, fmt.Errorf("load trace: %w", err)
	}
	loadSpan.End()

	hosts, err := joinHosts(plat, tr)
	if err != nil {
		return RunReport{}, err
	}

	metricRecorder := metrics.NewInMemoryRecorder()
	activeRecorder := metrics.Recorder(metricRecorder)
	var metricsServer *http.Server
	if envBool("METRICS_ENABLED") {
		promRegistry := prometheus.NewRegistry()
		promRecorder, err := metrics.NewPrometheusRecorder(promRegistry)
		if err != nil {
			return RunReport{}, fmt.Errorf("setup prometheus recorder: %w", err)
		}
		activeRecorder = metrics.NewMultiRecorder(metricRecorder, promRecorder)
		if envBool("METRICS_TLS_ENABLED") {
			metricsServer, err = metrics.StartPrometheusServerTLS(
				metricsAddr(),
				promRegistry,
				os.Getenv("METRICS_TLS_CERT_FILE"),
				os.Getenv("METRICS_TLS_KEY_FILE"),
				os.Getenv("METRICS_TLS_CA_FILE"),
				envBool("METRICS_TLS_REQUIRE_CLIENT_CERT"),
			)
		} else {
			metricsServer, err = metrics.StartPrometheusServer(metricsAddr(), promRegistry)
		}
		if err != nil {
			return RunReport{}, fmt.Errorf("start metrics endpoint: %w", err)
		}
		defer func() { _ = metrics.StopServer(context.Background(), metricsServer) }()
	}

	_, aggSpan := otelRuntime.Tracer.Start(ctx, "aggregate")
	inputs := analyze.FromTrace(tr)
	m := analyze.Aggregate(inputs, analyze.Options{FallbackCompletion: tr.CompletedAt})
	observeTasks(activeRecorder, inputs)
	aggSpan.SetAttributes(
		attribute.Int("tasks.total", m.TotalTasks),
		attribute.Int("tasks.failed", m.FailedTasks),
	)
	aggSpan.End()

	runID := report.RunID(settings.RunIDPrefix, len(wf.Tasks))
	rows := report.BuildRows(runID, len(wf.Tasks), m, hosts)

	return RunReport{
		RunID:         runID,
		Simulation:    tr.Simulation,
		WorkflowTasks: len(wf.Tasks),
		Metrics:       m,
		Hosts:         hosts,
		Rows:          rows,
		Schema:        settings.Schema,
		ReportPath:    settings.ReportPath,
		Snapshot:      metricRecorder.Snapshot(),
	}, nil
}

// Validate loads and validates the platform and workflow descriptions only.
func Validate(platformPath, workflowPath string) (retErr error) {
	settings := config.FromEnv()
	logger := journal.NewLogger(settings.JournalPath)
	defer func() {
		status := "success"
		if retErr != nil {
			status = "error"
		}
		_ = logger.Write("", "validate", platformPath, status, retErr)
	}()

	if _, err := platform.Load(platformPath); err != nil {
		return fmt.Errorf("validate platform: %w", err)
	}
	if _, err := workflow.Load(workflowPath); err != nil {
		return fmt.Errorf("validate workflow: %w", err)
	}
	return nil
}

func persistRows(ctx context.Context, settings config.Settings, rep RunReport, rec metrics.Recorder, out io.Writer) error {
	lease, err := acquireLeaseIfEnabled(ctx, rep.ReportPath)
	if err != nil {
		return err
	}
	if lease != nil {
		defer func() { _ = lease.Release(ctx) }()
	}

	if err := report.AppendRun(rep.ReportPath, rep.Schema, rep.Rows); err != nil {
		return err
	}
	rec.ObserveAppend(string(rep.Schema), len(rep.Rows))
	_, _ = fmt.Fprintf(out, "report: appended %d row(s) to %s (schema=%s)\n", len(rep.Rows), rep.ReportPath, rep.Schema)

	if settings.HistoryDBPath != "" {
		hist, err := report.OpenHistory(settings.HistoryDBPath)
		if err != nil {
			return err
		}
		defer func() { _ = hist.Close() }()
		if err := hist.Migrate(); err != nil {
			return err
		}
		if err := hist.InsertRun(rep.Schema, rep.Rows); err != nil {
			return err
		}
	}

	if broker := strings.TrimSpace(os.Getenv("PUBLISH_BROKER_URL")); broker != "" {
		pub, err := publish.NewPublisher(publish.Options{
			BrokerURL: broker,
			Topic:     os.Getenv("PUBLISH_TOPIC"),
			ClientID:  os.Getenv("PUBLISH_CLIENT_ID"),
		})
		if err != nil {
			return err
		}
		err = pub.Publish(ctx, publish.Summary{
			RunID:          rep.RunID,
			Simulation:     rep.Simulation,
			TotalTasks:     rep.Metrics.TotalTasks,
			FailedTasks:    rep.Metrics.FailedTasks,
			CompletionDate: rep.Metrics.CompletionDate,
			HostRows:       len(rep.Rows),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// joinHosts merges the platform host list with per-host energy from the
// trace. Rows follow platform declaration order; hosts the trace never
// reported energy for default to zero joules.
func joinHosts(plat platform.Platform, tr sim.RunTrace) ([]report.HostMetadata, error) {
	energyByHost := make(map[string]float64, len(tr.Hosts))
	for _, h := range tr.Hosts {
		if _, ok := plat.Lookup(h.Name); !ok {
			return nil, fmt.Errorf("trace reports energy for unknown host %q", h.Name)
		}
		energyByHost[h.Name] = h.EnergyJoules
	}

	hosts := make([]report.HostMetadata, 0, len(plat.Hosts))
	for _, h := range plat.Hosts {
		hosts = append(hosts, report.HostMetadata{
			Name:         h.Name,
			CoreCount:    h.Cores,
			EnergyJoules: energyByHost[h.Name],
		})
	}
	return hosts, nil
}

func observeTasks(r metrics.Recorder, inputs []analyze.TaskInput) {
	for _, t := range inputs {
		status := metrics.StatusCompleted
		switch {
		case t.Err != nil:
			status = metrics.StatusMalformed
		case t.Failed:
			status = metrics.StatusFailed
		}
		compute := 0.0
		if t.Err == nil {
			compute = t.Final.ComputeTime()
		}
		r.ObserveTask(status, compute)
		if t.Failed {
			r.ObserveRetry()
		}
	}
}

func emitSummary(out io.Writer, rep RunReport) {
	_, _ = fmt.Fprintf(out, "analyzed %d task(s) from run %s (simulation=%s)\n",
		rep.Metrics.TotalTasks, rep.RunID, rep.Simulation)
	_, _ = fmt.Fprintf(out, "metrics failed_tasks=%d malformed_tasks=%d completion_date=%s\n",
		rep.Metrics.FailedTasks,
		rep.Metrics.MalformedTasks,
		analyze.Defined(rep.Metrics.CompletionDate).Format(report.Precision),
	)
	_, _ = fmt.Fprintf(out, "metrics avg_compute=%s avg_io_input=%s avg_io_output=%s ratio=%s avg_duration=%s\n",
		rep.Metrics.AvgComputeTime.Format(report.Precision),
		rep.Metrics.AvgIOInputTime.Format(report.Precision),
		rep.Metrics.AvgIOOutputTime.Format(report.Precision),
		rep.Metrics.AvgComputeToIORatio.Format(report.Precision),
		rep.Metrics.AvgTaskDuration.Format(report.Precision),
	)
}

func emitStructuredLogs(out io.Writer, rep RunReport) {
	for _, row := range rep.Rows {
		entry := map[string]any{
			"level":          "info",
			"ts":             time.Now().UTC().Format(time.RFC3339Nano),
			"run_id":         row.RunID,
			"host":           row.HostName,
			"cores":          row.CoreCount,
			"tasks":          row.TraceTasks,
			"failed_tasks":   row.FailedTasks,
			"bytes_read":     row.TotalBytesRead,
			"bytes_written":  row.TotalBytesWrote,
			"power_watts":    row.PowerWatts.String(),
			"completion_sec": row.CompletionDate,
		}
		if b, err := json.Marshal(entry); err == nil {
			_, _ = fmt.Fprintln(out, string(b))
		}
	}
}

func emitEnergyStatements(out io.Writer, rep RunReport) {
	raw := strings.TrimSpace(os.Getenv("ENERGY_USD_PER_KWH"))
	if raw == "" {
		return
	}
	var usd float64
	if _, err := fmt.Sscanf(raw, "%f", &usd); err != nil {
		return
	}
	card, err := energy.NewRateCard(usd)
	if err != nil {
		return
	}
	for _, h := range rep.Hosts {
		st := card.Statement(h.Name, h.EnergyJoules)
		_, _ = fmt.Fprintf(out, "energy host=%s joules=%.2f kwh=%.6f usd=%.4f\n",
			st.HostName, st.EnergyJoules, st.KilowattHours, st.AmountUSD)
	}
}

func acquireLeaseIfEnabled(ctx context.Context, reportPath string) (coordinator.Lease, error) {
	if !envBool("COORDINATION_ENABLED") {
		return nil, nil
	}
	mode := strings.TrimSpace(strings.ToLower(os.Getenv("COORDINATION_MODE")))
	if mode == "" {
		mode = "file"
	}
	var coord coordinator.Coordinator
	switch mode {
	case "memory":
		coord = coordinator.NewMemoryCoordinator()
	case "redis":
		redisURL := strings.TrimSpace(os.Getenv("COORDINATION_REDIS_URL"))
		redisPrefix := strings.TrimSpace(os.Getenv("COORDINATION_REDIS_PREFIX"))
		redisCoord, err := coordinator.NewRedisCoordinator(redisURL, redisPrefix)
		if err != nil {
			return nil, err
		}
		coord = redisCoord
	default:
		coord = coordinator.NewFileCoordinator(os.Getenv("COORDINATION_DIR"))
	}

	ttl := 2 * time.Minute
	if v := strings.TrimSpace(os.Getenv("COORDINATION_TTL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			ttl = d
		}
	}

	key := strings.NewReplacer("/", "_", ".", "_").Replace(reportPath)
	lease, err := coord.Acquire(ctx, key, ttl)
	if err != nil {
		return nil, fmt.Errorf("coordination acquire failed: %w", err)
	}
	return lease, nil
}

// IsPersistenceFailure reports whether err only concerns report persistence,
// leaving the computed metrics intact.
func IsPersistenceFailure(err error) bool {
	var pe *report.PersistenceError
	return errors.As(err, &pe)
}

func envBool(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func metricsAddr() string {
	if v := strings.TrimSpace(os.Getenv("METRICS_ADDR")); v != "" {
		return v
	}
	return ":2112"
}
