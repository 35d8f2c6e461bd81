package metrics

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/your-org/wfreport/internal/security"
)

// PrometheusRecorder reports analyzer metrics using Prometheus primitives.
type PrometheusRecorder struct {
	tasks     *prometheus.CounterVec
	compute   prometheus.Histogram
	retries   prometheus.Counter
	reportRow *prometheus.CounterVec
}

func NewPrometheusRecorder(registry *prometheus.Registry) (*PrometheusRecorder, error) {
	if registry == nil {
		return nil, fmt.Errorf("prometheus registry is nil")
	}

	r := &PrometheusRecorder{
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wfreport_tasks_total",
			Help: "Total number of analyzed tasks by final status",
		}, []string{"status"}),
		compute: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wfreport_task_compute_seconds",
			Help:    "Simulated per-task compute time in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wfreport_retry_attempts_total",
			Help: "Total failed attempts preceding final task records",
		}),
		reportRow: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wfreport_report_rows_total",
			Help: "Total report rows appended by schema",
		}, []string{"schema"}),
	}

	for _, collector := range []prometheus.Collector{r.tasks, r.compute, r.retries, r.reportRow} {
		if err := registry.Register(collector); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return r, nil
}

func (r *PrometheusRecorder) ObserveTask(status string, computeSeconds float64) {
	r.tasks.WithLabelValues(status).Inc()
	if computeSeconds >= 0 {
		r.compute.Observe(computeSeconds)
	}
}

func (r *PrometheusRecorder) ObserveRetry() {
	r.retries.Inc()
}

func (r *PrometheusRecorder) ObserveAppend(schema string, rows int) {
	r.reportRow.WithLabelValues(schema).Add(float64(rows))
}

func StartPrometheusServer(addr string, registry *prometheus.Registry) (*http.Server, error) {
	if addr == "" {
		addr = ":2112"
	}
	if registry == nil {
		return nil, fmt.Errorf("prometheus registry is nil")
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen metrics endpoint %q: %w", addr, err)
	}

	srv := &http.Server{
		Addr:    ln.Addr().String(),
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	go func() {
		_ = srv.Serve(ln)
	}()
	return srv, nil
}

// StartPrometheusServerTLS starts the metrics endpoint with optional
// client-cert auth (mTLS).
func StartPrometheusServerTLS(addr string, registry *prometheus.Registry, certFile string, keyFile string, caFile string, requireClientCert bool) (*http.Server, error) {
	if addr == "" {
		addr = ":2112"
	}
	if registry == nil {
		return nil, fmt.Errorf("prometheus registry is nil")
	}

	tlsCfg, err := security.BuildServerTLSConfig(certFile, keyFile, caFile, requireClientCert)
	if err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen metrics endpoint %q: %w", addr, err)
	}
	tlsListener := tls.NewListener(ln, tlsCfg)

	srv := &http.Server{
		Addr:    ln.Addr().String(),
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	go func() {
		_ = srv.Serve(tlsListener)
	}()
	return srv, nil
}

func StopServer(ctx context.Context, srv *http.Server) error {
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
