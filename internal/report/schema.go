package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/your-org/wfreport/internal/analyze"
)

// Schema identifies one report column set. A report file carries exactly one
// schema for its whole lifetime; additive changes get a new schema, never
// extra columns appended to an old header.
type Schema string

const (
	// SchemaLegacy is the original compact column set.
	SchemaLegacy Schema = "legacy"
	// SchemaExtended adds byte totals, per-task core allocations, and the
	// average task duration.
	SchemaExtended Schema = "extended"
)

// Precision is the fixed decimal precision applied uniformly to every
// numeric cell. Mixing formatting policies within one file is not permitted.
const Precision = 2

func ParseSchema(s string) (Schema, error) {
	switch Schema(strings.TrimSpace(strings.ToLower(s))) {
	case SchemaLegacy:
		return SchemaLegacy, nil
	case SchemaExtended, "":
		return SchemaExtended, nil
	}
	return "", fmt.Errorf("report: unknown schema %q", s)
}

// Header returns the column names for the schema, in persisted order.
func (s Schema) Header() []string {
	switch s {
	case SchemaLegacy:
		return []string{
			"runid", "host_name", "num_cores", "num_tasks", "trace_size",
			"failed_tasks", "compute_time", "io_time_input", "io_time_output",
			"compute_io_ratio", "power", "completion_date",
		}
	default:
		return []string{
			"run_id", "host_name", "core_count", "per_task_core_allocations",
			"total_tasks", "avg_task_duration", "failed_tasks", "compute_time",
			"io_input_time", "io_output_time", "compute_io_ratio",
			"total_bytes_read", "total_bytes_written", "completion_date",
			"power_watts",
		}
	}
}

// HostMetadata is the static and derived per-host input to a report row.
type HostMetadata struct {
	Name         string
	CoreCount    int
	EnergyJoules float64
}

// Row is one host's aggregate metrics for one run.
type Row struct {
	RunID           string
	HostName        string
	CoreCount       int
	CoreAllocations []int
	WorkflowTasks   int
	TraceTasks      int
	FailedTasks     int
	AvgTaskDuration analyze.Value
	ComputeTime     analyze.Value
	IOInputTime     analyze.Value
	IOOutputTime    analyze.Value
	ComputeIORatio  analyze.Value
	TotalBytesRead  int64
	TotalBytesWrote int64
	CompletionDate  float64
	PowerWatts      analyze.Value
}

// Cells serializes the row for the schema. Ordering matches Header.
func (r Row) Cells(s Schema) []string {
	fixed := func(v float64) string {
		return strconv.FormatFloat(v, 'f', Precision, 64)
	}
	switch s {
	case SchemaLegacy:
		return []string{
			r.RunID,
			r.HostName,
			strconv.Itoa(r.CoreCount),
			strconv.Itoa(r.WorkflowTasks),
			strconv.Itoa(r.TraceTasks),
			strconv.Itoa(r.FailedTasks),
			r.ComputeTime.Format(Precision),
			r.IOInputTime.Format(Precision),
			r.IOOutputTime.Format(Precision),
			r.ComputeIORatio.Format(Precision),
			r.PowerWatts.Format(Precision),
			fixed(r.CompletionDate),
		}
	default:
		return []string{
			r.RunID,
			r.HostName,
			strconv.Itoa(r.CoreCount),
			joinCores(r.CoreAllocations),
			strconv.Itoa(r.TraceTasks),
			r.AvgTaskDuration.Format(Precision),
			strconv.Itoa(r.FailedTasks),
			r.ComputeTime.Format(Precision),
			r.IOInputTime.Format(Precision),
			r.IOOutputTime.Format(Precision),
			r.ComputeIORatio.Format(Precision),
			strconv.FormatInt(r.TotalBytesRead, 10),
			strconv.FormatInt(r.TotalBytesWrote, 10),
			fixed(r.CompletionDate),
			r.PowerWatts.Format(Precision),
		}
	}
}

// RunID derives the human-traceable run label. Uniqueness across runs is
// neither guaranteed nor required.
func RunID(prefix string, taskCount int) string {
	if prefix == "" {
		prefix = "extk-"
	}
	return prefix + strconv.Itoa(taskCount)
}

// BuildRows produces one row per host, in host-list order.
func BuildRows(runID string, workflowTasks int, m analyze.Metrics, hosts []HostMetadata) []Row {
	rows := make([]Row, 0, len(hosts))
	for _, h := range hosts {
		rows = append(rows, Row{
			RunID:           runID,
			HostName:        h.Name,
			CoreCount:       h.CoreCount,
			CoreAllocations: m.CoreAllocations,
			WorkflowTasks:   workflowTasks,
			TraceTasks:      m.TotalTasks,
			FailedTasks:     m.FailedTasks,
			AvgTaskDuration: m.AvgTaskDuration,
			ComputeTime:     m.AvgComputeTime,
			IOInputTime:     m.AvgIOInputTime,
			IOOutputTime:    m.AvgIOOutputTime,
			ComputeIORatio:  m.AvgComputeToIORatio,
			TotalBytesRead:  m.TotalBytesRead,
			TotalBytesWrote: m.TotalBytesWritten,
			CompletionDate:  m.CompletionDate,
			PowerWatts:      analyze.PowerWatts(h.EnergyJoules, m.CompletionDate),
		})
	}
	return rows
}

func joinCores(cores []int) string {
	parts := make([]string, 0, len(cores))
	for _, c := range cores {
		parts = append(parts, strconv.Itoa(c))
	}
	return strings.Join(parts, "|")
}
