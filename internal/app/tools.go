package app

import (
	"fmt"
	"io"

	"github.com/your-org/wfreport/internal/analyze"
	"github.com/your-org/wfreport/internal/config"
	"github.com/your-org/wfreport/internal/journal"
	"github.com/your-org/wfreport/internal/scaffold"
	"github.com/your-org/wfreport/internal/sim"
)

// VerifyMetrics re-aggregates a saved trace and compares the result against
// a previously persisted metrics artifact. Aggregation is deterministic, so
// any divergence means the trace or the artifact changed.
func VerifyMetrics(tracePath string, metricsPath string, out io.Writer) (retErr error) {
	settings := config.FromEnv()
	logger := journal.NewLogger(settings.JournalPath)
	defer func() {
		status := "success"
		if retErr != nil {
			status = "error"
		}
		_ = logger.Write("", "verify", tracePath, status, retErr)
	}()

	tr, err := sim.LoadFromFile(tracePath)
	if err != nil {
		return fmt.Errorf("load trace: %w", err)
	}
	expected, err := analyze.LoadFromFile(metricsPath)
	if err != nil {
		return fmt.Errorf("load metrics: %w", err)
	}

	actual := analyze.Aggregate(analyze.FromTrace(tr), analyze.Options{FallbackCompletion: tr.CompletedAt})
	div := analyze.Compare(expected, actual)
	_, _ = fmt.Fprintln(out, analyze.FormatDivergence(div))
	if len(div) > 0 {
		return fmt.Errorf("metrics divergence found: %d field(s)", len(div))
	}
	return nil
}

// ExportJournal converts a JSONL run journal into CSV.
func ExportJournal(inputPath string, outputPath string, out io.Writer) error {
	if err := journal.ExportJSONLToCSV(inputPath, outputPath); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "journal export complete: %s -> %s\n", inputPath, outputPath)
	return nil
}

// ScaffoldSample generates example platform/workflow/trace inputs.
func ScaffoldSample(targetDir string, name string, out io.Writer) error {
	if err := scaffold.Generate(targetDir, name); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "sample inputs generated at %s\n", targetDir)
	return nil
}
