package report

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/your-org/wfreport/internal/analyze"
)

func sampleRow(runID, host string) Row {
	return Row{
		RunID:           runID,
		HostName:        host,
		CoreCount:       4,
		CoreAllocations: []int{1, 4},
		WorkflowTasks:   2,
		TraceTasks:      2,
		FailedTasks:     1,
		AvgTaskDuration: analyze.Defined(3.5),
		ComputeTime:     analyze.Defined(4),
		IOInputTime:     analyze.Defined(2),
		IOOutputTime:    analyze.Defined(0),
		ComputeIORatio:  analyze.Defined(2),
		TotalBytesRead:  4096,
		TotalBytesWrote: 2048,
		CompletionDate:  10,
		PowerWatts:      analyze.Defined(4),
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse report csv: %v", err)
	}
	return recs
}

func TestAppendRunWritesHeaderExactlyOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")

	for i := 0; i < 3; i++ {
		rows := []Row{sampleRow("extk-2", "h1"), sampleRow("extk-2", "h2")}
		if err := AppendRun(path, SchemaExtended, rows); err != nil {
			t.Fatalf("append run %d: %v", i, err)
		}
	}

	recs := readCSV(t, path)
	if len(recs) != 1+3*2 {
		t.Fatalf("expected 1 header + 6 rows, got %d records", len(recs))
	}
	headerLines := 0
	for _, rec := range recs {
		if rec[0] == "run_id" {
			headerLines++
		}
	}
	if headerLines != 1 {
		t.Fatalf("expected header exactly once, found %d", headerLines)
	}
}

func TestOpenRejectsForeignHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	if err := os.WriteFile(path, []byte("something,else\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	_, err := Open(path, SchemaExtended)
	if err == nil {
		t.Fatal("expected header mismatch error")
	}
	var pe *PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PersistenceError, got %T: %v", err, err)
	}
}

func TestAppendNeverTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	if err := AppendRun(path, SchemaExtended, []Row{sampleRow("extk-1", "h1")}); err != nil {
		t.Fatalf("first append: %v", err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}

	if err := AppendRun(path, SchemaExtended, []Row{sampleRow("extk-9", "h1")}); err != nil {
		t.Fatalf("second append: %v", err)
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("re-read report: %v", err)
	}
	if !strings.HasPrefix(string(after), string(before)) {
		t.Fatal("append must preserve prior contents byte for byte")
	}
}

func TestCellsFixedPrecisionAndUndefined(t *testing.T) {
	r := sampleRow("extk-2", "h1")
	r.ComputeIORatio = analyze.Undefined()
	r.PowerWatts = analyze.Undefined()

	cells := r.Cells(SchemaExtended)
	header := SchemaExtended.Header()
	if len(cells) != len(header) {
		t.Fatalf("cells/header length mismatch: %d vs %d", len(cells), len(header))
	}

	byName := map[string]string{}
	for i, h := range header {
		byName[h] = cells[i]
	}
	if byName["compute_io_ratio"] != analyze.UndefinedMarker {
		t.Fatalf("expected undefined marker, got %q", byName["compute_io_ratio"])
	}
	if byName["power_watts"] != analyze.UndefinedMarker {
		t.Fatalf("expected undefined marker, got %q", byName["power_watts"])
	}
	if byName["compute_time"] != "4.00" {
		t.Fatalf("expected fixed precision 4.00, got %q", byName["compute_time"])
	}
	if byName["completion_date"] != "10.00" {
		t.Fatalf("expected fixed precision 10.00, got %q", byName["completion_date"])
	}
	if byName["per_task_core_allocations"] != "1|4" {
		t.Fatalf("unexpected core allocations cell: %q", byName["per_task_core_allocations"])
	}
}

func TestLegacySchemaCells(t *testing.T) {
	r := sampleRow("extk-2", "h1")
	cells := r.Cells(SchemaLegacy)
	header := SchemaLegacy.Header()
	if len(cells) != len(header) {
		t.Fatalf("cells/header length mismatch: %d vs %d", len(cells), len(header))
	}
	if cells[0] != "extk-2" || cells[1] != "h1" {
		t.Fatalf("unexpected identity cells: %v", cells[:2])
	}
}

func TestSchemasAreIsolatedPerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	if err := AppendRun(path, SchemaLegacy, []Row{sampleRow("extk-1", "h1")}); err != nil {
		t.Fatalf("legacy append: %v", err)
	}
	if err := AppendRun(path, SchemaExtended, []Row{sampleRow("extk-1", "h1")}); err == nil {
		t.Fatal("expected schema mismatch against legacy-headed file")
	}
}

func TestParseSchema(t *testing.T) {
	if s, err := ParseSchema(""); err != nil || s != SchemaExtended {
		t.Fatalf("empty schema must default to extended: %v %v", s, err)
	}
	if s, err := ParseSchema("Legacy"); err != nil || s != SchemaLegacy {
		t.Fatalf("expected legacy, got %v %v", s, err)
	}
	if _, err := ParseSchema("v3"); err == nil {
		t.Fatal("expected error for unknown schema")
	}
}

func TestRunID(t *testing.T) {
	if got := RunID("", 5); got != "extk-5" {
		t.Fatalf("expected default prefix, got %q", got)
	}
	if got := RunID("sim-", 3); got != "sim-3" {
		t.Fatalf("expected custom prefix, got %q", got)
	}
}

func TestBuildRowsOnePerHost(t *testing.T) {
	m := analyze.Metrics{
		TotalTasks:     2,
		CompletionDate: 10,
	}
	hosts := []HostMetadata{
		{Name: "h1", CoreCount: 4, EnergyJoules: 40},
		{Name: "h2", CoreCount: 8, EnergyJoules: 0},
	}
	rows := BuildRows("extk-2", 2, m, hosts)
	if len(rows) != 2 {
		t.Fatalf("expected one row per host, got %d", len(rows))
	}
	if rows[0].HostName != "h1" || rows[1].HostName != "h2" {
		t.Fatalf("rows must follow host order: %v %v", rows[0].HostName, rows[1].HostName)
	}
	if got, ok := rows[0].PowerWatts.Float(); !ok || got != 4 {
		t.Fatalf("expected 4 W for h1, got %v %v", got, ok)
	}
	if got, ok := rows[1].PowerWatts.Float(); !ok || got != 0 {
		t.Fatalf("expected 0 W for energy-less host, got %v %v", got, ok)
	}
}
