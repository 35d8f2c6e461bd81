package analyze

import (
	"testing"

	"github.com/your-org/wfreport/internal/sim"
)

func record(attempt int, ioInStart, ioInEnd, compStart, compEnd, ioOutStart, ioOutEnd float64) sim.ExecutionRecord {
	return sim.ExecutionRecord{
		Attempt:          attempt,
		ReadInputStart:   ioInStart,
		ReadInputEnd:     ioInEnd,
		ComputationStart: compStart,
		ComputationEnd:   compEnd,
		WriteOutputStart: ioOutStart,
		WriteOutputEnd:   ioOutEnd,
		BytesRead:        1000,
		BytesWritten:     500,
		CoresAllocated:   4,
	}
}

func mustFloat(t *testing.T, v Value) float64 {
	t.Helper()
	f, ok := v.Float()
	if !ok {
		t.Fatalf("expected defined value, got %s", v)
	}
	return f
}

func TestAggregateSingleAttemptTask(t *testing.T) {
	tr := sim.RunTrace{Tasks: []sim.TaskHistory{
		{TaskID: "t1", Records: []sim.ExecutionRecord{record(1, 0, 1, 1, 3, 3, 4)}},
	}}
	m := Aggregate(FromTrace(tr), Options{})

	if m.TotalTasks != 1 {
		t.Fatalf("expected 1 task, got %d", m.TotalTasks)
	}
	if m.FailedTasks != 0 {
		t.Fatalf("single-attempt task must not be failed, got %d", m.FailedTasks)
	}
	if got := mustFloat(t, m.AvgComputeTime); got != 2 {
		t.Fatalf("expected avg compute 2, got %g", got)
	}
}

func TestAggregateRetriedTaskUsesFinalAttemptOnly(t *testing.T) {
	tr := sim.RunTrace{Tasks: []sim.TaskHistory{
		{TaskID: "t1", Records: []sim.ExecutionRecord{
			record(1, 0, 5, 5, 50, 50, 60),
			record(2, 60, 61, 61, 63, 63, 64),
		}},
	}}
	m := Aggregate(FromTrace(tr), Options{})

	if m.FailedTasks != 1 {
		t.Fatalf("retried task must count as 1 failure, got %d", m.FailedTasks)
	}
	if got := mustFloat(t, m.AvgComputeTime); got != 2 {
		t.Fatalf("expected compute time from final attempt only (2s), got %g", got)
	}
	if m.TotalBytesRead != 1000 || m.TotalBytesWritten != 500 {
		t.Fatalf("byte totals must come from final attempt only: read=%d written=%d",
			m.TotalBytesRead, m.TotalBytesWritten)
	}
	if m.CompletionDate != 64 {
		t.Fatalf("expected completion 64, got %g", m.CompletionDate)
	}
}

func TestAggregateByteTotalsSumAcrossTasks(t *testing.T) {
	r1 := record(1, 0, 1, 1, 2, 2, 3)
	r1.BytesRead, r1.BytesWritten = 100, 10
	r2 := record(1, 3, 4, 4, 5, 5, 6)
	r2.BytesRead, r2.BytesWritten = 200, 20
	tr := sim.RunTrace{Tasks: []sim.TaskHistory{
		{TaskID: "a", Records: []sim.ExecutionRecord{r1}},
		{TaskID: "b", Records: []sim.ExecutionRecord{r2}},
	}}
	m := Aggregate(FromTrace(tr), Options{})

	if m.TotalBytesRead != 300 || m.TotalBytesWritten != 30 {
		t.Fatalf("expected totals 300/30, got %d/%d", m.TotalBytesRead, m.TotalBytesWritten)
	}
}

func TestAggregateRatioAndPower(t *testing.T) {
	// 2s input IO, no output IO, 4s compute, completion at 10s.
	tr := sim.RunTrace{Tasks: []sim.TaskHistory{
		{TaskID: "t1", Records: []sim.ExecutionRecord{record(1, 0, 2, 2, 6, 10, 10)}},
	}}
	m := Aggregate(FromTrace(tr), Options{})

	if got := mustFloat(t, m.AvgComputeToIORatio); got != 2 {
		t.Fatalf("expected ratio 2.0, got %g", got)
	}
	if m.CompletionDate != 10 {
		t.Fatalf("expected completion 10, got %g", m.CompletionDate)
	}
	if got := mustFloat(t, PowerWatts(40, m.CompletionDate)); got != 4 {
		t.Fatalf("expected power 4.0 W, got %g", got)
	}
}

func TestAggregateZeroIOTaskHasUndefinedRatio(t *testing.T) {
	tr := sim.RunTrace{Tasks: []sim.TaskHistory{
		{TaskID: "t1", Records: []sim.ExecutionRecord{record(1, 0, 0, 0, 4, 4, 4)}},
	}}
	m := Aggregate(FromTrace(tr), Options{})

	if m.AvgComputeToIORatio.Defined() {
		t.Fatalf("zero-IO run must leave the ratio undefined, got %s", m.AvgComputeToIORatio)
	}
	if got := mustFloat(t, m.AvgComputeTime); got != 4 {
		t.Fatalf("compute average must still be defined: got %g", got)
	}
}

func TestAggregateZeroIOTasksExcludedFromRatio(t *testing.T) {
	tr := sim.RunTrace{Tasks: []sim.TaskHistory{
		{TaskID: "io", Records: []sim.ExecutionRecord{record(1, 0, 2, 2, 6, 6, 6)}},
		{TaskID: "pure", Records: []sim.ExecutionRecord{record(1, 6, 6, 6, 10, 10, 10)}},
	}}
	m := Aggregate(FromTrace(tr), Options{})

	// Only the IO task contributes: 4s compute over 2s IO.
	if got := mustFloat(t, m.AvgComputeToIORatio); got != 2 {
		t.Fatalf("expected ratio 2.0 from the single IO task, got %g", got)
	}
}

func TestAggregateEmptyTraceUsesFallbackCompletion(t *testing.T) {
	m := Aggregate(nil, Options{FallbackCompletion: 42.5})

	if m.TotalTasks != 0 || m.FailedTasks != 0 {
		t.Fatalf("expected zero counts, got %+v", m)
	}
	if m.CompletionDate != 42.5 {
		t.Fatalf("expected fallback completion 42.5, got %g", m.CompletionDate)
	}
	for name, v := range map[string]Value{
		"avg_compute":  m.AvgComputeTime,
		"avg_io_in":    m.AvgIOInputTime,
		"avg_io_out":   m.AvgIOOutputTime,
		"ratio":        m.AvgComputeToIORatio,
		"avg_duration": m.AvgTaskDuration,
	} {
		if v.Defined() {
			t.Fatalf("expected %s undefined for empty trace, got %s", name, v)
		}
	}
}

func TestAggregateMalformedTaskIsolated(t *testing.T) {
	bad := record(1, 0, 1, 5, 2, 5, 6) // computation ends before it starts
	tr := sim.RunTrace{Tasks: []sim.TaskHistory{
		{TaskID: "ok", Records: []sim.ExecutionRecord{record(1, 0, 1, 1, 3, 3, 4)}},
		{TaskID: "bad", Records: []sim.ExecutionRecord{bad}},
	}}
	m := Aggregate(FromTrace(tr), Options{})

	if m.TotalTasks != 2 {
		t.Fatalf("malformed task still counts toward total, got %d", m.TotalTasks)
	}
	if m.MalformedTasks != 1 {
		t.Fatalf("expected 1 malformed task, got %d", m.MalformedTasks)
	}
	if got := mustFloat(t, m.AvgComputeTime); got != 2 {
		t.Fatalf("malformed task must not feed averages: got %g", got)
	}
	if m.TotalBytesRead != 1000 {
		t.Fatalf("malformed task must not feed byte totals: got %d", m.TotalBytesRead)
	}
}

func TestAggregateEmptyHistoryCountsMalformed(t *testing.T) {
	tr := sim.RunTrace{Tasks: []sim.TaskHistory{{TaskID: "hollow"}}}
	m := Aggregate(FromTrace(tr), Options{FallbackCompletion: 9})

	if m.MalformedTasks != 1 {
		t.Fatalf("expected empty history to count as malformed, got %d", m.MalformedTasks)
	}
	if m.CompletionDate != 9 {
		t.Fatalf("expected fallback completion, got %g", m.CompletionDate)
	}
}

func TestAggregateDeterministic(t *testing.T) {
	tr := sim.RunTrace{Tasks: []sim.TaskHistory{
		{TaskID: "a", Records: []sim.ExecutionRecord{record(1, 0, 1, 1, 3, 3, 4)}},
		{TaskID: "b", Records: []sim.ExecutionRecord{record(1, 4, 5, 5, 9, 9, 11), record(2, 11, 12, 12, 14, 14, 15)}},
	}}
	opts := Options{FallbackCompletion: 15}

	first := Aggregate(FromTrace(tr), opts)
	second := Aggregate(FromTrace(tr), opts)
	if div := Compare(first, second); len(div) != 0 {
		t.Fatalf("re-aggregation diverged: %s", FormatDivergence(div))
	}
}

func TestPowerUndefinedAtZeroCompletion(t *testing.T) {
	if PowerWatts(100, 0).Defined() {
		t.Fatal("power must be undefined when completion date is zero")
	}
}
