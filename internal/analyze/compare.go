package analyze

import (
	"fmt"
	"strconv"
)

// Divergence describes one field where two metric sets disagree.
type Divergence struct {
	Field    string
	Expected string
	Actual   string
}

// Compare returns every field-level difference between two metric sets.
// Aggregation is deterministic, so re-running it on the same trace must
// produce an empty divergence list.
func Compare(expected Metrics, actual Metrics) []Divergence {
	out := make([]Divergence, 0)

	addInt := func(field string, e, a int) {
		if e != a {
			out = append(out, Divergence{Field: field, Expected: strconv.Itoa(e), Actual: strconv.Itoa(a)})
		}
	}
	addInt64 := func(field string, e, a int64) {
		if e != a {
			out = append(out, Divergence{Field: field, Expected: strconv.FormatInt(e, 10), Actual: strconv.FormatInt(a, 10)})
		}
	}
	addFloat := func(field string, e, a float64) {
		if e != a {
			out = append(out, Divergence{
				Field:    field,
				Expected: strconv.FormatFloat(e, 'g', -1, 64),
				Actual:   strconv.FormatFloat(a, 'g', -1, 64),
			})
		}
	}
	addValue := func(field string, e, a Value) {
		if e != a {
			out = append(out, Divergence{Field: field, Expected: e.String(), Actual: a.String()})
		}
	}

	addInt("total_tasks", expected.TotalTasks, actual.TotalTasks)
	addInt("failed_tasks", expected.FailedTasks, actual.FailedTasks)
	addInt("malformed_tasks", expected.MalformedTasks, actual.MalformedTasks)
	addFloat("total_compute_time", expected.TotalComputeTime, actual.TotalComputeTime)
	addValue("avg_compute_time", expected.AvgComputeTime, actual.AvgComputeTime)
	addValue("avg_io_input_time", expected.AvgIOInputTime, actual.AvgIOInputTime)
	addValue("avg_io_output_time", expected.AvgIOOutputTime, actual.AvgIOOutputTime)
	addValue("avg_compute_to_io_ratio", expected.AvgComputeToIORatio, actual.AvgComputeToIORatio)
	addInt64("total_bytes_read", expected.TotalBytesRead, actual.TotalBytesRead)
	addInt64("total_bytes_written", expected.TotalBytesWritten, actual.TotalBytesWritten)
	addFloat("completion_date", expected.CompletionDate, actual.CompletionDate)
	addValue("avg_task_duration", expected.AvgTaskDuration, actual.AvgTaskDuration)

	if allocs(expected.CoreAllocations) != allocs(actual.CoreAllocations) {
		out = append(out, Divergence{
			Field:    "core_allocations",
			Expected: allocs(expected.CoreAllocations),
			Actual:   allocs(actual.CoreAllocations),
		})
	}
	return out
}

func FormatDivergence(div []Divergence) string {
	if len(div) == 0 {
		return "no divergence detected"
	}
	msg := "metrics divergence detected:\n"
	for _, d := range div {
		msg += fmt.Sprintf("- field=%s expected=%q actual=%q\n", d.Field, d.Expected, d.Actual)
	}
	return msg
}

func allocs(cores []int) string {
	s := ""
	for i, c := range cores {
		if i > 0 {
			s += "|"
		}
		s += strconv.Itoa(c)
	}
	return s
}
