package sim

import (
	"errors"
	"fmt"
)

var (
	ErrNegativeDuration = errors.New("trace: record interval ends before it starts")
	ErrNegativeBytes    = errors.New("trace: record has negative byte count")
	ErrNoCores          = errors.New("trace: record has no cores allocated")
)

// ValidateRecord rejects records that would yield negative durations or byte
// totals downstream. Callers isolate failures per task: one malformed record
// must not abort aggregation of the rest of the trace.
func ValidateRecord(r ExecutionRecord) error {
	intervals := []struct {
		name       string
		start, end float64
	}{
		{"read_input", r.ReadInputStart, r.ReadInputEnd},
		{"computation", r.ComputationStart, r.ComputationEnd},
		{"write_output", r.WriteOutputStart, r.WriteOutputEnd},
	}
	for _, iv := range intervals {
		if iv.end < iv.start {
			return fmt.Errorf("%w: %s %.6f -> %.6f", ErrNegativeDuration, iv.name, iv.start, iv.end)
		}
	}
	if r.BytesRead < 0 || r.BytesWritten < 0 {
		return fmt.Errorf("%w: read=%d written=%d", ErrNegativeBytes, r.BytesRead, r.BytesWritten)
	}
	if r.CoresAllocated <= 0 {
		return fmt.Errorf("%w: cores=%d", ErrNoCores, r.CoresAllocated)
	}
	return nil
}
