package sim

// ExecutionRecord is one attempt's timing and byte data for a workflow task.
// Timestamps are simulation-clock seconds and non-decreasing within a record.
type ExecutionRecord struct {
	Attempt          int     `json:"attempt"`
	ReadInputStart   float64 `json:"read_input_start"`
	ReadInputEnd     float64 `json:"read_input_end"`
	ComputationStart float64 `json:"computation_start"`
	ComputationEnd   float64 `json:"computation_end"`
	WriteOutputStart float64 `json:"write_output_start"`
	WriteOutputEnd   float64 `json:"write_output_end"`
	BytesRead        int64   `json:"bytes_read"`
	BytesWritten     int64   `json:"bytes_written"`
	CoresAllocated   int     `json:"cores_allocated"`
}

// TaskHistory holds every execution attempt recorded for one task.
// More than one record means the task needed at least one retry.
type TaskHistory struct {
	TaskID  string            `json:"task_id"`
	Records []ExecutionRecord `json:"records"`
}

// HostEnergy is the cumulative energy a host consumed over the run.
type HostEnergy struct {
	Name         string  `json:"name"`
	EnergyJoules float64 `json:"energy_joules"`
}

// RunTrace is the full completed-task trace one simulation run produced.
// CompletedAt is the simulator's own wall-clock completion date, used as the
// completion fallback when the trace carries no tasks.
type RunTrace struct {
	Simulation  string        `json:"simulation"`
	CompletedAt float64       `json:"completed_at"`
	Hosts       []HostEnergy  `json:"hosts"`
	Tasks       []TaskHistory `json:"tasks"`
}

// IOInputTime is the seconds the record spent reading task input.
func (r ExecutionRecord) IOInputTime() float64 {
	return r.ReadInputEnd - r.ReadInputStart
}

// IOOutputTime is the seconds the record spent writing task output.
func (r ExecutionRecord) IOOutputTime() float64 {
	return r.WriteOutputEnd - r.WriteOutputStart
}

// ComputeTime is the seconds the record spent computing.
func (r ExecutionRecord) ComputeTime() float64 {
	return r.ComputationEnd - r.ComputationStart
}

// Failed reports whether the task needed a retry before completing.
func (t TaskHistory) Failed() bool {
	return len(t.Records) > 1
}

// FinalRecord returns the highest-attempt record for the task. Earlier
// attempts are failed executions and never feed timing or byte aggregates.
func (t TaskHistory) FinalRecord() (ExecutionRecord, bool) {
	if len(t.Records) == 0 {
		return ExecutionRecord{}, false
	}
	final := t.Records[0]
	for _, r := range t.Records[1:] {
		if r.Attempt >= final.Attempt {
			final = r
		}
	}
	return final, true
}
