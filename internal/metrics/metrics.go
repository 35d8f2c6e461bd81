package metrics

// Recorder defines minimal metric hooks for trace analysis instrumentation.
type Recorder interface {
	// ObserveTask records one task's final outcome and its simulated
	// compute seconds.
	ObserveTask(status string, computeSeconds float64)
	// ObserveRetry records one failed attempt preceding a task's final record.
	ObserveRetry()
	// ObserveAppend records rows appended to a report file.
	ObserveAppend(schema string, rows int)
}

// Task outcome labels used by recorders.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusMalformed = "malformed"
)

// NoopRecorder drops every observation.
type NoopRecorder struct{}

func (NoopRecorder) ObserveTask(string, float64) {}
func (NoopRecorder) ObserveRetry()               {}
func (NoopRecorder) ObserveAppend(string, int)   {}
