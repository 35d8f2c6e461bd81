package metrics

import "sync"

// Snapshot is a point-in-time copy of in-memory counters.
type Snapshot struct {
	TotalTasks     int64
	MalformedTasks int64
	RetryAttempts  int64
	RowsAppended   int64
	ByStatus       map[string]int64
	RowsBySchema   map[string]int64
}

// InMemoryRecorder counts observations for summaries and tests.
type InMemoryRecorder struct {
	mu           sync.Mutex
	totalTasks   int64
	malformed    int64
	retries      int64
	rowsAppended int64
	byStatus     map[string]int64
	rowsBySchema map[string]int64
}

func NewInMemoryRecorder() *InMemoryRecorder {
	return &InMemoryRecorder{
		byStatus:     make(map[string]int64),
		rowsBySchema: make(map[string]int64),
	}
}

func (r *InMemoryRecorder) ObserveTask(status string, computeSeconds float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.totalTasks++
	r.byStatus[status]++
	if status == StatusMalformed {
		r.malformed++
	}
}

func (r *InMemoryRecorder) ObserveRetry() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retries++
}

func (r *InMemoryRecorder) ObserveAppend(schema string, rows int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rowsAppended += int64(rows)
	r.rowsBySchema[schema] += int64(rows)
}

func (r *InMemoryRecorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Snapshot{
		TotalTasks:     r.totalTasks,
		MalformedTasks: r.malformed,
		RetryAttempts:  r.retries,
		RowsAppended:   r.rowsAppended,
		ByStatus:       make(map[string]int64, len(r.byStatus)),
		RowsBySchema:   make(map[string]int64, len(r.rowsBySchema)),
	}
	for k, v := range r.byStatus {
		s.ByStatus[k] = v
	}
	for k, v := range r.rowsBySchema {
		s.RowsBySchema[k] = v
	}
	return s
}
