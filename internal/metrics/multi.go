package metrics

// MultiRecorder fans out observations to multiple recorders.
type MultiRecorder struct {
	recorders []Recorder
}

func NewMultiRecorder(recorders ...Recorder) *MultiRecorder {
	nonNil := make([]Recorder, 0, len(recorders))
	for _, r := range recorders {
		if r != nil {
			nonNil = append(nonNil, r)
		}
	}
	return &MultiRecorder{recorders: nonNil}
}

func (m *MultiRecorder) ObserveTask(status string, computeSeconds float64) {
	for _, r := range m.recorders {
		r.ObserveTask(status, computeSeconds)
	}
}

func (m *MultiRecorder) ObserveRetry() {
	for _, r := range m.recorders {
		r.ObserveRetry()
	}
}

func (m *MultiRecorder) ObserveAppend(schema string, rows int) {
	for _, r := range m.recorders {
		r.ObserveAppend(schema, rows)
	}
}
