package analyze

import (
	"errors"

	"github.com/your-org/wfreport/internal/sim"
)

var errEmptyHistory = errors.New("trace: task has no execution records")

// TaskInput is one task reduced to what aggregation needs: its final
// attempt, whether earlier attempts existed, and whether that final record
// survived validation.
type TaskInput struct {
	ID     string
	Failed bool
	Final  sim.ExecutionRecord
	Err    error
}

// FromTrace projects a run trace into aggregation inputs, validating each
// task's final record. Validation failures stay attached to their task so
// Aggregate can isolate and count them.
func FromTrace(tr sim.RunTrace) []TaskInput {
	tasks := make([]TaskInput, 0, len(tr.Tasks))
	for _, th := range tr.Tasks {
		in := TaskInput{ID: th.TaskID, Failed: th.Failed()}
		final, ok := th.FinalRecord()
		if !ok {
			in.Err = errEmptyHistory
		} else {
			in.Final = final
			in.Err = sim.ValidateRecord(final)
		}
		tasks = append(tasks, in)
	}
	return tasks
}
