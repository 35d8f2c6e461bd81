package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var ErrNoTasks = errors.New("workflow: tasks list is empty")

// Workflow is the parsed workflow description: the task graph the
// simulation executed.
type Workflow struct {
	Name  string `json:"name"`
	Tasks []Task `json:"tasks"`
}

// Task is one node of the workflow graph.
type Task struct {
	ID          string   `json:"id"`
	Flops       float64  `json:"flops"`
	Parents     []string `json:"parents,omitempty"`
	InputBytes  int64    `json:"input_bytes"`
	OutputBytes int64    `json:"output_bytes"`
}

// Load parses and validates a JSON workflow description.
func Load(path string) (Workflow, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Workflow{}, fmt.Errorf("workflow: read %q: %w", path, err)
	}

	var w Workflow
	if err := json.Unmarshal(b, &w); err != nil {
		return Workflow{}, fmt.Errorf("workflow: unmarshal %q: %w", path, err)
	}

	if err := Validate(w); err != nil {
		return Workflow{}, err
	}
	return w, nil
}

// Validate enforces structural correctness: unique task ids, known parents,
// non-negative sizes, and an acyclic graph.
func Validate(w Workflow) error {
	if len(w.Tasks) == 0 {
		return ErrNoTasks
	}

	ids := make(map[string]struct{}, len(w.Tasks))
	for _, t := range w.Tasks {
		if t.ID == "" {
			return errors.New("workflow: task id is empty")
		}
		if _, exists := ids[t.ID]; exists {
			return fmt.Errorf("workflow: duplicate task id %q", t.ID)
		}
		ids[t.ID] = struct{}{}

		if t.Flops < 0 {
			return fmt.Errorf("workflow: task %q has negative flops", t.ID)
		}
		if t.InputBytes < 0 || t.OutputBytes < 0 {
			return fmt.Errorf("workflow: task %q has negative byte sizes", t.ID)
		}
	}

	for _, t := range w.Tasks {
		for _, p := range t.Parents {
			if p == t.ID {
				return fmt.Errorf("workflow: task %q cannot depend on itself", t.ID)
			}
			if _, ok := ids[p]; !ok {
				return fmt.Errorf("workflow: task %q depends on unknown task %q", t.ID, p)
			}
		}
	}

	if _, err := OrderedTasks(w); err != nil {
		return err
	}
	return nil
}

// OrderedTasks returns a topological order of the task graph.
func OrderedTasks(w Workflow) ([]Task, error) {
	taskIndex := make(map[string]int, len(w.Tasks))
	for i, t := range w.Tasks {
		taskIndex[t.ID] = i
	}

	inDegree := make(map[string]int, len(w.Tasks))
	children := make(map[string][]string, len(w.Tasks))
	for _, t := range w.Tasks {
		if _, ok := inDegree[t.ID]; !ok {
			inDegree[t.ID] = 0
		}
		for _, p := range t.Parents {
			inDegree[t.ID]++
			children[p] = append(children[p], t.ID)
		}
	}

	queue := make([]string, 0, len(w.Tasks))
	for _, t := range w.Tasks {
		if inDegree[t.ID] == 0 {
			queue = append(queue, t.ID)
		}
	}

	orderedIDs := make([]string, 0, len(w.Tasks))
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		orderedIDs = append(orderedIDs, curr)

		for _, child := range children[curr] {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	if len(orderedIDs) != len(w.Tasks) {
		return nil, errors.New("workflow: cycle detected in task graph")
	}

	ordered := make([]Task, 0, len(w.Tasks))
	for _, id := range orderedIDs {
		ordered = append(ordered, w.Tasks[taskIndex[id]])
	}
	return ordered, nil
}
