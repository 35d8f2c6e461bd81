package workflow

import (
	"encoding/json"
	"fmt"
	"os"
)

type graphNode struct {
	ID      string   `json:"id"`
	Parents []string `json:"parents,omitempty"`
}

type graphDump struct {
	Workflow string      `json:"workflow"`
	Nodes    []graphNode `json:"nodes"`
}

// SaveGraphJSON dumps the task dependency graph for external visualization.
func SaveGraphJSON(path string, w Workflow) error {
	dump := graphDump{Workflow: w.Name, Nodes: make([]graphNode, 0, len(w.Tasks))}
	for _, t := range w.Tasks {
		dump.Nodes = append(dump.Nodes, graphNode{ID: t.ID, Parents: t.Parents})
	}

	b, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return fmt.Errorf("workflow: marshal graph: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("workflow: write graph %q: %w", path, err)
	}
	return nil
}
