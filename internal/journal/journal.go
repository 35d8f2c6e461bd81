package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is one run-journal record: a single analyze or verify invocation.
type Event struct {
	ID        string `json:"id"`
	Timestamp string `json:"ts"`
	RunID     string `json:"run_id,omitempty"`
	Action    string `json:"action"`
	Resource  string `json:"resource"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// Logger appends JSONL journal records. A nil or pathless logger is disabled
// and drops writes silently.
type Logger struct {
	mu   sync.Mutex
	path string
}

func NewLogger(path string) *Logger {
	return &Logger{path: path}
}

func (l *Logger) Enabled() bool {
	return l != nil && l.path != ""
}

func (l *Logger) Write(runID, action, resource, status string, err error) error {
	if !l.Enabled() {
		return nil
	}

	ev := Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		RunID:     runID,
		Action:    action,
		Resource:  resource,
		Status:    status,
	}
	if err != nil {
		ev.Error = err.Error()
	}
	b, mErr := json.Marshal(ev)
	if mErr != nil {
		return fmt.Errorf("journal marshal: %w", mErr)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			return fmt.Errorf("journal mkdir: %w", mkErr)
		}
	}
	f, openErr := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if openErr != nil {
		return fmt.Errorf("journal open: %w", openErr)
	}
	defer func() { _ = f.Close() }()

	if _, wErr := f.Write(append(b, '\n')); wErr != nil {
		return fmt.Errorf("journal write: %w", wErr)
	}
	return nil
}
