package report

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// History mirrors appended report rows into SQLite so past runs can be
// queried without re-parsing the CSV artifact. The CSV file stays the
// authoritative report; the history is a convenience index.
type History struct {
	db *sql.DB
}

func OpenHistory(path string) (*History, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("history: open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: ping sqlite: %w", err)
	}
	return &History{db: db}, nil
}

func (h *History) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS report_rows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		schema TEXT NOT NULL,
		host_name TEXT NOT NULL,
		core_count INTEGER NOT NULL,
		trace_tasks INTEGER NOT NULL,
		failed_tasks INTEGER NOT NULL,
		total_bytes_read INTEGER NOT NULL,
		total_bytes_written INTEGER NOT NULL,
		completion_date REAL NOT NULL,
		power_watts REAL,
		recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_report_rows_run_id ON report_rows(run_id);
	`
	if _, err := h.db.Exec(schema); err != nil {
		return fmt.Errorf("history: migrate: %w", err)
	}
	return nil
}

func (h *History) Close() error {
	return h.db.Close()
}

// InsertRun records one run's rows. Power is stored as NULL when undefined.
func (h *History) InsertRun(schema Schema, rows []Row) error {
	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("history: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO report_rows (
			run_id, schema, host_name, core_count, trace_tasks, failed_tasks,
			total_bytes_read, total_bytes_written, completion_date, power_watts
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("history: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		var power sql.NullFloat64
		if v, ok := r.PowerWatts.Float(); ok {
			power = sql.NullFloat64{Float64: v, Valid: true}
		}
		if _, err := stmt.Exec(
			r.RunID, string(schema), r.HostName, r.CoreCount, r.TraceTasks,
			r.FailedTasks, r.TotalBytesRead, r.TotalBytesWrote,
			r.CompletionDate, power,
		); err != nil {
			return fmt.Errorf("history: insert row for host %q: %w", r.HostName, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("history: commit: %w", err)
	}
	return nil
}

// RunSummary is one persisted host row, as returned by queries.
type RunSummary struct {
	RunID          string    `json:"run_id"`
	HostName       string    `json:"host_name"`
	CoreCount      int       `json:"core_count"`
	TraceTasks     int       `json:"trace_tasks"`
	FailedTasks    int       `json:"failed_tasks"`
	CompletionDate float64   `json:"completion_date"`
	PowerWatts     *float64  `json:"power_watts,omitempty"`
	RecordedAt     time.Time `json:"recorded_at"`
}

// RecentRows returns the newest rows first, capped at limit.
func (h *History) RecentRows(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := h.db.Query(`
		SELECT run_id, host_name, core_count, trace_tasks, failed_tasks,
		       completion_date, power_watts, recorded_at
		FROM report_rows
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query recent rows: %w", err)
	}
	defer rows.Close()

	out := make([]RunSummary, 0, limit)
	for rows.Next() {
		var (
			s     RunSummary
			power sql.NullFloat64
		)
		if err := rows.Scan(
			&s.RunID, &s.HostName, &s.CoreCount, &s.TraceTasks,
			&s.FailedTasks, &s.CompletionDate, &power, &s.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("history: scan row: %w", err)
		}
		if power.Valid {
			v := power.Float64
			s.PowerWatts = &v
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate rows: %w", err)
	}
	return out, nil
}
