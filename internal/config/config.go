package config

import (
	"os"
	"strings"

	"github.com/your-org/wfreport/internal/report"
)

// Settings is the baseline runtime configuration, loaded from environment
// with safe defaults. Path settings left empty disable their feature.
type Settings struct {
	ReportPath    string
	Schema        report.Schema
	RunIDPrefix   string
	JournalPath   string
	HistoryDBPath string
	GraphOutput   string
	MetricsOutput string
}

// FromEnv loads runtime settings from environment with safe defaults.
func FromEnv() Settings {
	s := Settings{
		ReportPath:  "execution_output.csv",
		Schema:      report.SchemaExtended,
		RunIDPrefix: "extk-",
	}

	if v := strings.TrimSpace(os.Getenv("REPORT_PATH")); v != "" {
		s.ReportPath = v
	}
	if v := strings.TrimSpace(os.Getenv("REPORT_SCHEMA")); v != "" {
		if schema, err := report.ParseSchema(v); err == nil {
			s.Schema = schema
		}
	}
	if v := strings.TrimSpace(os.Getenv("RUN_ID_PREFIX")); v != "" {
		s.RunIDPrefix = v
	}
	s.JournalPath = strings.TrimSpace(os.Getenv("JOURNAL_PATH"))
	s.HistoryDBPath = strings.TrimSpace(os.Getenv("HISTORY_DB"))
	s.GraphOutput = strings.TrimSpace(os.Getenv("GRAPH_OUTPUT"))
	s.MetricsOutput = strings.TrimSpace(os.Getenv("METRICS_OUTPUT"))
	return s
}
