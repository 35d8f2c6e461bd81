package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/your-org/wfreport/internal/sim"
)

// Generate creates a sample platform/workflow/trace triple in targetDir,
// ready for a smoke-test analyze run.
func Generate(targetDir string, name string) error {
	if strings.TrimSpace(targetDir) == "" {
		return fmt.Errorf("target directory is empty")
	}
	if strings.TrimSpace(name) == "" {
		name = "sample"
	}

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return fmt.Errorf("mkdir target: %w", err)
	}

	platform := fmt.Sprintf(`platform: %s
hosts:
  - name: WMSHost
    cores: 4
  - name: BatchNode1
    cores: 8
  - name: CloudNode1
    cores: 8
`, name)

	workflow := fmt.Sprintf(`{
  "name": "%s",
  "tasks": [
    {"id": "stage_in", "flops": 1e9, "input_bytes": 4096, "output_bytes": 4096},
    {"id": "process", "flops": 1e11, "parents": ["stage_in"], "input_bytes": 4096, "output_bytes": 8192},
    {"id": "stage_out", "flops": 1e9, "parents": ["process"], "input_bytes": 8192, "output_bytes": 8192}
  ]
}
`, name)

	trace := sim.RunTrace{
		Simulation:  name,
		CompletedAt: 42.5,
		Hosts: []sim.HostEnergy{
			{Name: "WMSHost", EnergyJoules: 120},
			{Name: "BatchNode1", EnergyJoules: 850},
			{Name: "CloudNode1", EnergyJoules: 640},
		},
		Tasks: []sim.TaskHistory{
			{
				TaskID: "stage_in",
				Records: []sim.ExecutionRecord{
					{Attempt: 1, ReadInputStart: 0, ReadInputEnd: 1.5, ComputationStart: 1.5, ComputationEnd: 3, WriteOutputStart: 3, WriteOutputEnd: 4, BytesRead: 4096, BytesWritten: 4096, CoresAllocated: 1},
				},
			},
			{
				TaskID: "process",
				Records: []sim.ExecutionRecord{
					{Attempt: 1, ReadInputStart: 4, ReadInputEnd: 5, ComputationStart: 5, ComputationEnd: 12, WriteOutputStart: 12, WriteOutputEnd: 13, BytesRead: 4096, BytesWritten: 0, CoresAllocated: 8},
					{Attempt: 2, ReadInputStart: 13, ReadInputEnd: 14, ComputationStart: 14, ComputationEnd: 32, WriteOutputStart: 32, WriteOutputEnd: 34, BytesRead: 4096, BytesWritten: 8192, CoresAllocated: 8},
				},
			},
			{
				TaskID: "stage_out",
				Records: []sim.ExecutionRecord{
					{Attempt: 1, ReadInputStart: 34, ReadInputEnd: 36, ComputationStart: 36, ComputationEnd: 40, WriteOutputStart: 40, WriteOutputEnd: 42.5, BytesRead: 8192, BytesWritten: 8192, CoresAllocated: 2},
				},
			},
		},
	}

	if err := os.WriteFile(filepath.Join(targetDir, "platform.yaml"), []byte(platform), 0o644); err != nil {
		return fmt.Errorf("write platform: %w", err)
	}
	if err := os.WriteFile(filepath.Join(targetDir, "workflow.json"), []byte(workflow), 0o644); err != nil {
		return fmt.Errorf("write workflow: %w", err)
	}
	if err := sim.SaveToFile(filepath.Join(targetDir, "trace.json"), trace); err != nil {
		return fmt.Errorf("write trace: %w", err)
	}

	readme := fmt.Sprintf("# %s sample inputs\n\nAnalyze with:\n\n```bash\nwfreport-cli analyze platform.yaml workflow.json trace.json\n```\n", name)
	if err := os.WriteFile(filepath.Join(targetDir, "README.md"), []byte(readme), 0o644); err != nil {
		return fmt.Errorf("write scaffold README: %w", err)
	}

	return nil
}
