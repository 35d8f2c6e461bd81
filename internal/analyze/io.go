package analyze

import (
	"encoding/json"
	"fmt"
	"os"
)

func SaveToFile(path string, m Metrics) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("metrics: marshal: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("metrics: write %q: %w", path, err)
	}
	return nil
}

func LoadFromFile(path string) (Metrics, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Metrics{}, fmt.Errorf("metrics: read %q: %w", path, err)
	}
	var m Metrics
	if err := json.Unmarshal(b, &m); err != nil {
		return Metrics{}, fmt.Errorf("metrics: unmarshal %q: %w", path, err)
	}
	return m, nil
}
