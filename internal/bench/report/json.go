package report

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/wesleyorama2/flowbench/internal/bench"
)

// MarshalJSON renders a report as indented JSON.
func MarshalJSON(r *bench.Report) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("report cannot be nil")
	}
	return json.MarshalIndent(r, "", "  ")
}

// WriteJSON writes a report as JSON to path.
func WriteJSON(r *bench.Report, path string) error {
	data, err := MarshalJSON(r)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	return nil
}
