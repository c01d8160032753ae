package analysis

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the layout of a batch file.
type File struct {
	Cases []Case `json:"cases" yaml:"cases"`
}

// LoadCases reads a YAML or JSON batch file.
func LoadCases(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	return ParseCases(data)
}

// ParseCases decodes a batch document and validates every case.
func ParseCases(data []byte) ([]Case, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		if jsonErr := json.Unmarshal(data, &f); jsonErr != nil {
			return nil, fmt.Errorf("parse batch (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}
	for i, c := range f.Cases {
		if err := validate.Struct(c); err != nil {
			return nil, fmt.Errorf("case %d: %w: %w", i, ErrInvalidCase, err)
		}
	}
	return f.Cases, nil
}
