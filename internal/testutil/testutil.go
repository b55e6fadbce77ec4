// Package testutil provides shared helpers for conformance tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Scenario represents a test scenario loaded from a scenario.json file.
// Each scenario directory also contains a program.cie source file.
type Scenario struct {
	Stdin  []string       `json:"stdin,omitempty"`
	Expect ExpectedResult `json:"expect"`
}

// ExpectedResult describes the expected outcome of running a scenario.
type ExpectedResult struct {
	Output    []string `json:"output,omitempty"`
	ErrorCode string   `json:"errorCode,omitempty"`
	Env       []string `json:"env,omitempty"` // "NAME=formatted value" pairs
}

// LoadScenario loads a scenario from a directory containing scenario.json.
func LoadScenario(dir string) (*Scenario, error) {
	data, err := os.ReadFile(filepath.Join(dir, "scenario.json"))
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ReadProgram reads the program source from a scenario directory.
func ReadProgram(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "program.cie"))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ListScenarios returns all scenario directories under the given root.
func ListScenarios(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			scenarioPath := filepath.Join(root, e.Name(), "scenario.json")
			if _, err := os.Stat(scenarioPath); err == nil {
				dirs = append(dirs, filepath.Join(root, e.Name()))
			}
		}
	}
	return dirs, nil
}
