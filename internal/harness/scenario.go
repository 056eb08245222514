// Package harness runs YAML conformance scenarios through the full
// pipeline: load a system file, validate the registry, compile the
// composition, and verify the result. Scenarios declare what each stage
// should produce; golden snapshots pin the canonical byte form of the
// compiled IR.
package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario exercises.
	Description string `yaml:"description"`

	// System is the path to the CUE system file, relative to the
	// scenario file.
	System string `yaml:"system"`

	// Want declares the expected outcome of each stage.
	Want Expectation `yaml:"want"`

	// dir is the directory the scenario file was loaded from.
	dir string
}

// Expectation declares per-stage expected outcomes. Zero-valued fields
// are not checked, except Violations and FailingChecks, which when
// present must match exactly.
type Expectation struct {
	// LoadErrors lists error codes expected while loading. Empty means
	// the load must succeed.
	LoadErrors []string `yaml:"load_errors,omitempty"`

	// Violations lists the validation codes ValidateSpec must report,
	// in order. Empty means the registry must validate cleanly.
	Violations []string `yaml:"violations,omitempty"`

	// Clean states whether the verification report must be free of
	// error findings.
	Clean *bool `yaml:"clean,omitempty"`

	// FailingChecks lists check ids that must produce at least one
	// error finding.
	FailingChecks []string `yaml:"failing_checks,omitempty"`

	// Affecting maps "Entity.variable" references to the exact sorted
	// block lists expected from the influence query.
	Affecting map[string][]string `yaml:"affecting,omitempty"`
}

// SystemPath resolves the system file relative to the scenario file.
func (s *Scenario) SystemPath() string {
	return filepath.Join(s.dir, s.System)
}

// LoadScenario reads one scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading scenario: %w", err)
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	if scenario.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	if scenario.System == "" {
		return nil, fmt.Errorf("scenario %s: system is required", path)
	}
	scenario.dir = filepath.Dir(path)
	return &scenario, nil
}

// LoadScenarios reads every *.yaml scenario under dir, sorted by path.
func LoadScenarios(dir string) ([]*Scenario, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	scenarios := make([]*Scenario, 0, len(matches))
	for _, path := range matches {
		scenario, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, scenario)
	}
	return scenarios, nil
}
