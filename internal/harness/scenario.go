package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mattwparas/Rucket/internal/contract"
	"github.com/mattwparas/Rucket/internal/prelude"
)

// Scenario defines a contract scenario: manifests to bind and calls to make.
type Scenario struct {
	// Name uniquely identifies this scenario; golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs lists CUE manifest files or directories to load.
	// Paths are relative to the scenario file location.
	Specs []string `yaml:"specs"`

	// Contracts toggles enforcement. Defaults to true.
	Contracts *bool `yaml:"contracts,omitempty"`

	// RunID is an optional fixed journal run id.
	// If empty, defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	// Steps are executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the journal after all steps ran.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// ContractsEnabled reports whether the scenario runs with enforcement on.
func (s *Scenario) ContractsEnabled() bool {
	return s.Contracts == nil || *s.Contracts
}

// Step invokes one callable.
type Step struct {
	// Call names a bound contract or a builtin procedure.
	Call string `yaml:"call"`

	// Args are converted with ir.FromGo.
	Args []any `yaml:"args"`

	// At is an optional call-site location ("source:line:col").
	At string `yaml:"at,omitempty"`

	// Expect specifies the expected outcome.
	// If nil, any outcome is accepted.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the outcome of a step. Exactly one of Value, Violation
// and Error is set.
type Expect struct {
	// Value is the expected return value in the same form as Args,
	// converted with ir.FromGo and compared with ir.Equal. YAML null
	// leaves it unset; use {null: true} to expect the empty value.
	Value any `yaml:"value,omitempty"`

	// Violation is the expected violation code, e.g. ARGUMENT_VIOLATION.
	Violation string `yaml:"violation,omitempty"`

	// Blame matches either the blamed party (caller, self, site) or the
	// full blame text.
	Blame string `yaml:"blame,omitempty"`

	// Position is the expected argument position of a violation.
	Position *int `yaml:"position,omitempty"`

	// Error is a substring of an expected host error.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the journal.
type Assertion struct {
	// Type specifies the assertion type:
	// - "violation_count": exactly Count violations (of Code, if set)
	// - "violation_order": journaled codes appear in the order of Codes
	// - "journal": one violation matching Where has the Expect fields
	Type string `yaml:"type"`

	// Code filters violation_count.
	Code string `yaml:"code,omitempty"`

	// Count is the expected number of violations (used by violation_count).
	Count int `yaml:"count,omitempty"`

	// Codes is the expected code order (used by violation_order).
	Codes []string `yaml:"codes,omitempty"`

	// Where selects journal rows by field (used by journal).
	// All fields must match exactly.
	Where map[string]any `yaml:"where,omitempty"`

	// Expect contains expected field values (used by journal).
	// Subset match - only specified fields are validated.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertViolationCount = "violation_count"
	AssertViolationOrder = "violation_order"
	AssertJournal        = "journal"
)

var violationCodes = map[string]bool{
	string(contract.ErrCodeArityMismatch):     true,
	string(contract.ErrCodeArgumentViolation): true,
	string(contract.ErrCodeResultViolation):   true,
	string(contract.ErrCodeMalformedContract): true,
}

// LoadScenario reads and parses a scenario YAML file.
// Spec paths are resolved relative to the scenario file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving spec paths relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	// Resolve spec paths relative to base path BEFORE validation
	for i, specPath := range scenario.Specs {
		if !filepath.IsAbs(specPath) && basePath != "" {
			scenario.Specs[i] = filepath.Join(basePath, specPath)
		}
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if err := validateSpecPaths(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// ParseScenario decodes scenario YAML without touching the filesystem.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "step:" vs "steps:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Specs) == 0 {
		return fmt.Errorf("specs list is required and must be non-empty")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Call == "" {
			return fmt.Errorf("steps[%d]: call is required", i)
		}
		if step.At != "" {
			if _, err := prelude.ParseLocation(step.At); err != nil {
				return fmt.Errorf("steps[%d].at: %w", i, err)
			}
		}
		if step.Expect != nil {
			if err := validateExpect(step.Expect); err != nil {
				return fmt.Errorf("steps[%d].expect: %w", i, err)
			}
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateSpecPaths(s *Scenario) error {
	for _, specPath := range s.Specs {
		if _, err := os.Stat(specPath); os.IsNotExist(err) {
			return fmt.Errorf("spec file not found: %s", specPath)
		}
	}
	return nil
}

func validateExpect(e *Expect) error {
	set := 0
	if e.Value != nil {
		set++
	}
	if e.Violation != "" {
		set++
		if !violationCodes[e.Violation] {
			return fmt.Errorf("unknown violation code %q", e.Violation)
		}
	}
	if e.Error != "" {
		set++
	}
	if set != 1 {
		return fmt.Errorf("exactly one of value, violation and error is required")
	}
	if e.Violation == "" && (e.Blame != "" || e.Position != nil) {
		return fmt.Errorf("blame and position require a violation")
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertViolationCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for violation_count", index)
		}
		if a.Code != "" && !violationCodes[a.Code] {
			return fmt.Errorf("assertions[%d]: unknown violation code %q", index, a.Code)
		}
	case AssertViolationOrder:
		if len(a.Codes) == 0 {
			return fmt.Errorf("assertions[%d]: codes list is required for violation_order", index)
		}
	case AssertJournal:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for journal", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
