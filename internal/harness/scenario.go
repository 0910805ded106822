package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/predkit/expr"
	"github.com/roach88/predkit/predicate"
)

// Scenario defines a composition test.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Op joins the predicates: "and" (default), "or", "&&" or "||".
	Op string `yaml:"op,omitempty"`

	// Predicates lists definition files, composed left to right.
	Predicates []string `yaml:"predicates"`

	// ExpectTree is the expected printed form of the composed predicate.
	ExpectTree string `yaml:"expect_tree,omitempty"`

	// ExpectError is the composition error code the scenario expects.
	ExpectError string `yaml:"expect_error,omitempty"`

	// Records are evaluated against the composed predicate.
	Records []Record `yaml:"records,omitempty"`
}

// Record is an input to the composed predicate.
type Record struct {
	Name string `yaml:"name"`

	// Value is the record, usually a mapping of field names to values.
	Value any `yaml:"value"`

	// Expect is the expected outcome. Nil means the outcome is recorded
	// but not checked.
	Expect *bool `yaml:"expect,omitempty"`
}

// LogicalOp returns the operator named by s.Op.
func (s *Scenario) LogicalOp() (expr.LogicalOp, error) {
	return expr.ParseLogicalOp(s.Op)
}

// LoadScenario reads and parses a scenario YAML file. Predicate paths are
// resolved relative to the scenario file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseScenario parses scenario YAML, resolving relative predicate paths
// against basePath. Unknown fields are rejected.
func ParseScenario(data []byte, basePath string) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, p := range s.Predicates {
		if !filepath.IsAbs(p) && basePath != "" {
			s.Predicates[i] = filepath.Join(basePath, p)
		}
	}

	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Predicates) == 0 {
		return fmt.Errorf("predicates list is required and must be non-empty")
	}

	if _, err := s.LogicalOp(); err != nil {
		return err
	}

	if s.ExpectError != "" {
		switch predicate.ErrorCode(s.ExpectError) {
		case predicate.ErrCodeArityMismatch, predicate.ErrCodeTypeMismatch, predicate.ErrCodeScopeCollision:
		default:
			return fmt.Errorf("expect_error: unknown code %q", s.ExpectError)
		}
		if len(s.Records) > 0 || s.ExpectTree != "" {
			return fmt.Errorf("expect_error cannot be combined with records or expect_tree")
		}
	}

	for i, r := range s.Records {
		if r.Name == "" {
			return fmt.Errorf("records[%d]: name is required", i)
		}
	}

	return nil
}
