// Package definition loads named predicates from YAML or CUE documents and
// builds them into predicate trees.
//
// A document describes one predicate over one entity type:
//
//	name: adult_us
//	entity: person
//	param: x
//	match: all
//	where:
//	  - field: age
//	    op: gte
//	    value: 18
//	  - any:
//	      - { field: country, op: eq, value: US }
//	      - { field: country, op: eq, value: CA }
//
// Every condition is built as its own single-parameter predicate and the
// results are folded with predicate.Combine, the same way independently
// written filters are merged at runtime.
package definition

import (
	"fmt"

	"github.com/roach88/predkit/expr"
	"github.com/roach88/predkit/internal/operator"
	"github.com/roach88/predkit/internal/value"
)

// Match modes for a group of clauses.
const (
	MatchAll = "all"
	MatchAny = "any"
)

// DefaultParam is the parameter name used when a document sets none.
const DefaultParam = "x"

// Definition is a predicate document.
type Definition struct {
	// Name uniquely identifies the predicate.
	Name string `yaml:"name" json:"name"`

	// Description explains what the predicate selects.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Entity names the type of record the predicate applies to.
	Entity string `yaml:"entity" json:"entity"`

	// Param is the display name of the bound parameter (default "x").
	Param string `yaml:"param,omitempty" json:"param,omitempty"`

	// Match joins the top-level clauses: "all" (default) or "any".
	Match string `yaml:"match,omitempty" json:"match,omitempty"`

	// Where lists the clauses. At least one is required.
	Where []Clause `yaml:"where" json:"where"`
}

// Clause is either a condition (Field set) or a nested group (All or Any set).
type Clause struct {
	Field string `yaml:"field,omitempty" json:"field,omitempty"`
	Op    string `yaml:"op,omitempty" json:"op,omitempty"`
	Value any    `yaml:"value,omitempty" json:"value,omitempty"`

	// Type forces a conversion for Value. Only "datetime" is recognized.
	Type string `yaml:"type,omitempty" json:"type,omitempty"`

	All []Clause `yaml:"all,omitempty" json:"all,omitempty"`
	Any []Clause `yaml:"any,omitempty" json:"any,omitempty"`
}

// EntityType returns the entity as an expr.EntityType.
func (d *Definition) EntityType() expr.EntityType {
	return expr.EntityType(d.Entity)
}

// ParamName returns the parameter display name.
func (d *Definition) ParamName() string {
	if d.Param == "" {
		return DefaultParam
	}
	return d.Param
}

// Op returns the logical operator joining the top-level clauses.
func (d *Definition) Op() expr.LogicalOp {
	if d.Match == MatchAny {
		return expr.OrElse
	}
	return expr.AndAlso
}

// Validate checks required fields and clause shapes.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return &DefinitionError{Code: ErrCodeMissingField, Field: "name", Message: "name is required"}
	}
	if d.Entity == "" {
		return &DefinitionError{Code: ErrCodeMissingField, Field: "entity", Message: "entity is required"}
	}
	if d.Match != "" && d.Match != MatchAll && d.Match != MatchAny {
		return &DefinitionError{
			Code:    ErrCodeInvalidMatch,
			Field:   "match",
			Message: fmt.Sprintf("match must be %q or %q, got %q", MatchAll, MatchAny, d.Match),
		}
	}
	if len(d.Where) == 0 {
		return &DefinitionError{Code: ErrCodeEmptyGroup, Field: "where", Message: "at least one clause is required"}
	}
	return validateClauses(d.Where, "where")
}

func validateClauses(clauses []Clause, path string) error {
	for i := range clauses {
		if err := clauses[i].validate(fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Clause) validate(path string) error {
	set := 0
	if c.Field != "" {
		set++
	}
	if c.All != nil {
		set++
	}
	if c.Any != nil {
		set++
	}
	if set != 1 {
		return &DefinitionError{
			Code:    ErrCodeInvalidClause,
			Field:   path,
			Message: "clause must set exactly one of field, all, any",
		}
	}

	switch {
	case c.All != nil:
		if len(c.All) == 0 {
			return &DefinitionError{Code: ErrCodeEmptyGroup, Field: path + ".all", Message: "group is empty"}
		}
		return validateClauses(c.All, path+".all")
	case c.Any != nil:
		if len(c.Any) == 0 {
			return &DefinitionError{Code: ErrCodeEmptyGroup, Field: path + ".any", Message: "group is empty"}
		}
		return validateClauses(c.Any, path+".any")
	}

	if c.Op == "" {
		return &DefinitionError{Code: ErrCodeInvalidOperator, Field: path + ".op", Message: "op is required"}
	}
	if _, err := operator.Parse(c.Op); err != nil {
		return &DefinitionError{Code: ErrCodeInvalidOperator, Field: path + ".op", Message: err.Error()}
	}
	if c.Type != "" && c.Type != string(value.KindTime) {
		return &DefinitionError{
			Code:    ErrCodeInvalidType,
			Field:   path + ".type",
			Message: fmt.Sprintf("unsupported type %q (only %q)", c.Type, value.KindTime),
		}
	}
	return nil
}
