package definition

import (
	"fmt"

	"github.com/roach88/predkit/expr"
	"github.com/roach88/predkit/internal/filter"
	"github.com/roach88/predkit/internal/operator"
	"github.com/roach88/predkit/internal/value"
	"github.com/roach88/predkit/predicate"
)

// Build turns def into a single-parameter predicate.
//
// Each condition becomes its own lambda over a fresh parameter named
// def.ParamName(); groups fold their members left to right with
// predicate.Combine, so the result binds the first condition's parameter.
func Build(def *Definition, filters filter.Builder) (*expr.Lambda, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	b := builder{def: def, filters: filters}
	return b.group(def.Where, def.Op(), "where")
}

// Combine builds every definition and folds the results with op.
// All definitions must share an entity; otherwise the
// predicate.CompositionError from the fold is returned (TYPE_MISMATCH).
func Combine(defs []*Definition, op expr.LogicalOp, filters filter.Builder) (*expr.Lambda, error) {
	if len(defs) == 0 {
		return nil, predicate.ErrEmpty
	}

	var acc *expr.Lambda
	for _, def := range defs {
		l, err := Build(def, filters)
		if err != nil {
			return nil, fmt.Errorf("build %q: %w", def.Name, err)
		}
		if acc == nil {
			acc = l
			continue
		}
		acc, err = predicate.Combine(acc, l, op)
		if err != nil {
			return nil, fmt.Errorf("combine %q: %w", def.Name, err)
		}
	}
	return acc, nil
}

type builder struct {
	def     *Definition
	filters filter.Builder
}

func (b builder) group(clauses []Clause, op expr.LogicalOp, path string) (*expr.Lambda, error) {
	var acc *expr.Lambda
	for i := range clauses {
		at := fmt.Sprintf("%s[%d]", path, i)
		l, err := b.clause(&clauses[i], at)
		if err != nil {
			return nil, err
		}
		if acc == nil {
			acc = l
			continue
		}
		acc, err = predicate.Combine(acc, l, op)
		if err != nil {
			return nil, &DefinitionError{Code: ErrCodeComposition, Field: at, Message: err.Error(), Err: err}
		}
	}
	return acc, nil
}

func (b builder) clause(c *Clause, at string) (*expr.Lambda, error) {
	switch {
	case c.All != nil:
		return b.group(c.All, expr.AndAlso, at+".all")
	case c.Any != nil:
		return b.group(c.Any, expr.OrElse, at+".any")
	}

	op, err := operator.Parse(c.Op)
	if err != nil {
		return nil, &DefinitionError{Code: ErrCodeInvalidOperator, Field: at + ".op", Message: err.Error(), Err: err}
	}

	l, err := b.filters.Lambda(b.def.EntityType(), b.def.ParamName(), filter.Condition{
		Field: c.Field,
		Op:    op,
		Value: c.Value,
		Type:  value.Kind(c.Type),
	})
	if err != nil {
		return nil, &DefinitionError{Code: ErrCodeConversion, Field: at, Message: err.Error(), Err: err}
	}
	return l, nil
}
