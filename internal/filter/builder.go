package filter

import (
	"fmt"
	"strings"

	"github.com/roach88/predkit/expr"
	"github.com/roach88/predkit/internal/operator"
	"github.com/roach88/predkit/internal/value"
)

// Condition is a single field/operator/value triple.
//
// Field may be a dotted path ("address.country"). Type forces a conversion
// for Value; only value.KindTime is recognized, everything else converts
// with value.Plain.
type Condition struct {
	Field string
	Op    operator.Operator
	Value any
	Type  value.Kind
}

// Builder turns conditions into comparison leaves.
//
// Times parses values of conditions typed value.KindTime. A nil Times uses
// value.LayoutParser defaults.
type Builder struct {
	Times value.DateTimeParser
}

// Build returns the comparison for c over parameter x.
func (b Builder) Build(x *expr.Param, c Condition) (expr.Expr, error) {
	if !c.Op.Valid() {
		return nil, fmt.Errorf("field %q: invalid operator %d", c.Field, int(c.Op))
	}
	target, err := path(expr.Ref(x), c.Field)
	if err != nil {
		return nil, err
	}

	var operand value.Value = value.Null{}
	if !c.Op.Unary() {
		operand, err = b.converter(c.Type).Convert(c.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", c.Field, err)
		}
	}

	return expr.Wrap(&Compare{Op: c.Op, Left: target, Value: operand, Times: b.Times}), nil
}

// Lambda builds c as an independent single-parameter predicate over a fresh
// parameter named name.
func (b Builder) Lambda(entity expr.EntityType, name string, c Condition) (*expr.Lambda, error) {
	x := expr.NewParam(name, entity)
	body, err := b.Build(x, c)
	if err != nil {
		return nil, err
	}
	return expr.NewLambda(body, x), nil
}

func (b Builder) converter(kind value.Kind) value.Converter {
	if kind == value.KindTime {
		return value.TimeConverter{Parser: b.Times}
	}
	return value.Plain
}

// path builds nested Field nodes for a dotted field path.
func path(target expr.Expr, field string) (expr.Expr, error) {
	if field == "" {
		return nil, fmt.Errorf("field is required")
	}
	for _, name := range strings.Split(field, ".") {
		if name == "" {
			return nil, fmt.Errorf("field %q: empty path segment", field)
		}
		target = expr.Wrap(&Field{Target: target, Name: name})
	}
	return target, nil
}
