// Package filter builds comparison leaves from field/operator/value triples.
//
// Leaves are expr.Opaque payloads. Each payload exposes its child
// expressions, so composition can rebind the parameter inside them without
// knowing anything about comparisons.
package filter

import (
	"fmt"

	"github.com/roach88/predkit/expr"
	"github.com/roach88/predkit/internal/operator"
	"github.com/roach88/predkit/internal/value"
)

// Field reads a named member of its target: x.age.
type Field struct {
	Target expr.Expr
	Name   string
}

func (f *Field) Children() []expr.Expr { return []expr.Expr{f.Target} }

func (f *Field) WithChildren(children []expr.Expr) expr.Node {
	return &Field{Target: children[0], Name: f.Name}
}

func (f *Field) Format(children []string) string {
	return children[0] + "." + f.Name
}

// Evaluate returns the member of args[0]. Missing members and members of a
// null target are Null.
func (f *Field) Evaluate(args []value.Value) (value.Value, error) {
	switch target := args[0].(type) {
	case value.Object:
		return target.Get(f.Name), nil
	case nil, value.Null:
		return value.Null{}, nil
	default:
		return nil, fmt.Errorf("field %q: target is %s, not object", f.Name, target.Kind())
	}
}

// Compare applies Op to the value of Left and the constant Value.
// Unary operators ignore Value.
//
// When Value is a Time, string and integer operands are read through Times
// (value.LayoutParser defaults when nil) before comparing.
type Compare struct {
	Op    operator.Operator
	Left  expr.Expr
	Value value.Value
	Times value.DateTimeParser
}

func (c *Compare) Children() []expr.Expr { return []expr.Expr{c.Left} }

func (c *Compare) WithChildren(children []expr.Expr) expr.Node {
	n := *c
	n.Left = children[0]
	return &n
}

func (c *Compare) Format(children []string) string {
	if c.Op.Unary() {
		return fmt.Sprintf("%s(%s)", c.Op, children[0])
	}
	return fmt.Sprintf("(%s %s %s)", children[0], c.Op, value.Format(c.Value))
}

// Evaluate applies the comparison to the evaluated left operand.
func (c *Compare) Evaluate(args []value.Value) (value.Value, error) {
	left, err := c.operand(args[0])
	if err != nil {
		return nil, err
	}
	ok, err := Apply(c.Op, left, c.Value)
	if err != nil {
		return nil, err
	}
	return value.Bool(ok), nil
}

func (c *Compare) operand(left value.Value) (value.Value, error) {
	if _, ok := c.Value.(value.Time); !ok || c.Op.Unary() {
		return left, nil
	}
	switch left.(type) {
	case value.String, value.Int:
	default:
		return left, nil
	}
	times := c.Times
	if times == nil {
		times = value.LayoutParser{}
	}
	t, err := times.Parse(left)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Op.Token(), err)
	}
	return value.Time(t), nil
}
