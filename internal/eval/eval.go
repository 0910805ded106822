// Package eval runs predicate trees against values in process.
//
// Parameters are resolved by identity. Logical connectors short-circuit.
// Opaque payloads are evaluated through Evaluable; a payload that does not
// implement it cannot be evaluated.
package eval

import (
	"errors"
	"fmt"

	"github.com/roach88/predkit/expr"
	"github.com/roach88/predkit/internal/value"
)

// Evaluable is implemented by opaque payloads that can compute a value from
// their evaluated children (in Children order).
type Evaluable interface {
	Evaluate(args []value.Value) (value.Value, error)
}

// ErrNotBoolean is returned when a predicate body does not produce a Bool.
var ErrNotBoolean = errors.New("predicate did not evaluate to a boolean")

// UnboundParamError reports a reference to a parameter with no binding.
type UnboundParamError struct {
	Param *expr.Param
}

func (e *UnboundParamError) Error() string {
	return fmt.Sprintf("unbound parameter %q (%s)", e.Param.Name(), e.Param.ID())
}

// Eval applies l to arg.
func Eval(l *expr.Lambda, arg value.Value) (bool, error) {
	if l == nil || len(l.Params) != 1 {
		return false, fmt.Errorf("predicate must bind exactly one parameter")
	}
	env := map[*expr.Param]value.Value{l.Params[0]: arg}
	v, err := evalExpr(l.Body, env)
	if err != nil {
		return false, err
	}
	b, ok := v.(value.Bool)
	if !ok {
		return false, ErrNotBoolean
	}
	return bool(b), nil
}

// EvalAny converts arg with value.FromAny and applies l to it.
func EvalAny(l *expr.Lambda, arg any) (bool, error) {
	v, err := value.FromAny(arg)
	if err != nil {
		return false, fmt.Errorf("convert argument: %w", err)
	}
	return Eval(l, v)
}

func evalExpr(e expr.Expr, env map[*expr.Param]value.Value) (value.Value, error) {
	switch n := e.(type) {
	case nil:
		return nil, fmt.Errorf("nil expression")

	case *expr.ParamRef:
		v, ok := env[n.Param]
		if !ok {
			return nil, &UnboundParamError{Param: n.Param}
		}
		return v, nil

	case *expr.Logical:
		left, err := evalBool(n.Left, env)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case expr.AndAlso:
			if !left {
				return value.Bool(false), nil
			}
		case expr.OrElse:
			if left {
				return value.Bool(true), nil
			}
		default:
			return nil, fmt.Errorf("unsupported logical operator %s", n.Op)
		}
		right, err := evalBool(n.Right, env)
		if err != nil {
			return nil, err
		}
		return value.Bool(right), nil

	case *expr.Opaque:
		ev, ok := n.Node.(Evaluable)
		if !ok {
			return nil, fmt.Errorf("cannot evaluate %T", n.Node)
		}
		kids := n.Node.Children()
		args := make([]value.Value, len(kids))
		for i, k := range kids {
			v, err := evalExpr(k, env)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return ev.Evaluate(args)

	case *expr.Lambda:
		return nil, fmt.Errorf("nested lambda %s cannot be evaluated as a value", n)

	default:
		return nil, fmt.Errorf("unsupported expression %T", e)
	}
}

func evalBool(e expr.Expr, env map[*expr.Param]value.Value) (bool, error) {
	v, err := evalExpr(e, env)
	if err != nil {
		return false, err
	}
	b, ok := v.(value.Bool)
	if !ok {
		return false, ErrNotBoolean
	}
	return bool(b), nil
}
