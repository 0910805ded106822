// Package predicate merges independently built predicates into one.
//
// A Predicate[T] is a single-parameter boolean function over T, held as an
// expression tree rather than compiled code. And and Or join two predicates
// under the first one's parameter:
//
//	adult := predicate.New[Person]("x", func(x *expr.Param) expr.Expr { ... })
//	local := predicate.New[Person]("y", func(y *expr.Param) expr.Expr { ... })
//	both, err := predicate.And(adult, local)
//
// The second predicate's references to y are rebound to x, so the result
// binds exactly one parameter. Neither input is modified and the first
// input's body is shared by reference with the result.
//
// Trees are immutable, so every function here is safe for concurrent use.
package predicate

import (
	"github.com/roach88/predkit/expr"
)

// Predicate is a composable boolean predicate over T.
// The zero value holds no tree and is rejected by composition.
type Predicate[T any] struct {
	lambda *expr.Lambda
}

// New builds a predicate over T. build receives a fresh parameter named name
// and returns the body.
func New[T any](name string, build func(x *expr.Param) expr.Expr) Predicate[T] {
	x := expr.NewParam(name, expr.TypeOf[T]())
	return Predicate[T]{lambda: expr.NewLambda(build(x), x)}
}

// FromLambda wraps an existing lambda after checking that it binds exactly
// one parameter of type T.
func FromLambda[T any](l *expr.Lambda) (Predicate[T], error) {
	if err := checkArity(l, "first"); err != nil {
		return Predicate[T]{}, err
	}
	if want, got := expr.TypeOf[T](), l.Params[0].Type(); want != got {
		return Predicate[T]{}, newTypeError(string(want), string(got))
	}
	return Predicate[T]{lambda: l}, nil
}

// Lambda returns the underlying tree.
func (p Predicate[T]) Lambda() *expr.Lambda { return p.lambda }

// Param returns the bound parameter, or nil for the zero value.
func (p Predicate[T]) Param() *expr.Param { return p.lambda.Param() }

// Body returns the predicate body, or nil for the zero value.
func (p Predicate[T]) Body() expr.Expr {
	if p.lambda == nil {
		return nil
	}
	return p.lambda.Body
}

// IsZero reports whether p holds no tree.
func (p Predicate[T]) IsZero() bool { return p.lambda == nil }

func (p Predicate[T]) String() string {
	if p.lambda == nil {
		return "<nil>"
	}
	return p.lambda.String()
}
