package predicate

import (
	"errors"
	"fmt"

	"github.com/roach88/predkit/expr"
	"github.com/roach88/predkit/internal/rebind"
)

// ErrEmpty is returned by All and Any when given no predicates.
var ErrEmpty = errors.New("predicate: nothing to combine")

// Combine joins p and q with op under p's parameter.
//
// It is the untyped primitive behind Compose, for callers whose predicates
// come from a source that does not enforce the single-parameter shape or the
// entity type statically (loaded definitions, for instance).
//
// Steps:
//  1. both operands must bind exactly one parameter (ARITY_MISMATCH)
//  2. both parameters must range over the same entity type (TYPE_MISMATCH)
//  3. no lambda nested in q's body may bind q's or p's parameter (SCOPE_COLLISION)
//  4. q's body is rebound from q's parameter to p's
//  5. the result is p's parameter over Logical(op, p.Body, rebound body)
//
// p.Body is reused by reference. q is never modified and remains usable.
func Combine(p, q *expr.Lambda, op expr.LogicalOp) (*expr.Lambda, error) {
	if !op.Valid() {
		return nil, &CompositionError{
			Code:    ErrCodeInvalidOperator,
			Message: fmt.Sprintf("unsupported logical operator %d", int(op)),
		}
	}
	if err := checkArity(p, "first"); err != nil {
		return nil, err
	}
	if err := checkArity(q, "second"); err != nil {
		return nil, err
	}

	target, source := p.Params[0], q.Params[0]
	if target.Type() != source.Type() {
		return nil, newTypeError(string(target.Type()), string(source.Type()))
	}
	for _, b := range expr.Binders(q.Body) {
		if b == source || b == target {
			return nil, newScopeError(b.Name())
		}
	}

	body := rebind.Rebind(q.Body, source, target)
	return &expr.Lambda{
		Params: p.Params,
		Body:   &expr.Logical{Op: op, Left: p.Body, Right: body},
	}, nil
}

// Compose joins p and q with op. See Combine.
func Compose[T any](p, q Predicate[T], op expr.LogicalOp) (Predicate[T], error) {
	l, err := Combine(p.lambda, q.lambda, op)
	if err != nil {
		return Predicate[T]{}, err
	}
	return Predicate[T]{lambda: l}, nil
}

// And returns a predicate true when both p and q are true.
func And[T any](p, q Predicate[T]) (Predicate[T], error) {
	return Compose(p, q, expr.AndAlso)
}

// Or returns a predicate true when p or q is true.
func Or[T any](p, q Predicate[T]) (Predicate[T], error) {
	return Compose(p, q, expr.OrElse)
}

// All folds ps left to right with And. The result binds ps[0]'s parameter.
func All[T any](ps ...Predicate[T]) (Predicate[T], error) {
	return fold(expr.AndAlso, ps)
}

// Any folds ps left to right with Or. The result binds ps[0]'s parameter.
func Any[T any](ps ...Predicate[T]) (Predicate[T], error) {
	return fold(expr.OrElse, ps)
}

func fold[T any](op expr.LogicalOp, ps []Predicate[T]) (Predicate[T], error) {
	if len(ps) == 0 {
		return Predicate[T]{}, ErrEmpty
	}
	acc := ps[0]
	if err := checkArity(acc.lambda, "first"); err != nil {
		return Predicate[T]{}, err
	}
	for i, p := range ps[1:] {
		next, err := Compose(acc, p, op)
		if err != nil {
			return Predicate[T]{}, fmt.Errorf("combine predicate %d: %w", i+1, err)
		}
		acc = next
	}
	return acc, nil
}

func checkArity(l *expr.Lambda, operand string) error {
	if l == nil {
		return newArityError(operand, 0)
	}
	if len(l.Params) != 1 || l.Params[0] == nil {
		return newArityError(operand, len(l.Params))
	}
	return nil
}
