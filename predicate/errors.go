package predicate

import (
	"errors"
	"fmt"
)

// CompositionError reports why two predicates could not be combined.
//
// Composition errors are programmer errors: they are detected synchronously
// and never retried. A failed composition returns no predicate.
type CompositionError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Operand is "first" or "second" when the error concerns one operand.
	Operand string

	// Details contains additional context.
	Details map[string]string
}

// ErrorCode categorizes composition errors.
type ErrorCode string

const (
	// ErrCodeArityMismatch indicates an operand does not bind exactly one parameter.
	ErrCodeArityMismatch ErrorCode = "ARITY_MISMATCH"

	// ErrCodeTypeMismatch indicates the operands range over different entity types.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"

	// ErrCodeScopeCollision indicates a nested lambda in the second operand
	// rebinds one of the parameters taking part in the composition.
	ErrCodeScopeCollision ErrorCode = "SCOPE_COLLISION"

	// ErrCodeInvalidOperator indicates an operator other than AndAlso/OrElse.
	ErrCodeInvalidOperator ErrorCode = "INVALID_OPERATOR"
)

// Error implements the error interface.
func (e *CompositionError) Error() string {
	if e.Operand != "" {
		return fmt.Sprintf("%s: %s (operand=%s)", e.Code, e.Message, e.Operand)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsArityMismatch returns true if err is an arity mismatch.
// Uses errors.As to handle wrapped errors.
func IsArityMismatch(err error) bool {
	return hasCode(err, ErrCodeArityMismatch)
}

// IsTypeMismatch returns true if err is a type mismatch.
func IsTypeMismatch(err error) bool {
	return hasCode(err, ErrCodeTypeMismatch)
}

// IsScopeCollision returns true if err is a scope collision.
func IsScopeCollision(err error) bool {
	return hasCode(err, ErrCodeScopeCollision)
}

func hasCode(err error, code ErrorCode) bool {
	var ce *CompositionError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

func newArityError(operand string, got int) *CompositionError {
	return &CompositionError{
		Code:    ErrCodeArityMismatch,
		Message: fmt.Sprintf("predicate must bind exactly one parameter, got %d", got),
		Operand: operand,
		Details: map[string]string{
			"params": fmt.Sprintf("%d", got),
		},
	}
}

func newTypeError(first, second string) *CompositionError {
	return &CompositionError{
		Code:    ErrCodeTypeMismatch,
		Message: fmt.Sprintf("cannot combine predicate over %q with predicate over %q", first, second),
		Details: map[string]string{
			"first":  first,
			"second": second,
		},
	}
}

func newScopeError(param string) *CompositionError {
	return &CompositionError{
		Code:    ErrCodeScopeCollision,
		Message: fmt.Sprintf("nested lambda rebinds parameter %q", param),
		Operand: "second",
		Details: map[string]string{
			"param": param,
		},
	}
}
