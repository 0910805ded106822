// Package operator defines the symbolic comparison operators accepted in
// predicate definitions.
//
// The set is closed. The token table is built once at init and never
// modified afterwards.
package operator

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Operator is a comparison kind.
type Operator int

const (
	IsSame Operator = iota + 1
	Equals
	Eq
	Neq
	Like
	Contains
	DoesNotContain
	StartsWith
	EndsWith
	DoesNotStartWith
	DoesNotEndWith
	Gte
	Lte
	Gt
	Lt
	IsNullOrEmpty
	IsNotNullOrEmpty
)

// tokens maps each operator to its symbolic token.
var tokens = map[Operator]string{
	IsSame:           "==",
	Equals:           "=",
	Eq:               "eq",
	Neq:              "neq",
	Like:             "like",
	Contains:         "contains",
	DoesNotContain:   "doesnotcontain",
	StartsWith:       "startswith",
	EndsWith:         "endswith",
	DoesNotStartWith: "doesnotstartwith",
	DoesNotEndWith:   "doesnotendwith",
	Gte:              "gte",
	Lte:              "lte",
	Gt:               "gt",
	Lt:               "lt",
	IsNullOrEmpty:    "nullorempty",
	IsNotNullOrEmpty: "notnullorempty",
}

// symbols renders operators inside printed trees.
var symbols = map[Operator]string{
	IsSame:           "===",
	Equals:           "==",
	Eq:               "==",
	Neq:              "!=",
	Like:             "like",
	Contains:         "contains",
	DoesNotContain:   "!contains",
	StartsWith:       "startswith",
	EndsWith:         "endswith",
	DoesNotStartWith: "!startswith",
	DoesNotEndWith:   "!endswith",
	Gte:              ">=",
	Lte:              "<=",
	Gt:               ">",
	Lt:               "<",
	IsNullOrEmpty:    "nullorempty",
	IsNotNullOrEmpty: "!nullorempty",
}

var byToken = make(map[string]Operator, len(tokens))

func init() {
	fold := cases.Fold()
	for op, tok := range tokens {
		byToken[fold.String(tok)] = op
	}
}

// UnknownOperatorError reports a token with no matching operator.
type UnknownOperatorError struct {
	Token string
}

func (e *UnknownOperatorError) Error() string {
	return fmt.Sprintf("unknown operator %q", e.Token)
}

// Parse looks up an operator by token. Matching is case-insensitive and
// ignores surrounding whitespace.
func Parse(token string) (Operator, error) {
	// Casers carry state and are not shared between goroutines.
	key := cases.Fold().String(strings.TrimSpace(token))
	if op, ok := byToken[key]; ok {
		return op, nil
	}
	return 0, &UnknownOperatorError{Token: token}
}

// All returns every operator in declaration order.
func All() []Operator {
	out := make([]Operator, 0, len(tokens))
	for op := IsSame; op <= IsNotNullOrEmpty; op++ {
		out = append(out, op)
	}
	return out
}

// Token returns the definition token, e.g. "gte".
func (op Operator) Token() string {
	if tok, ok := tokens[op]; ok {
		return tok
	}
	return fmt.Sprintf("Operator(%d)", int(op))
}

// String returns the symbol used when printing trees, e.g. ">=".
func (op Operator) String() string {
	if sym, ok := symbols[op]; ok {
		return sym
	}
	return op.Token()
}

// Valid reports whether op is a known operator.
func (op Operator) Valid() bool {
	_, ok := tokens[op]
	return ok
}

// Unary reports whether op takes no operand.
func (op Operator) Unary() bool {
	return op == IsNullOrEmpty || op == IsNotNullOrEmpty
}

// Ordering reports whether op orders its operands.
func (op Operator) Ordering() bool {
	switch op {
	case Gte, Lte, Gt, Lt:
		return true
	}
	return false
}

// MarshalText implements encoding.TextMarshaler using the token.
func (op Operator) MarshalText() ([]byte, error) {
	if !op.Valid() {
		return nil, fmt.Errorf("invalid operator %d", int(op))
	}
	return []byte(op.Token()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using Parse.
func (op *Operator) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*op = parsed
	return nil
}
