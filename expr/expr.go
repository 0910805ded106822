package expr

import (
	"fmt"
	"strings"
)

// Expr is a node of a predicate tree.
//
// This is a sealed interface - only ParamRef, Lambda, Logical and Opaque
// implement it. The marker method keeps the variant set closed so that
// rewriters can handle every case.
type Expr interface {
	exprNode() // Marker method - seals interface to this package
	String() string
}

// Node is the capability an opaque payload provides to generic traversal.
//
// Children returns the payload's child expressions in a stable order.
// WithChildren returns a copy of the payload using the given children, which
// has the same length and order as Children. It must not modify the receiver.
// Format renders the payload given its already-rendered children.
//
// A leaf payload (a constant, say) returns no children and returns itself
// from WithChildren.
type Node interface {
	Children() []Expr
	WithChildren(children []Expr) Node
	Format(children []string) string
}

// LogicalOp is a binary boolean connector.
type LogicalOp int

const (
	// AndAlso is short-circuit conjunction.
	AndAlso LogicalOp = iota + 1

	// OrElse is short-circuit disjunction.
	OrElse
)

// String returns the operator symbol.
func (op LogicalOp) String() string {
	switch op {
	case AndAlso:
		return "&&"
	case OrElse:
		return "||"
	default:
		return "?"
	}
}

// Valid reports whether op is AndAlso or OrElse.
func (op LogicalOp) Valid() bool {
	return op == AndAlso || op == OrElse
}

// ParseLogicalOp reads "and"/"&&" or "or"/"||", ignoring case and
// surrounding space. The empty string is AndAlso.
func ParseLogicalOp(s string) (LogicalOp, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "and", "&&":
		return AndAlso, nil
	case "or", "||":
		return OrElse, nil
	default:
		return 0, fmt.Errorf("unknown logical operator %q (want and or or)", s)
	}
}

// ParamRef is a leaf referencing a bound parameter.
type ParamRef struct {
	Param *Param
}

func (*ParamRef) exprNode() {}

func (r *ParamRef) String() string { return Format(r, nil) }

// Lambda is a function over Params.
//
// Predicates have exactly one parameter. The slice exists so that malformed
// lambdas from untyped sources can be represented and rejected.
type Lambda struct {
	Params []*Param
	Body   Expr
}

func (*Lambda) exprNode() {}

func (l *Lambda) String() string { return Format(l, nil) }

// Param returns the single parameter, or nil if the lambda does not have
// exactly one.
func (l *Lambda) Param() *Param {
	if l == nil || len(l.Params) != 1 {
		return nil
	}
	return l.Params[0]
}

// Logical joins two boolean expressions.
type Logical struct {
	Op    LogicalOp
	Left  Expr
	Right Expr
}

func (*Logical) exprNode() {}

func (l *Logical) String() string { return Format(l, nil) }

// Opaque wraps a collaborator-defined subtree.
type Opaque struct {
	Node Node
}

func (*Opaque) exprNode() {}

func (o *Opaque) String() string { return Format(o, nil) }

// Ref returns a reference to p.
func Ref(p *Param) *ParamRef {
	return &ParamRef{Param: p}
}

// NewLambda returns a lambda binding params over body.
func NewLambda(body Expr, params ...*Param) *Lambda {
	return &Lambda{Params: params, Body: body}
}

// And returns left && right.
func And(left, right Expr) *Logical {
	return &Logical{Op: AndAlso, Left: left, Right: right}
}

// Or returns left || right.
func Or(left, right Expr) *Logical {
	return &Logical{Op: OrElse, Left: left, Right: right}
}

// Wrap returns n as an expression.
func Wrap(n Node) *Opaque {
	return &Opaque{Node: n}
}
