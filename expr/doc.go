// Package expr defines the immutable predicate tree that predkit composes.
//
// A tree is built from four node kinds:
//
//	ParamRef  reference to a bound parameter
//	Lambda    single-parameter function (the shape of every predicate)
//	Logical   binary AND / OR connector
//	Opaque    any other subtree, supplied by a collaborator
//
// Expr is a sealed interface. Only the four types in this package implement
// it, so consumers can switch over a node exhaustively:
//
//	switch n := e.(type) {
//	case *ParamRef:
//	case *Lambda:
//	case *Logical:
//	case *Opaque:
//	}
//
// OPAQUE PAYLOADS:
//
// Comparisons, member access, constants and anything else predkit does not
// interpret live behind Opaque. The payload implements Node, which exposes
// its child expressions and can rebuild itself with replacement children.
// That is enough for generic traversal: a rewriter never needs to know the
// payload's concrete type.
//
// IDENTITY:
//
// Parameters are compared by pointer identity. Two parameters created with
// the same display name are distinct and never substitute for each other.
//
// IMMUTABILITY:
//
// Nodes are never modified after construction. Transformations return a new
// root and reuse every unchanged subtree by reference, so trees may be read
// from any number of goroutines without coordination.
package expr
