// Package rebind substitutes one parameter identity for another throughout
// a predicate tree.
//
// The package is internal: composition is the only supported caller.
package rebind

import "github.com/roach88/predkit/expr"

// Rebind returns tree with every reference to from replaced by a reference
// to to.
//
// Substitution follows structure only. References inside nested lambdas and
// inside opaque payload children are rewritten as well.
//
// Any subtree that contains no reference to from is returned as the same
// pointer, so a tree with no occurrences comes back unchanged by reference.
// Callers may compare the result with the input to detect a no-op.
//
// Rebind never fails and never modifies its input. Recursion depth equals
// the depth of the tree.
func Rebind(tree expr.Expr, from, to *expr.Param) expr.Expr {
	if from == to {
		return tree
	}
	return visit(tree, from, to)
}

func visit(e expr.Expr, from, to *expr.Param) expr.Expr {
	switch n := e.(type) {
	case nil:
		return nil

	case *expr.ParamRef:
		if n.Param == from {
			return expr.Ref(to)
		}
		return n

	case *expr.Lambda:
		body := visit(n.Body, from, to)
		if body == n.Body {
			return n
		}
		return &expr.Lambda{Params: n.Params, Body: body}

	case *expr.Logical:
		left := visit(n.Left, from, to)
		right := visit(n.Right, from, to)
		if left == n.Left && right == n.Right {
			return n
		}
		return &expr.Logical{Op: n.Op, Left: left, Right: right}

	case *expr.Opaque:
		if n.Node == nil {
			return n
		}
		kids := n.Node.Children()
		var rewritten []expr.Expr
		for i, k := range kids {
			nk := visit(k, from, to)
			if nk == k {
				continue
			}
			if rewritten == nil {
				rewritten = make([]expr.Expr, len(kids))
				copy(rewritten, kids)
			}
			rewritten[i] = nk
		}
		if rewritten == nil {
			return n
		}
		return &expr.Opaque{Node: n.Node.WithChildren(rewritten)}

	default:
		return e
	}
}
