package expr

// Children returns the direct child expressions of e.
// Lambda parameters are binders, not references, and are not children.
func Children(e Expr) []Expr {
	switch n := e.(type) {
	case *Lambda:
		return []Expr{n.Body}
	case *Logical:
		return []Expr{n.Left, n.Right}
	case *Opaque:
		if n.Node == nil {
			return nil
		}
		return n.Node.Children()
	default:
		return nil
	}
}

// Walk visits e and its descendants in pre-order.
// If fn returns false the children of the current node are skipped.
// Nil children are not visited.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil {
		return
	}
	if !fn(e) {
		return
	}
	for _, c := range Children(e) {
		Walk(c, fn)
	}
}

// Refs counts the references to p in e.
func Refs(e Expr, p *Param) int {
	n := 0
	Walk(e, func(x Expr) bool {
		if r, ok := x.(*ParamRef); ok && r.Param == p {
			n++
		}
		return true
	})
	return n
}

// Params returns the distinct parameters referenced in e, in first-seen order.
func Params(e Expr) []*Param {
	var out []*Param
	seen := make(map[*Param]bool)
	Walk(e, func(x Expr) bool {
		if r, ok := x.(*ParamRef); ok && !seen[r.Param] {
			seen[r.Param] = true
			out = append(out, r.Param)
		}
		return true
	})
	return out
}

// Binders returns every parameter declared by a lambda in e, including e
// itself when it is a lambda, in pre-order.
func Binders(e Expr) []*Param {
	var out []*Param
	Walk(e, func(x Expr) bool {
		if l, ok := x.(*Lambda); ok {
			out = append(out, l.Params...)
		}
		return true
	})
	return out
}
