package expr

import (
	"fmt"
	"strings"
)

// Namer renders a parameter reference.
type Namer func(*Param) string

// DisplayName renders a parameter by its display name.
func DisplayName(p *Param) string {
	if p == nil {
		return "<nil>"
	}
	return p.Name()
}

// Format renders e using name for every parameter occurrence, binders
// included. A nil namer uses DisplayName.
//
// Example:
//
//	x => ((x.age >= 18) && (x.country == "US"))
func Format(e Expr, name Namer) string {
	if name == nil {
		name = DisplayName
	}
	var b strings.Builder
	format(&b, e, name)
	return b.String()
}

func format(b *strings.Builder, e Expr, name Namer) {
	switch n := e.(type) {
	case nil:
		b.WriteString("<nil>")
	case *ParamRef:
		b.WriteString(name(n.Param))
	case *Lambda:
		if len(n.Params) == 1 {
			b.WriteString(name(n.Params[0]))
		} else {
			names := make([]string, len(n.Params))
			for i, p := range n.Params {
				names[i] = name(p)
			}
			fmt.Fprintf(b, "(%s)", strings.Join(names, ", "))
		}
		b.WriteString(" => ")
		format(b, n.Body, name)
	case *Logical:
		b.WriteByte('(')
		format(b, n.Left, name)
		fmt.Fprintf(b, " %s ", n.Op)
		format(b, n.Right, name)
		b.WriteByte(')')
	case *Opaque:
		if n.Node == nil {
			b.WriteString("<nil>")
			return
		}
		kids := n.Node.Children()
		parts := make([]string, len(kids))
		for i, k := range kids {
			parts[i] = Format(k, name)
		}
		b.WriteString(n.Node.Format(parts))
	default:
		fmt.Fprintf(b, "<%T>", e)
	}
}
