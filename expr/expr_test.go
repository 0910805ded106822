package expr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// call is a minimal opaque payload: name(args...).
type call struct {
	name string
	args []Expr
}

func (c *call) Children() []Expr { return c.args }

func (c *call) WithChildren(children []Expr) Node {
	return &call{name: c.name, args: children}
}

func (c *call) Format(children []string) string {
	return c.name + "(" + strings.Join(children, ", ") + ")"
}

type person struct{}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, EntityType("github.com/roach88/predkit/expr.person"), TypeOf[person]())
	assert.Equal(t, EntityType("map[string]interface {}"), TypeOf[map[string]any]())
	assert.NotEqual(t, TypeOf[person](), TypeOf[*person]())
}

func TestParam_Identity(t *testing.T) {
	a := NewParam("x", "person")
	b := NewParam("x", "person")

	assert.Equal(t, a.Name(), b.Name())
	assert.NotSame(t, a, b)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, EntityType("person"), a.Type())
	assert.Equal(t, "x", a.String())
}

func TestExpr_SealedInterface(t *testing.T) {
	x := NewParam("x", "person")
	nodes := []Expr{
		Ref(x),
		NewLambda(Ref(x), x),
		And(Ref(x), Ref(x)),
		Wrap(&call{name: "f"}),
	}

	for _, n := range nodes {
		switch n.(type) {
		case *ParamRef, *Lambda, *Logical, *Opaque:
			// OK
		default:
			t.Fatalf("unexpected node type %T", n)
		}
	}
}

func TestLogicalOp(t *testing.T) {
	assert.Equal(t, "&&", AndAlso.String())
	assert.Equal(t, "||", OrElse.String())
	assert.Equal(t, "?", LogicalOp(0).String())
	assert.True(t, AndAlso.Valid())
	assert.False(t, LogicalOp(7).Valid())
}

func TestParseLogicalOp(t *testing.T) {
	for in, want := range map[string]LogicalOp{
		"":     AndAlso,
		"and":  AndAlso,
		"AND":  AndAlso,
		"&&":   AndAlso,
		"or":   OrElse,
		" Or ": OrElse,
		"||":   OrElse,
	} {
		got, err := ParseLogicalOp(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}

	_, err := ParseLogicalOp("xor")
	assert.ErrorContains(t, err, `"xor"`)
}

func TestLambda_Param(t *testing.T) {
	x := NewParam("x", "person")
	y := NewParam("y", "person")

	assert.Same(t, x, NewLambda(Ref(x), x).Param())
	assert.Nil(t, NewLambda(Ref(x)).Param())
	assert.Nil(t, NewLambda(Ref(x), x, y).Param())

	var nilLambda *Lambda
	assert.Nil(t, nilLambda.Param())
}

func TestFormat(t *testing.T) {
	x := NewParam("x", "person")
	y := NewParam("y", "person")

	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{"ref", Ref(x), "x"},
		{"lambda", NewLambda(Wrap(&call{name: "ok", args: []Expr{Ref(x)}}), x), "x => ok(x)"},
		{"multi param lambda", NewLambda(Ref(x), x, y), "(x, y) => x"},
		{"and", And(Ref(x), Ref(y)), "(x && y)"},
		{"or", Or(Ref(x), And(Ref(x), Ref(y))), "(x || (x && y))"},
		{"opaque leaf", Wrap(&call{name: "true"}), "true()"},
		{"nil opaque", &Opaque{}, "<nil>"},
		{"nil body", NewLambda(nil, x), "x => <nil>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.expr.String())
		})
	}
}

func TestFormat_CustomNamer(t *testing.T) {
	x := NewParam("x", "person")
	l := NewLambda(And(Ref(x), Ref(x)), x)

	got := Format(l, func(p *Param) string { return "$" + p.Name() })
	assert.Equal(t, "$x => ($x && $x)", got)
}

func TestWalk_PreOrder(t *testing.T) {
	x := NewParam("x", "person")
	tree := NewLambda(And(Ref(x), Wrap(&call{name: "f", args: []Expr{Ref(x)}})), x)

	var kinds []string
	Walk(tree, func(e Expr) bool {
		switch e.(type) {
		case *Lambda:
			kinds = append(kinds, "lambda")
		case *Logical:
			kinds = append(kinds, "logical")
		case *Opaque:
			kinds = append(kinds, "opaque")
		case *ParamRef:
			kinds = append(kinds, "ref")
		}
		return true
	})

	assert.Equal(t, []string{"lambda", "logical", "ref", "opaque", "ref"}, kinds)
}

func TestWalk_SkipChildren(t *testing.T) {
	x := NewParam("x", "person")
	tree := And(Wrap(&call{name: "f", args: []Expr{Ref(x)}}), Ref(x))

	visited := 0
	Walk(tree, func(e Expr) bool {
		visited++
		_, isOpaque := e.(*Opaque)
		return !isOpaque
	})

	// logical, opaque (children skipped), ref
	assert.Equal(t, 3, visited)
}

func TestRefsAndParams(t *testing.T) {
	x := NewParam("x", "person")
	y := NewParam("y", "person")
	tree := Or(And(Ref(x), Ref(y)), Wrap(&call{name: "f", args: []Expr{Ref(x), Ref(x)}}))

	assert.Equal(t, 3, Refs(tree, x))
	assert.Equal(t, 1, Refs(tree, y))
	assert.Equal(t, 0, Refs(tree, NewParam("x", "person")))

	params := Params(tree)
	require.Len(t, params, 2)
	assert.Same(t, x, params[0])
	assert.Same(t, y, params[1])
}

func TestBinders(t *testing.T) {
	x := NewParam("x", "person")
	y := NewParam("y", "item")
	inner := NewLambda(Ref(y), y)
	outer := NewLambda(Wrap(&call{name: "any", args: []Expr{Ref(x), inner}}), x)

	binders := Binders(outer)
	require.Len(t, binders, 2)
	assert.Same(t, x, binders[0])
	assert.Same(t, y, binders[1])
}
