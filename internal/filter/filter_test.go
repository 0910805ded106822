package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/predkit/expr"
	"github.com/roach88/predkit/internal/operator"
	"github.com/roach88/predkit/internal/value"
)

func TestApply(t *testing.T) {
	s := func(v string) value.Value { return value.String(v) }

	tests := []struct {
		name        string
		op          operator.Operator
		left, right value.Value
		want        bool
	}{
		{"same identical", operator.IsSame, value.Int(1), value.Int(1), true},
		{"same across kinds", operator.IsSame, value.Int(1), value.Float(1), false},
		{"equals promotes", operator.Equals, value.Int(1), value.Float(1), true},
		{"eq strings", operator.Eq, s("US"), s("US"), true},
		{"eq null null", operator.Eq, value.Null{}, value.Null{}, true},
		{"neq", operator.Neq, s("US"), s("CA"), true},
		{"like percent", operator.Like, s("banana"), s("b%na"), true},
		{"like exact", operator.Like, s("cat"), s("cat"), true},
		{"like miss", operator.Like, s("dog"), s("c%"), false},
		{"like null", operator.Like, value.Null{}, s("%"), false},
		{"like across slash", operator.Like, s("a/b/c"), s("a%c"), true},
		{"like trailing percent slash", operator.Like, s("a/b"), s("a%"), true},
		{"like underscore", operator.Like, s("abc"), s("a_c"), true},
		{"like underscore one char", operator.Like, s("abbc"), s("a_c"), false},
		{"like literal star", operator.Like, s("abc"), s("a*c"), false},
		{"like literal star match", operator.Like, s("a*c"), s("a*c"), true},
		{"like literal bracket", operator.Like, s("a[b"), s("a[b"), true},
		{"like literal question", operator.Like, s("abc"), s("a?c"), false},
		{"like escaped percent", operator.Like, s("100%"), s(`100\%`), true},
		{"like escaped percent miss", operator.Like, s("1000"), s(`100\%`), false},
		{"contains substring", operator.Contains, s("hello world"), s("lo w"), true},
		{"contains array", operator.Contains, value.Array{value.Int(1), value.Int(2)}, value.Float(2), true},
		{"contains null", operator.Contains, value.Null{}, s("a"), false},
		{"does not contain", operator.DoesNotContain, s("hello"), s("z"), true},
		{"does not contain null", operator.DoesNotContain, value.Null{}, s("z"), true},
		{"startswith", operator.StartsWith, s("predkit"), s("pred"), true},
		{"endswith", operator.EndsWith, s("predkit"), s("kit"), true},
		{"does not start with", operator.DoesNotStartWith, s("predkit"), s("kit"), true},
		{"does not end with", operator.DoesNotEndWith, s("predkit"), s("kit"), false},
		{"gte equal", operator.Gte, value.Int(18), value.Int(18), true},
		{"gte below", operator.Gte, value.Int(15), value.Int(18), false},
		{"lte", operator.Lte, value.Float(2.5), value.Int(3), true},
		{"gt", operator.Gt, s("b"), s("a"), true},
		{"lt", operator.Lt, value.Int(3), value.Int(3), false},
		{"gt null left", operator.Gt, value.Null{}, value.Int(3), false},
		{"null or empty null", operator.IsNullOrEmpty, value.Null{}, nil, true},
		{"null or empty string", operator.IsNullOrEmpty, s(""), nil, true},
		{"null or empty array", operator.IsNullOrEmpty, value.Array{}, nil, true},
		{"null or empty value", operator.IsNullOrEmpty, s("x"), nil, false},
		{"not null or empty", operator.IsNotNullOrEmpty, value.Int(0), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(tt.op, tt.left, tt.right)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApply_Errors(t *testing.T) {
	tests := []struct {
		name        string
		op          operator.Operator
		left, right value.Value
	}{
		{"order across kinds", operator.Gt, value.String("18"), value.Int(3)},
		{"like non string", operator.Like, value.Int(1), value.String("%")},
		{"like non string pattern", operator.Like, value.String("a"), value.Int(1)},
		{"contains bad needle", operator.Contains, value.String("a"), value.Int(1)},
		{"contains bad operand", operator.Contains, value.Int(1), value.Int(1)},
		{"startswith non string", operator.StartsWith, value.Int(1), value.String("1")},
		{"unknown operator", operator.Operator(0), value.Int(1), value.Int(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(tt.op, tt.left, tt.right)
			assert.Error(t, err)
		})
	}
}

func TestBuilder_Build(t *testing.T) {
	x := expr.NewParam("x", "person")
	b := Builder{}

	e, err := b.Build(x, Condition{Field: "age", Op: operator.Gte, Value: 18})
	require.NoError(t, err)
	assert.Equal(t, "(x.age >= 18)", e.String())
	assert.Equal(t, 1, expr.Refs(e, x))

	e, err = b.Build(x, Condition{Field: "address.country", Op: operator.Eq, Value: "US"})
	require.NoError(t, err)
	assert.Equal(t, `(x.address.country == "US")`, e.String())

	e, err = b.Build(x, Condition{Field: "nickname", Op: operator.IsNullOrEmpty, Value: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "nullorempty(x.nickname)", e.String())
}

func TestBuilder_BuildDateTime(t *testing.T) {
	x := expr.NewParam("x", "person")
	b := Builder{Times: value.LayoutParser{Layouts: []string{"02.01.2006"}}}

	e, err := b.Build(x, Condition{Field: "joined", Op: operator.Gte, Value: "01.05.2024", Type: value.KindTime})
	require.NoError(t, err)
	assert.Equal(t, "(x.joined >= 2024-05-01T00:00:00Z)", e.String())

	cmp := e.(*expr.Opaque).Node.(*Compare)
	assert.Equal(t, value.Time(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)), cmp.Value)
}

func TestCompare_EvaluateDateTimeOperand(t *testing.T) {
	x := expr.NewParam("x", "order")
	b := Builder{Times: value.LayoutParser{Layouts: []string{time.RFC3339, "02.01.2006"}}}

	e, err := b.Build(x, Condition{Field: "placed", Op: operator.Gte, Value: "01.01.2024", Type: value.KindTime})
	require.NoError(t, err)
	cmp := e.(*expr.Opaque).Node.(*Compare)

	tests := []struct {
		name string
		left value.Value
		want bool
	}{
		{"rfc3339 string after", value.String("2024-03-01T00:00:00Z"), true},
		{"custom layout before", value.String("31.12.2023"), false},
		{"unix seconds after", value.Int(1709251200), true},
		{"time passes through", value.Time(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)), false},
		{"null", value.Null{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cmp.Evaluate([]value.Value{tt.left})
			require.NoError(t, err)
			assert.Equal(t, value.Bool(tt.want), got)
		})
	}

	_, err = cmp.Evaluate([]value.Value{value.String("soon")})
	var ce *value.ConversionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, value.String("soon"), ce.Raw)

	y := expr.NewParam("y", "order")
	rebound := cmp.WithChildren([]expr.Expr{expr.Ref(y)}).(*Compare)
	assert.Equal(t, cmp.Times, rebound.Times)
}

func TestCompare_EvaluateDateTimeDefaultParser(t *testing.T) {
	c := &Compare{Op: operator.Lt, Value: value.Time(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))}

	got, err := c.Evaluate([]value.Value{value.String("2023-06-30")})
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), got)
}

func TestBuilder_BuildErrors(t *testing.T) {
	x := expr.NewParam("x", "person")
	b := Builder{}

	_, err := b.Build(x, Condition{Field: "", Op: operator.Eq, Value: 1})
	assert.ErrorContains(t, err, "field is required")

	_, err = b.Build(x, Condition{Field: "a..b", Op: operator.Eq, Value: 1})
	assert.ErrorContains(t, err, "empty path segment")

	_, err = b.Build(x, Condition{Field: "age", Value: 1})
	assert.ErrorContains(t, err, "invalid operator")

	_, err = b.Build(x, Condition{Field: "joined", Op: operator.Gt, Value: "soon", Type: value.KindTime})
	var ce *value.ConversionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "soon", ce.Raw)
}

func TestBuilder_Lambda(t *testing.T) {
	l, err := Builder{}.Lambda("person", "y", Condition{Field: "country", Op: operator.Eq, Value: "US"})
	require.NoError(t, err)
	require.Len(t, l.Params, 1)
	assert.Equal(t, expr.EntityType("person"), l.Params[0].Type())
	assert.Equal(t, `y => (y.country == "US")`, l.String())
}

func TestNodes_WithChildrenDoesNotModifyReceiver(t *testing.T) {
	x := expr.NewParam("x", "person")
	y := expr.NewParam("y", "person")

	f := &Field{Target: expr.Ref(x), Name: "age"}
	g := f.WithChildren([]expr.Expr{expr.Ref(y)}).(*Field)
	assert.Same(t, x, f.Target.(*expr.ParamRef).Param)
	assert.Same(t, y, g.Target.(*expr.ParamRef).Param)
	assert.Equal(t, "age", g.Name)

	c := &Compare{Op: operator.Gt, Left: expr.Ref(x), Value: value.Int(1)}
	d := c.WithChildren([]expr.Expr{expr.Ref(y)}).(*Compare)
	assert.Same(t, x, c.Left.(*expr.ParamRef).Param)
	assert.Same(t, y, d.Left.(*expr.ParamRef).Param)
	assert.Equal(t, c.Op, d.Op)
	assert.Equal(t, c.Value, d.Value)
}

func TestField_Evaluate(t *testing.T) {
	f := &Field{Name: "age"}

	v, err := f.Evaluate([]value.Value{value.Object{"age": value.Int(3)}})
	require.NoError(t, err)
	assert.Equal(t, value.Int(3), v)

	v, err = f.Evaluate([]value.Value{value.Null{}})
	require.NoError(t, err)
	assert.Equal(t, value.Null{}, v)

	_, err = f.Evaluate([]value.Value{value.Int(3)})
	assert.Error(t, err)
}
