package filter

import (
	"fmt"
	"strings"

	"github.com/mb0/glob"

	"github.com/roach88/predkit/internal/operator"
	"github.com/roach88/predkit/internal/value"
)

// Apply evaluates left <op> right.
//
// A null left operand never satisfies an ordering, equality-to-non-null,
// containment or prefix/suffix test; the negated string operators are true
// for it.
func Apply(op operator.Operator, left, right value.Value) (bool, error) {
	switch op {
	case operator.IsSame:
		return value.Identical(left, right), nil
	case operator.Equals, operator.Eq:
		return value.Equal(left, right), nil
	case operator.Neq:
		return !value.Equal(left, right), nil
	case operator.Like:
		return like(left, right)
	case operator.Contains:
		return contains(left, right)
	case operator.DoesNotContain:
		ok, err := contains(left, right)
		return !ok, err
	case operator.StartsWith:
		return affix(left, right, strings.HasPrefix)
	case operator.EndsWith:
		return affix(left, right, strings.HasSuffix)
	case operator.DoesNotStartWith:
		ok, err := affix(left, right, strings.HasPrefix)
		return !ok, err
	case operator.DoesNotEndWith:
		ok, err := affix(left, right, strings.HasSuffix)
		return !ok, err
	case operator.Gte, operator.Lte, operator.Gt, operator.Lt:
		return order(op, left, right)
	case operator.IsNullOrEmpty:
		return nullOrEmpty(left), nil
	case operator.IsNotNullOrEmpty:
		return !nullOrEmpty(left), nil
	default:
		return false, fmt.Errorf("unsupported operator %s", op.Token())
	}
}

func order(op operator.Operator, left, right value.Value) (bool, error) {
	if value.IsNull(left) {
		return false, nil
	}
	c, err := value.Compare(left, right)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op.Token(), err)
	}
	switch op {
	case operator.Gte:
		return c >= 0, nil
	case operator.Lte:
		return c <= 0, nil
	case operator.Gt:
		return c > 0, nil
	default:
		return c < 0, nil
	}
}

// likeGlobber matches SQL LIKE patterns: % is any run of characters, _ is
// any single character and a backslash escapes the next one. The separator
// and range bytes are control characters that do not occur in text, so
// neither path segments nor bracket classes apply.
var likeGlobber = func() *glob.Globber {
	g, err := glob.New(glob.Config{
		Separator: 0x00,
		Star:      '%',
		Quest:     '_',
		Range:     0x01,
		RangeEnd:  0x02,
		RangeNeg:  0x03,
	})
	if err != nil {
		panic(err)
	}
	return g
}()

func like(left, right value.Value) (bool, error) {
	if value.IsNull(left) {
		return false, nil
	}
	s, ok := left.(value.String)
	if !ok {
		return false, fmt.Errorf("like: operand is %s, not string", left.Kind())
	}
	pattern, ok := right.(value.String)
	if !ok {
		return false, fmt.Errorf("like: pattern is %s, not string", kind(right))
	}
	matched, err := likeGlobber.Match(string(pattern), string(s))
	if err != nil {
		return false, fmt.Errorf("like: bad pattern %q: %w", string(pattern), err)
	}
	return matched, nil
}

func contains(left, right value.Value) (bool, error) {
	switch l := left.(type) {
	case nil, value.Null:
		return false, nil
	case value.String:
		r, ok := right.(value.String)
		if !ok {
			return false, fmt.Errorf("contains: needle is %s, not string", kind(right))
		}
		return strings.Contains(string(l), string(r)), nil
	case value.Array:
		for _, e := range l {
			if value.Equal(e, right) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("contains: operand is %s", l.Kind())
	}
}

func affix(left, right value.Value, test func(s, affix string) bool) (bool, error) {
	if value.IsNull(left) {
		return false, nil
	}
	s, ok := left.(value.String)
	if !ok {
		return false, fmt.Errorf("operand is %s, not string", left.Kind())
	}
	a, ok := right.(value.String)
	if !ok {
		return false, fmt.Errorf("operand is %s, not string", kind(right))
	}
	return test(string(s), string(a)), nil
}

func nullOrEmpty(v value.Value) bool {
	switch val := v.(type) {
	case nil, value.Null:
		return true
	case value.String:
		return val == ""
	case value.Array:
		return len(val) == 0
	case value.Object:
		return len(val) == 0
	}
	return false
}

func kind(v value.Value) value.Kind {
	if v == nil {
		return value.KindNull
	}
	return v.Kind()
}
