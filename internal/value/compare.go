package value

import (
	"cmp"
	"fmt"
	"strings"
	"time"
)

// IncomparableError reports an ordering between values of unrelated kinds.
type IncomparableError struct {
	Left  Kind
	Right Kind
}

func (e *IncomparableError) Error() string {
	return fmt.Sprintf("cannot order %s against %s", e.Left, e.Right)
}

// Compare orders a against b, returning -1, 0 or +1.
// Int and Float are compared numerically. Strings, times and bools are
// ordered within their own kind. Any other pairing is an IncomparableError.
func Compare(a, b Value) (int, error) {
	if ai, ok := a.(Int); ok {
		if bi, ok := b.(Int); ok {
			return cmp.Compare(ai, bi), nil
		}
	}
	if x, y, ok := numeric(a, b); ok {
		return cmp.Compare(x, y), nil
	}
	switch av := a.(type) {
	case String:
		if bv, ok := b.(String); ok {
			return strings.Compare(string(av), string(bv)), nil
		}
	case Time:
		if bv, ok := b.(Time); ok {
			return time.Time(av).Compare(time.Time(bv)), nil
		}
	case Bool:
		if bv, ok := b.(Bool); ok {
			return cmp.Compare(boolRank(av), boolRank(bv)), nil
		}
	}
	return 0, &IncomparableError{Left: kindOf(a), Right: kindOf(b)}
}

// Equal reports whether a and b denote the same value.
// Numbers compare across Int and Float; nil equals Null.
func Equal(a, b Value) bool {
	if ai, ok := a.(Int); ok {
		if bi, ok := b.(Int); ok {
			return ai == bi
		}
	}
	if x, y, ok := numeric(a, b); ok {
		return x == y
	}
	if IsNull(a) || IsNull(b) {
		return IsNull(a) && IsNull(b)
	}
	switch av := a.(type) {
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Time:
		bv, ok := b.(Time)
		return ok && time.Time(av).Equal(time.Time(bv))
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Object:
		bv, ok := b.(Object)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			w, ok := bv[k]
			if !ok || !Equal(v, w) {
				return false
			}
		}
		return true
	}
	return false
}

// Identical is Equal without numeric promotion: the kinds must match too.
func Identical(a, b Value) bool {
	return kindOf(a) == kindOf(b) && Equal(a, b)
}

// IsNull reports whether v is nil or Null.
func IsNull(v Value) bool {
	switch v.(type) {
	case nil, Null:
		return true
	}
	return false
}

func numeric(a, b Value) (float64, float64, bool) {
	x, ok := toFloat(a)
	if !ok {
		return 0, 0, false
	}
	y, ok := toFloat(b)
	if !ok {
		return 0, 0, false
	}
	return x, y, true
}

func toFloat(v Value) (float64, bool) {
	switch n := v.(type) {
	case Int:
		return float64(n), true
	case Float:
		return float64(n), true
	}
	return 0, false
}

func boolRank(b Bool) int {
	if b {
		return 1
	}
	return 0
}

func kindOf(v Value) Kind {
	if v == nil {
		return KindNull
	}
	return v.Kind()
}
