package value

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ConversionError reports a raw input that could not be interpreted as the
// target type. Raw carries the offending input unchanged.
type ConversionError struct {
	Raw    any
	Target Kind
	Err    error
}

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot convert %v (%T) to %s: %v", e.Raw, e.Raw, e.Target, e.Err)
	}
	return fmt.Sprintf("cannot convert %v (%T) to %s", e.Raw, e.Raw, e.Target)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// Converter turns an untyped input into a typed Value.
type Converter interface {
	Convert(raw any) (Value, error)
}

// ConverterFunc adapts a function to Converter.
type ConverterFunc func(raw any) (Value, error)

// Convert calls f(raw).
func (f ConverterFunc) Convert(raw any) (Value, error) { return f(raw) }

// Plain converts with FromAny and reports failures as ConversionError.
var Plain Converter = ConverterFunc(func(raw any) (Value, error) {
	v, err := FromAny(raw)
	if err != nil {
		return nil, &ConversionError{Raw: raw, Err: err}
	}
	return v, nil
})

// DateTimeParser interprets an untyped input as a point in time.
type DateTimeParser interface {
	Parse(raw any) (time.Time, error)
}

// DefaultLayouts are tried in order by LayoutParser when none are configured.
var DefaultLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// LayoutParser parses strings against a list of layouts.
//
// Integers are read as Unix seconds. time.Time and Time pass through.
// Strings without a zone are interpreted in Location (UTC when nil).
type LayoutParser struct {
	Layouts  []string
	Location *time.Location
}

// Parse implements DateTimeParser.
func (p LayoutParser) Parse(raw any) (time.Time, error) {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case Time:
		return time.Time(v), nil
	case String:
		return p.parseString(string(v), loc, raw)
	case string:
		return p.parseString(v, loc, raw)
	case int:
		return time.Unix(int64(v), 0).In(loc), nil
	case int64:
		return time.Unix(v, 0).In(loc), nil
	case Int:
		return time.Unix(int64(v), 0).In(loc), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return time.Time{}, &ConversionError{Raw: raw, Target: KindTime, Err: err}
		}
		return time.Unix(n, 0).In(loc), nil
	default:
		return time.Time{}, &ConversionError{Raw: raw, Target: KindTime}
	}
}

func (p LayoutParser) parseString(s string, loc *time.Location, raw any) (time.Time, error) {
	s = strings.TrimSpace(s)
	layouts := p.Layouts
	if len(layouts) == 0 {
		layouts = DefaultLayouts
	}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, &ConversionError{Raw: raw, Target: KindTime, Err: lastErr}
}

// TimeConverter adapts a DateTimeParser to Converter.
type TimeConverter struct {
	Parser DateTimeParser
}

// Convert implements Converter. A nil Parser uses LayoutParser defaults.
func (c TimeConverter) Convert(raw any) (Value, error) {
	parser := c.Parser
	if parser == nil {
		parser = LayoutParser{}
	}
	t, err := parser.Parse(raw)
	if err != nil {
		var ce *ConversionError
		if errors.As(err, &ce) {
			return nil, ce
		}
		return nil, &ConversionError{Raw: raw, Target: KindTime, Err: err}
	}
	return Time(t), nil
}
