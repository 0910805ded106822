package definition

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/predkit/expr"
	"github.com/roach88/predkit/internal/eval"
	"github.com/roach88/predkit/internal/filter"
	"github.com/roach88/predkit/internal/value"
	"github.com/roach88/predkit/predicate"
)

const adultUS = `
name: adult_na
description: Adults in North America
entity: person
where:
  - field: age
    op: gte
    value: 18
  - any:
      - { field: country, op: eq, value: US }
      - { field: country, op: eq, value: CA }
`

func TestParse(t *testing.T) {
	def, err := Parse([]byte(adultUS))
	require.NoError(t, err)

	assert.Equal(t, "adult_na", def.Name)
	assert.Equal(t, expr.EntityType("person"), def.EntityType())
	assert.Equal(t, DefaultParam, def.ParamName())
	assert.Equal(t, expr.AndAlso, def.Op())
	require.Len(t, def.Where, 2)
	assert.Equal(t, 18, def.Where[0].Value)
	assert.Len(t, def.Where[1].Any, 2)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  string
	}{
		{"empty", "", ErrCodeParse},
		{"unknown field", "name: a\nentity: p\nbogus: 1\nwhere: [{field: a, op: eq, value: 1}]", ErrCodeParse},
		{"missing name", "entity: p\nwhere: [{field: a, op: eq, value: 1}]", ErrCodeMissingField},
		{"missing entity", "name: a\nwhere: [{field: a, op: eq, value: 1}]", ErrCodeMissingField},
		{"bad match", "name: a\nentity: p\nmatch: some\nwhere: [{field: a, op: eq, value: 1}]", ErrCodeInvalidMatch},
		{"no clauses", "name: a\nentity: p\nwhere: []", ErrCodeEmptyGroup},
		{"empty group", "name: a\nentity: p\nwhere: [{all: []}]", ErrCodeEmptyGroup},
		{"field and group", "name: a\nentity: p\nwhere: [{field: a, op: eq, any: [{field: b, op: eq}]}]", ErrCodeInvalidClause},
		{"blank clause", "name: a\nentity: p\nwhere: [{op: eq}]", ErrCodeInvalidClause},
		{"missing op", "name: a\nentity: p\nwhere: [{field: a}]", ErrCodeInvalidOperator},
		{"unknown op", "name: a\nentity: p\nwhere: [{field: a, op: approx}]", ErrCodeInvalidOperator},
		{"bad type", "name: a\nentity: p\nwhere: [{field: a, op: eq, type: money}]", ErrCodeInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.Equal(t, tt.code, Code(err), "error: %v", err)
		})
	}
}

func TestDefinitionError_Format(t *testing.T) {
	err := &DefinitionError{Code: ErrCodeMissingField, Field: "name", Message: "name is required"}
	assert.Equal(t, "E202: name: name is required", err.Error())

	err = &DefinitionError{Code: ErrCodeParse, Message: "empty document"}
	assert.Equal(t, "E201: empty document", err.Error())
}

func TestBuild(t *testing.T) {
	def, err := Parse([]byte(adultUS))
	require.NoError(t, err)

	l, err := Build(def, filter.Builder{})
	require.NoError(t, err)

	assert.Equal(t, `x => ((x.age >= 18) && ((x.country == "US") || (x.country == "CA")))`, l.String())

	x := l.Param()
	require.NotNil(t, x)
	assert.Equal(t, expr.EntityType("person"), x.Type())

	// Every leaf was built over its own parameter; after folding only the
	// surviving one is referenced.
	params := expr.Params(l.Body)
	require.Len(t, params, 1)
	assert.Same(t, x, params[0])
	assert.Equal(t, 3, expr.Refs(l.Body, x))
}

func TestBuild_Evaluates(t *testing.T) {
	def, err := Parse([]byte(adultUS))
	require.NoError(t, err)
	l, err := Build(def, filter.Builder{})
	require.NoError(t, err)

	tests := []struct {
		name   string
		record map[string]any
		want   bool
	}{
		{"adult us", map[string]any{"age": 30, "country": "US"}, true},
		{"adult ca", map[string]any{"age": 18, "country": "CA"}, true},
		{"minor us", map[string]any{"age": 12, "country": "US"}, false},
		{"adult fr", map[string]any{"age": 40, "country": "FR"}, false},
		{"missing fields", map[string]any{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.EvalAny(l, tt.record)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuild_MatchAnyAndParam(t *testing.T) {
	def, err := Parse([]byte(`
name: flagged
entity: account
param: a
match: any
where:
  - { field: owner.email, op: nullorempty }
  - { field: name, op: like, value: "test%" }
`))
	require.NoError(t, err)

	l, err := Build(def, filter.Builder{})
	require.NoError(t, err)
	assert.Equal(t, `a => (nullorempty(a.owner.email) || (a.name like "test%"))`, l.String())
}

func TestBuild_DateTime(t *testing.T) {
	def, err := Parse([]byte(`
name: recent
entity: order
where:
  - { field: placed, op: gte, type: datetime, value: "2024-01-01" }
`))
	require.NoError(t, err)

	l, err := Build(def, filter.Builder{})
	require.NoError(t, err)
	assert.Equal(t, `x => (x.placed >= 2024-01-01T00:00:00Z)`, l.String())

	got, err := eval.Eval(l, value.Object{"placed": value.Time(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))})
	require.NoError(t, err)
	assert.True(t, got)
}

func TestBuild_ConversionError(t *testing.T) {
	def, err := Parse([]byte(`
name: broken
entity: order
where:
  - { field: placed, op: gte, type: datetime, value: "last tuesday" }
`))
	require.NoError(t, err)

	_, err = Build(def, filter.Builder{})
	require.Error(t, err)
	assert.Equal(t, ErrCodeConversion, Code(err))

	var ce *value.ConversionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "last tuesday", ce.Raw)
}

func TestCombine(t *testing.T) {
	adults, err := Parse([]byte("name: adults\nentity: person\nwhere: [{field: age, op: gte, value: 18}]"))
	require.NoError(t, err)
	us, err := Parse([]byte("name: us\nentity: person\nparam: p\nwhere: [{field: country, op: eq, value: US}]"))
	require.NoError(t, err)

	l, err := Combine([]*Definition{adults, us}, expr.OrElse, filter.Builder{})
	require.NoError(t, err)
	assert.Equal(t, `x => ((x.age >= 18) || (x.country == "US"))`, l.String())
}

func TestCombine_TypeMismatch(t *testing.T) {
	people, err := Parse([]byte("name: people\nentity: person\nwhere: [{field: age, op: gte, value: 18}]"))
	require.NoError(t, err)
	orders, err := Parse([]byte("name: orders\nentity: order\nwhere: [{field: total, op: gt, value: 100}]"))
	require.NoError(t, err)

	_, err = Combine([]*Definition{people, orders}, expr.AndAlso, filter.Builder{})
	require.Error(t, err)
	assert.True(t, predicate.IsTypeMismatch(err))
}

func TestCombine_Empty(t *testing.T) {
	_, err := Combine(nil, expr.AndAlso, filter.Builder{})
	assert.ErrorIs(t, err, predicate.ErrEmpty)
}

func TestParseCUE(t *testing.T) {
	src := `
name:   "adult_na"
entity: "person"
where: [
	{field: "age", op: "gte", value: 18},
	{any: [
		{field: "country", op: "eq", value: "US"},
		{field: "country", op: "eq", value: "CA"},
	]},
]
`
	def, err := ParseCUE("adult.cue", []byte(src))
	require.NoError(t, err)

	l, err := Build(def, filter.Builder{})
	require.NoError(t, err)
	assert.Equal(t, `x => ((x.age >= 18) && ((x.country == "US") || (x.country == "CA")))`, l.String())
}

func TestParseCUE_SchemaViolation(t *testing.T) {
	src := `
name:   "bad"
entity: "person"
match:  "some"
where: [{field: "age", op: "gte", value: 18}]
`
	_, err := ParseCUE("bad.cue", []byte(src))
	require.Error(t, err)
	assert.Equal(t, ErrCodeParse, Code(err))

	var de *DefinitionError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "cue", de.Field)
}

func TestParseCUE_UnknownField(t *testing.T) {
	src := `
name:   "bad"
entity: "person"
limit:  10
where: [{field: "age", op: "gte", value: 18}]
`
	_, err := ParseCUE("bad.cue", []byte(src))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "adult.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(adultUS), 0o644))

	jsonPath := filepath.Join(dir, "adult.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"name":"adult","entity":"person","where":[{"field":"age","op":"gte","value":18}]}`), 0o644))

	cuePath := filepath.Join(dir, "adult.cue")
	require.NoError(t, os.WriteFile(cuePath, []byte(`name: "adult", entity: "person", where: [{field: "age", op: "gte", value: 18}]`), 0o644))

	for _, path := range []string{yamlPath, jsonPath, cuePath} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			def, err := Load(path)
			require.NoError(t, err)
			l, err := Build(def, filter.Builder{})
			require.NoError(t, err)

			got, err := eval.EvalAny(l, map[string]any{"age": 20, "country": "US"})
			require.NoError(t, err)
			assert.True(t, got)
		})
	}

	_, err := Load(filepath.Join(dir, "adult.toml"))
	require.Error(t, err)

	txt := filepath.Join(dir, "adult.txt")
	require.NoError(t, os.WriteFile(txt, []byte(adultUS), 0o644))
	_, err = Load(txt)
	assert.Equal(t, ErrCodeParse, Code(err))
}

func TestMarshalJSON_RoundTrip(t *testing.T) {
	def, err := Parse([]byte(adultUS))
	require.NoError(t, err)

	data, err := MarshalJSON(def)
	require.NoError(t, err)

	back, err := ParseJSON(data)
	require.NoError(t, err)

	l1, err := Build(def, filter.Builder{})
	require.NoError(t, err)
	l2, err := Build(back, filter.Builder{})
	require.NoError(t, err)
	assert.Equal(t, l1.String(), l2.String())
}
