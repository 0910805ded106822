package expr

import (
	"reflect"

	"github.com/google/uuid"
)

// EntityType names the type of value a parameter ranges over.
//
// For statically typed predicates it is derived from the Go type with
// TypeOf. Dynamically loaded predicates supply their own name (e.g. "person").
type EntityType string

// TypeOf returns the EntityType for T.
// Named types are qualified by package path so that identically named types
// from different packages do not compare equal.
func TypeOf[T any]() EntityType {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Name() != "" && t.PkgPath() != "" {
		return EntityType(t.PkgPath() + "." + t.Name())
	}
	return EntityType(t.String())
}

// Param is a bound variable identity.
//
// Equality is pointer identity; the name is for display only. The ID is a
// UUIDv7 that makes parameters distinguishable in logs and debug output.
type Param struct {
	id   uuid.UUID
	name string
	typ  EntityType
}

// NewParam creates a fresh parameter.
func NewParam(name string, typ EntityType) *Param {
	return &Param{
		id:   uuid.Must(uuid.NewV7()),
		name: name,
		typ:  typ,
	}
}

// Name returns the display name.
func (p *Param) Name() string { return p.name }

// Type returns the entity type the parameter ranges over.
func (p *Param) Type() EntityType { return p.typ }

// ID returns the diagnostic identifier.
func (p *Param) ID() uuid.UUID { return p.id }

// String returns the display name.
func (p *Param) String() string { return p.name }
