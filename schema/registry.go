package schema

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-openapi/inflect"
)

// Registry maps Go prototype types to their entity metadata. Register
// every entity at startup; lookups afterwards are read-only and safe
// for unsynchronized concurrent use.
type Registry struct {
	mu       sync.RWMutex
	entities map[reflect.Type]*Entity
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entities: make(map[reflect.Type]*Entity)}
}

// Register finalizes def against the prototype struct type and stores
// the entity under that type. Every field must resolve to a struct
// field of the prototype (matched case-insensitively). If the
// definition carries no table name, it is derived by pluralizing the
// prototype type name.
func (r *Registry) Register(prototype any, def *Def) (*Entity, error) {
	t, err := structType(prototype)
	if err != nil {
		return nil, err
	}
	table := def.table
	if table == "" {
		table = inflect.Pluralize(t.Name())
	}
	e, err := def.build(table)
	if err != nil {
		return nil, err
	}
	for _, f := range e.fields {
		idx := -1
		for i := 0; i < t.NumField(); i++ {
			if strings.EqualFold(t.Field(i).Name, f.Name) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("schema: table %s: field %s has no struct field on %s", table, f.Name, t)
		}
		f.index = idx
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.entities[t]; dup {
		return nil, fmt.Errorf("schema: %s is already registered", t)
	}
	r.entities[t] = e
	return e, nil
}

// MustRegister is like Register but panics on error. Intended for
// package-level entity declarations.
func (r *Registry) MustRegister(prototype any, def *Def) *Entity {
	e, err := r.Register(prototype, def)
	if err != nil {
		panic(err)
	}
	return e
}

// Describe returns the entity metadata registered for v's type.
// Unregistered types fail with an error matching ErrNotAnEntity.
func (r *Registry) Describe(v any) (*Entity, error) {
	t, err := structType(v)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	e, ok := r.entities[t]
	r.mu.RUnlock()
	if !ok {
		return nil, &NotAnEntityError{Type: t}
	}
	return e, nil
}

// Fields returns the ordered field descriptors for v's type.
func (r *Registry) Fields(v any) ([]*Field, error) {
	e, err := r.Describe(v)
	if err != nil {
		return nil, err
	}
	return e.Fields(), nil
}

func structType(v any) (reflect.Type, error) {
	t := reflect.TypeOf(v)
	if t == nil {
		return nil, fmt.Errorf("schema: nil prototype")
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, &NotAnEntityError{Type: t}
	}
	return t, nil
}
