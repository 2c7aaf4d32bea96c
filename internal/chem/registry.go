package chem

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateChemical = errors.New("chem: duplicate chemical name")
	ErrEmptyName         = errors.New("chem: empty chemical name")
)

// ID is the handle a Registry assigns to a chemical.
type ID int

// Chemical is a named species. The zero value is not a valid chemical.
// Chemicals compare equal only when issued by the same registry.
type Chemical struct {
	reg  *Registry
	id   ID
	name string
}

func (c Chemical) ID() ID         { return c.id }
func (c Chemical) Name() string   { return c.name }
func (c Chemical) String() string { return c.name }
func (c Chemical) IsZero() bool   { return c.name == "" }

// Registry maps names to chemicals in declaration order.
type Registry struct {
	byName    map[string]ID
	chemicals []Chemical
}

func NewRegistry() *Registry {
	return &Registry{
		byName:    make(map[string]ID),
		chemicals: make([]Chemical, 0),
	}
}

// Register adds a chemical with the next free handle.
func (r *Registry) Register(name string) (Chemical, error) {
	if name == "" {
		return Chemical{}, ErrEmptyName
	}
	if _, ok := r.byName[name]; ok {
		return Chemical{}, fmt.Errorf("%w: %s", ErrDuplicateChemical, name)
	}
	c := Chemical{reg: r, id: ID(len(r.chemicals)), name: name}
	r.byName[name] = c.id
	r.chemicals = append(r.chemicals, c)
	return c, nil
}

func (r *Registry) Lookup(name string) (Chemical, bool) {
	id, ok := r.byName[name]
	if !ok {
		return Chemical{}, false
	}
	return r.chemicals[id], true
}

// At returns the chemical with handle id.
func (r *Registry) At(id ID) (Chemical, bool) {
	if id < 0 || int(id) >= len(r.chemicals) {
		return Chemical{}, false
	}
	return r.chemicals[id], true
}

// Contains reports whether c was issued by this registry.
func (r *Registry) Contains(c Chemical) bool {
	if c.reg != r {
		return false
	}
	got, ok := r.At(c.id)
	return ok && got == c
}

func (r *Registry) Len() int { return len(r.chemicals) }

// Chemicals returns a copy of all chemicals in declaration order.
func (r *Registry) Chemicals() []Chemical {
	out := make([]Chemical, len(r.chemicals))
	copy(out, r.chemicals)
	return out
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.chemicals))
	for i, c := range r.chemicals {
		names[i] = c.name
	}
	return names
}
