package spec

import "fmt"

// ParameterDef is one named configuration dimension of the model's
// parameter space.
type ParameterDef struct {
	Name        string
	Type        string
	Description string
}

// ParameterSchema is an immutable, copy-on-add set of parameter
// definitions. With returns a new schema; existing snapshots are never
// mutated and are therefore safe to share across readers.
type ParameterSchema struct {
	defs  map[string]ParameterDef
	order []string
}

// NewParameterSchema returns the empty schema.
func NewParameterSchema() ParameterSchema {
	return ParameterSchema{}
}

// With returns a copy of the schema extended with def, failing on a
// duplicate name.
func (s ParameterSchema) With(def ParameterDef) (ParameterSchema, error) {
	if _, ok := s.defs[def.Name]; ok {
		return s, &DuplicateError{Kind: "parameter", Name: def.Name}
	}
	next := ParameterSchema{
		defs:  make(map[string]ParameterDef, len(s.defs)+1),
		order: make([]string, 0, len(s.order)+1),
	}
	for name, d := range s.defs {
		next.defs[name] = d
	}
	next.order = append(next.order, s.order...)
	next.defs[def.Name] = def
	next.order = append(next.order, def.Name)
	return next, nil
}

// Has reports whether name is defined.
func (s ParameterSchema) Has(name string) bool {
	_, ok := s.defs[name]
	return ok
}

// Get looks up a definition by name.
func (s ParameterSchema) Get(name string) (ParameterDef, bool) {
	d, ok := s.defs[name]
	return d, ok
}

// Names returns the parameter names in definition order.
func (s ParameterSchema) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of defined parameters.
func (s ParameterSchema) Len() int { return len(s.defs) }

// DuplicateError reports registration of an already-registered name.
// Duplicates are caller bugs and fail immediately, unlike ValidateSpec
// findings which are collected.
type DuplicateError struct {
	Kind string
	Name string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("[%s] %s %q is already registered", ErrDuplicate, e.Kind, e.Name)
}
