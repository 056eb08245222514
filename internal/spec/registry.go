package spec

import (
	"github.com/gdslab/blockspec/internal/block"
)

// Registry is the specification container. Build it with the Register*
// methods, then treat it as read-only. Iteration accessors return
// definitions in registration order so downstream output stays
// deterministic.
type Registry struct {
	types    map[string]TypeDef
	spaces   map[string]Space
	entities map[string]Entity
	blocks   map[string]block.Leaf
	wirings  map[string]SpecWiring
	params   ParameterSchema

	typeOrder   []string
	spaceOrder  []string
	entityOrder []string
	blockOrder  []string
	wiringOrder []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types:    make(map[string]TypeDef),
		spaces:   make(map[string]Space),
		entities: make(map[string]Entity),
		blocks:   make(map[string]block.Leaf),
		wirings:  make(map[string]SpecWiring),
		params:   NewParameterSchema(),
	}
}

// RegisterType inserts a type definition, failing on a duplicate name.
func (r *Registry) RegisterType(def TypeDef) error {
	if _, ok := r.types[def.Name]; ok {
		return &DuplicateError{Kind: "type", Name: def.Name}
	}
	r.types[def.Name] = def
	r.typeOrder = append(r.typeOrder, def.Name)
	return nil
}

// RegisterSpace inserts a space, failing on a duplicate name.
func (r *Registry) RegisterSpace(s Space) error {
	if _, ok := r.spaces[s.Name]; ok {
		return &DuplicateError{Kind: "space", Name: s.Name}
	}
	s.Fields = append([]Field(nil), s.Fields...)
	r.spaces[s.Name] = s
	r.spaceOrder = append(r.spaceOrder, s.Name)
	return nil
}

// RegisterEntity inserts an entity, failing on a duplicate name. The
// entity is copied; it is immutable once registered.
func (r *Registry) RegisterEntity(e Entity) error {
	if _, ok := r.entities[e.Name]; ok {
		return &DuplicateError{Kind: "entity", Name: e.Name}
	}
	e.Variables = append([]StateVariable(nil), e.Variables...)
	r.entities[e.Name] = e
	r.entityOrder = append(r.entityOrder, e.Name)
	return nil
}

// RegisterBlock inserts a leaf block, failing on a duplicate name.
// Composition trees are not registered; they are compiled. The registry
// holds the leaves that wirings and the canonical projection refer to.
func (r *Registry) RegisterBlock(b block.Leaf) error {
	if _, ok := r.blocks[b.Name()]; ok {
		return &DuplicateError{Kind: "block", Name: b.Name()}
	}
	r.blocks[b.Name()] = b
	r.blockOrder = append(r.blockOrder, b.Name())
	return nil
}

// RegisterWiring inserts a wiring group, failing on a duplicate name.
func (r *Registry) RegisterWiring(w SpecWiring) error {
	if _, ok := r.wirings[w.Name]; ok {
		return &DuplicateError{Kind: "wiring", Name: w.Name}
	}
	w.Blocks = append([]string(nil), w.Blocks...)
	w.Wires = append([]Wire(nil), w.Wires...)
	r.wirings[w.Name] = w
	r.wiringOrder = append(r.wiringOrder, w.Name)
	return nil
}

// AddParameter extends the parameter schema, failing on a duplicate
// name. The previous schema snapshot is unchanged.
func (r *Registry) AddParameter(def ParameterDef) error {
	next, err := r.params.With(def)
	if err != nil {
		return err
	}
	r.params = next
	return nil
}

// Type looks up a type definition.
func (r *Registry) Type(name string) (TypeDef, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Space looks up a space.
func (r *Registry) Space(name string) (Space, bool) {
	s, ok := r.spaces[name]
	return s, ok
}

// Entity looks up an entity.
func (r *Registry) Entity(name string) (Entity, bool) {
	e, ok := r.entities[name]
	return e, ok
}

// Block looks up a leaf block.
func (r *Registry) Block(name string) (block.Leaf, bool) {
	b, ok := r.blocks[name]
	return b, ok
}

// Wiring looks up a wiring group.
func (r *Registry) Wiring(name string) (SpecWiring, bool) {
	w, ok := r.wirings[name]
	return w, ok
}

// Params returns the current parameter schema snapshot.
func (r *Registry) Params() ParameterSchema { return r.params }

// Types returns all type definitions in registration order.
func (r *Registry) Types() []TypeDef {
	out := make([]TypeDef, 0, len(r.typeOrder))
	for _, name := range r.typeOrder {
		out = append(out, r.types[name])
	}
	return out
}

// Spaces returns all spaces in registration order.
func (r *Registry) Spaces() []Space {
	out := make([]Space, 0, len(r.spaceOrder))
	for _, name := range r.spaceOrder {
		out = append(out, r.spaces[name])
	}
	return out
}

// Entities returns all entities in registration order.
func (r *Registry) Entities() []Entity {
	out := make([]Entity, 0, len(r.entityOrder))
	for _, name := range r.entityOrder {
		out = append(out, r.entities[name])
	}
	return out
}

// Blocks returns all leaf blocks in registration order.
func (r *Registry) Blocks() []block.Leaf {
	out := make([]block.Leaf, 0, len(r.blockOrder))
	for _, name := range r.blockOrder {
		out = append(out, r.blocks[name])
	}
	return out
}

// Wirings returns all wiring groups in registration order.
func (r *Registry) Wirings() []SpecWiring {
	out := make([]SpecWiring, 0, len(r.wiringOrder))
	for _, name := range r.wiringOrder {
		out = append(out, r.wirings[name])
	}
	return out
}

// Mechanisms returns the registered mechanisms in registration order.
func (r *Registry) Mechanisms() []*block.Mechanism {
	var out []*block.Mechanism
	for _, name := range r.blockOrder {
		if m, ok := r.blocks[name].(*block.Mechanism); ok {
			out = append(out, m)
		}
	}
	return out
}
