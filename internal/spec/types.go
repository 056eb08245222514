package spec

// TypeDef names a semantic type. Identity is by name; Kind is the
// primitive representation. Predicate is an optional user-supplied value
// constraint, called synchronously wherever a caller chooses to apply
// it - there is no guard against an unbounded predicate, which is a
// documented boundary risk, and predicates are excluded from
// serialization.
type TypeDef struct {
	Name      string
	Kind      string
	Predicate func(any) bool
	Metadata  map[string]string
}

// Field is one typed slot of a Space.
type Field struct {
	Name string
	Type string
}

// Space is a named product of typed fields, used to label wires.
type Space struct {
	Name   string
	Fields []Field
}

// StateVariable is one dimension of an entity's state: a semantic type
// plus an optional display symbol.
type StateVariable struct {
	Name   string
	Type   string
	Symbol string
}

// Entity is a named aggregate of state variables. Entities are immutable
// once registered; only mechanisms may declare writes against them.
type Entity struct {
	Name      string
	Variables []StateVariable
}

// Variable looks up a state variable by name.
func (e Entity) Variable(name string) (StateVariable, bool) {
	for _, v := range e.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return StateVariable{}, false
}

// Wire is one directed connection between two registered blocks,
// optionally labeled with the space flowing across it. Optional marks a
// wire whose signal need not be present every timestep.
type Wire struct {
	Source   string
	Target   string
	Space    string
	Optional bool
}

// SpecWiring groups a named set of wires together with the block names
// they connect. Groups scope write-conflict detection: two mechanisms
// updating the same state variable conflict only when they share a
// group.
type SpecWiring struct {
	Name   string
	Blocks []string
	Wires  []Wire
}
