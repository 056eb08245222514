package block

import "fmt"

// Block is the composition unit. It is a sealed interface - only types
// in this package implement it.
//
// Variants:
//   - Leaves: Atomic, BoundaryAction, Policy, ControlAction, Mechanism
//   - Composites: Stack, Parallel, FeedbackLoop, TemporalLoop
type Block interface {
	// Name uniquely identifies the block within one registry.
	Name() string

	// Interface returns the block's four-part boundary. Composites
	// derive it from their children on every call.
	Interface() Interface

	// Flatten returns the ordered leaf list: recursive left-to-right,
	// first before second.
	Flatten() []Leaf

	blockNode() // marker - seals the interface to this package
}

// Leaf is a non-composite block. Also sealed.
type Leaf interface {
	Block

	// Role returns the leaf's taxonomy role.
	Role() Role

	// ParamsUsed returns the parameter names the block references.
	ParamsUsed() []string

	leafNode() // marker
}

// Role is the closed taxonomy of leaf kinds.
type Role int

const (
	// RoleGeneric is an untyped atomic block, assigned no taxonomy role.
	RoleGeneric Role = iota
	// RoleBoundary is an exogenous source: signals enter the system here.
	RoleBoundary
	// RolePolicy is a decision function over observed signals.
	RolePolicy
	// RoleControl is an endogenous control action within the system.
	RoleControl
	// RoleMechanism is the sole state-writing kind.
	RoleMechanism
)

// String returns the role name used in IR metadata and reports.
func (r Role) String() string {
	switch r {
	case RoleGeneric:
		return "generic"
	case RoleBoundary:
		return "boundary"
	case RolePolicy:
		return "policy"
	case RoleControl:
		return "control"
	case RoleMechanism:
		return "mechanism"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// StateUpdate is one declared state write: a Mechanism names the entity
// and state variable it writes. Updates are the sole declaration of
// write intent anywhere in the model.
type StateUpdate struct {
	Entity   string
	Variable string
}

func (u StateUpdate) String() string {
	return u.Entity + "." + u.Variable
}

// Atomic is a role-less leaf block. Front-ends use it for blocks that
// do not participate in the canonical decomposition.
type Atomic struct {
	name   string
	iface  Interface
	params []string
}

// NewAtomic builds a generic leaf. params lists the parameter names the
// block reads from the parameter schema; the registry resolves them.
func NewAtomic(name string, iface Interface, params ...string) *Atomic {
	return &Atomic{name: name, iface: iface, params: cloneStrings(params)}
}

func (a *Atomic) Name() string         { return a.name }
func (a *Atomic) Interface() Interface { return a.iface }
func (a *Atomic) Flatten() []Leaf      { return []Leaf{a} }
func (a *Atomic) Role() Role           { return RoleGeneric }
func (a *Atomic) ParamsUsed() []string { return cloneStrings(a.params) }
func (a *Atomic) blockNode()           {}
func (a *Atomic) leafNode()            {}

// BoundaryAction is an exogenous source. Its forward-in sequence is
// always empty: nothing inside the system feeds it.
type BoundaryAction struct {
	name   string
	iface  Interface
	params []string
}

// NewBoundaryAction builds a boundary source, failing if the interface
// declares any forward-in port.
func NewBoundaryAction(name string, iface Interface, params ...string) (*BoundaryAction, error) {
	if n := len(iface.forwardIn); n > 0 {
		return nil, &CompositionError{
			Code:    ErrBoundaryForwardIn,
			Block:   name,
			Message: fmt.Sprintf("boundary action must have no forward-in ports, found %d", n),
		}
	}
	return &BoundaryAction{name: name, iface: iface, params: cloneStrings(params)}, nil
}

func (b *BoundaryAction) Name() string         { return b.name }
func (b *BoundaryAction) Interface() Interface { return b.iface }
func (b *BoundaryAction) Flatten() []Leaf      { return []Leaf{b} }
func (b *BoundaryAction) Role() Role           { return RoleBoundary }
func (b *BoundaryAction) ParamsUsed() []string { return cloneStrings(b.params) }
func (b *BoundaryAction) blockNode()           {}
func (b *BoundaryAction) leafNode()            {}

// Policy is a decision function. No structural constraint beyond the
// common interface shape.
type Policy struct {
	name   string
	iface  Interface
	params []string
}

func NewPolicy(name string, iface Interface, params ...string) (*Policy, error) {
	return &Policy{name: name, iface: iface, params: cloneStrings(params)}, nil
}

func (p *Policy) Name() string         { return p.name }
func (p *Policy) Interface() Interface { return p.iface }
func (p *Policy) Flatten() []Leaf      { return []Leaf{p} }
func (p *Policy) Role() Role           { return RolePolicy }
func (p *Policy) ParamsUsed() []string { return cloneStrings(p.params) }
func (p *Policy) blockNode()           {}
func (p *Policy) leafNode()            {}

// ControlAction is an endogenous control signal source. No structural
// constraint beyond the common interface shape.
type ControlAction struct {
	name   string
	iface  Interface
	params []string
}

func NewControlAction(name string, iface Interface, params ...string) (*ControlAction, error) {
	return &ControlAction{name: name, iface: iface, params: cloneStrings(params)}, nil
}

func (c *ControlAction) Name() string         { return c.name }
func (c *ControlAction) Interface() Interface { return c.iface }
func (c *ControlAction) Flatten() []Leaf      { return []Leaf{c} }
func (c *ControlAction) Role() Role           { return RoleControl }
func (c *ControlAction) ParamsUsed() []string { return cloneStrings(c.params) }
func (c *ControlAction) blockNode()           {}
func (c *ControlAction) leafNode()            {}

// Mechanism is the sole state-writing leaf. Its backward sequences are
// always empty: state writes terminate forward flow, they do not feed
// back within a timestep.
type Mechanism struct {
	name    string
	iface   Interface
	updates []StateUpdate
	params  []string
}

// NewMechanism builds a mechanism, failing if the interface declares any
// backward port. updates lists the (entity, variable) pairs the
// mechanism writes; the registry resolves them against registered
// entities.
func NewMechanism(name string, iface Interface, updates []StateUpdate, params ...string) (*Mechanism, error) {
	if n := len(iface.backwardIn) + len(iface.backwardOut); n > 0 {
		return nil, &CompositionError{
			Code:    ErrMechanismBackward,
			Block:   name,
			Message: fmt.Sprintf("mechanism must have no backward ports, found %d", n),
		}
	}
	m := &Mechanism{
		name:    name,
		iface:   iface,
		updates: make([]StateUpdate, len(updates)),
		params:  cloneStrings(params),
	}
	copy(m.updates, updates)
	return m, nil
}

// Updates returns a copy of the declared state writes.
func (m *Mechanism) Updates() []StateUpdate {
	out := make([]StateUpdate, len(m.updates))
	copy(out, m.updates)
	return out
}

func (m *Mechanism) Name() string         { return m.name }
func (m *Mechanism) Interface() Interface { return m.iface }
func (m *Mechanism) Flatten() []Leaf      { return []Leaf{m} }
func (m *Mechanism) Role() Role           { return RoleMechanism }
func (m *Mechanism) ParamsUsed() []string { return cloneStrings(m.params) }
func (m *Mechanism) blockNode()           {}
func (m *Mechanism) leafNode()            {}

func cloneStrings(ss []string) []string {
	if len(ss) == 0 {
		return nil
	}
	out := make([]string, len(ss))
	copy(out, ss)
	return out
}
