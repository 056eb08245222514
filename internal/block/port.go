package block

import "github.com/gdslab/blockspec/internal/token"

// Port is one typed slot on a block boundary. The token set is derived
// from the name at construction and frozen; Port values are immutable
// and compare structurally by token set.
type Port struct {
	name   string
	tokens token.Set
}

// NewPort builds a port from a free-text label, e.g. "Orders + Inventory".
func NewPort(name string) Port {
	return Port{name: name, tokens: token.Tokenize(name)}
}

// NewPorts builds a port sequence from labels, preserving order.
func NewPorts(names ...string) []Port {
	ports := make([]Port, len(names))
	for i, name := range names {
		ports[i] = NewPort(name)
	}
	return ports
}

// Name returns the original label.
func (p Port) Name() string { return p.name }

// Tokens returns a copy of the port's token set.
func (p Port) Tokens() token.Set { return p.tokens.Clone() }

// Key returns the canonical token string, the port's structural identity.
func (p Port) Key() string { return p.tokens.Canonical() }

// Equal reports structural equality: same token set, regardless of how
// the labels were spelled.
func (p Port) Equal(q Port) bool { return token.Equal(p.tokens, q.tokens) }

// Interface is a block boundary: four ordered port sequences. The
// forward pair carries covariant (same-timestep, forward) flow, the
// backward pair contravariant feedback. Interfaces are immutable; all
// accessors return copies.
type Interface struct {
	forwardIn   []Port
	forwardOut  []Port
	backwardIn  []Port
	backwardOut []Port
}

// NewInterface builds an interface from the four port sequences. The
// slices are copied; callers keep ownership of their arguments.
func NewInterface(forwardIn, forwardOut, backwardIn, backwardOut []Port) Interface {
	return Interface{
		forwardIn:   clonePorts(forwardIn),
		forwardOut:  clonePorts(forwardOut),
		backwardIn:  clonePorts(backwardIn),
		backwardOut: clonePorts(backwardOut),
	}
}

// ForwardInterface is shorthand for a purely covariant boundary.
func ForwardInterface(forwardIn, forwardOut []Port) Interface {
	return NewInterface(forwardIn, forwardOut, nil, nil)
}

func (i Interface) ForwardIn() []Port   { return clonePorts(i.forwardIn) }
func (i Interface) ForwardOut() []Port  { return clonePorts(i.forwardOut) }
func (i Interface) BackwardIn() []Port  { return clonePorts(i.backwardIn) }
func (i Interface) BackwardOut() []Port { return clonePorts(i.backwardOut) }

// HasInput reports whether any input sequence is non-empty.
func (i Interface) HasInput() bool {
	return len(i.forwardIn) > 0 || len(i.backwardIn) > 0
}

// HasOutput reports whether any output sequence is non-empty.
func (i Interface) HasOutput() bool {
	return len(i.forwardOut) > 0 || len(i.backwardOut) > 0
}

// ForwardInTokens returns the union of forward-in port tokens.
func (i Interface) ForwardInTokens() token.Set { return unionTokens(i.forwardIn) }

// ForwardOutTokens returns the union of forward-out port tokens.
func (i Interface) ForwardOutTokens() token.Set { return unionTokens(i.forwardOut) }

// concat is field-wise concatenation, the interface of a sequential or
// parallel composition.
func (i Interface) concat(j Interface) Interface {
	return Interface{
		forwardIn:   concatPorts(i.forwardIn, j.forwardIn),
		forwardOut:  concatPorts(i.forwardOut, j.forwardOut),
		backwardIn:  concatPorts(i.backwardIn, j.backwardIn),
		backwardOut: concatPorts(i.backwardOut, j.backwardOut),
	}
}

func clonePorts(ports []Port) []Port {
	if len(ports) == 0 {
		return nil
	}
	out := make([]Port, len(ports))
	copy(out, ports)
	return out
}

func concatPorts(a, b []Port) []Port {
	out := make([]Port, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

func unionTokens(ports []Port) token.Set {
	union := make(token.Set)
	for _, p := range ports {
		for tok := range p.tokens {
			union[tok] = true
		}
	}
	return union
}
