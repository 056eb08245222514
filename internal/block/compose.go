package block

import (
	"fmt"

	"github.com/gdslab/blockspec/internal/token"
)

// Direction classifies signal flow on a declared wiring.
type Direction int

const (
	// Covariant is forward data flow within a timestep.
	Covariant Direction = iota
	// Contravariant is backward feedback flow within a timestep.
	Contravariant
)

func (d Direction) String() string {
	if d == Contravariant {
		return "contravariant"
	}
	return "covariant"
}

// Wiring is one declared edge inside a composite: source and target name
// blocks, Label optionally names a space carried on the edge.
type Wiring struct {
	Source    string
	Target    string
	Label     string
	Direction Direction
}

// Stack is sequential composition: first feeds second. Its interface is
// the field-wise concatenation of the children's interfaces.
type Stack struct {
	first   Block
	second  Block
	wirings []Wiring
}

// NewStack composes two blocks in sequence. With no explicit wirings the
// constructor requires first's forward-out tokens to overlap second's
// forward-in tokens (when both sides are non-empty) and fails with an
// IncompatibleError naming both token sets otherwise. Explicit wirings
// override the check entirely.
func NewStack(first, second Block, wirings ...Wiring) (*Stack, error) {
	if first == nil || second == nil {
		return nil, &CompositionError{Code: ErrNilChild, Block: "stack", Message: "both children are required"}
	}
	if len(wirings) == 0 {
		out := first.Interface().ForwardOutTokens()
		in := second.Interface().ForwardInTokens()
		if len(out) > 0 && len(in) > 0 && !token.Overlap(out, in) {
			return nil, &IncompatibleError{
				First:     first.Name(),
				Second:    second.Name(),
				OutTokens: out.Sorted(),
				InTokens:  in.Sorted(),
			}
		}
	}
	s := &Stack{first: first, second: second, wirings: make([]Wiring, len(wirings))}
	copy(s.wirings, wirings)
	return s, nil
}

func (s *Stack) Name() string {
	return fmt.Sprintf("stack(%s,%s)", s.first.Name(), s.second.Name())
}

func (s *Stack) Interface() Interface {
	return s.first.Interface().concat(s.second.Interface())
}

func (s *Stack) Flatten() []Leaf {
	return append(s.first.Flatten(), s.second.Flatten()...)
}

// First returns the upstream child.
func (s *Stack) First() Block { return s.first }

// Second returns the downstream child.
func (s *Stack) Second() Block { return s.second }

// Wirings returns the explicit inter-stage wirings, empty when the
// default token-overlap wiring applies.
func (s *Stack) Wirings() []Wiring { return cloneWirings(s.wirings) }

func (s *Stack) blockNode() {}

// Parallel composes two blocks side by side. No validation: the children
// do not exchange signals. Interface is field-wise concatenation.
type Parallel struct {
	left  Block
	right Block
}

func NewParallel(left, right Block) (*Parallel, error) {
	if left == nil || right == nil {
		return nil, &CompositionError{Code: ErrNilChild, Block: "parallel", Message: "both children are required"}
	}
	return &Parallel{left: left, right: right}, nil
}

func (p *Parallel) Name() string {
	return fmt.Sprintf("parallel(%s,%s)", p.left.Name(), p.right.Name())
}

func (p *Parallel) Interface() Interface {
	return p.left.Interface().concat(p.right.Interface())
}

func (p *Parallel) Flatten() []Leaf {
	return append(p.left.Flatten(), p.right.Flatten()...)
}

func (p *Parallel) Left() Block  { return p.left }
func (p *Parallel) Right() Block { return p.right }

func (p *Parallel) blockNode() {}

// FeedbackLoop wraps a block with same-timestep feedback wirings. The
// interface passes through unchanged and the declared wirings carry no
// direction restriction.
type FeedbackLoop struct {
	inner   Block
	wirings []Wiring
}

func NewFeedbackLoop(inner Block, wirings ...Wiring) (*FeedbackLoop, error) {
	if inner == nil {
		return nil, &CompositionError{Code: ErrNilChild, Block: "feedback", Message: "inner block is required"}
	}
	f := &FeedbackLoop{inner: inner, wirings: make([]Wiring, len(wirings))}
	copy(f.wirings, wirings)
	return f, nil
}

func (f *FeedbackLoop) Name() string {
	return fmt.Sprintf("feedback(%s)", f.inner.Name())
}

func (f *FeedbackLoop) Interface() Interface { return f.inner.Interface() }
func (f *FeedbackLoop) Flatten() []Leaf      { return f.inner.Flatten() }
func (f *FeedbackLoop) Inner() Block         { return f.inner }
func (f *FeedbackLoop) Wirings() []Wiring    { return cloneWirings(f.wirings) }

func (f *FeedbackLoop) blockNode() {}

// TemporalLoop wraps a block with wirings that cross timestep
// boundaries: forward output at step t feeds forward input at step t+1.
// Every declared wiring must therefore be covariant. The exit condition
// is opaque metadata surfaced in the IR for reporting; it is never
// evaluated.
type TemporalLoop struct {
	inner         Block
	wirings       []Wiring
	exitCondition string
}

// NewTemporalLoop builds a temporal loop, failing with a
// CompositionError naming the endpoints of the first contravariant
// wiring encountered.
func NewTemporalLoop(inner Block, wirings []Wiring, exitCondition string) (*TemporalLoop, error) {
	if inner == nil {
		return nil, &CompositionError{Code: ErrNilChild, Block: "temporal", Message: "inner block is required"}
	}
	for _, w := range wirings {
		if w.Direction != Covariant {
			return nil, &CompositionError{
				Code:    ErrTemporalDirection,
				Block:   fmt.Sprintf("temporal(%s)", inner.Name()),
				Message: fmt.Sprintf("temporal wiring %s -> %s must be covariant, got %s", w.Source, w.Target, w.Direction),
			}
		}
	}
	t := &TemporalLoop{
		inner:         inner,
		wirings:       make([]Wiring, len(wirings)),
		exitCondition: exitCondition,
	}
	copy(t.wirings, wirings)
	return t, nil
}

func (t *TemporalLoop) Name() string {
	return fmt.Sprintf("temporal(%s)", t.inner.Name())
}

func (t *TemporalLoop) Interface() Interface { return t.inner.Interface() }
func (t *TemporalLoop) Flatten() []Leaf      { return t.inner.Flatten() }
func (t *TemporalLoop) Inner() Block         { return t.inner }
func (t *TemporalLoop) Wirings() []Wiring    { return cloneWirings(t.wirings) }

// ExitCondition returns the loop's reporting-only exit condition.
func (t *TemporalLoop) ExitCondition() string { return t.exitCondition }

func (t *TemporalLoop) blockNode() {}

func cloneWirings(ws []Wiring) []Wiring {
	if len(ws) == 0 {
		return nil
	}
	out := make([]Wiring, len(ws))
	copy(out, ws)
	return out
}
