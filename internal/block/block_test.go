package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Port / Interface
// =============================================================================

func TestPortTokensDeriveFromName(t *testing.T) {
	p := NewPort("Orders + Inventory")
	assert.Equal(t, "inventory+orders", p.Key())
	assert.Equal(t, "Orders + Inventory", p.Name())
}

func TestPortStructuralEquality(t *testing.T) {
	a := NewPort("orders+inventory")
	b := NewPort("Inventory, Orders")
	assert.True(t, a.Equal(b), "equality is by token set, not spelling")
	assert.False(t, a.Equal(NewPort("orders")))
}

func TestPortTokensAreFrozen(t *testing.T) {
	p := NewPort("orders")
	toks := p.Tokens()
	toks["mutated"] = true
	assert.False(t, p.Tokens()["mutated"], "Tokens must return a copy")
}

func TestInterfaceAccessorsCopy(t *testing.T) {
	iface := NewInterface(NewPorts("a"), NewPorts("b"), nil, nil)
	fin := iface.ForwardIn()
	fin[0] = NewPort("clobbered")
	assert.Equal(t, "a", iface.ForwardIn()[0].Name())
}

func TestInterfaceInputOutputPresence(t *testing.T) {
	assert.False(t, NewInterface(nil, nil, nil, nil).HasInput())
	assert.True(t, NewInterface(NewPorts("x"), nil, nil, nil).HasInput())
	assert.True(t, NewInterface(nil, nil, NewPorts("fb"), nil).HasInput())
	assert.True(t, NewInterface(nil, NewPorts("x"), nil, nil).HasOutput())
	assert.True(t, NewInterface(nil, nil, nil, NewPorts("fb")).HasOutput())
}

// =============================================================================
// Role constructors
// =============================================================================

func TestBoundaryActionRejectsForwardIn(t *testing.T) {
	_, err := NewBoundaryAction("S", NewInterface(NewPorts("x"), NewPorts("y"), nil, nil))
	require.Error(t, err)
	var cerr *CompositionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, ErrBoundaryForwardIn, cerr.Code)
	assert.Equal(t, "S", cerr.Block)
}

func TestBoundaryActionValid(t *testing.T) {
	b, err := NewBoundaryAction("S", ForwardInterface(nil, NewPorts("x")))
	require.NoError(t, err)
	assert.Equal(t, RoleBoundary, b.Role())
	assert.Empty(t, b.Interface().ForwardIn())
}

func TestMechanismRejectsBackwardPorts(t *testing.T) {
	cases := []struct {
		name  string
		iface Interface
	}{
		{"backward-in", NewInterface(NewPorts("x"), nil, NewPorts("fb"), nil)},
		{"backward-out", NewInterface(NewPorts("x"), nil, nil, NewPorts("fb"))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewMechanism("M", tc.iface, []StateUpdate{{Entity: "E", Variable: "v"}})
			var cerr *CompositionError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, ErrMechanismBackward, cerr.Code)
		})
	}
}

func TestMechanismUpdatesCopied(t *testing.T) {
	updates := []StateUpdate{{Entity: "E", Variable: "v"}}
	m, err := NewMechanism("M", ForwardInterface(NewPorts("x"), nil), updates)
	require.NoError(t, err)

	updates[0].Entity = "mutated"
	got := m.Updates()
	require.Len(t, got, 1)
	assert.Equal(t, "E", got[0].Entity)

	got[0].Variable = "mutated"
	assert.Equal(t, "v", m.Updates()[0].Variable)
}

func TestPolicyAndControlHaveNoExtraConstraint(t *testing.T) {
	iface := NewInterface(NewPorts("obs"), NewPorts("dec"), NewPorts("fb"), NewPorts("fb"))
	p, err := NewPolicy("P", iface)
	require.NoError(t, err)
	assert.Equal(t, RolePolicy, p.Role())

	c, err := NewControlAction("C", iface)
	require.NoError(t, err)
	assert.Equal(t, RoleControl, c.Role())
}

func TestParamsUsedCopied(t *testing.T) {
	a := NewAtomic("A", Interface{}, "rate")
	params := a.ParamsUsed()
	params[0] = "mutated"
	assert.Equal(t, []string{"rate"}, a.ParamsUsed())
}

// =============================================================================
// Composition algebra
// =============================================================================

func stackable(t *testing.T) (Block, Block) {
	t.Helper()
	first := NewAtomic("A", ForwardInterface(nil, NewPorts("orders")))
	second := NewAtomic("B", ForwardInterface(NewPorts("orders+inventory"), NewPorts("shipment")))
	return first, second
}

func TestStackValidatesTokenOverlap(t *testing.T) {
	first, second := stackable(t)
	s, err := NewStack(first, second)
	require.NoError(t, err)
	assert.Equal(t, "stack(A,B)", s.Name())
}

func TestStackRejectsDisjointTokens(t *testing.T) {
	first := NewAtomic("A", ForwardInterface(nil, NewPorts("orders")))
	second := NewAtomic("B", ForwardInterface(NewPorts("payments"), nil))
	_, err := NewStack(first, second)
	var ierr *IncompatibleError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "A", ierr.First)
	assert.Equal(t, "B", ierr.Second)
	assert.Equal(t, []string{"orders"}, ierr.OutTokens)
	assert.Equal(t, []string{"payments"}, ierr.InTokens)
}

func TestStackExplicitWiringOverridesCheck(t *testing.T) {
	first := NewAtomic("A", ForwardInterface(nil, NewPorts("orders")))
	second := NewAtomic("B", ForwardInterface(NewPorts("payments"), nil))
	s, err := NewStack(first, second, Wiring{Source: "A", Target: "B", Label: "payments"})
	require.NoError(t, err)
	assert.Len(t, s.Wirings(), 1)
}

func TestStackSkipsCheckWhenEitherSideEmpty(t *testing.T) {
	sink := NewAtomic("Sink", ForwardInterface(NewPorts("anything"), nil))
	source := NewAtomic("Source", Interface{})
	_, err := NewStack(source, sink)
	assert.NoError(t, err, "empty forward-out skips the overlap check")
}

func TestStackInterfaceIsConcatenation(t *testing.T) {
	first, second := stackable(t)
	s, err := NewStack(first, second)
	require.NoError(t, err)

	iface := s.Interface()
	require.Len(t, iface.ForwardIn(), 1)
	assert.Equal(t, "orders+inventory", iface.ForwardIn()[0].Name())
	require.Len(t, iface.ForwardOut(), 2)
	assert.Equal(t, "orders", iface.ForwardOut()[0].Name())
	assert.Equal(t, "shipment", iface.ForwardOut()[1].Name())
}

func TestParallelNoValidation(t *testing.T) {
	left := NewAtomic("L", ForwardInterface(nil, NewPorts("orders")))
	right := NewAtomic("R", ForwardInterface(NewPorts("payments"), nil))
	p, err := NewParallel(left, right)
	require.NoError(t, err)
	assert.Equal(t, "parallel(L,R)", p.Name())
	assert.Len(t, p.Interface().ForwardOut(), 1)
}

func TestFlattenLaws(t *testing.T) {
	a := NewAtomic("A", ForwardInterface(nil, NewPorts("x")))
	b := NewAtomic("B", ForwardInterface(NewPorts("x"), NewPorts("y")))
	c := NewAtomic("C", ForwardInterface(NewPorts("y"), nil))

	ab, err := NewStack(a, b)
	require.NoError(t, err)
	abc, err := NewStack(ab, c)
	require.NoError(t, err)

	// flatten(Stack(a,b)) == flatten(a) + flatten(b), recursively.
	assert.Equal(t, []string{"A", "B", "C"}, leafNames(abc))

	par, err := NewParallel(ab, c)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, leafNames(par))
}

func TestLoopWrappersPreserveFlattenAndInterface(t *testing.T) {
	a := NewAtomic("A", ForwardInterface(nil, NewPorts("x")))
	b := NewAtomic("B", ForwardInterface(NewPorts("x"), NewPorts("y")))
	inner, err := NewStack(a, b)
	require.NoError(t, err)

	fb, err := NewFeedbackLoop(inner, Wiring{Source: "B", Target: "A", Direction: Contravariant})
	require.NoError(t, err)
	assert.Equal(t, leafNames(inner), leafNames(fb))
	assert.Equal(t, inner.Interface(), fb.Interface())

	tl, err := NewTemporalLoop(inner, []Wiring{{Source: "B", Target: "A", Direction: Covariant}}, "t < horizon")
	require.NoError(t, err)
	assert.Equal(t, leafNames(inner), leafNames(tl))
	assert.Equal(t, inner.Interface(), tl.Interface())
	assert.Equal(t, "t < horizon", tl.ExitCondition())
}

func TestTemporalLoopRejectsContravariantWiring(t *testing.T) {
	inner := NewAtomic("A", ForwardInterface(NewPorts("x"), NewPorts("x")))
	_, err := NewTemporalLoop(inner, []Wiring{
		{Source: "A", Target: "A", Direction: Covariant},
		{Source: "A", Target: "A", Direction: Contravariant},
	}, "")
	var cerr *CompositionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, ErrTemporalDirection, cerr.Code)
	assert.Contains(t, cerr.Message, "A -> A")
}

func TestCompositesRejectNilChildren(t *testing.T) {
	a := NewAtomic("A", Interface{})
	_, err := NewStack(nil, a)
	assert.Error(t, err)
	_, err = NewParallel(a, nil)
	assert.Error(t, err)
	_, err = NewFeedbackLoop(nil)
	assert.Error(t, err)
	_, err = NewTemporalLoop(nil, nil, "")
	assert.Error(t, err)
}

func leafNames(b Block) []string {
	leaves := b.Flatten()
	names := make([]string, len(leaves))
	for i, leaf := range leaves {
		names[i] = leaf.Name()
	}
	return names
}
