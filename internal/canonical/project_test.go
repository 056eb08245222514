package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdslab/blockspec/internal/block"
	"github.com/gdslab/blockspec/internal/spec"
)

// minimalPipeline: boundary S (forward_out X) feeding mechanism M updating
// Inventory.units.
func minimalPipeline(t *testing.T) *spec.Registry {
	t.Helper()
	r := spec.NewRegistry()
	require.NoError(t, r.RegisterType(spec.TypeDef{Name: "qty", Kind: "int"}))
	require.NoError(t, r.RegisterEntity(spec.Entity{
		Name:      "Inventory",
		Variables: []spec.StateVariable{{Name: "units", Type: "qty", Symbol: "u"}},
	}))

	s, err := block.NewBoundaryAction("S", block.ForwardInterface(nil, block.NewPorts("X")))
	require.NoError(t, err)
	require.NoError(t, r.RegisterBlock(s))

	m, err := block.NewMechanism("M", block.ForwardInterface(block.NewPorts("X"), nil),
		[]block.StateUpdate{{Entity: "Inventory", Variable: "units"}})
	require.NoError(t, err)
	require.NoError(t, r.RegisterBlock(m))

	require.NoError(t, r.RegisterWiring(spec.SpecWiring{
		Name:   "main",
		Blocks: []string{"S", "M"},
		Wires:  []spec.Wire{{Source: "S", Target: "M"}},
	}))
	return r
}

func TestProjectMinimalPipeline(t *testing.T) {
	r := minimalPipeline(t)
	require.Empty(t, r.ValidateSpec())

	gds := Project(r)
	assert.Equal(t, []string{"S"}, gds.Boundaries)
	assert.Equal(t, []string{"M"}, gds.Mechanisms)
	assert.Empty(t, gds.Policies)
	assert.Empty(t, gds.Controls)
	assert.Equal(t, []StateRef{{Entity: "Inventory", Variable: "units"}}, gds.StateSpace)
	assert.Equal(t, []PortRef{{Block: "S", Port: "X"}}, gds.InputSpace)
	assert.Equal(t, []StateRef{{Entity: "Inventory", Variable: "units"}}, gds.UpdateMap["M"])
}

func TestProjectIdempotentAndNonMutating(t *testing.T) {
	r := minimalPipeline(t)
	before := r.ValidateSpec()

	first := Project(r)
	second := Project(r)
	assert.Equal(t, first, second, "projection must be idempotent on an unmutated registry")
	assert.Equal(t, before, r.ValidateSpec(), "projection must not affect validation")
}

func TestProjectRolePartition(t *testing.T) {
	r := minimalPipeline(t)

	p, err := block.NewPolicy("P", block.ForwardInterface(block.NewPorts("X"), block.NewPorts("D")))
	require.NoError(t, err)
	require.NoError(t, r.RegisterBlock(p))

	c, err := block.NewControlAction("C", block.ForwardInterface(block.NewPorts("D"), block.NewPorts("U")))
	require.NoError(t, err)
	require.NoError(t, r.RegisterBlock(c))

	// Generic atomics stay out of every bucket.
	require.NoError(t, r.RegisterBlock(block.NewAtomic("debug", block.Interface{})))

	gds := Project(r)
	assert.Equal(t, []string{"S"}, gds.Boundaries)
	assert.Equal(t, []string{"P"}, gds.Policies)
	assert.Equal(t, []string{"C"}, gds.Controls)
	assert.Equal(t, []string{"M"}, gds.Mechanisms)
	assert.Equal(t, []PortRef{{Block: "P", Port: "D"}}, gds.DecisionSpace)
}

func TestProjectEmptyRegistry(t *testing.T) {
	gds := Project(spec.NewRegistry())
	assert.Empty(t, gds.StateSpace)
	assert.Empty(t, gds.Mechanisms)
	assert.Empty(t, gds.UpdateMap)
}
