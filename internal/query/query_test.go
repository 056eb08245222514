package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdslab/blockspec/internal/block"
	"github.com/gdslab/blockspec/internal/spec"
)

// fixture: S -> P -> M1 updating Inventory.units, with a second
// independent mechanism M2 updating Inventory.backlog.
func fixture(t *testing.T) *spec.Registry {
	t.Helper()
	r := spec.NewRegistry()
	require.NoError(t, r.RegisterType(spec.TypeDef{Name: "qty", Kind: "int"}))
	require.NoError(t, r.RegisterEntity(spec.Entity{
		Name: "Inventory",
		Variables: []spec.StateVariable{
			{Name: "units", Type: "qty"},
			{Name: "backlog", Type: "qty"},
		},
	}))
	require.NoError(t, r.AddParameter(spec.ParameterDef{Name: "restock_rate", Type: "qty"}))
	require.NoError(t, r.AddParameter(spec.ParameterDef{Name: "unused", Type: "qty"}))

	s, err := block.NewBoundaryAction("S", block.ForwardInterface(nil, block.NewPorts("orders")))
	require.NoError(t, err)
	require.NoError(t, r.RegisterBlock(s))

	p, err := block.NewPolicy("P", block.ForwardInterface(block.NewPorts("orders"), block.NewPorts("restock")), "restock_rate")
	require.NoError(t, err)
	require.NoError(t, r.RegisterBlock(p))

	m1, err := block.NewMechanism("M1", block.ForwardInterface(block.NewPorts("restock"), nil),
		[]block.StateUpdate{{Entity: "Inventory", Variable: "units"}})
	require.NoError(t, err)
	require.NoError(t, r.RegisterBlock(m1))

	m2, err := block.NewMechanism("M2", block.ForwardInterface(block.NewPorts("cancellation"), nil),
		[]block.StateUpdate{{Entity: "Inventory", Variable: "backlog"}})
	require.NoError(t, err)
	require.NoError(t, r.RegisterBlock(m2))

	require.NoError(t, r.RegisterWiring(spec.SpecWiring{
		Name:   "main",
		Blocks: []string{"S", "P", "M1"},
		Wires: []spec.Wire{
			{Source: "S", Target: "P"},
			{Source: "P", Target: "M1"},
		},
	}))
	return r
}

func TestParamToBlocks(t *testing.T) {
	got := ParamToBlocks(fixture(t))
	assert.Equal(t, map[string][]string{
		"restock_rate": {"P"},
		"unused":       {},
	}, got)
}

func TestBlockToParams(t *testing.T) {
	got := BlockToParams(fixture(t))
	assert.Equal(t, map[string][]string{"P": {"restock_rate"}}, got)
}

func TestEntityUpdateMap(t *testing.T) {
	got := EntityUpdateMap(fixture(t))
	assert.Equal(t, map[string][]string{
		"Inventory.units":   {"M1"},
		"Inventory.backlog": {"M2"},
	}, got)
}

func TestDependencyGraph(t *testing.T) {
	got := DependencyGraph(fixture(t))
	assert.Equal(t, map[string][]string{
		"S": {"P"},
		"P": {"M1"},
	}, got)
}

func TestDependencyGraphDeduplicatesAcrossGroups(t *testing.T) {
	r := fixture(t)
	require.NoError(t, r.RegisterWiring(spec.SpecWiring{
		Name:  "again",
		Wires: []spec.Wire{{Source: "S", Target: "P"}},
	}))
	got := DependencyGraph(r)
	assert.Equal(t, []string{"P"}, got["S"])
}

func TestBlocksByKind(t *testing.T) {
	got := BlocksByKind(fixture(t))
	assert.Equal(t, []string{"S"}, got[block.RoleBoundary])
	assert.Equal(t, []string{"P"}, got[block.RolePolicy])
	assert.Equal(t, []string{"M1", "M2"}, got[block.RoleMechanism])
	assert.Empty(t, got[block.RoleControl])
}

func TestBlocksAffecting(t *testing.T) {
	got := BlocksAffecting(fixture(t), "Inventory", "units")
	assert.Equal(t, []string{"M1", "P", "S"}, got, "direct writer plus everything upstream")
}

func TestBlocksAffectingIsolatedMechanism(t *testing.T) {
	// M2 has no upstream wires: only the writer itself affects backlog.
	got := BlocksAffecting(fixture(t), "Inventory", "backlog")
	assert.Equal(t, []string{"M2"}, got)
}

func TestBlocksAffectingUnknownVariable(t *testing.T) {
	assert.Nil(t, BlocksAffecting(fixture(t), "Inventory", "missing"))
}
