package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdslab/blockspec/internal/ir"
)

func ringSystem(temporalBackEdge bool) *ir.SystemIR {
	back := ir.WiringIR{Source: "C", Target: "A", Direction: ir.DirectionCovariant, IsTemporal: temporalBackEdge}
	return &ir.SystemIR{
		Name: "ring",
		Blocks: []ir.BlockIR{
			blockIR("A", "policy", []string{"z"}, []string{"x"}),
			blockIR("B", "policy", []string{"x"}, []string{"y"}),
			blockIR("C", "policy", []string{"y"}, []string{"z"}),
		},
		Wirings: []ir.WiringIR{covariant("A", "B", ""), covariant("B", "C", ""), back},
	}
}

func TestAcyclicityDAGYieldsOnePassingFinding(t *testing.T) {
	findings := CovariantAcyclicity(linearSystem())
	require.Len(t, findings, 1)
	assert.True(t, findings[0].Passed)
	assert.Equal(t, CheckAcyclicity, findings[0].CheckID)
}

func TestAcyclicityRingImplicatesEveryBlock(t *testing.T) {
	// Covariant non-temporal ring A -> B -> C -> A: exactly one failing
	// finding implicating all three blocks.
	findings := CovariantAcyclicity(ringSystem(false))
	require.Len(t, findings, 1)
	assert.False(t, findings[0].Passed)
	assert.Subset(t, findings[0].SourceElements, []string{"A", "B", "C"})
	assert.Contains(t, findings[0].Message, "A -> B -> C -> A")
}

func TestAcyclicityTemporalBackEdgeBreaksCycle(t *testing.T) {
	// The same ring closed by a temporal edge is fine: the loop crosses
	// a timestep boundary.
	findings := CovariantAcyclicity(ringSystem(true))
	require.Len(t, findings, 1)
	assert.True(t, findings[0].Passed)
}

func TestAcyclicityContravariantBackEdgeBreaksCycle(t *testing.T) {
	sys := ringSystem(false)
	sys.Wirings[2].Direction = ir.DirectionContravariant

	findings := CovariantAcyclicity(sys)
	require.Len(t, findings, 1)
	assert.True(t, findings[0].Passed)
}

func TestAcyclicitySelfLoop(t *testing.T) {
	sys := &ir.SystemIR{
		Name:    "self",
		Blocks:  []ir.BlockIR{blockIR("A", "policy", []string{"x"}, []string{"x"})},
		Wirings: []ir.WiringIR{covariant("A", "A", "")},
	}
	findings := CovariantAcyclicity(sys)
	require.Len(t, findings, 1)
	assert.False(t, findings[0].Passed)
	assert.Contains(t, findings[0].Message, "A -> A")
}

func TestAcyclicityDisconnectedComponents(t *testing.T) {
	sys := &ir.SystemIR{
		Name: "two-components",
		Blocks: []ir.BlockIR{
			blockIR("A", "policy", []string{}, []string{"x"}),
			blockIR("B", "policy", []string{"x"}, []string{}),
			blockIR("P", "policy", []string{"q"}, []string{"q"}),
			blockIR("Q", "policy", []string{"q"}, []string{"q"}),
		},
		Wirings: []ir.WiringIR{
			covariant("A", "B", ""),
			covariant("P", "Q", ""),
			covariant("Q", "P", ""),
		},
	}
	findings := CovariantAcyclicity(sys)
	require.Len(t, findings, 1)
	assert.False(t, findings[0].Passed)
	assert.Subset(t, findings[0].SourceElements, []string{"P", "Q"})
}

func TestAcyclicityEmptySystem(t *testing.T) {
	findings := CovariantAcyclicity(&ir.SystemIR{Name: "empty"})
	require.Len(t, findings, 1)
	assert.True(t, findings[0].Passed)
}
