package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdslab/blockspec/internal/ir"
)

func blockIR(name, role string, fin, fout []string) ir.BlockIR {
	return ir.BlockIR{
		Name: name, Role: role,
		ForwardIn: fin, ForwardOut: fout,
		BackwardIn: []string{}, BackwardOut: []string{},
	}
}

func covariant(source, target, label string) ir.WiringIR {
	return ir.WiringIR{Source: source, Target: target, Label: label, Direction: ir.DirectionCovariant}
}

func linearSystem() *ir.SystemIR {
	return &ir.SystemIR{
		Name: "linear",
		Blocks: []ir.BlockIR{
			blockIR("A", "boundary", []string{}, []string{"x"}),
			blockIR("B", "policy", []string{"x"}, []string{"y"}),
			blockIR("C", "mechanism", []string{"y"}, []string{}),
		},
		Wirings: []ir.WiringIR{covariant("A", "B", "x"), covariant("B", "C", "y")},
	}
}

// =============================================================================
// Domain/codomain and sequential compatibility
// =============================================================================

func TestDomainCodomainCleanSystem(t *testing.T) {
	findings := DomainCodomain(linearSystem())
	require.Len(t, findings, 1)
	assert.True(t, findings[0].Passed)
}

func TestDomainCodomainPassesOnEitherSide(t *testing.T) {
	// Label typed by the source only: subset of A's forward-out but not
	// of B's forward-in. The lenient check accepts it.
	sys := &ir.SystemIR{
		Name: "either",
		Blocks: []ir.BlockIR{
			blockIR("A", "boundary", []string{}, []string{"x+z"}),
			blockIR("B", "mechanism", []string{"y"}, []string{"out"}),
		},
		Wirings: []ir.WiringIR{covariant("A", "B", "z")},
	}
	findings := DomainCodomain(sys)
	require.Len(t, findings, 1)
	assert.True(t, findings[0].Passed)

	// The strict check rejects the same wiring.
	strict := SequentialCompatibility(sys)
	require.Len(t, strict, 1)
	assert.False(t, strict[0].Passed)
	assert.ElementsMatch(t, []string{"A", "B"}, strict[0].SourceElements)
}

func TestDomainCodomainRejectsUntypeableLabel(t *testing.T) {
	sys := linearSystem()
	sys.Wirings[0].Label = "unrelated"

	findings := DomainCodomain(sys)
	require.Len(t, findings, 1)
	assert.False(t, findings[0].Passed)
	assert.Contains(t, findings[0].Message, `"unrelated"`)
}

func TestDomainCodomainMissingSignatureFailsNotSkips(t *testing.T) {
	sys := &ir.SystemIR{
		Name: "missing",
		Blocks: []ir.BlockIR{
			blockIR("A", "boundary", []string{}, []string{}), // no forward-out at all
			blockIR("B", "mechanism", []string{"x"}, []string{}),
		},
		Wirings: []ir.WiringIR{covariant("A", "B", "x")},
	}
	findings := DomainCodomain(sys)
	require.Len(t, findings, 1)
	assert.False(t, findings[0].Passed)
	assert.Contains(t, findings[0].Message, "missing signature")
}

func TestTypeChecksSkipTemporalAndContravariant(t *testing.T) {
	sys := linearSystem()
	sys.Wirings = append(sys.Wirings,
		ir.WiringIR{Source: "C", Target: "A", Label: "unrelated", Direction: ir.DirectionCovariant, IsTemporal: true},
		ir.WiringIR{Source: "C", Target: "B", Label: "unrelated", Direction: ir.DirectionContravariant},
	)

	assert.True(t, DomainCodomain(sys)[0].Passed)
	assert.True(t, SequentialCompatibility(sys)[0].Passed)
}

func TestTypeChecksSkipUnlabeledWirings(t *testing.T) {
	sys := linearSystem()
	sys.Wirings = append(sys.Wirings, covariant("A", "C", ""))
	assert.True(t, DomainCodomain(sys)[0].Passed)
}

func TestSequentialCompatibilityClean(t *testing.T) {
	findings := SequentialCompatibility(linearSystem())
	require.Len(t, findings, 1)
	assert.True(t, findings[0].Passed)
}

// =============================================================================
// Signature completeness
// =============================================================================

func TestSignatureCompleteness(t *testing.T) {
	sys := &ir.SystemIR{
		Name: "sigs",
		Blocks: []ir.BlockIR{
			blockIR("ok", "policy", []string{"x"}, []string{"y"}),
			blockIR("no-in", "boundary", []string{}, []string{"y"}),
			blockIR("no-out", "mechanism", []string{"x"}, []string{}),
			blockIR("isolated", "generic", []string{}, []string{}),
		},
	}
	findings := SignatureCompleteness(sys)
	require.Len(t, findings, 3)
	for _, f := range findings {
		assert.False(t, f.Passed)
	}
	assert.Contains(t, findings[0].SourceElements, "no-in")
	assert.Contains(t, findings[2].Message, "no input and no output")
}

func TestSignatureCompletenessBackwardPortsCount(t *testing.T) {
	sys := &ir.SystemIR{
		Name: "backward",
		Blocks: []ir.BlockIR{{
			Name: "fb", Role: "policy",
			ForwardIn: []string{}, ForwardOut: []string{},
			BackwardIn: []string{"err"}, BackwardOut: []string{"corr"},
		}},
	}
	findings := SignatureCompleteness(sys)
	require.Len(t, findings, 1)
	assert.True(t, findings[0].Passed)
}

// =============================================================================
// Direction consistency and dangling wirings
// =============================================================================

func TestDirectionConsistencyIsInformational(t *testing.T) {
	sys := linearSystem()
	sys.Wirings = append(sys.Wirings,
		ir.WiringIR{Source: "C", Target: "A", Direction: ir.DirectionContravariant, IsFeedback: true})

	findings := DirectionConsistency(sys)
	require.Len(t, findings, 3)
	for _, f := range findings {
		assert.True(t, f.Passed)
		assert.Equal(t, SeverityInfo, f.Severity)
	}
	assert.Contains(t, findings[2].Message, "feedback wiring")
	assert.Contains(t, findings[2].Message, "contravariant")
}

func TestDanglingWirings(t *testing.T) {
	sys := linearSystem()
	sys.Wirings = append(sys.Wirings, covariant("A", "ghost", ""))

	findings := DanglingWirings(sys)
	require.Len(t, findings, 1)
	assert.False(t, findings[0].Passed)
	assert.Equal(t, []string{"ghost"}, findings[0].SourceElements)
}

func TestDanglingWiringsClean(t *testing.T) {
	findings := DanglingWirings(linearSystem())
	require.Len(t, findings, 1)
	assert.True(t, findings[0].Passed)
}

// =============================================================================
// Full system report
// =============================================================================

func TestVerifySystemCleanReport(t *testing.T) {
	report := VerifySystem(linearSystem())
	assert.True(t, report.Clean())
	assert.Equal(t, report.Summary.Total, len(report.Findings))
	assert.Zero(t, report.Summary.Errors)
	assert.NotZero(t, report.Summary.Passed)
}

func TestVerifySystemAggregatesCounts(t *testing.T) {
	sys := linearSystem()
	sys.Wirings = append(sys.Wirings, covariant("ghost", "A", ""))

	report := VerifySystem(sys)
	assert.False(t, report.Clean())
	assert.Equal(t, report.Summary.Errors+report.Summary.Warnings+report.Summary.Info, report.Summary.Total)

	dangling := report.ByCheck(CheckDangling)
	require.Len(t, dangling, 1)
	assert.False(t, dangling[0].Passed)
}
