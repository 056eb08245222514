package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/gdslab/blockspec/internal/ir"
)

// RunWithGolden executes a scenario whose system compiles and compares
// the compiled IR's canonical bytes against a golden file. The golden
// file lives at testdata/{scenario.Name}.golden and is regenerated with
//
//	go test ./internal/harness -update
//
// Canonical bytes are exactly what the system's content hash covers, so
// a golden diff is a content-identity change.
func RunWithGolden(t *testing.T, scenario *Scenario) *Result {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		t.Fatalf("scenario %s: %v", scenario.Name, err)
	}
	if result.System == nil {
		t.Fatalf("scenario %s: no system compiled", scenario.Name)
	}

	data, err := ir.MarshalSystemCanonical(result.System)
	if err != nil {
		t.Fatalf("scenario %s: %v", scenario.Name, err)
	}

	g := goldie.New(t)
	g.Assert(t, scenario.Name, data)
	return result
}
