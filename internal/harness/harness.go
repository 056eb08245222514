package harness

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gdslab/blockspec/internal/cli"
	"github.com/gdslab/blockspec/internal/compiler"
	"github.com/gdslab/blockspec/internal/ir"
	"github.com/gdslab/blockspec/internal/query"
	"github.com/gdslab/blockspec/internal/spec"
	"github.com/gdslab/blockspec/internal/verify"
)

// Result captures what every pipeline stage produced for one scenario.
type Result struct {
	LoadErrors []error
	Registry   *spec.Registry
	Violations []spec.ValidationError
	System     *ir.SystemIR // nil when loading failed or validation blocked compilation
	Report     verify.Report
}

// Run executes the full pipeline for a scenario. Stages degrade rather
// than abort: load errors still leave a partial registry to validate,
// and a registry that fails validation is still verified semantically.
// Only compilation is gated, on a successful load of a composition.
func Run(scenario *Scenario) (*Result, error) {
	loaded, loadErrors := cli.LoadSystem(scenario.SystemPath())
	if loaded == nil {
		return &Result{LoadErrors: loadErrors}, nil
	}

	result := &Result{
		LoadErrors: loadErrors,
		Registry:   loaded.Registry,
		Violations: loaded.Registry.ValidateSpec(),
	}

	findings := verify.VerifyRegistry(loaded.Name, loaded.Registry).Findings
	if len(loadErrors) == 0 && loaded.Root != nil {
		sys, err := compiler.CompileSystem(loaded.Name, loaded.Root)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		result.System = compiler.WithParameters(sys, loaded.Registry.Params())
		findings = append(findings, verify.VerifySystem(result.System).Findings...)
	}
	result.Report = verify.BuildReport(loaded.Name, findings)

	return result, nil
}

// Evaluate compares a result against the scenario's expectations and
// returns one message per mismatch. An empty slice means the scenario
// passed.
func (r *Result) Evaluate(want Expectation) []string {
	var failures []string

	failures = append(failures, matchCodes("load error", codesOf(r.LoadErrors), want.LoadErrors)...)

	gotViolations := make([]string, len(r.Violations))
	for i, v := range r.Violations {
		gotViolations[i] = v.Code
	}
	failures = append(failures, matchCodes("violation", gotViolations, want.Violations)...)

	if want.Clean != nil && r.Report.Clean() != *want.Clean {
		failures = append(failures, fmt.Sprintf("report clean = %v, want %v", r.Report.Clean(), *want.Clean))
	}

	for _, checkID := range want.FailingChecks {
		if !hasErrorFinding(r.Report, checkID) {
			failures = append(failures, fmt.Sprintf("check %s produced no error finding", checkID))
		}
	}

	for ref, wantBlocks := range want.Affecting {
		if r.Registry == nil {
			failures = append(failures, fmt.Sprintf("affecting %s: no registry loaded", ref))
			continue
		}
		entity, variable, err := splitStateRef(ref)
		if err != nil {
			failures = append(failures, err.Error())
			continue
		}
		got := query.BlocksAffecting(r.Registry, entity, variable)
		if !equalStrings(got, wantBlocks) {
			failures = append(failures, fmt.Sprintf("affecting %s = %v, want %v", ref, got, wantBlocks))
		}
	}

	return failures
}

func codesOf(errs []error) []string {
	codes := make([]string, len(errs))
	for i, err := range errs {
		var loadErr *cli.LoadError
		if errors.As(err, &loadErr) {
			codes[i] = loadErr.Code
			continue
		}
		codes[i] = err.Error()
	}
	return codes
}

func matchCodes(kind string, got, want []string) []string {
	if len(got) != len(want) {
		return []string{fmt.Sprintf("%d %s(s) %v, want %d %v", len(got), kind, got, len(want), want)}
	}
	var failures []string
	for i := range want {
		if got[i] != want[i] {
			failures = append(failures, fmt.Sprintf("%s[%d] = %s, want %s", kind, i, got[i], want[i]))
		}
	}
	return failures
}

func hasErrorFinding(report verify.Report, checkID string) bool {
	for _, f := range report.ByCheck(checkID) {
		if f.Severity == verify.SeverityError && !f.Passed {
			return true
		}
	}
	return false
}

func splitStateRef(ref string) (entity, variable string, err error) {
	entity, variable, ok := strings.Cut(ref, ".")
	if !ok || entity == "" || variable == "" {
		return "", "", fmt.Errorf("malformed state reference %q: want Entity.variable", ref)
	}
	return entity, variable, nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
