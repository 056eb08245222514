// Package verify is the static verification engine: generic
// graph-and-type checks over compiled SystemIR and semantic checks over
// a specification registry.
//
// Checks never return errors. Every exceptional condition - an
// unverifiable signature, a dangling reference, a malformed label -
// becomes a failing Finding, so callers always receive a complete
// report instead of a truncated one.
package verify

import "fmt"

// Severity levels for findings.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Check identifiers.
const (
	CheckDomainCodomain     = "domain-codomain"
	CheckSignatures         = "signature-completeness"
	CheckDirections         = "direction-consistency"
	CheckDangling           = "dangling-wiring"
	CheckSequential         = "sequential-compatibility"
	CheckAcyclicity         = "covariant-acyclicity"
	CheckCompleteness       = "update-completeness"
	CheckDeterminism        = "update-determinism"
	CheckReachable          = "reachability"
	CheckParameterRefs      = "parameter-references"
	CheckWireTypes          = "wire-type-safety"
	CheckCanonicalWellforms = "canonical-wellformedness"
)

// Finding is one verification result: which check produced it, how
// severe it is, the elements it implicates, and whether it passed.
type Finding struct {
	CheckID        string   `json:"check_id"`
	Severity       Severity `json:"severity"`
	Message        string   `json:"message"`
	SourceElements []string `json:"source_elements,omitempty"`
	Passed         bool     `json:"passed"`
}

func passing(checkID, message string) Finding {
	return Finding{CheckID: checkID, Severity: SeverityInfo, Message: message, Passed: true}
}

func failing(checkID, message string, elements ...string) Finding {
	return Finding{CheckID: checkID, Severity: SeverityError, Message: message, SourceElements: elements}
}

func warning(checkID, message string, elements ...string) Finding {
	return Finding{CheckID: checkID, Severity: SeverityWarning, Message: message, SourceElements: elements}
}

// Summary aggregates finding counts.
type Summary struct {
	Total    int `json:"total"`
	Passed   int `json:"passed"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
}

// Report is a named finding list with aggregated counts.
type Report struct {
	Name     string    `json:"name"`
	Findings []Finding `json:"findings"`
	Summary  Summary   `json:"summary"`
}

// BuildReport assembles findings into a report with computed counts.
func BuildReport(name string, findings []Finding) Report {
	r := Report{Name: name, Findings: findings}
	for _, f := range findings {
		r.Summary.Total++
		if f.Passed {
			r.Summary.Passed++
		}
		switch f.Severity {
		case SeverityError:
			r.Summary.Errors++
		case SeverityWarning:
			r.Summary.Warnings++
		case SeverityInfo:
			r.Summary.Info++
		}
	}
	return r
}

// Clean reports whether the report contains no error findings.
func (r Report) Clean() bool { return r.Summary.Errors == 0 }

// ByCheck returns the findings produced by one check.
func (r Report) ByCheck(checkID string) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.CheckID == checkID {
			out = append(out, f)
		}
	}
	return out
}

func (r Report) String() string {
	return fmt.Sprintf("%s: %d findings (%d passed, %d errors, %d warnings)",
		r.Name, r.Summary.Total, r.Summary.Passed, r.Summary.Errors, r.Summary.Warnings)
}
