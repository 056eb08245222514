package verify

import (
	"fmt"
	"strings"

	"github.com/gdslab/blockspec/internal/ir"
	"github.com/gdslab/blockspec/internal/token"
)

// VerifySystem runs every generic check over compiled IR and returns
// the combined report.
func VerifySystem(sys *ir.SystemIR) Report {
	var findings []Finding
	findings = append(findings, DomainCodomain(sys)...)
	findings = append(findings, SignatureCompleteness(sys)...)
	findings = append(findings, DirectionConsistency(sys)...)
	findings = append(findings, DanglingWirings(sys)...)
	findings = append(findings, SequentialCompatibility(sys)...)
	findings = append(findings, CovariantAcyclicity(sys)...)
	return BuildReport(sys.Name, findings)
}

// DomainCodomain checks that every labeled, covariant, non-temporal
// wiring is typeable at one of its ends: the label tokens must be a
// subset of the source's forward-out tokens or of the target's
// forward-in tokens. A missing signature on either side is a failure,
// not a skip - an unverifiable wiring is a broken one.
func DomainCodomain(sys *ir.SystemIR) []Finding {
	var findings []Finding
	for _, w := range checkableWirings(sys) {
		label := token.Tokenize(w.Label)

		src, srcOK := sys.Block(w.Source)
		tgt, tgtOK := sys.Block(w.Target)
		if !srcOK || !tgtOK {
			// Dangling endpoints are reported by their own check; an
			// unresolvable wiring is also untypeable.
			findings = append(findings, failing(CheckDomainCodomain,
				fmt.Sprintf("wiring %s -> %s cannot be typed: endpoint not in system", w.Source, w.Target),
				w.Source, w.Target))
			continue
		}

		srcOut := signatureTokens(src.ForwardOut)
		tgtIn := signatureTokens(tgt.ForwardIn)
		if len(srcOut) == 0 || len(tgtIn) == 0 {
			findings = append(findings, failing(CheckDomainCodomain,
				fmt.Sprintf("wiring %s -> %s cannot be typed: missing signature (source forward-out %q, target forward-in %q)",
					w.Source, w.Target, strings.Join(src.ForwardOut, ";"), strings.Join(tgt.ForwardIn, ";")),
				w.Source, w.Target))
			continue
		}

		if !token.Subset(label, srcOut) && !token.Subset(label, tgtIn) {
			findings = append(findings, failing(CheckDomainCodomain,
				fmt.Sprintf("wiring label %q matches neither %s forward-out %v nor %s forward-in %v",
					w.Label, w.Source, srcOut.Sorted(), w.Target, tgtIn.Sorted()),
				w.Source, w.Target))
		}
	}
	if len(findings) == 0 {
		findings = append(findings, passing(CheckDomainCodomain, "all labeled covariant wirings are typeable"))
	}
	return findings
}

// SignatureCompleteness checks that every block has at least one
// non-empty input slot and one non-empty output slot - a block with no
// way in or no way out cannot participate in any flow.
func SignatureCompleteness(sys *ir.SystemIR) []Finding {
	var findings []Finding
	for _, b := range sys.Blocks {
		hasIn := len(b.ForwardIn) > 0 || len(b.BackwardIn) > 0
		hasOut := len(b.ForwardOut) > 0 || len(b.BackwardOut) > 0
		switch {
		case !hasIn && !hasOut:
			findings = append(findings, failing(CheckSignatures,
				fmt.Sprintf("block %q has no input and no output ports", b.Name), b.Name))
		case !hasIn:
			findings = append(findings, failing(CheckSignatures,
				fmt.Sprintf("block %q has no input ports", b.Name), b.Name))
		case !hasOut:
			findings = append(findings, failing(CheckSignatures,
				fmt.Sprintf("block %q has no output ports", b.Name), b.Name))
		}
	}
	if len(findings) == 0 {
		findings = append(findings, passing(CheckSignatures, "all block signatures are complete"))
	}
	return findings
}

// DirectionConsistency reports each wiring's declared direction. Purely
// informational; there is no failure condition.
func DirectionConsistency(sys *ir.SystemIR) []Finding {
	findings := make([]Finding, 0, len(sys.Wirings))
	for _, w := range sys.Wirings {
		kind := "wiring"
		if w.IsTemporal {
			kind = "temporal wiring"
		} else if w.IsFeedback {
			kind = "feedback wiring"
		}
		findings = append(findings, Finding{
			CheckID:        CheckDirections,
			Severity:       SeverityInfo,
			Message:        fmt.Sprintf("%s %s -> %s is %s", kind, w.Source, w.Target, w.Direction),
			SourceElements: []string{w.Source, w.Target},
			Passed:         true,
		})
	}
	return findings
}

// DanglingWirings checks that every wiring endpoint names a block known
// to the system.
func DanglingWirings(sys *ir.SystemIR) []Finding {
	known := make(map[string]bool, len(sys.Blocks))
	for _, b := range sys.Blocks {
		known[b.Name] = true
	}

	var findings []Finding
	for _, w := range sys.Wirings {
		for _, endpoint := range []string{w.Source, w.Target} {
			if !known[endpoint] {
				findings = append(findings, failing(CheckDangling,
					fmt.Sprintf("wiring %s -> %s references unknown block %q", w.Source, w.Target, endpoint),
					endpoint))
			}
		}
	}
	if len(findings) == 0 {
		findings = append(findings, passing(CheckDangling, "all wiring endpoints resolve"))
	}
	return findings
}

// SequentialCompatibility is the strict variant of DomainCodomain: the
// label must be a subset of BOTH the source's forward-out and the
// target's forward-in tokens, so the signal is well-typed end to end.
func SequentialCompatibility(sys *ir.SystemIR) []Finding {
	var findings []Finding
	for _, w := range checkableWirings(sys) {
		label := token.Tokenize(w.Label)

		src, srcOK := sys.Block(w.Source)
		tgt, tgtOK := sys.Block(w.Target)
		if !srcOK || !tgtOK {
			findings = append(findings, failing(CheckSequential,
				fmt.Sprintf("wiring %s -> %s cannot be typed: endpoint not in system", w.Source, w.Target),
				w.Source, w.Target))
			continue
		}

		srcOut := signatureTokens(src.ForwardOut)
		tgtIn := signatureTokens(tgt.ForwardIn)
		if len(srcOut) == 0 || len(tgtIn) == 0 {
			findings = append(findings, failing(CheckSequential,
				fmt.Sprintf("wiring %s -> %s cannot be typed: missing signature", w.Source, w.Target),
				w.Source, w.Target))
			continue
		}

		if !token.Subset(label, srcOut) || !token.Subset(label, tgtIn) {
			findings = append(findings, failing(CheckSequential,
				fmt.Sprintf("wiring label %q is not carried by both %s forward-out %v and %s forward-in %v",
					w.Label, w.Source, srcOut.Sorted(), w.Target, tgtIn.Sorted()),
				w.Source, w.Target))
		}
	}
	if len(findings) == 0 {
		findings = append(findings, passing(CheckSequential, "all labeled covariant wirings are sequentially compatible"))
	}
	return findings
}

// checkableWirings selects the wirings subject to covariant type
// checks: covariant, non-temporal, and labeled.
func checkableWirings(sys *ir.SystemIR) []ir.WiringIR {
	var out []ir.WiringIR
	for _, w := range sys.Wirings {
		if w.Covariant() && !w.IsTemporal && w.Label != "" {
			out = append(out, w)
		}
	}
	return out
}

// signatureTokens unions the token sets of a signature's port
// summaries.
func signatureTokens(summaries []string) token.Set {
	union := make(token.Set)
	for _, s := range summaries {
		for tok := range token.Tokenize(s) {
			union[tok] = true
		}
	}
	return union
}
