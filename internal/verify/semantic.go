package verify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gdslab/blockspec/internal/block"
	"github.com/gdslab/blockspec/internal/spec"
)

// VerifyRegistry runs every registry-level semantic check and returns
// the combined report. Reachability takes a block pair and is exposed
// separately.
func VerifyRegistry(name string, r *spec.Registry) Report {
	var findings []Finding
	findings = append(findings, UpdateCompleteness(r)...)
	findings = append(findings, UpdateDeterminism(r)...)
	findings = append(findings, ParameterReferences(r)...)
	findings = append(findings, WireTypeSafety(r)...)
	findings = append(findings, CanonicalWellformedness(r)...)
	return BuildReport(name, findings)
}

// UpdateCompleteness checks that every registered state variable is
// written by some mechanism. Orphans are aggregated into a single
// warning: unwritten state is suspicious but may be externally set.
func UpdateCompleteness(r *spec.Registry) []Finding {
	updated := make(map[string]bool)
	for _, m := range r.Mechanisms() {
		for _, u := range m.Updates() {
			updated[u.String()] = true
		}
	}

	var orphans []string
	for _, e := range r.Entities() {
		for _, v := range e.Variables {
			ref := e.Name + "." + v.Name
			if !updated[ref] {
				orphans = append(orphans, ref)
			}
		}
	}

	if len(orphans) > 0 {
		return []Finding{warning(CheckCompleteness,
			fmt.Sprintf("no mechanism updates: %s", strings.Join(orphans, ", ")),
			orphans...)}
	}
	return []Finding{passing(CheckCompleteness, "every state variable has an updating mechanism")}
}

// UpdateDeterminism checks, within each wiring group independently,
// that no state variable is written by more than one mechanism. Groups
// model mutually exclusive execution contexts, so the same pair of
// writers in disjoint groups is not a conflict.
func UpdateDeterminism(r *spec.Registry) []Finding {
	var findings []Finding
	for _, group := range r.Wirings() {
		writers := make(map[string][]string)
		for _, name := range group.Blocks {
			leaf, ok := r.Block(name)
			if !ok {
				continue // dangling names are ValidateSpec's concern
			}
			if m, isMech := leaf.(*block.Mechanism); isMech {
				for _, u := range m.Updates() {
					writers[u.String()] = append(writers[u.String()], name)
				}
			}
		}

		refs := make([]string, 0, len(writers))
		for ref := range writers {
			refs = append(refs, ref)
		}
		sort.Strings(refs)

		for _, ref := range refs {
			if names := writers[ref]; len(names) > 1 {
				findings = append(findings, failing(CheckDeterminism,
					fmt.Sprintf("state variable %s is updated by %d mechanisms in wiring group %q: %s",
						ref, len(names), group.Name, strings.Join(names, ", ")),
					names...))
			}
		}
	}
	if len(findings) == 0 {
		findings = append(findings, passing(CheckDeterminism, "no write conflicts within any wiring group"))
	}
	return findings
}

// Reachability checks whether target is reachable from source over the
// wire-derived adjacency graph (all wires in all groups, directed).
func Reachability(r *spec.Registry, source, target string) Finding {
	adjacency := wireAdjacency(r)

	visited := map[string]bool{source: true}
	queue := []string{source}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if node == target {
			return Finding{
				CheckID:        CheckReachable,
				Severity:       SeverityInfo,
				Message:        fmt.Sprintf("%q is reachable from %q", target, source),
				SourceElements: []string{source, target},
				Passed:         true,
			}
		}
		for _, next := range adjacency[node] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return failing(CheckReachable,
		fmt.Sprintf("%q is not reachable from %q", target, source), source, target)
}

// ParameterReferences checks that every parameter a block references is
// defined in the schema.
func ParameterReferences(r *spec.Registry) []Finding {
	var findings []Finding
	params := r.Params()
	for _, b := range r.Blocks() {
		for _, p := range b.ParamsUsed() {
			if !params.Has(p) {
				findings = append(findings, failing(CheckParameterRefs,
					fmt.Sprintf("block %q references undefined parameter %q", b.Name(), p),
					b.Name()))
			}
		}
	}
	if len(findings) == 0 {
		findings = append(findings, passing(CheckParameterRefs, "all parameter references resolve"))
	}
	return findings
}

// WireTypeSafety checks that every non-empty wire space label resolves
// to a registered space.
func WireTypeSafety(r *spec.Registry) []Finding {
	var findings []Finding
	for _, group := range r.Wirings() {
		for i, w := range group.Wires {
			if w.Space == "" {
				continue
			}
			if _, ok := r.Space(w.Space); !ok {
				findings = append(findings, failing(CheckWireTypes,
					fmt.Sprintf("wire %s -> %s in group %q labels unknown space %q", w.Source, w.Target, group.Name, w.Space),
					fmt.Sprintf("%s.wires[%d]", group.Name, i)))
			}
		}
	}
	if len(findings) == 0 {
		findings = append(findings, passing(CheckWireTypes, "all wire space labels resolve"))
	}
	return findings
}

// CanonicalWellformedness checks the two existence conditions the
// canonical decomposition needs: at least one mechanism (f exists) and
// at least one state variable (X exists). The two warnings are
// independent.
func CanonicalWellformedness(r *spec.Registry) []Finding {
	var findings []Finding

	if len(r.Mechanisms()) == 0 {
		findings = append(findings, warning(CheckCanonicalWellforms,
			"no mechanisms registered: the state transition function f is empty"))
	}

	stateVars := 0
	for _, e := range r.Entities() {
		stateVars += len(e.Variables)
	}
	if stateVars == 0 {
		findings = append(findings, warning(CheckCanonicalWellforms,
			"no state variables registered: the state space X is empty"))
	}

	if len(findings) == 0 {
		findings = append(findings, passing(CheckCanonicalWellforms, "canonical decomposition is well-formed"))
	}
	return findings
}

// wireAdjacency builds a directed adjacency list from every wire in
// every group.
func wireAdjacency(r *spec.Registry) map[string][]string {
	adjacency := make(map[string][]string)
	for _, group := range r.Wirings() {
		for _, w := range group.Wires {
			adjacency[w.Source] = append(adjacency[w.Source], w.Target)
		}
	}
	return adjacency
}
