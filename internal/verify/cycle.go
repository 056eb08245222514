package verify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gdslab/blockspec/internal/ir"
)

// CovariantAcyclicity checks that the covariant, non-temporal wiring
// subgraph is a DAG. A cycle in that subgraph is an algebraic loop: a
// set of blocks each needing the others' same-timestep output, which no
// evaluation order can resolve. Temporal edges are excluded because
// they cross timestep boundaries; contravariant edges because feedback
// is resolved separately.
//
// The result is always exactly one finding: passing for a DAG, failing
// with the full cycle path otherwise.
func CovariantAcyclicity(sys *ir.SystemIR) []Finding {
	graph := covariantGraph(sys)

	if cycle := findCycle(graph); cycle != nil {
		return []Finding{failing(CheckAcyclicity,
			fmt.Sprintf("covariant wirings form an algebraic loop: %s", strings.Join(cycle, " -> ")),
			cycle[:len(cycle)-1]...)}
	}
	return []Finding{passing(CheckAcyclicity, "covariant non-temporal wirings form a DAG")}
}

// covariantGraph builds the adjacency of covariant non-temporal edges,
// with deterministic node and neighbor ordering.
func covariantGraph(sys *ir.SystemIR) map[string][]string {
	graph := make(map[string][]string)
	for _, w := range sys.Wirings {
		if !w.Covariant() || w.IsTemporal {
			continue
		}
		graph[w.Source] = append(graph[w.Source], w.Target)
		if _, ok := graph[w.Target]; !ok {
			graph[w.Target] = []string{}
		}
	}
	for node := range graph {
		sort.Strings(graph[node])
	}
	return graph
}

// DFS colors.
const (
	white = iota // unvisited
	gray         // on the current path
	black        // fully explored
)

// findCycle runs a three-color DFS and returns the first cycle found as
// a closed path (first element repeated last), or nil for a DAG.
// Deterministic: roots and neighbors are visited in sorted order.
func findCycle(graph map[string][]string) []string {
	color := make(map[string]int, len(graph))
	var stack []string
	var cycle []string

	var visit func(string) bool
	visit = func(node string) bool {
		color[node] = gray
		stack = append(stack, node)

		for _, next := range graph[node] {
			switch color[next] {
			case gray:
				// Back edge: the cycle is the stack suffix from next.
				for i, n := range stack {
					if n == next {
						cycle = append(append(cycle, stack[i:]...), next)
						return true
					}
				}
			case white:
				if visit(next) {
					return true
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[node] = black
		return false
	}

	roots := make([]string, 0, len(graph))
	for node := range graph {
		roots = append(roots, node)
	}
	sort.Strings(roots)

	for _, node := range roots {
		if color[node] == white {
			if visit(node) {
				return cycle
			}
		}
	}
	return nil
}
