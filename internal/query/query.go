// Package query provides read-only dependency analysis over a
// specification registry: parameter/block cross maps, entity update
// maps, the wire-derived dependency graph, and influence queries.
//
// Nothing in this package mutates the registry; every function may be
// called repeatedly with identical results as long as the registry is
// left alone.
package query

import (
	"sort"

	"github.com/gdslab/blockspec/internal/block"
	"github.com/gdslab/blockspec/internal/spec"
)

// ParamToBlocks maps each defined parameter to the blocks referencing
// it, in block registration order. Parameters nobody references map to
// an empty slice.
func ParamToBlocks(r *spec.Registry) map[string][]string {
	out := make(map[string][]string, r.Params().Len())
	for _, name := range r.Params().Names() {
		out[name] = []string{}
	}
	for _, b := range r.Blocks() {
		for _, p := range b.ParamsUsed() {
			out[p] = append(out[p], b.Name())
		}
	}
	return out
}

// BlockToParams maps each block to the parameters it references.
// Blocks referencing nothing are omitted.
func BlockToParams(r *spec.Registry) map[string][]string {
	out := make(map[string][]string)
	for _, b := range r.Blocks() {
		if params := b.ParamsUsed(); len(params) > 0 {
			out[b.Name()] = params
		}
	}
	return out
}

// EntityUpdateMap maps each (entity, variable) pair, keyed as
// "Entity.variable", to the mechanisms updating it, in registration
// order.
func EntityUpdateMap(r *spec.Registry) map[string][]string {
	out := make(map[string][]string)
	for _, m := range r.Mechanisms() {
		for _, u := range m.Updates() {
			out[u.String()] = append(out[u.String()], m.Name())
		}
	}
	return out
}

// DependencyGraph builds the directed adjacency list from every wire in
// every wiring group. Neighbor lists are sorted and deduplicated.
func DependencyGraph(r *spec.Registry) map[string][]string {
	adjacency := make(map[string]map[string]bool)
	for _, group := range r.Wirings() {
		for _, w := range group.Wires {
			if adjacency[w.Source] == nil {
				adjacency[w.Source] = make(map[string]bool)
			}
			adjacency[w.Source][w.Target] = true
		}
	}

	out := make(map[string][]string, len(adjacency))
	for source, targets := range adjacency {
		neighbors := make([]string, 0, len(targets))
		for t := range targets {
			neighbors = append(neighbors, t)
		}
		sort.Strings(neighbors)
		out[source] = neighbors
	}
	return out
}

// BlocksByKind partitions the registered blocks by role, preserving
// registration order within each role.
func BlocksByKind(r *spec.Registry) map[block.Role][]string {
	out := make(map[block.Role][]string)
	for _, b := range r.Blocks() {
		out[b.Role()] = append(out[b.Role()], b.Name())
	}
	return out
}

// BlocksAffecting returns every block with influence over one state
// variable: the mechanisms updating it directly, plus every block from
// which some updating mechanism is reachable in the dependency graph.
// The result is sorted.
func BlocksAffecting(r *spec.Registry, entity, variable string) []string {
	target := block.StateUpdate{Entity: entity, Variable: variable}.String()

	writers := make(map[string]bool)
	for _, m := range r.Mechanisms() {
		for _, u := range m.Updates() {
			if u.String() == target {
				writers[m.Name()] = true
			}
		}
	}
	if len(writers) == 0 {
		return nil
	}

	// Walk the dependency graph backwards: a block affects the state if
	// a writer is reachable from it.
	reversed := make(map[string][]string)
	for source, targets := range DependencyGraph(r) {
		for _, t := range targets {
			reversed[t] = append(reversed[t], source)
		}
	}

	affecting := make(map[string]bool, len(writers))
	queue := make([]string, 0, len(writers))
	for w := range writers {
		affecting[w] = true
		queue = append(queue, w)
	}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, upstream := range reversed[node] {
			if !affecting[upstream] {
				affecting[upstream] = true
				queue = append(queue, upstream)
			}
		}
	}

	out := make([]string, 0, len(affecting))
	for name := range affecting {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
