// Package canonical derives the formal generalized-dynamical-system
// decomposition from a specification registry: state space X, input
// space U, decision space, and the role-partitioned block sets (g for
// policies, f for mechanisms).
//
// The projection is a pure function of the registry. It never mutates
// its input and is deterministic: identical registrations always
// project identically, so the result is recomputable at will and never
// authoritative.
package canonical

import (
	"github.com/gdslab/blockspec/internal/block"
	"github.com/gdslab/blockspec/internal/spec"
)

// StateRef identifies one state variable on one entity.
type StateRef struct {
	Entity   string `json:"entity" yaml:"entity"`
	Variable string `json:"variable" yaml:"variable"`
}

// PortRef identifies one port on one block.
type PortRef struct {
	Block string `json:"block" yaml:"block"`
	Port  string `json:"port" yaml:"port"`
}

// GDS is the canonical decomposition. Slices follow registration order.
type GDS struct {
	// StateSpace lists every (entity, variable) pair: X.
	StateSpace []StateRef `json:"state_space" yaml:"state_space"`

	// InputSpace lists boundary forward-out ports: U, where exogenous
	// signals enter.
	InputSpace []PortRef `json:"input_space" yaml:"input_space"`

	// DecisionSpace lists policy forward-out ports: the image of g.
	DecisionSpace []PortRef `json:"decision_space" yaml:"decision_space"`

	// Role partition of the registered blocks.
	Boundaries []string `json:"boundaries" yaml:"boundaries"`
	Policies   []string `json:"policies" yaml:"policies"`
	Controls   []string `json:"controls" yaml:"controls"`
	Mechanisms []string `json:"mechanisms" yaml:"mechanisms"`

	// UpdateMap maps each mechanism to the state it writes: f.
	UpdateMap map[string][]StateRef `json:"update_map" yaml:"update_map"`
}

// Project computes the canonical decomposition of r.
func Project(r *spec.Registry) GDS {
	gds := GDS{UpdateMap: make(map[string][]StateRef)}

	for _, e := range r.Entities() {
		for _, v := range e.Variables {
			gds.StateSpace = append(gds.StateSpace, StateRef{Entity: e.Name, Variable: v.Name})
		}
	}

	for _, b := range r.Blocks() {
		switch leaf := b.(type) {
		case *block.BoundaryAction:
			gds.Boundaries = append(gds.Boundaries, leaf.Name())
			for _, p := range leaf.Interface().ForwardOut() {
				gds.InputSpace = append(gds.InputSpace, PortRef{Block: leaf.Name(), Port: p.Name()})
			}
		case *block.Policy:
			gds.Policies = append(gds.Policies, leaf.Name())
			for _, p := range leaf.Interface().ForwardOut() {
				gds.DecisionSpace = append(gds.DecisionSpace, PortRef{Block: leaf.Name(), Port: p.Name()})
			}
		case *block.ControlAction:
			gds.Controls = append(gds.Controls, leaf.Name())
		case *block.Mechanism:
			gds.Mechanisms = append(gds.Mechanisms, leaf.Name())
			refs := make([]StateRef, 0, len(leaf.Updates()))
			for _, u := range leaf.Updates() {
				refs = append(refs, StateRef{Entity: u.Entity, Variable: u.Variable})
			}
			gds.UpdateMap[leaf.Name()] = refs
		case *block.Atomic:
			// Generic atomics take no part in the decomposition.
		}
	}

	return gds
}
