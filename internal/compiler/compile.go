// Package compiler flattens a composition tree into a SystemIR: an
// ordered block list, a directed wiring list, and a hierarchy tree
// mirroring the composition shape.
package compiler

import (
	"fmt"
	"strings"

	"github.com/gdslab/blockspec/internal/block"
	"github.com/gdslab/blockspec/internal/ir"
	"github.com/gdslab/blockspec/internal/spec"
	"github.com/gdslab/blockspec/internal/token"
)

// CompileSystem walks root in a single pass and produces the flat IR.
// Block ordering follows Flatten order (left-to-right, first before
// second), so identical trees always compile to byte-identical IR. The
// ordering is purely presentational; verification is set and graph
// based.
//
// Leaf names must be unique within the tree - the flat wiring graph
// addresses blocks by name.
func CompileSystem(name string, root block.Block) (*ir.SystemIR, error) {
	if root == nil {
		return nil, fmt.Errorf("compile %s: root block is required", name)
	}

	leaves := root.Flatten()
	seen := make(map[string]bool, len(leaves))
	blocks := make([]ir.BlockIR, 0, len(leaves))
	for _, leaf := range leaves {
		if seen[leaf.Name()] {
			return nil, fmt.Errorf("compile %s: duplicate block name %q in composition tree", name, leaf.Name())
		}
		seen[leaf.Name()] = true
		blocks = append(blocks, leafIR(leaf))
	}

	sys := &ir.SystemIR{
		Name:      name,
		Blocks:    blocks,
		Wirings:   collectWirings(root),
		Hierarchy: hierarchy(root),
	}
	return sys, nil
}

// WithParameters attaches a parameter schema snapshot to compiled IR.
func WithParameters(sys *ir.SystemIR, params spec.ParameterSchema) *ir.SystemIR {
	for _, name := range params.Names() {
		def, _ := params.Get(name)
		sys.Parameters = append(sys.Parameters, ir.ParamIR{
			Name:        def.Name,
			Type:        def.Type,
			Description: def.Description,
		})
	}
	return sys
}

func leafIR(leaf block.Leaf) ir.BlockIR {
	iface := leaf.Interface()
	b := ir.BlockIR{
		Name:        leaf.Name(),
		Role:        leaf.Role().String(),
		ForwardIn:   portKeys(iface.ForwardIn()),
		ForwardOut:  portKeys(iface.ForwardOut()),
		BackwardIn:  portKeys(iface.BackwardIn()),
		BackwardOut: portKeys(iface.BackwardOut()),
	}
	meta := make(map[string]string)
	if params := leaf.ParamsUsed(); len(params) > 0 {
		meta["params_used"] = strings.Join(params, ",")
	}
	if m, ok := leaf.(*block.Mechanism); ok {
		updates := m.Updates()
		targets := make([]string, len(updates))
		for i, u := range updates {
			targets[i] = u.String()
		}
		meta["updates"] = strings.Join(targets, ",")
	}
	if len(meta) > 0 {
		b.Metadata = meta
	}
	return b
}

func portKeys(ports []block.Port) []string {
	keys := make([]string, len(ports))
	for i, p := range ports {
		keys[i] = p.Key()
	}
	return keys
}

// collectWirings gathers WiringIR edges contributed by composites,
// left-to-right. Each edge carries the flags of the composite kind that
// declared it.
func collectWirings(b block.Block) []ir.WiringIR {
	switch node := b.(type) {
	case *block.Stack:
		wirings := collectWirings(node.First())
		if explicit := node.Wirings(); len(explicit) > 0 {
			for _, w := range explicit {
				wirings = append(wirings, wiringIR(w, false, false))
			}
		} else {
			wirings = append(wirings, defaultStackWiring(node))
		}
		return append(wirings, collectWirings(node.Second())...)
	case *block.Parallel:
		// Parallel children do not exchange signals.
		return append(collectWirings(node.Left()), collectWirings(node.Right())...)
	case *block.FeedbackLoop:
		wirings := collectWirings(node.Inner())
		for _, w := range node.Wirings() {
			wirings = append(wirings, wiringIR(w, true, false))
		}
		return wirings
	case *block.TemporalLoop:
		wirings := collectWirings(node.Inner())
		for _, w := range node.Wirings() {
			wirings = append(wirings, wiringIR(w, false, true))
		}
		return wirings
	default:
		// Leaf variants contribute no edges.
		return nil
	}
}

// defaultStackWiring is the implicit sequential edge: the exit leaf of
// first feeds the entry leaf of second, labeled with the tokens both
// sides agree on.
func defaultStackWiring(s *block.Stack) ir.WiringIR {
	firstLeaves := s.First().Flatten()
	secondLeaves := s.Second().Flatten()
	return ir.WiringIR{
		Source:    firstLeaves[len(firstLeaves)-1].Name(),
		Target:    secondLeaves[0].Name(),
		Label:     intersect(s.First().Interface().ForwardOutTokens(), s.Second().Interface().ForwardInTokens()).Canonical(),
		Direction: ir.DirectionCovariant,
	}
}

func wiringIR(w block.Wiring, feedback, temporal bool) ir.WiringIR {
	direction := ir.DirectionCovariant
	if w.Direction == block.Contravariant {
		direction = ir.DirectionContravariant
	}
	return ir.WiringIR{
		Source:     w.Source,
		Target:     w.Target,
		Label:      w.Label,
		Direction:  direction,
		IsFeedback: feedback,
		IsTemporal: temporal,
	}
}

func intersect(a, b token.Set) token.Set {
	out := make(token.Set)
	for tok := range a {
		if b[tok] {
			out[tok] = true
		}
	}
	return out
}

// hierarchy mirrors the composition tree shape as IR nodes.
func hierarchy(b block.Block) *ir.HierarchyNode {
	switch node := b.(type) {
	case *block.Stack:
		return &ir.HierarchyNode{
			Kind:     ir.NodeStack,
			Name:     node.Name(),
			Children: []*ir.HierarchyNode{hierarchy(node.First()), hierarchy(node.Second())},
		}
	case *block.Parallel:
		return &ir.HierarchyNode{
			Kind:     ir.NodeParallel,
			Name:     node.Name(),
			Children: []*ir.HierarchyNode{hierarchy(node.Left()), hierarchy(node.Right())},
		}
	case *block.FeedbackLoop:
		return &ir.HierarchyNode{
			Kind:     ir.NodeFeedback,
			Name:     node.Name(),
			Children: []*ir.HierarchyNode{hierarchy(node.Inner())},
		}
	case *block.TemporalLoop:
		return &ir.HierarchyNode{
			Kind:          ir.NodeTemporal,
			Name:          node.Name(),
			ExitCondition: node.ExitCondition(),
			Children:      []*ir.HierarchyNode{hierarchy(node.Inner())},
		}
	default:
		return &ir.HierarchyNode{Kind: ir.NodeBlock, Name: b.Name()}
	}
}
