package spec

import "github.com/gdslab/blockspec/internal/block"

// ToMap projects the registry onto a plain nested mapping for
// interchange (JSON or YAML encoding downstream). Value predicates are
// not serializable and are dropped; everything else survives. The
// mapping is never read back into a live registry.
func (r *Registry) ToMap() map[string]any {
	types := make(map[string]any, len(r.types))
	for _, t := range r.Types() {
		entry := map[string]any{"kind": t.Kind}
		if len(t.Metadata) > 0 {
			meta := make(map[string]any, len(t.Metadata))
			for k, v := range t.Metadata {
				meta[k] = v
			}
			entry["metadata"] = meta
		}
		types[t.Name] = entry
	}

	spaces := make(map[string]any, len(r.spaces))
	for _, s := range r.Spaces() {
		fields := make([]any, len(s.Fields))
		for i, f := range s.Fields {
			fields[i] = map[string]any{"name": f.Name, "type": f.Type}
		}
		spaces[s.Name] = map[string]any{"fields": fields}
	}

	entities := make(map[string]any, len(r.entities))
	for _, e := range r.Entities() {
		vars := make([]any, len(e.Variables))
		for i, v := range e.Variables {
			entry := map[string]any{"name": v.Name, "type": v.Type}
			if v.Symbol != "" {
				entry["symbol"] = v.Symbol
			}
			vars[i] = entry
		}
		entities[e.Name] = map[string]any{"state": vars}
	}

	blocks := make(map[string]any, len(r.blocks))
	for _, b := range r.Blocks() {
		blocks[b.Name()] = blockToMap(b)
	}

	wirings := make(map[string]any, len(r.wirings))
	for _, w := range r.Wirings() {
		wires := make([]any, len(w.Wires))
		for i, wire := range w.Wires {
			entry := map[string]any{"source": wire.Source, "target": wire.Target}
			if wire.Space != "" {
				entry["space"] = wire.Space
			}
			if wire.Optional {
				entry["optional"] = true
			}
			wires[i] = entry
		}
		wirings[w.Name] = map[string]any{
			"blocks": toAnySlice(w.Blocks),
			"wires":  wires,
		}
	}

	params := make(map[string]any, r.params.Len())
	for _, name := range r.params.Names() {
		def, _ := r.params.Get(name)
		entry := map[string]any{"type": def.Type}
		if def.Description != "" {
			entry["description"] = def.Description
		}
		params[name] = entry
	}

	return map[string]any{
		"types":      types,
		"spaces":     spaces,
		"entities":   entities,
		"blocks":     blocks,
		"wirings":    wirings,
		"parameters": params,
	}
}

func blockToMap(b block.Leaf) map[string]any {
	iface := b.Interface()
	entry := map[string]any{
		"role":         b.Role().String(),
		"forward_in":   portNames(iface.ForwardIn()),
		"forward_out":  portNames(iface.ForwardOut()),
		"backward_in":  portNames(iface.BackwardIn()),
		"backward_out": portNames(iface.BackwardOut()),
	}
	if params := b.ParamsUsed(); len(params) > 0 {
		entry["params_used"] = toAnySlice(params)
	}
	if m, ok := b.(*block.Mechanism); ok {
		updates := make([]any, 0, len(m.Updates()))
		for _, u := range m.Updates() {
			updates = append(updates, map[string]any{"entity": u.Entity, "variable": u.Variable})
		}
		entry["updates"] = updates
	}
	return entry
}

func portNames(ports []block.Port) []any {
	out := make([]any, len(ports))
	for i, p := range ports {
		out[i] = p.Name()
	}
	return out
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
