package ir

import (
	"crypto/sha256"
	"encoding/hex"
)

// Domain prefixes for content-addressed identity. The version suffix
// allows migrating the hash construction without colliding with old
// identities.
const (
	DomainSystem   = "blockspec/system/v1"
	DomainDocument = "blockspec/document/v1"
)

// hashWithDomain computes SHA-256 over domain || 0x00 || data. The null
// separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SystemID computes the content-addressed identity of a SystemIR. Two
// compilations producing structurally identical IR share an ID,
// regardless of when or where they ran.
func SystemID(s *SystemIR) (string, error) {
	data, err := MarshalCanonical(s.canonicalMap())
	if err != nil {
		return "", err
	}
	return hashWithDomain(DomainSystem, data), nil
}

// MarshalSystemCanonical returns the canonical byte form of a system,
// the exact bytes SystemID hashes. Useful for golden snapshots.
func MarshalSystemCanonical(s *SystemIR) ([]byte, error) {
	return MarshalCanonical(s.canonicalMap())
}

// DocumentID computes the content hash of a document's systems and
// patterns. Provenance metadata (source id, tool version) is excluded:
// the ID identifies what was compiled, not the compilation run.
func DocumentID(d *Document) (string, error) {
	systems := make([]any, len(d.Systems))
	for i := range d.Systems {
		systems[i] = d.Systems[i].canonicalMap()
	}
	patterns := make([]any, len(d.Patterns))
	for i := range d.Patterns {
		patterns[i] = d.Patterns[i].canonicalMap()
	}
	data, err := MarshalCanonical(map[string]any{
		"schema_version": d.SchemaVersion,
		"systems":        systems,
		"patterns":       patterns,
	})
	if err != nil {
		return "", err
	}
	return hashWithDomain(DomainDocument, data), nil
}

func (s *SystemIR) canonicalMap() map[string]any {
	blocks := make([]any, len(s.Blocks))
	for i, b := range s.Blocks {
		blocks[i] = b.canonicalMap()
	}
	wirings := make([]any, len(s.Wirings))
	for i, w := range s.Wirings {
		wirings[i] = w.canonicalMap()
	}
	params := make([]any, len(s.Parameters))
	for i, p := range s.Parameters {
		params[i] = map[string]any{
			"name":        p.Name,
			"type":        p.Type,
			"description": p.Description,
		}
	}
	m := map[string]any{
		"name":       s.Name,
		"blocks":     blocks,
		"wirings":    wirings,
		"parameters": params,
	}
	if s.Hierarchy != nil {
		m["hierarchy"] = s.Hierarchy.canonicalMap()
	}
	return m
}

func (b BlockIR) canonicalMap() map[string]any {
	meta := make(map[string]any, len(b.Metadata))
	for k, v := range b.Metadata {
		meta[k] = v
	}
	return map[string]any{
		"name":         b.Name,
		"role":         b.Role,
		"forward_in":   toAny(b.ForwardIn),
		"forward_out":  toAny(b.ForwardOut),
		"backward_in":  toAny(b.BackwardIn),
		"backward_out": toAny(b.BackwardOut),
		"metadata":     meta,
	}
}

func (w WiringIR) canonicalMap() map[string]any {
	return map[string]any{
		"source":      w.Source,
		"target":      w.Target,
		"label":       w.Label,
		"direction":   w.Direction,
		"is_feedback": w.IsFeedback,
		"is_temporal": w.IsTemporal,
	}
}

func (n *HierarchyNode) canonicalMap() map[string]any {
	children := make([]any, len(n.Children))
	for i, c := range n.Children {
		children[i] = c.canonicalMap()
	}
	return map[string]any{
		"kind":           n.Kind,
		"name":           n.Name,
		"exit_condition": n.ExitCondition,
		"children":       children,
	}
}

func (p PatternIR) canonicalMap() map[string]any {
	wirings := make([]any, len(p.Wirings))
	for i, w := range p.Wirings {
		wirings[i] = w.canonicalMap()
	}
	return map[string]any{
		"name":        p.Name,
		"description": p.Description,
		"roles":       toAny(p.Roles),
		"wirings":     wirings,
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
