package ir

// BlockIR is one flattened block: its name, role, the four port-token
// signature summaries, and free-form metadata. Signature entries are
// canonical token strings (sorted tokens joined with "+"), one per port,
// in interface order.
type BlockIR struct {
	Name        string            `json:"name"`
	Role        string            `json:"role"`
	ForwardIn   []string          `json:"forward_in"`
	ForwardOut  []string          `json:"forward_out"`
	BackwardIn  []string          `json:"backward_in"`
	BackwardOut []string          `json:"backward_out"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Wiring directions as stored in the IR.
const (
	DirectionCovariant     = "covariant"
	DirectionContravariant = "contravariant"
)

// WiringIR is one directed edge of the flat wiring graph. IsFeedback
// and IsTemporal record which composite kind declared the edge; the
// verification engine uses them to scope the covariant-acyclicity and
// type checks.
type WiringIR struct {
	Source     string `json:"source"`
	Target     string `json:"target"`
	Label      string `json:"label,omitempty"`
	Direction  string `json:"direction"`
	IsFeedback bool   `json:"is_feedback"`
	IsTemporal bool   `json:"is_temporal"`
}

// Covariant reports whether the wiring carries forward flow.
func (w WiringIR) Covariant() bool { return w.Direction == DirectionCovariant }

// Hierarchy node kinds, mirroring the composition operators.
const (
	NodeBlock    = "block"
	NodeStack    = "stack"
	NodeParallel = "parallel"
	NodeFeedback = "feedback"
	NodeTemporal = "temporal"
)

// HierarchyNode mirrors the shape of the composition tree that produced
// a SystemIR. Leaves carry block names; interior nodes carry the
// operator kind and, for temporal loops, the reporting-only exit
// condition.
type HierarchyNode struct {
	Kind          string           `json:"kind"`
	Name          string           `json:"name"`
	ExitCondition string           `json:"exit_condition,omitempty"`
	Children      []*HierarchyNode `json:"children,omitempty"`
}

// ParamIR is one parameter-schema entry carried on a SystemIR.
type ParamIR struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// SystemIR is the compiled flat form of one composition tree: blocks in
// flatten order, the directed wiring list, and the hierarchy tree.
// Block ordering is deterministic and preserved by serialization; it
// has no semantic effect on verification, which is set and graph based.
type SystemIR struct {
	Name       string         `json:"name"`
	Blocks     []BlockIR      `json:"blocks"`
	Wirings    []WiringIR     `json:"wirings"`
	Hierarchy  *HierarchyNode `json:"hierarchy,omitempty"`
	Parameters []ParamIR      `json:"parameters,omitempty"`
}

// Block looks up a block by name.
func (s *SystemIR) Block(name string) (BlockIR, bool) {
	for _, b := range s.Blocks {
		if b.Name == name {
			return b, true
		}
	}
	return BlockIR{}, false
}

// BlockNames returns the block names in flatten order.
func (s *SystemIR) BlockNames() []string {
	names := make([]string, len(s.Blocks))
	for i, b := range s.Blocks {
		names[i] = b.Name
	}
	return names
}

// PatternIR is a named reusable wiring motif: the role sequence it
// applies to and the wiring shape it imposes. Patterns travel alongside
// systems in documents; nothing in the core evaluates them.
type PatternIR struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Roles       []string   `json:"roles"`
	Wirings     []WiringIR `json:"wirings"`
}
