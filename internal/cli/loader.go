package cli

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/gdslab/blockspec/internal/block"
	"github.com/gdslab/blockspec/internal/spec"
)

// Error code constants for system file loading, unified across commands.
// Registration and composition errors surface their own codes (E1xx from
// the registry, E2xx from composition); the E3xx range belongs to the
// CLI boundary.
const (
	ErrCodeGeneric     = "E300" // Generic/unknown error
	ErrCodeNotFound    = "E301" // Path not found
	ErrCodeParseFailed = "E302" // CUE parse/build failed
	ErrCodeBadSection  = "E303" // Malformed section in the system file
	ErrCodeBadRole     = "E304" // Unknown block role
	ErrCodeBadCompose  = "E305" // Composition tree construction failed
	ErrCodeWriteFailed = "E306" // File write error
	ErrCodeBadDocument = "E307" // IR document decode failed
)

// LoadError is an error raised while loading a system file.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func loadErrf(code, format string, args ...interface{}) *LoadError {
	return &LoadError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// LoadResult holds a system file after loading: the populated registry
// and, when the file declares a composition, the root of the block tree.
type LoadResult struct {
	Name     string
	Registry *spec.Registry
	Root     block.Block // nil when the file has no composition section
}

// Declaration shapes for the CUE system file. A system file has the form
//
//	system: {
//		name: "inventory"
//		types: {qty: {kind: "int"}}
//		spaces: {Orders: {fields: {count: "qty"}}}
//		entities: {Inventory: {state: {units: {type: "qty", symbol: "u"}}}}
//		parameters: {restock_rate: {type: "qty"}}
//		blocks: {
//			source: {role: "boundary", forward_out: ["orders"]}
//			decide: {role: "policy", forward_in: ["orders"], forward_out: ["restock"]}
//			apply: {
//				role: "mechanism"
//				forward_in: ["restock"]
//				updates: [{entity: "Inventory", variable: "units"}]
//			}
//		}
//		wirings: {
//			main: {
//				blocks: ["source", "decide", "apply"]
//				wires: [{source: "source", target: "decide", space: "Orders"}]
//			}
//		}
//		composition: {pipeline: ["source", "decide", "apply"]}
//	}
//
// Field order in the file fixes registration order, which in turn fixes
// the order of compiled block signatures and serialized output.
type typeDecl struct {
	Kind        string            `json:"kind"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata"`
}

type spaceDecl struct {
	Fields map[string]string `json:"fields"`
}

type stateVarDecl struct {
	Type   string `json:"type"`
	Symbol string `json:"symbol"`
}

type entityDecl struct {
	State map[string]stateVarDecl `json:"state"`
}

type paramDecl struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

type updateDecl struct {
	Entity   string `json:"entity"`
	Variable string `json:"variable"`
}

type blockDecl struct {
	Role        string       `json:"role"`
	ForwardIn   []string     `json:"forward_in"`
	ForwardOut  []string     `json:"forward_out"`
	BackwardIn  []string     `json:"backward_in"`
	BackwardOut []string     `json:"backward_out"`
	Params      []string     `json:"params"`
	Updates     []updateDecl `json:"updates"`
}

type wireDecl struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Space    string `json:"space"`
	Optional bool   `json:"optional"`
}

type wiringDecl struct {
	Blocks []string   `json:"blocks"`
	Wires  []wireDecl `json:"wires"`
}

type composeWireDecl struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	Label     string `json:"label"`
	Direction string `json:"direction"`
}

type temporalDecl struct {
	Wires []composeWireDecl `json:"wires"`
	Exit  string            `json:"exit"`
}

type compositionDecl struct {
	Pipeline []string          `json:"pipeline"`
	Feedback []composeWireDecl `json:"feedback"`
	Temporal *temporalDecl     `json:"temporal"`
}

// LoadSystem loads a single CUE system file, registers every declared
// element, and builds the composition tree if one is declared. Errors
// are collected rather than failing on the first; a non-nil result with
// errors means some elements loaded and others did not.
func LoadSystem(path string) (*LoadResult, []error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, []error{loadErrf(ErrCodeNotFound, "system file not found: %s", path)}
		}
		return nil, []error{loadErrf(ErrCodeNotFound, "reading system file: %v", err)}
	}

	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, []error{loadErrf(ErrCodeParseFailed, "building CUE value: %v", err)}
	}

	sysVal := value.LookupPath(cue.ParsePath("system"))
	if !sysVal.Exists() {
		return nil, []error{loadErrf(ErrCodeBadSection, "no system declaration found in %s", path)}
	}

	var errs []error
	result := &LoadResult{Registry: spec.NewRegistry()}

	nameVal := sysVal.LookupPath(cue.ParsePath("name"))
	if name, err := nameVal.String(); err == nil {
		result.Name = name
	} else {
		errs = append(errs, loadErrf(ErrCodeBadSection, "system.name: %v", err))
	}

	errs = append(errs, loadTypes(result.Registry, sysVal)...)
	errs = append(errs, loadSpaces(result.Registry, sysVal)...)
	errs = append(errs, loadEntities(result.Registry, sysVal)...)
	errs = append(errs, loadParameters(result.Registry, sysVal)...)
	errs = append(errs, loadBlocks(result.Registry, sysVal)...)
	errs = append(errs, loadWirings(result.Registry, sysVal)...)

	compVal := sysVal.LookupPath(cue.ParsePath("composition"))
	if compVal.Exists() {
		var decl compositionDecl
		if err := compVal.Decode(&decl); err != nil {
			errs = append(errs, loadErrf(ErrCodeBadCompose, "system.composition: %v", err))
		} else {
			root, compErrs := buildComposition(result.Registry, decl)
			result.Root = root
			errs = append(errs, compErrs...)
		}
	}

	return result, errs
}

// eachField iterates a struct section in declaration order, decoding
// every member into a fresh decl and handing it to fn.
func eachField[T any](sysVal cue.Value, section string, fn func(name string, decl T) error) []error {
	var errs []error
	secVal := sysVal.LookupPath(cue.ParsePath(section))
	if !secVal.Exists() {
		return nil
	}
	iter, err := secVal.Fields()
	if err != nil {
		return []error{loadErrf(ErrCodeBadSection, "system.%s: %v", section, err)}
	}
	for iter.Next() {
		var decl T
		if err := iter.Value().Decode(&decl); err != nil {
			errs = append(errs, loadErrf(ErrCodeBadSection, "system.%s.%s: %v", section, iter.Label(), err))
			continue
		}
		if err := fn(iter.Label(), decl); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func loadTypes(r *spec.Registry, sysVal cue.Value) []error {
	return eachField(sysVal, "types", func(name string, decl typeDecl) error {
		meta := decl.Metadata
		if decl.Description != "" {
			if meta == nil {
				meta = map[string]string{}
			}
			meta["description"] = decl.Description
		}
		return r.RegisterType(spec.TypeDef{Name: name, Kind: decl.Kind, Metadata: meta})
	})
}

func loadSpaces(r *spec.Registry, sysVal cue.Value) []error {
	var errs []error
	secVal := sysVal.LookupPath(cue.ParsePath("spaces"))
	if !secVal.Exists() {
		return nil
	}
	iter, err := secVal.Fields()
	if err != nil {
		return []error{loadErrf(ErrCodeBadSection, "system.spaces: %v", err)}
	}
	for iter.Next() {
		name := iter.Label()
		fieldsVal := iter.Value().LookupPath(cue.ParsePath("fields"))
		var fields []spec.Field
		if fieldsVal.Exists() {
			fieldIter, err := fieldsVal.Fields()
			if err != nil {
				errs = append(errs, loadErrf(ErrCodeBadSection, "system.spaces.%s: %v", name, err))
				continue
			}
			for fieldIter.Next() {
				typeName, err := fieldIter.Value().String()
				if err != nil {
					errs = append(errs, loadErrf(ErrCodeBadSection, "system.spaces.%s.%s: %v", name, fieldIter.Label(), err))
					continue
				}
				fields = append(fields, spec.Field{Name: fieldIter.Label(), Type: typeName})
			}
		}
		if err := r.RegisterSpace(spec.Space{Name: name, Fields: fields}); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func loadEntities(r *spec.Registry, sysVal cue.Value) []error {
	var errs []error
	secVal := sysVal.LookupPath(cue.ParsePath("entities"))
	if !secVal.Exists() {
		return nil
	}
	iter, err := secVal.Fields()
	if err != nil {
		return []error{loadErrf(ErrCodeBadSection, "system.entities: %v", err)}
	}
	for iter.Next() {
		name := iter.Label()
		stateVal := iter.Value().LookupPath(cue.ParsePath("state"))
		var vars []spec.StateVariable
		if stateVal.Exists() {
			varIter, err := stateVal.Fields()
			if err != nil {
				errs = append(errs, loadErrf(ErrCodeBadSection, "system.entities.%s: %v", name, err))
				continue
			}
			for varIter.Next() {
				var decl stateVarDecl
				if err := varIter.Value().Decode(&decl); err != nil {
					errs = append(errs, loadErrf(ErrCodeBadSection, "system.entities.%s.%s: %v", name, varIter.Label(), err))
					continue
				}
				vars = append(vars, spec.StateVariable{
					Name:   varIter.Label(),
					Type:   decl.Type,
					Symbol: decl.Symbol,
				})
			}
		}
		if err := r.RegisterEntity(spec.Entity{Name: name, Variables: vars}); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func loadParameters(r *spec.Registry, sysVal cue.Value) []error {
	return eachField(sysVal, "parameters", func(name string, decl paramDecl) error {
		return r.AddParameter(spec.ParameterDef{
			Name:        name,
			Type:        decl.Type,
			Description: decl.Description,
		})
	})
}

func loadBlocks(r *spec.Registry, sysVal cue.Value) []error {
	return eachField(sysVal, "blocks", func(name string, decl blockDecl) error {
		leaf, err := buildLeaf(name, decl)
		if err != nil {
			return err
		}
		return r.RegisterBlock(leaf)
	})
}

// buildLeaf constructs a role-tagged leaf from its declaration. Role
// constraint violations surface as the composition errors the block
// constructors raise.
func buildLeaf(name string, decl blockDecl) (block.Leaf, error) {
	iface := block.NewInterface(
		block.NewPorts(decl.ForwardIn...),
		block.NewPorts(decl.ForwardOut...),
		block.NewPorts(decl.BackwardIn...),
		block.NewPorts(decl.BackwardOut...),
	)

	switch decl.Role {
	case "", "generic":
		return block.NewAtomic(name, iface, decl.Params...), nil
	case "boundary":
		return block.NewBoundaryAction(name, iface, decl.Params...)
	case "policy":
		return block.NewPolicy(name, iface, decl.Params...)
	case "control":
		return block.NewControlAction(name, iface, decl.Params...)
	case "mechanism":
		updates := make([]block.StateUpdate, len(decl.Updates))
		for i, u := range decl.Updates {
			updates[i] = block.StateUpdate{Entity: u.Entity, Variable: u.Variable}
		}
		return block.NewMechanism(name, iface, updates, decl.Params...)
	default:
		return nil, loadErrf(ErrCodeBadRole, "block %q: unknown role %q", name, decl.Role)
	}
}

func loadWirings(r *spec.Registry, sysVal cue.Value) []error {
	return eachField(sysVal, "wirings", func(name string, decl wiringDecl) error {
		wires := make([]spec.Wire, len(decl.Wires))
		for i, w := range decl.Wires {
			wires[i] = spec.Wire{Source: w.Source, Target: w.Target, Space: w.Space, Optional: w.Optional}
		}
		return r.RegisterWiring(spec.SpecWiring{Name: name, Blocks: decl.Blocks, Wires: wires})
	})
}

// buildComposition folds the pipeline into a stack, then wraps feedback
// and temporal layers around it in that order.
func buildComposition(r *spec.Registry, decl compositionDecl) (block.Block, []error) {
	if len(decl.Pipeline) == 0 {
		return nil, []error{loadErrf(ErrCodeBadCompose, "composition.pipeline is empty")}
	}

	var errs []error
	blocks := make([]block.Block, 0, len(decl.Pipeline))
	for _, name := range decl.Pipeline {
		leaf, ok := r.Block(name)
		if !ok {
			errs = append(errs, loadErrf(ErrCodeBadCompose, "composition.pipeline references unknown block %q", name))
			continue
		}
		blocks = append(blocks, leaf)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	root := blocks[0]
	for _, next := range blocks[1:] {
		stacked, err := block.NewStack(root, next)
		if err != nil {
			return nil, []error{loadErrf(ErrCodeBadCompose, "stacking %s onto %s: %v", next.Name(), root.Name(), err)}
		}
		root = stacked
	}

	if len(decl.Feedback) > 0 {
		wirings, err := composeWirings(decl.Feedback, block.Contravariant)
		if err != nil {
			return nil, []error{err}
		}
		fb, err := block.NewFeedbackLoop(root, wirings...)
		if err != nil {
			return nil, []error{loadErrf(ErrCodeBadCompose, "feedback loop: %v", err)}
		}
		root = fb
	}

	if decl.Temporal != nil {
		wirings, err := composeWirings(decl.Temporal.Wires, block.Covariant)
		if err != nil {
			return nil, []error{err}
		}
		tl, err := block.NewTemporalLoop(root, wirings, decl.Temporal.Exit)
		if err != nil {
			return nil, []error{loadErrf(ErrCodeBadCompose, "temporal loop: %v", err)}
		}
		root = tl
	}

	return root, nil
}

func composeWirings(decls []composeWireDecl, defaultDir block.Direction) ([]block.Wiring, error) {
	wirings := make([]block.Wiring, len(decls))
	for i, d := range decls {
		dir := defaultDir
		switch d.Direction {
		case "":
		case "covariant":
			dir = block.Covariant
		case "contravariant":
			dir = block.Contravariant
		default:
			return nil, loadErrf(ErrCodeBadCompose, "wire %s->%s: unknown direction %q", d.Source, d.Target, d.Direction)
		}
		wirings[i] = block.Wiring{Source: d.Source, Target: d.Target, Label: d.Label, Direction: dir}
	}
	return wirings, nil
}
