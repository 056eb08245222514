package spec

import (
	"fmt"

	"github.com/gdslab/blockspec/internal/block"
)

// Registry error codes (E100-E199).
const (
	ErrDuplicate = "E100" // duplicate registration

	ErrUnknownType      = "E110" // space field references unregistered type
	ErrUnknownBlock     = "E111" // wiring references unregistered block
	ErrUnknownSpace     = "E112" // wire label references unregistered space
	ErrUnknownEntity    = "E113" // mechanism update references unregistered entity
	ErrUnknownVariable  = "E114" // mechanism update references unknown state variable
	ErrUnknownParameter = "E115" // block references undefined parameter
)

// ValidationError is one cross-reference violation found by
// ValidateSpec.
type ValidationError struct {
	Code    string `json:"code"`
	Element string `json:"element"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Element, e.Message)
}

// ValidateSpec checks every cross reference in the registry and returns
// all violations found. It is pure: the registry is not mutated, and
// repeated calls on an unmutated registry return equal results. An empty
// slice means the specification is internally consistent.
func (r *Registry) ValidateSpec() []ValidationError {
	var errs []ValidationError

	// Space field types must be registered.
	for _, s := range r.Spaces() {
		for _, f := range s.Fields {
			if _, ok := r.types[f.Type]; !ok {
				errs = append(errs, ValidationError{
					Code:    ErrUnknownType,
					Element: fmt.Sprintf("%s.%s", s.Name, f.Name),
					Message: fmt.Sprintf("unknown type %q", f.Type),
				})
			}
		}
	}

	// Wiring groups: connected blocks and wire endpoints must resolve to
	// registered blocks, wire labels to registered spaces.
	for _, w := range r.Wirings() {
		for _, name := range w.Blocks {
			if _, ok := r.blocks[name]; !ok {
				errs = append(errs, ValidationError{
					Code:    ErrUnknownBlock,
					Element: w.Name,
					Message: fmt.Sprintf("unknown block %q in wiring group", name),
				})
			}
		}
		for i, wire := range w.Wires {
			for _, endpoint := range []string{wire.Source, wire.Target} {
				if _, ok := r.blocks[endpoint]; !ok {
					errs = append(errs, ValidationError{
						Code:    ErrUnknownBlock,
						Element: fmt.Sprintf("%s.wires[%d]", w.Name, i),
						Message: fmt.Sprintf("unknown block %q as wire endpoint", endpoint),
					})
				}
			}
			if wire.Space != "" {
				if _, ok := r.spaces[wire.Space]; !ok {
					errs = append(errs, ValidationError{
						Code:    ErrUnknownSpace,
						Element: fmt.Sprintf("%s.wires[%d]", w.Name, i),
						Message: fmt.Sprintf("unknown space %q as wire label", wire.Space),
					})
				}
			}
		}
	}

	// Mechanism updates must resolve to a registered entity and one of
	// its state variables.
	for _, b := range r.Blocks() {
		if m, ok := b.(*block.Mechanism); ok {
			for _, u := range m.Updates() {
				entity, ok := r.entities[u.Entity]
				if !ok {
					errs = append(errs, ValidationError{
						Code:    ErrUnknownEntity,
						Element: m.Name(),
						Message: fmt.Sprintf("update targets unknown entity %q", u.Entity),
					})
					continue
				}
				if _, ok := entity.Variable(u.Variable); !ok {
					errs = append(errs, ValidationError{
						Code:    ErrUnknownVariable,
						Element: m.Name(),
						Message: fmt.Sprintf("update targets unknown state variable %q on entity %q", u.Variable, u.Entity),
					})
				}
			}
		}
	}

	// Block parameter references must resolve against the schema.
	for _, b := range r.Blocks() {
		for _, p := range b.ParamsUsed() {
			if !r.params.Has(p) {
				errs = append(errs, ValidationError{
					Code:    ErrUnknownParameter,
					Element: b.Name(),
					Message: fmt.Sprintf("references undefined parameter %q", p),
				})
			}
		}
	}

	return errs
}
