package block

import "fmt"

// Composition error codes (E200-E299).
const (
	ErrNilChild           = "E200" // composite constructed with a nil child
	ErrBoundaryForwardIn  = "E201" // boundary action declares forward-in ports
	ErrMechanismBackward  = "E202" // mechanism declares backward ports
	ErrTemporalDirection  = "E203" // temporal loop wiring is contravariant
	ErrMechanismNoUpdates = "E204" // mechanism declares no state updates
	ErrStackIncompatible  = "E210" // sequential composition type mismatch
)

// CompositionError reports a role or algebra invariant violation raised
// at construction time. It is terminal: the composite is not built.
type CompositionError struct {
	Code    string
	Block   string
	Message string
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Block, e.Message)
}

// IncompatibleError reports a token-level type mismatch between two
// sequentially composed blocks. Both sides' token sets are named so the
// caller can see exactly what failed to line up.
type IncompatibleError struct {
	First     string
	Second    string
	OutTokens []string
	InTokens  []string
}

func (e *IncompatibleError) Error() string {
	return fmt.Sprintf("[%s] cannot stack %s before %s: forward-out tokens %v share nothing with forward-in tokens %v",
		ErrStackIncompatible, e.First, e.Second, e.OutTokens, e.InTokens)
}
