// Package block implements the composition algebra: ports, four-part
// directional interfaces, atomic blocks with role refinements, and the
// Stack / Parallel / FeedbackLoop / TemporalLoop composition operators.
//
// Block is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and keeps
// type switches over the variants exhaustive. The leaf variants form a
// closed set: Atomic plus the four roles (BoundaryAction, Policy,
// ControlAction, Mechanism).
//
// Composites own their children and derive their interface; they never
// store one independently. Construction validates eagerly and returns an
// error, never a half-built composite. The construction tree is always
// acyclic; cycles can appear only in the compiled wiring graph.
package block
