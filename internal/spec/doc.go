// Package spec implements the specification registry: the validated
// container of named types, spaces, stateful entities, blocks, wiring
// groups, and the parameter schema.
//
// The registry has a strict two-phase lifetime: a build phase in which
// Register* methods insert definitions (failing immediately on name
// collisions - a duplicate registration is a caller bug), followed by a
// read-only analysis phase (ValidateSpec, projection, verification,
// queries). The two phases never interleave and a registry is owned by
// a single builder; it is not safe for concurrent mutation.
//
// ValidateSpec is the whole-registry reference check. It is pure,
// collects every violation instead of failing fast, and resolves all
// cross references: space field types, wiring endpoints, wire space
// labels, mechanism update targets, parameter references.
package spec
