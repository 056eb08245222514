// Package ir defines the flat intermediate representation produced by
// the compiler: SystemIR (ordered blocks, directed wirings, hierarchy
// tree), PatternIR, and the serializable Document wrapper.
//
// This package contains type definitions plus their canonical byte
// forms. All other internal packages import ir; ir imports nothing
// internal. Values are immutable once produced: verification and
// queries read the IR, they never write it.
//
// Two serializations exist and must not be confused:
//   - Document.Encode / DecodeDocument: the round-trip interchange form,
//     ordinary indented JSON preserving block order, wiring order, flags
//     and hierarchy exactly.
//   - MarshalCanonical: the deterministic byte form used only for
//     content hashing (sorted keys, NFC strings, no floats).
package ir
