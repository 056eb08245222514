package ir

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Document is the serializable wrapper around compiled IR: one or more
// systems and patterns plus provenance metadata. Documents round-trip
// through JSON exactly - block order, wiring order, the is_feedback and
// is_temporal flags, and the hierarchy tree all survive unchanged.
type Document struct {
	SchemaVersion string      `json:"schema_version"`
	ToolVersion   string      `json:"tool_version"`
	SourceID      string      `json:"source_id"`
	Sources       []string    `json:"sources,omitempty"`
	Systems       []SystemIR  `json:"systems"`
	Patterns      []PatternIR `json:"patterns,omitempty"`
}

// NewDocument wraps systems in a document stamped with the current
// schema and tool versions and a fresh UUIDv7 source identifier.
// sources lists the input files the systems came from.
func NewDocument(systems []SystemIR, sources ...string) *Document {
	return &Document{
		SchemaVersion: SchemaVersion,
		ToolVersion:   ToolVersion,
		SourceID:      uuid.Must(uuid.NewV7()).String(),
		Sources:       sources,
		Systems:       systems,
	}
}

// Encode serializes the document as indented JSON.
func (d *Document) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding IR document: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeDocument parses an encoded document and checks its schema
// version. Unknown versions are rejected rather than half-read.
func DecodeDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding IR document: %w", err)
	}
	if doc.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("unsupported IR schema version %q (tool supports %q)", doc.SchemaVersion, SchemaVersion)
	}
	return &doc, nil
}
