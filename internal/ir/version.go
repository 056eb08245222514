package ir

// Version constants for the IR document schema and the tool.
const (
	// SchemaVersion is the IR document schema version.
	SchemaVersion = "1"

	// ToolVersion is the blockspec compiler version.
	ToolVersion = "0.1.0"
)
