package ir

// Version constants recorded alongside journaled violations.
const (
	// IRVersion is the contract IR schema version.
	IRVersion = "1"

	// EngineVersion is the contract engine version.
	EngineVersion = "0.1.0"
)
