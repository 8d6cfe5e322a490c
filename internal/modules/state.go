package modules

// State is the resolution state of a module's current declaration.
type State int

const (
	// StateNotDefined is reported for names that were never defined or required.
	StateNotDefined State = iota
	// StateNotResolved is the initial state, and the state after a failed resolution.
	StateNotResolved
	// StateInResolving means the declaration's dependencies are being resolved.
	StateInResolving
	// StateResolved means the factory provided its exports.
	StateResolved
)

// String returns the canonical state name.
func (s State) String() string {
	switch s {
	case StateNotDefined:
		return "NOT_DEFINED"
	case StateNotResolved:
		return "NOT_RESOLVED"
	case StateInResolving:
		return "IN_RESOLVING"
	case StateResolved:
		return "RESOLVED"
	default:
		return "UNKNOWN"
	}
}
