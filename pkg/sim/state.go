// Package sim provides fix-source interfaces and the flight-mode state
// machines that run on top of them.
package sim

// State represents the connection and activity state of the fix source.
type State string

const (
	// StateDisconnected indicates no connection to the source.
	StateDisconnected State = "disconnected"
	// StateInactive indicates connected but without a valid fix.
	StateInactive State = "inactive"
	// StateActive indicates connected with fixes flowing.
	StateActive State = "active"
)
