package retire

// State is the lifecycle state of a Controller.
type State int

const (
	// StateArmed is the initial state: no retirement in flight.
	StateArmed State = iota
	// StatePending means the exit is scheduled and observers are notified.
	StatePending
	// StateTerminating means the host stopped accepting connections.
	StateTerminating
	// StateExited means the deferral elapsed and the exit function ran.
	StateExited
	// StateDisarmed means an observer cancelled the retirement. No further
	// retirement will run.
	StateDisarmed
	// StateDelegated means a custom terminator took over.
	StateDelegated
)

func (s State) String() string {
	switch s {
	case StateArmed:
		return "armed"
	case StatePending:
		return "pending"
	case StateTerminating:
		return "terminating"
	case StateExited:
		return "exited"
	case StateDisarmed:
		return "disarmed"
	case StateDelegated:
		return "delegated"
	default:
		return "unknown"
	}
}

// Retiring reports whether the process is on its way out.
func (s State) Retiring() bool {
	return s == StatePending || s == StateTerminating || s == StateExited || s == StateDelegated
}
