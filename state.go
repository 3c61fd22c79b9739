package etl

// State identifies where in its lifecycle a pipeline run is.
// Runs advance linearly through the states below; Failed is terminal
// and reachable from any state.
type State string

const (
	StateIdle           State = "idle"
	StateExtracted      State = "extracted"
	StateValidated      State = "validated"
	StateEnriched       State = "enriched"
	StateAnomalyChecked State = "anomaly_checked"
	StateLoaded         State = "loaded"
	StateDone           State = "done"
	StateFailed         State = "failed"
)

// next returns the state following s on the success path.
func (s State) next() (State, bool) {
	switch s {
	case StateIdle:
		return StateExtracted, true
	case StateExtracted:
		return StateValidated, true
	case StateValidated:
		return StateEnriched, true
	case StateEnriched:
		return StateAnomalyChecked, true
	case StateAnomalyChecked:
		return StateLoaded, true
	case StateLoaded:
		return StateDone, true
	default:
		return s, false
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
