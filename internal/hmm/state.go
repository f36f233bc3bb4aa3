// Package hmm defines the 29-state gene-finding HMM: the state
// enumeration and the parameter store that backs the Viterbi decoder in
// internal/viterbi.
package hmm

// State enumerates the 29 hidden states of the decoder, in the order the
// reference model uses for its alpha/path tables. The ranges M1..M6,
// M1r..M6r, I1..I6 and I1r..I6r are kept contiguous so callers can test
// membership with a single pair of comparisons, exactly as the reference
// gene builder does.
type State int8

const (
	S State = iota
	E
	R
	Sr
	Er
	M1
	M2
	M3
	M4
	M5
	M6
	M1r
	M2r
	M3r
	M4r
	M5r
	M6r
	I1
	I2
	I3
	I4
	I5
	I6
	I1r
	I2r
	I3r
	I4r
	I5r
	I6r
	NumStates

	// NoState is the path-table sentinel meaning "no predecessor recorded
	// at this position".
	NoState State = -1
)

var stateNames = [NumStates]string{
	S: "S", E: "E", R: "R", Sr: "Sr", Er: "Er",
	M1: "M1", M2: "M2", M3: "M3", M4: "M4", M5: "M5", M6: "M6",
	M1r: "M1r", M2r: "M2r", M3r: "M3r", M4r: "M4r", M5r: "M5r", M6r: "M6r",
	I1: "I1", I2: "I2", I3: "I3", I4: "I4", I5: "I5", I6: "I6",
	I1r: "I1r", I2r: "I2r", I3r: "I3r", I4r: "I4r", I5r: "I5r", I6r: "I6r",
}

// String renders the state's canonical short name, or "-" for NoState.
func (s State) String() string {
	if s == NoState {
		return "-"
	}
	if s < 0 || int(s) >= len(stateNames) {
		return "?"
	}
	return stateNames[s]
}

// States returns the 29 states in enumeration order, for callers that need
// to iterate (e.g. the N-island override in the decoder).
func States() []State {
	out := make([]State, NumStates)
	for i := range out {
		out[i] = State(i)
	}
	return out
}
