package hmm

import "fmt"

// IncompleteFileError is returned when a training table ends before all of
// its expected rows have been read.
type IncompleteFileError struct {
	File    string
	Section string
}

func (e *IncompleteFileError) Error() string {
	return fmt.Sprintf("%s: incomplete file in section %q", e.File, e.Section)
}

// UnknownTransitionKeyError is returned when the transitions section names
// a key outside the 14 recognised transition kinds.
type UnknownTransitionKeyError struct {
	File string
	Line int
	Key  string
}

func (e *UnknownTransitionKeyError) Error() string {
	return fmt.Sprintf("%s:%d: unknown transition key %q", e.File, e.Line, e.Key)
}

// MalformedNumberError is returned when a numeric token fails to parse as
// a float.
type MalformedNumberError struct {
	File  string
	Line  int
	Token string
}

func (e *MalformedNumberError) Error() string {
	return fmt.Sprintf("%s:%d: malformed number %q", e.File, e.Line, e.Token)
}
