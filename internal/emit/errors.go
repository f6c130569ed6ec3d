package emit

// EmissionError reports a failure while writing the artifact tree.
type EmissionError struct {
	Err error
}

func (e *EmissionError) Error() string {
	return "emitting workspace: " + e.Err.Error()
}

func (e *EmissionError) Unwrap() error { return e.Err }
