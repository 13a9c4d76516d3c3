package core

// Diagnostic is a failure attached to one input file.
type Diagnostic struct {
	Path  string
	Stage string // "source", or the name of the emitter that failed
	Err   error
}

func (d Diagnostic) Error() string {
	return d.Path + ": " + d.Err.Error()
}

// Summary is the outcome of one batch run.
type Summary struct {
	RunID       string
	Total       int
	Succeeded   int
	Failed      int
	Skipped     map[string]int // rows an emitter dropped after disabling itself
	Diagnostics []Diagnostic
}

// ExitCode is 0 when at least one file was processed.
func (s *Summary) ExitCode() int {
	if s == nil || s.Succeeded == 0 {
		return 1
	}
	return 0
}
