package clisurface

// ExitError carries an explicit process exit code alongside an error,
// distinguishing spec.md §6's three-way CLI exit contract (0 success, 1
// input/runtime error, 2 precommit-blocked) from cobra's default
// success-or-failure model.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }
