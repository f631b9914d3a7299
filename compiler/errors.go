package compiler

import "fmt"

// InvariantError reports broken internal state while generating a type.
// It aborts generation of that type only.
type InvariantError struct {
	Type string
	Msg  string
}

func (e *InvariantError) Error() string {
	if e.Type == "" {
		return "invariant violated: " + e.Msg
	}
	return fmt.Sprintf("invariant violated in %s: %s", e.Type, e.Msg)
}

// WriteError reports an artifact that could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// TypeFailure ties a failure to the type whose generation it aborted.
type TypeFailure struct {
	Type string
	Err  error
}

func (f *TypeFailure) Error() string {
	return f.Type + ": " + f.Err.Error()
}

func (f *TypeFailure) Unwrap() error { return f.Err }

// invariantf aborts the current type. It is recovered by the driver.
func invariantf(typ string, format string, args ...interface{}) {
	panic(&InvariantError{Type: typ, Msg: fmt.Sprintf(format, args...)})
}
