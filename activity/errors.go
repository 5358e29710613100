package activity

import "fmt"

// InvariantError reports a caller bug, such as a nil participant. It is raised
// with panic and recovered by the request dispatcher, which drops that request.
type InvariantError struct {
	Op  string
	Msg string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("activity: %s: %s", e.Op, e.Msg)
}

func invariant(op, format string, args ...any) {
	panic(&InvariantError{Op: op, Msg: fmt.Sprintf(format, args...)})
}
