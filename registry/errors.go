package registry

import "fmt"

// InvariantError reports a caller bug such as an empty identifier.
type InvariantError struct {
	Op  string
	Msg string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("registry: %s: %s", e.Op, e.Msg)
}

func requireID(op, kind, id string) {
	if id == "" {
		panic(&InvariantError{Op: op, Msg: kind + " id must not be empty"})
	}
}
