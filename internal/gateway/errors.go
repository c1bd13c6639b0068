package gateway

import "fmt"

// Error kinds let the orchestrator distinguish misconfiguration from
// transient vendor trouble.
const (
	KindConfig    = "config"
	KindTransient = "transient"
	KindRejected  = "rejected"
)

type Error struct {
	Rail string
	Kind string
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Rail, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(rail, kind, op string, err error) *Error {
	return &Error{Rail: rail, Kind: kind, Op: op, Err: err}
}
