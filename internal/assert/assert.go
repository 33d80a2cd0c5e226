package assert

import (
	"errors"
	"fmt"
)

// ErrPrecondition is wrapped by every Violation.
var ErrPrecondition = errors.New("precondition violated")

// Violation describes a broken caller contract.
type Violation struct {
	Op  string
	Msg string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s: %s", v.Op, ErrPrecondition, v.Msg)
}

func (v *Violation) Unwrap() error { return ErrPrecondition }

// Fail panics with a Violation. It is used by the checks below and by code
// paths that are unreachable under correct use.
func Fail(op, format string, args ...any) {
	panic(&Violation{Op: op, Msg: fmt.Sprintf(format, args...)})
}

// Index checks i < n.
func Index(op string, i, n uint64) {
	if Enabled && i >= n {
		Fail(op, "index %d out of range [0, %d)", i, n)
	}
}

// NotEmpty checks n > 0.
func NotEmpty(op string, n uint64) {
	if Enabled && n == 0 {
		Fail(op, "container is empty")
	}
}

// That checks an arbitrary condition.
func That(cond bool, op, format string, args ...any) {
	if Enabled && !cond {
		Fail(op, format, args...)
	}
}
