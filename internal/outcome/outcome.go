// Package outcome holds the failure taxonomy shared by the lifecycle, export
// and migration operations, and the (success, message) result they return.
package outcome

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed.
type Kind int

const (
	KindNone Kind = iota
	// KindValidation: bad input, nothing was attempted.
	KindValidation
	// KindExecution: a command could not launch or a connection could not open.
	KindExecution
	// KindRemote: the command ran but failed, or the backend rejected the write.
	KindRemote
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation failure"
	case KindExecution:
		return "execution failure"
	case KindRemote:
		return "remote failure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error carries a Kind alongside the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a KindValidation error from a message.
func Validation(op, format string, args ...any) error {
	return &Error{Kind: KindValidation, Op: op, Err: fmt.Errorf(format, args...)}
}

// Execution wraps err as a KindExecution error.
func Execution(op string, err error) error {
	return wrap(KindExecution, op, err)
}

// Remote wraps err as a KindRemote error.
func Remote(op string, err error) error {
	return wrap(KindRemote, op, err)
}

func wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf reports the Kind of the outermost classified error in err's chain.
// Unclassified errors count as remote failures.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindRemote
}

// Result is what every public core operation returns instead of raising.
type Result struct {
	Success bool
	Message string
	Kind    Kind
}

// OK builds a successful Result.
func OK(format string, args ...any) Result {
	return Result{Success: true, Message: fmt.Sprintf(format, args...)}
}

// Fail builds a failed Result from err, keeping its message verbatim.
func Fail(err error) Result {
	if err == nil {
		return Result{Success: false, Message: "unknown failure", Kind: KindRemote}
	}
	return Result{Success: false, Message: err.Error(), Kind: KindOf(err)}
}

// Err turns a failed Result back into an error; nil when Success is set.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	return &Error{Kind: r.Kind, Err: errors.New(r.Message)}
}

func (r Result) String() string {
	if r.Success {
		return r.Message
	}
	return fmt.Sprintf("%s: %s", r.Kind, r.Message)
}
