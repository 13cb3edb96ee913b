package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// StackTracer is implemented by errors that carry a pkg/errors stack trace.
// The logger checks for it to decide whether a stack can be printed.
type StackTracer interface {
	StackTrace() errors.StackTrace
}

// ErrorTracer annotates an infrastructure failure (snapshot store, trade
// publishing) with the operation that failed, keeping the cause and its
// stack reachable through Unwrap.
type ErrorTracer struct {
	operation string
	cause     error
}

// NewTracer creates a tracer for the named operation. Callers chain Wrap
// to attach the failure itself.
func NewTracer(operation string) *ErrorTracer {
	return &ErrorTracer{operation: operation}
}

// Wrap attaches the cause. A stack trace is captured here unless the cause
// already carries one, so the trace points at the first wrap site.
func (e *ErrorTracer) Wrap(err error) *ErrorTracer {
	if _, ok := err.(StackTracer); ok {
		e.cause = err
		return e
	}

	e.cause = errors.WithStack(err)
	return e
}

func (e *ErrorTracer) Error() string {
	if e.cause == nil {
		return e.operation
	}
	return fmt.Sprintf("%s: %v", e.operation, e.cause)
}

func (e *ErrorTracer) Unwrap() error {
	return e.cause
}

// StackTrace exposes the cause's stack so the logger can print it.
func (e *ErrorTracer) StackTrace() errors.StackTrace {
	if tracer, ok := e.cause.(StackTracer); ok {
		return tracer.StackTrace()
	}
	return nil
}
