package dispatch

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"image-workbench/internal/models"
)

// Outcome is the tagged result of one task: exactly one of Result or Failure is set.
type Outcome struct {
	Result  *models.Buffer
	Failure *ErrorInfo
}

// Succeeded reports whether the outcome carries a result
func (o Outcome) Succeeded() bool {
	return o.Failure == nil && o.Result != nil
}

// ErrorInfo describes a failed task for the UI and for diagnostics
type ErrorInfo struct {
	Operation string
	Type      string
	Message   string
	Trace     string
	Err       error
}

func (e ErrorInfo) Error() string {
	return e.Message
}

// Unwrap exposes the captured error
func (e ErrorInfo) Unwrap() error {
	return e.Err
}

// TransformError wraps a failure raised by a transform
type TransformError struct {
	Operation string
	Err       error
}

func (te *TransformError) Error() string {
	return fmt.Sprintf("%s failed: %v", te.Operation, te.Err)
}

func (te *TransformError) Unwrap() error {
	return te.Err
}

// PanicError records a panic recovered from a transform
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (pe *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", pe.Value)
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// NewErrorInfo captures type, message and cause trace of a transform failure
func NewErrorInfo(operation string, err error) ErrorInfo {
	if err == nil {
		err = errors.New("unknown failure")
	}

	var (
		cause   = rootCause(err)
		message = (&TransformError{Operation: operation, Err: err}).Error()
		trace   string
	)

	var pe *PanicError
	switch {
	case errors.As(err, &pe):
		trace = fmt.Sprintf("%v\n\n%s", pe, strings.TrimSpace(string(pe.Stack)))
	default:
		if _, ok := err.(stackTracer); !ok {
			err = errors.WithStack(err)
		}
		trace = fmt.Sprintf("%+v", err)
	}

	return ErrorInfo{
		Operation: operation,
		Type:      fmt.Sprintf("%T", cause),
		Message:   message,
		Trace:     trace,
		Err:       &TransformError{Operation: operation, Err: err},
	}
}

// rootCause follows both errors.Cause and Unwrap chains to the innermost error
func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			if c := errors.Cause(err); c != err {
				next = c
			}
		}
		if next == nil {
			return err
		}
		err = next
	}
}
