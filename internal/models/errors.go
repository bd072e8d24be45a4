package models

import (
	"errors"
	"fmt"
)

var (
	// ErrTaskActive is returned when a task is submitted while another one is still in flight.
	ErrTaskActive = errors.New("task already in progress")

	// ErrNoSelection is returned when an operation needs a selected image and none is selected.
	ErrNoSelection = errors.New("no image selected")

	// ErrEmptyImage is returned when a decoded image has no pixels.
	ErrEmptyImage = errors.New("image is empty")
)

// StructuralError reports a buffer whose shape is not (H, W) or (H, W, 3).
type StructuralError struct {
	Shape   []int
	Message string
}

// NewStructuralError creates a new structural error for the given shape
func NewStructuralError(shape []int, format string, args ...interface{}) *StructuralError {
	return &StructuralError{
		Shape:   append([]int(nil), shape...),
		Message: fmt.Sprintf(format, args...),
	}
}

func (se *StructuralError) Error() string {
	return fmt.Sprintf("structural error for shape %v: %s", se.Shape, se.Message)
}

// IsStructuralError reports whether err is or wraps a StructuralError
func IsStructuralError(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}
