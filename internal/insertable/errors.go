package insertable

import (
	"errors"
	"fmt"
)

// ErrNoDependencyReportFound is the distinguished error
// InsertWithDependencyReport returns when a step opts out of dependency
// reporting entirely; it is not a hard failure.
var ErrNoDependencyReportFound = errors.New("no dependency report found for this insertable")

// InsertionError signals a step failed to apply its side effect, or that the
// project state is self-inconsistent in a way the engine refuses to paper
// over. Fatal for the current invocation.
type InsertionError struct {
	Descriptor string
	Reason     string
	Err        error
}

func (e *InsertionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to insert %s: %s: %v", e.Descriptor, e.Reason, e.Err)
	}
	return fmt.Sprintf("failed to insert %s: %s", e.Descriptor, e.Reason)
}

func (e *InsertionError) Unwrap() error {
	return e.Err
}

// NewInsertionError builds an InsertionError for the given descriptor
// string and reason.
func NewInsertionError(descriptor, reason string, err error) *InsertionError {
	return &InsertionError{Descriptor: descriptor, Reason: reason, Err: err}
}

// ToolNotFoundError is a preflight failure: the external tool an insertable
// needs is not present at the configured path.
type ToolNotFoundError struct {
	Tool string
	Path string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool %q not found at %q", e.Tool, e.Path)
}

// ResourceNotFoundError is a preflight failure: an insertable's required
// input resource does not exist.
type ResourceNotFoundError struct {
	Resource string
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("required resource not found: %s", e.Resource)
}
