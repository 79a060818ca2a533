package col2im

import "github.com/pkg/errors"

// Errors returned by Task construction and retrieval. Use errors.Is to test for them.
var (
	// ErrInvalidGeometry reports column/image tensors or parameters that cannot describe a Col2Im.
	ErrInvalidGeometry = errors.New("col2im: invalid geometry")

	// ErrTimeout is returned by GetTimeout when the task is not done in time.
	// Work in progress is not stopped.
	ErrTimeout = errors.New("col2im: timed out waiting for task")

	// ErrInterrupted is returned by Wait when its context ends before the task is done.
	ErrInterrupted = errors.New("col2im: interrupted while waiting for task")

	// ErrCancelled is returned, together with the partially accumulated output, by
	// retrievals on a cancelled task.
	ErrCancelled = errors.New("col2im: task cancelled")

	// ErrUnitFailed wraps the error a work unit panicked with.
	ErrUnitFailed = errors.New("col2im: work unit failed")

	// ErrAlreadyStarted is returned when a task is invoked more than once.
	ErrAlreadyStarted = errors.New("col2im: task already started")
)

// invalidf returns an error wrapping ErrInvalidGeometry.
func invalidf(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidGeometry, format, args...)
}
