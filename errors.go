package respack

import (
	"errors"
	"fmt"
)

// Run errors.
var (
	// ErrNotDirectory is returned when the source of a run is not a directory.
	ErrNotDirectory = errors.New("respack: not a directory")

	// ErrNoFixpoint is returned when a repeating task keeps reporting work
	// after the configured number of sweeps.
	ErrNoFixpoint = errors.New("respack: repeating task did not converge")
)

// TaskError reports the task that aborted a run.
type TaskError struct {
	Task string
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("respack: task %s: %v", e.Task, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }
