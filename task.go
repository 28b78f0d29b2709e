package respack

import (
	"context"
	"log/slog"
)

// Task is one step of the pipeline.
//
// A task overrides any of the three hooks. Each hook reports whether it did
// work. Problems with a single resource (unknown flag values, missing
// dependencies) are logged and reported as no work. A returned error aborts
// the whole run; it is reserved for data that cannot be processed without
// guessing, such as an ambiguous ninepatch border.
//
// Embed [BaseTask] to get no-op defaults for everything except Name.
type Task interface {
	// Name returns a stable display name, also used in temp file names.
	Name() string

	// Repeating tasks run until their hooks stop reporting work.
	Repeating() bool

	// Prepare is called once per run before any hook. Reset per-run state here.
	Prepare(tc *TaskContext) error

	// Operate is called once per run (repeatedly for repeating tasks).
	Operate(tc *TaskContext) (bool, error)

	// OperateFile is called for every live file of the tree.
	OperateFile(tc *TaskContext, f *File) (bool, error)

	// OperateDirectory is called for every live directory of the tree,
	// including the root.
	OperateDirectory(tc *TaskContext, d *Directory) (bool, error)
}

// BaseTask implements every [Task] method except Name as a no-op.
type BaseTask struct{}

// Repeating returns false.
func (BaseTask) Repeating() bool { return false }

// Prepare does nothing.
func (BaseTask) Prepare(*TaskContext) error { return nil }

// Operate does nothing.
func (BaseTask) Operate(*TaskContext) (bool, error) { return false, nil }

// OperateFile does nothing.
func (BaseTask) OperateFile(*TaskContext, *File) (bool, error) { return false, nil }

// OperateDirectory does nothing.
func (BaseTask) OperateDirectory(*TaskContext, *Directory) (bool, error) { return false, nil }

// TaskContext binds a task to the run it executes in: the working root for
// intermediate output, the run settings and a task-scoped logger.
type TaskContext struct {
	ctx      context.Context
	name     string
	root     *WorkingRoot
	settings *Settings
	log      *slog.Logger
}

// NewTaskContext creates the context a task runs with. [Run] creates one per
// task; tests use it to drive a task directly.
func NewTaskContext(ctx context.Context, task Task, root *WorkingRoot, settings *Settings) *TaskContext {
	return &TaskContext{
		ctx:      ctx,
		name:     task.Name(),
		root:     root,
		settings: settings,
		log:      Logger().With("task", task.Name()),
	}
}

// Context returns the run context.
func (tc *TaskContext) Context() context.Context { return tc.ctx }

// Settings returns the run settings.
func (tc *TaskContext) Settings() *Settings { return tc.settings }

// WorkingRoot returns the run's scratch allocator.
func (tc *TaskContext) WorkingRoot() *WorkingRoot { return tc.root }

// Log returns a logger tagged with the task name.
func (tc *TaskContext) Log() *slog.Logger { return tc.log }

// NewFile returns a non-existing scratch path usable as a drop-in
// replacement for basedOn: same name and flags, and the same extension
// unless ext is given.
func (tc *TaskContext) NewFile(basedOn *File, ext string) string {
	return tc.root.CreateTempFile(tc.name, basedOn.name, basedOn, ext)
}

// NewFileNamed is like NewFile but with a different name.
func (tc *TaskContext) NewFileNamed(basedOn *File, name, ext string) string {
	return tc.root.CreateTempFile(tc.name, name, basedOn, ext)
}

// NewBlankFile returns a non-existing scratch path for arbitrary data.
func (tc *TaskContext) NewBlankFile(name, ext string) string {
	return tc.root.CreateTempFile(tc.name, name, nil, ext)
}

// NewFolder creates a unique scratch directory.
func (tc *TaskContext) NewFolder() (string, error) {
	return tc.root.CreateTempDirectory(tc.name)
}
