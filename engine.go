package respack

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Run executes tasks, in order, over the resource tree built from source and
// writes the resulting tree to destination.
//
// The run proceeds in these steps:
//  1. Build the tree; a source that is not a directory aborts with [ErrNotDirectory].
//  2. Acquire the working root; it is disposed on every exit path.
//  3. Clear and create destination.
//  4. Prepare every task.
//  5. Non-repeating tasks get one Operate call and one tree sweep. Repeating
//     tasks get Operate until it reports no work, then sweeps until a sweep
//     reports no work.
//  6. Copy the final tree to destination.
//
// A task error aborts the run immediately and is returned as a [*TaskError].
func Run(ctx context.Context, source, destination string, tasks []Task, opts ...Option) error {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger
	if log == nil {
		log = Logger()
	}
	start := time.Now()

	root, err := OpenTree(source)
	if err != nil {
		log.Error("source tree could not be built", "source", source, "err", err)
		return err
	}
	log.Info("starting packing operation", "from", source, "to", destination)
	if len(root.flags) > 0 {
		log.Warn("flags of the root directory will not be processed", "flags", root.flags)
	}

	wr, err := NewWorkingRoot(o.workingRoot)
	if err != nil {
		return err
	}
	defer wr.Dispose()

	ClearDirectory(destination, false)
	if err := os.MkdirAll(destination, 0o755); err != nil {
		log.Error("output directory could not be created", "destination", destination, "err", err)
		return fmt.Errorf("respack: create output: %w", err)
	}

	settings := NewSettings(o.settings...)
	if keys := settings.Keys(); len(keys) > 0 {
		log.Debug("settings active", "keys", keys)
	}

	contexts := make([]*TaskContext, len(tasks))
	for i, t := range tasks {
		tc := NewTaskContext(ctx, t, wr, settings)
		tc.log = log.With("task", t.Name())
		if err := t.Prepare(tc); err != nil {
			return &TaskError{Task: t.Name(), Err: err}
		}
		contexts[i] = tc
	}

	for i, t := range tasks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := runTask(contexts[i], t, root, o.maxSweeps); err != nil {
			return &TaskError{Task: t.Name(), Err: err}
		}
	}

	err = root.CopyToDisk(destination, CopyOptions{
		Symlink:    PreferSymlinks.Get(settings),
		SourceRoot: root.path,
	})
	if err != nil {
		return err
	}
	log.Info("packing operation finished", "duration", time.Since(start))
	return nil
}

func runTask(tc *TaskContext, t Task, root *Directory, maxSweeps int) error {
	log := tc.Log()

	if !t.Repeating() {
		ran, err := t.Operate(tc)
		if err != nil {
			return err
		}
		did, err := root.ApplyTask(tc, t)
		if err != nil {
			return err
		}
		if did {
			logTree(log, root)
		}
		log.Debug("task finished", "operated", ran, "changed tree", did)
		return nil
	}

	times := 0
	for {
		ran, err := t.Operate(tc)
		if err != nil {
			return err
		}
		if !ran {
			break
		}
		times++
		if times >= maxSweeps {
			return ErrNoFixpoint
		}
	}
	sweeps := 0
	for {
		if err := tc.ctx.Err(); err != nil {
			return err
		}
		did, err := root.ApplyTask(tc, t)
		if err != nil {
			return err
		}
		if !did {
			break
		}
		logTree(log, root)
		sweeps++
		if sweeps >= maxSweeps {
			return ErrNoFixpoint
		}
	}
	log.Debug("repeating task finished", "operate runs", times, "sweeps", sweeps)
	return nil
}

func logTree(log *slog.Logger, root *Directory) {
	if log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("virtual tree after task\n" + root.PrettyString())
	}
}
