package respack

import "log/slog"

// Option configures a [Run].
type Option func(*runOptions)

type runOptions struct {
	settings    []Setting
	workingRoot WorkingRootProvider
	maxSweeps   int
	logger      *slog.Logger
}

// DefaultMaxSweeps bounds each fixpoint loop of a repeating task.
const DefaultMaxSweeps = 1024

func defaultOptions() runOptions {
	return runOptions{
		workingRoot: TemporaryWorkingRoot{},
		maxSweeps:   DefaultMaxSweeps,
	}
}

// WithSettings binds settings for the duration of the run.
//
// Example:
//
//	respack.Run(ctx, src, dst, tasks.Default(),
//	    respack.WithSettings(respack.TileSize.To(64)))
func WithSettings(settings ...Setting) Option {
	return func(o *runOptions) {
		o.settings = append(o.settings, settings...)
	}
}

// WithWorkingRoot selects where intermediate files go. The default is a
// fresh temp directory deleted after the run.
func WithWorkingRoot(p WorkingRootProvider) Option {
	return func(o *runOptions) {
		if p != nil {
			o.workingRoot = p
		}
	}
}

// WithMaxSweeps overrides [DefaultMaxSweeps]. Non-positive values are ignored.
func WithMaxSweeps(n int) Option {
	return func(o *runOptions) {
		if n > 0 {
			o.maxSweeps = n
		}
	}
}

// WithLogger sets the logger for the run and its task contexts, overriding
// [SetLogger] for this run. Tree operations keep using [Logger].
func WithLogger(l *slog.Logger) Option {
	return func(o *runOptions) {
		o.logger = l
	}
}
