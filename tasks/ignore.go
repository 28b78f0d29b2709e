package tasks

import "github.com/gogpu/respack"

// IgnoreFlag marks files and directories that must not reach the output.
const IgnoreFlag = "ignore"

// Ignore removes every resource flagged "ignore", together with its
// subtree.
type Ignore struct{ respack.BaseTask }

func (*Ignore) Name() string { return "Ignore" }

func (*Ignore) OperateFile(tc *respack.TaskContext, f *respack.File) (bool, error) {
	if !f.HasFlag(IgnoreFlag) {
		return false, nil
	}
	tc.Log().Debug("ignoring file", "file", f.String())
	return f.RemoveFromParent(), nil
}

func (*Ignore) OperateDirectory(tc *respack.TaskContext, d *respack.Directory) (bool, error) {
	if !d.HasFlag(IgnoreFlag) {
		return false, nil
	}
	tc.Log().Debug("ignoring directory", "dir", d.String())
	return d.RemoveFromParent(), nil
}
