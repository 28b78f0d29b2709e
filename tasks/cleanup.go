package tasks

import "github.com/gogpu/respack"

// RetainFlag keeps a directory in the output even when it is empty.
const RetainFlag = "retain"

// RemoveEmptyDirectories removes directories left without children,
// innermost first, unless they are flagged "retain".
type RemoveEmptyDirectories struct{ respack.BaseTask }

func (*RemoveEmptyDirectories) Name() string { return "RemoveEmptyDirectories" }

func (*RemoveEmptyDirectories) OperateDirectory(tc *respack.TaskContext, d *respack.Directory) (bool, error) {
	return pruneEmpty(tc, d), nil
}

// pruneEmpty removes the empty descendants of d and then d itself when it
// became empty. The root is never removed.
func pruneEmpty(tc *respack.TaskContext, d *respack.Directory) bool {
	did := false
	for _, sub := range d.Directories() {
		if pruneEmpty(tc, sub) {
			did = true
		}
	}
	if d.HasChildren() || d.HasFlag(RetainFlag) || d.Parent() == nil {
		return did
	}
	tc.Log().Debug("removing empty directory", "dir", d.String())
	return d.RemoveFromParent() || did
}
