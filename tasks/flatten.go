package tasks

import "github.com/gogpu/respack"

// FlattenFlag marks directories whose contents move up one level.
const FlattenFlag = "flatten"

// Flatten hands the children of every "flatten" directory to its parent
// and removes the directory. It repeats until nested flatten directories
// have all been dissolved.
type Flatten struct{ respack.BaseTask }

func (*Flatten) Name() string    { return "Flatten" }
func (*Flatten) Repeating() bool { return true }

func (*Flatten) OperateDirectory(tc *respack.TaskContext, d *respack.Directory) (bool, error) {
	if !d.HasFlag(FlattenFlag) {
		return false, nil
	}
	if d.Parent() == nil {
		tc.Log().Warn("root directory cannot be flattened")
		return false, nil
	}
	flattenDirectory(d)
	return true, nil
}

// flattenDirectory moves the live children of d into its parent and
// removes d. d must not be the root.
func flattenDirectory(d *respack.Directory) {
	parent := d.Parent()
	parent.RemoveChild(d)
	for _, f := range d.Files() {
		d.RemoveChild(f)
		parent.AddFile(f)
	}
	for _, sub := range d.Directories() {
		d.RemoveChild(sub)
		parent.AddDirectory(sub)
	}
}
