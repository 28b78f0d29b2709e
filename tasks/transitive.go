package tasks

import (
	"github.com/gogpu/respack"
	"github.com/gogpu/respack/internal/flagutil"
)

// Transitive flag patterns of a directory:
//
//	* f    adds f to the direct children
//	** f   adds f to every descendant
//	*N f   adds f to descendants up to N levels deep
var (
	directFlagPattern = flagutil.Pattern(`\* (.+)`)
	allFlagPattern    = flagutil.Pattern(`\*\* (.+)`)
	depthFlagPattern  = flagutil.Pattern(`\*(\d+) (.+)`)
)

// TransitiveFlag copies the starred flags of a directory onto its
// descendants. The starred flag itself stays on the directory.
type TransitiveFlag struct{ respack.BaseTask }

func (*TransitiveFlag) Name() string { return "TransitiveFlag" }

func (*TransitiveFlag) OperateDirectory(tc *respack.TaskContext, d *respack.Directory) (bool, error) {
	flags := d.Flags()
	did := false
	for m := range flagutil.MatchAll(flags, directFlagPattern) {
		addFlagDeep(d, m.Group(1), 1)
		did = true
	}
	for m := range flagutil.MatchAll(flags, allFlagPattern) {
		addFlagDeep(d, m.Group(1), -1)
		did = true
	}
	for m := range flagutil.MatchAll(flags, depthFlagPattern) {
		depth := m.Int(1, 0)
		if depth <= 0 {
			tc.Log().Warn("transitive flag with no depth does nothing", "flag", m.Group(0), "dir", d.String())
			continue
		}
		addFlagDeep(d, m.Group(2), depth)
		did = true
	}
	return did, nil
}

// addFlagDeep adds flag to the children of d down to depth levels, or to
// all levels when depth is negative.
func addFlagDeep(d *respack.Directory, flag string, depth int) {
	if depth == 0 {
		return
	}
	for _, f := range d.Files() {
		f.AddFlag(flag)
	}
	for _, sub := range d.Directories() {
		sub.AddFlag(flag)
		addFlagDeep(sub, flag, depth-1)
	}
}
