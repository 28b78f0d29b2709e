package respack

import (
	"iter"
	"slices"
)

// Resource is a node of the virtual resource tree. It is implemented only by
// [*File] and [*Directory]; use a type switch to tell them apart.
type Resource interface {
	// Name returns the name with flags and extension stripped.
	Name() string

	// Flags returns a copy of the node's flags, in order.
	Flags() []string

	// HasFlag reports whether flag is present.
	HasFlag(flag string) bool

	// AddFlag appends a flag.
	AddFlag(flag string)

	// Parent returns the containing directory, or nil for the tree root.
	Parent() *Directory

	// Ancestors yields the parent, its parent and so on up to the root.
	Ancestors() iter.Seq[*Directory]

	String() string

	applyTask(tc *TaskContext, task Task) (bool, error)
	setParent(d *Directory)
}

// node holds the fields shared by files and directories.
type node struct {
	name   string
	flags  []string
	parent *Directory
}

func (n *node) Name() string { return n.name }

func (n *node) Flags() []string { return slices.Clone(n.flags) }

func (n *node) HasFlag(flag string) bool { return slices.Contains(n.flags, flag) }

func (n *node) AddFlag(flag string) { n.flags = append(n.flags, flag) }

// RemoveFlag deletes every occurrence of flag and reports whether any existed.
func (n *node) RemoveFlag(flag string) bool {
	before := len(n.flags)
	n.flags = slices.DeleteFunc(n.flags, func(f string) bool { return f == flag })
	return len(n.flags) != before
}

// FlagsExcept returns the flags for which drop returns false.
func (n *node) FlagsExcept(drop func(flag string) bool) []string {
	out := make([]string, 0, len(n.flags))
	for _, f := range n.flags {
		if !drop(f) {
			out = append(out, f)
		}
	}
	return out
}

func (n *node) Parent() *Directory { return n.parent }

func (n *node) setParent(d *Directory) { n.parent = d }

func (n *node) Ancestors() iter.Seq[*Directory] {
	return func(yield func(*Directory) bool) {
		for d := n.parent; d != nil; d = d.parent {
			if !yield(d) {
				return
			}
		}
	}
}

// root returns the topmost ancestor, or nil for a detached node.
func (n *node) root() *Directory {
	var r *Directory
	for d := range n.Ancestors() {
		r = d
	}
	return r
}

// flagSuffix renders the name and flags the way they appear in a basename.
func (n *node) flagSuffix() string {
	return FormatName(n.name, n.flags, "")
}
