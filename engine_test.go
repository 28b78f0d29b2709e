package respack

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// flattenTask hands the children of every "flatten" directory to its parent.
type flattenTask struct{ BaseTask }

func (*flattenTask) Name() string    { return "Flatten" }
func (*flattenTask) Repeating() bool { return true }

func (*flattenTask) OperateDirectory(_ *TaskContext, d *Directory) (bool, error) {
	if !d.HasFlag("flatten") || d.Parent() == nil {
		return false, nil
	}
	grandparent := d.Parent()
	grandparent.RemoveChild(d)
	for _, c := range d.Files() {
		d.RemoveChild(c)
		grandparent.AddChild(c)
	}
	for _, c := range d.Directories() {
		d.RemoveChild(c)
		grandparent.AddChild(c)
	}
	return true, nil
}

func TestFlattenConvergesWithinDepth(t *testing.T) {
	const depth = 5
	rel := ""
	files := map[string]string{}
	for i := range depth {
		rel = filepath.Join(rel, "level"+string(rune('a'+i))+".flatten")
		files[filepath.ToSlash(filepath.Join(rel, "f"+string(rune('a'+i))+".txt"))] = "x"
	}
	src := writeTree(t, files)

	root, err := OpenTree(src)
	if err != nil {
		t.Fatal(err)
	}
	task := &flattenTask{}
	tc := NewTaskContext(context.Background(), task, nil, nil)

	sweeps := 0
	for {
		did, err := root.ApplyTask(tc, task)
		if err != nil {
			t.Fatal(err)
		}
		if !did {
			break
		}
		sweeps++
		if sweeps > depth {
			t.Fatalf("flatten did not converge within %d sweeps", depth)
		}
	}

	if len(root.Directories()) != 0 {
		t.Errorf("directories left after flatten: %v", names(root.Directories()))
	}
	if diff := cmp.Diff([]string{"fa", "fb", "fc", "fd", "fe"}, names(root.Files())); diff != "" {
		t.Errorf("flattened files mismatch (-want +got):\n%s", diff)
	}
}

func TestRunFlattenEndToEnd(t *testing.T) {
	src := writeTree(t, map[string]string{
		"a.flatten/b.flatten/c.txt": "c",
		"a.flatten/d.txt":           "d",
		"keep/e.txt":                "e",
	})
	dst := filepath.Join(t.TempDir(), "out")

	if err := Run(context.Background(), src, dst, []Task{&flattenTask{}}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := []string{"c.txt", "d.txt", "keep/", "keep/e.txt"}
	if diff := cmp.Diff(want, listTree(t, dst)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

// endlessTask always reports work.
type endlessTask struct{ BaseTask }

func (endlessTask) Name() string    { return "Endless" }
func (endlessTask) Repeating() bool { return true }

func (endlessTask) OperateDirectory(*TaskContext, *Directory) (bool, error) { return true, nil }

func TestRunNoFixpoint(t *testing.T) {
	src := writeTree(t, map[string]string{"a.txt": "a"})
	err := Run(context.Background(), src, t.TempDir(), []Task{endlessTask{}}, WithMaxSweeps(10))
	if !errors.Is(err, ErrNoFixpoint) {
		t.Fatalf("Run() error = %v, want ErrNoFixpoint", err)
	}
	var te *TaskError
	if !errors.As(err, &te) || te.Task != "Endless" {
		t.Errorf("Run() error = %v, want *TaskError for Endless", err)
	}
}

var errCorrupt = errors.New("corrupt control pixel")

// failingTask allocates scratch output, then fails.
type failingTask struct {
	BaseTask
	scratch string
}

func (*failingTask) Name() string { return "Failing" }

func (f *failingTask) OperateFile(tc *TaskContext, file *File) (bool, error) {
	dir, err := tc.NewFolder()
	if err != nil {
		return false, err
	}
	f.scratch = dir
	return false, errCorrupt
}

// afterTask records whether it ran.
type afterTask struct {
	BaseTask
	ran bool
}

func (*afterTask) Name() string { return "After" }

func (a *afterTask) Operate(*TaskContext) (bool, error) {
	a.ran = true
	return true, nil
}

func TestRunAbortsAndCleansUp(t *testing.T) {
	src := writeTree(t, map[string]string{"a.png": "a"})
	failing := &failingTask{}
	after := &afterTask{}

	err := Run(context.Background(), src, t.TempDir(), []Task{failing, after})
	if !errors.Is(err, errCorrupt) {
		t.Fatalf("Run() error = %v, want errCorrupt", err)
	}
	if after.ran {
		t.Error("tasks after a fatal error must not run")
	}
	if failing.scratch == "" {
		t.Fatal("failing task did not allocate scratch space")
	}
	if _, err := os.Stat(filepath.Dir(failing.scratch)); !os.IsNotExist(err) {
		t.Errorf("working root %q survived the aborted run", filepath.Dir(failing.scratch))
	}
}

func TestRunNotDirectory(t *testing.T) {
	src := writeTree(t, map[string]string{"a.txt": "a"})
	dst := filepath.Join(t.TempDir(), "out")
	err := Run(context.Background(), filepath.Join(src, "a.txt"), dst, nil)
	if !errors.Is(err, ErrNotDirectory) {
		t.Fatalf("Run() error = %v, want ErrNotDirectory", err)
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Error("output directory created for an aborted run")
	}
}

func TestRunClearsOutput(t *testing.T) {
	src := writeTree(t, map[string]string{"new.txt": "n"})
	dst := writeTree(t, map[string]string{"stale.txt": "s", "old/x.txt": "x"})

	if err := Run(context.Background(), src, dst, nil); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"new.txt"}, listTree(t, dst)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRunCanceled(t *testing.T) {
	src := writeTree(t, map[string]string{"a.txt": "a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Run(ctx, src, t.TempDir(), []Task{&afterTask{}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}
