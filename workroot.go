package respack

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
)

const (
	vowels     = "aeiouy"
	consonants = "bcdfghjklmnpqrstvwxz"

	// suffixLength is the number of pronounceable characters in temp names.
	suffixLength = 6
)

// WorkingRootProvider supplies the scratch directory of a run.
type WorkingRootProvider interface {
	// Acquire returns an existing, empty directory.
	Acquire() (string, error)

	// Retain reports whether the directory survives the run.
	Retain() bool
}

// TemporaryWorkingRoot allocates a fresh OS temp directory that is deleted
// when the run ends.
type TemporaryWorkingRoot struct{}

// Acquire creates the temp directory.
func (TemporaryWorkingRoot) Acquire() (string, error) {
	return os.MkdirTemp("", "resource-packer")
}

// Retain returns false.
func (TemporaryWorkingRoot) Retain() bool { return false }

// LocalWorkingRoot uses a caller-chosen directory. It is cleared when
// acquired and kept afterwards so intermediate files can be inspected.
type LocalWorkingRoot struct {
	Dir string
}

// Acquire creates and clears Dir.
func (l LocalWorkingRoot) Acquire() (string, error) {
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return "", err
	}
	ClearDirectory(l.Dir, false)
	return l.Dir, nil
}

// Retain returns true.
func (LocalWorkingRoot) Retain() bool { return true }

// WorkingRoot hands out unique scratch paths inside one run's working
// directory. Every path it returns does not exist at return time.
type WorkingRoot struct {
	dir      string
	retain   bool
	disposed bool
}

// NewWorkingRoot acquires a directory from p.
func NewWorkingRoot(p WorkingRootProvider) (*WorkingRoot, error) {
	dir, err := p.Acquire()
	if err != nil {
		return nil, fmt.Errorf("respack: acquire working root: %w", err)
	}
	return &WorkingRoot{dir: dir, retain: p.Retain()}, nil
}

// Dir returns the scratch directory.
func (w *WorkingRoot) Dir() string { return w.dir }

// CreateTempFile returns a non-existing path named
// `<fileName>.<taskName>-f-<random>.<flags of basedOn>.<ext>`, so a node parsed
// from it keeps fileName as its name and inherits the flags of basedOn.
// basedOn may be nil. An empty ext falls back to the extension of basedOn.
// When the working root cannot be inspected the first candidate is
// returned and writing to it fails.
func (w *WorkingRoot) CreateTempFile(taskName, fileName string, basedOn *File, ext string) string {
	var flags []string
	if basedOn != nil {
		flags = basedOn.flags
		if ext == "" {
			ext = basedOn.extension
		}
	}
	for {
		marker := taskName + "-f-" + pronounceable(suffixLength)
		name := FormatName(fileName, append([]string{marker}, flags...), ext)
		path := filepath.Join(w.dir, name)
		_, err := os.Lstat(path)
		if err == nil {
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			// Another name would fail the same way; the caller's write
			// reports the error.
			Logger().Warn("working root not accessible", "path", path, "err", err)
		}
		Logger().Debug("temp file allocated", "path", path)
		return path
	}
}

// CreateTempDirectory creates and returns a new directory named
// `<taskName>-d-<random>`.
func (w *WorkingRoot) CreateTempDirectory(taskName string) (string, error) {
	for {
		path := filepath.Join(w.dir, taskName+"-d-"+pronounceable(suffixLength))
		err := os.Mkdir(path, 0o755)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("respack: create temp directory: %w", err)
		}
	}
}

// Dispose releases the working root. Temporary roots are deleted
// recursively; retained ones are left alone. Only the first call has effect.
func (w *WorkingRoot) Dispose() {
	if w.disposed {
		return
	}
	w.disposed = true
	if !w.retain {
		ClearDirectory(w.dir, true)
	}
}

// ClearDirectory deletes the contents of dir, and dir itself when deleteDir
// is set. Failures are logged and otherwise ignored.
func ClearDirectory(dir string, deleteDir bool) {
	info, err := os.Lstat(dir)
	if err != nil {
		return
	}
	if !info.IsDir() {
		Logger().Warn("directory is actually a file", "path", dir)
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		Logger().Warn("directory not listed", "path", dir, "err", err)
	}
	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		if e.IsDir() {
			ClearDirectory(p, true)
			continue
		}
		if err := os.Remove(p); err != nil {
			Logger().Warn("file not deleted", "path", p, "err", err)
		}
	}
	if deleteDir {
		if err := os.Remove(dir); err != nil {
			Logger().Warn("directory not deleted", "path", dir, "err", err)
		}
	}
}

// pronounceable returns n random characters alternating consonant and vowel.
func pronounceable(n int) string {
	var sb strings.Builder
	for i := range n {
		if i%2 == 0 {
			sb.WriteByte(consonants[rand.IntN(len(consonants))])
		} else {
			sb.WriteByte(vowels[rand.IntN(len(vowels))])
		}
	}
	return sb.String()
}
